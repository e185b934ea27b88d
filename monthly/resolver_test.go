package monthly_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
)

// =============================================================================
// FIXTURES
// =============================================================================

func testSnapshot() monthly.Snapshot {
	month, _ := comp.ParseMonth("2025-03")
	return monthly.Snapshot{
		Month: month,
		Rates: monthly.RateMatrix{Rates: []monthly.Rate{
			{Title: "Account Executive", SegmentID: monthly.SegmentWholesale, Status: comp.StatusNewBusiness, Percentage: comp.NewRatio(0.12), Active: true},
			{Title: "Account Executive", SegmentID: monthly.SegmentWholesale, Status: comp.Status6MonthActive, Percentage: comp.NewRatio(0.09), Active: true},
			{Title: "Account Executive", SegmentID: monthly.SegmentDistributor, Status: comp.StatusNewBusiness, Percentage: comp.NewRatio(0.20), Active: false},
		}},
		Special: monthly.SpecialRules{
			RepTransfer: monthly.RepTransferRules{
				Enabled:         true,
				PercentFallback: comp.NewRatio(0.02),
				SegmentRates: map[comp.SegmentID]comp.Ratio{
					monthly.SegmentWholesale: comp.NewRatio(0.03),
				},
			},
		},
		Rules: monthly.CommissionRules{
			ApplyReorgRule: true,
			ReorgDate:      date(2025, time.January, 1),
		},
	}
}

func resolve(t *testing.T, snap monthly.Snapshot, in monthly.ResolveInput) monthly.ResolvedRate {
	t.Helper()
	resolved, err := monthly.NewResolver(snap).Resolve(in)
	require.NoError(t, err)
	return resolved
}

// =============================================================================
// STANDARD PATH
// =============================================================================

func TestResolve_StandardPath_MatrixHit(t *testing.T) {
	// GIVEN a matrix row for the rep's title and the customer's segment/status
	// WHEN the customer has no transfer handling
	// THEN the matrix percentage wins on the standard path
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferAuto,
		LastOrderDate:  datePtr(2025, time.February, 1),
		AsOf:           date(2025, time.March, 15),
	})

	assert.Equal(t, comp.Status6MonthActive, resolved.Status)
	require.Len(t, resolved.Candidates, 1)
	winner := resolved.Pick(comp.NewMoney(1000))
	assert.Equal(t, monthly.RatePercentage, winner.Kind)
	assert.Equal(t, monthly.PathStandard, winner.Path)
	assert.True(t, winner.Percentage.Equal(comp.NewRatio(0.09)))
}

func TestResolve_StandardPath_DefaultFallback(t *testing.T) {
	// An unknown title misses every matrix row; the default table applies.
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Sales Associate",
		Segment:        monthly.SegmentDistributor,
		TransferStatus: comp.TransferAuto,
		AsOf:           date(2025, time.March, 15),
	})

	assert.Equal(t, comp.StatusNewBusiness, resolved.Status)
	winner := resolved.Pick(comp.NewMoney(1000))
	assert.True(t, winner.Percentage.Equal(comp.NewRatio(0.08)))
}

func TestResolve_InactiveMatrixRow_FallsBackToDefault(t *testing.T) {
	// The distributor/new_business row exists but is inactive.
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentDistributor,
		TransferStatus: comp.TransferAuto,
		AsOf:           date(2025, time.March, 15),
	})

	winner := resolved.Pick(comp.NewMoney(1000))
	assert.True(t, winner.Percentage.Equal(comp.NewRatio(0.08)),
		"expected default 0.08, not the inactive 0.20 row")
}

func TestResolve_UnknownSegment_NoRate(t *testing.T) {
	_, err := monthly.NewResolver(testSnapshot()).Resolve(monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        "retail",
		TransferStatus: comp.TransferAuto,
		AsOf:           date(2025, time.March, 15),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, comp.ErrRecordNotFound)
}

// =============================================================================
// TRANSFER PATH
// =============================================================================

func TestResolve_TransferredOverride_SegmentTransferRate(t *testing.T) {
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferTransferred,
		LastOrderDate:  datePtr(2025, time.February, 1),
		AsOf:           date(2025, time.March, 15),
	})

	winner := resolved.Pick(comp.NewMoney(1000))
	assert.Equal(t, monthly.PathTransfer, winner.Path)
	assert.True(t, winner.Percentage.Equal(comp.NewRatio(0.03)))
}

func TestResolve_TransferPath_PercentFallback(t *testing.T) {
	// Distributor has no segment transfer rate configured.
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentDistributor,
		TransferStatus: comp.TransferTransferred,
		AsOf:           date(2025, time.March, 15),
	})

	winner := resolved.Pick(comp.NewMoney(1000))
	assert.Equal(t, monthly.PathTransfer, winner.Path)
	assert.True(t, winner.Percentage.Equal(comp.NewRatio(0.02)))
}

func TestResolve_OwnOverride_IgnoresTransferHistory(t *testing.T) {
	// Even a post-reorg transfer date does not move an "own" customer off
	// the standard path.
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferOwn,
		LastOrderDate:  datePtr(2025, time.February, 1),
		TransferDate:   datePtr(2025, time.February, 10),
		AsOf:           date(2025, time.March, 15),
	})

	winner := resolved.Pick(comp.NewMoney(1000))
	assert.Equal(t, monthly.PathStandard, winner.Path)
}

func TestResolve_ReorgRule_TransferOnReorgDate(t *testing.T) {
	// GIVEN auto status and the reorg rule enabled
	// WHEN the transfer date equals the reorg date exactly
	// THEN the customer takes the transfer path
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferAuto,
		LastOrderDate:  datePtr(2025, time.February, 1),
		TransferDate:   datePtr(2025, time.January, 1),
		AsOf:           date(2025, time.March, 15),
	})

	assert.Equal(t, monthly.PathTransfer, resolved.Pick(comp.NewMoney(1000)).Path)
}

func TestResolve_ReorgRule_TransferBeforeReorgDate(t *testing.T) {
	resolved := resolve(t, testSnapshot(), monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferAuto,
		LastOrderDate:  datePtr(2025, time.February, 1),
		TransferDate:   datePtr(2024, time.December, 31),
		AsOf:           date(2025, time.March, 15),
	})

	assert.Equal(t, monthly.PathStandard, resolved.Pick(comp.NewMoney(1000)).Path)
}

func TestResolve_ReorgRuleDisabled_StaysStandard(t *testing.T) {
	snap := testSnapshot()
	snap.Rules.ApplyReorgRule = false

	resolved := resolve(t, snap, monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferAuto,
		LastOrderDate:  datePtr(2025, time.February, 1),
		TransferDate:   datePtr(2025, time.February, 10),
		AsOf:           date(2025, time.March, 15),
	})

	assert.Equal(t, monthly.PathStandard, resolved.Pick(comp.NewMoney(1000)).Path)
}

func TestResolve_TransferHandlingDisabled_StaysStandard(t *testing.T) {
	snap := testSnapshot()
	snap.Special.RepTransfer.Enabled = false

	resolved := resolve(t, snap, monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferTransferred,
		LastOrderDate:  datePtr(2025, time.February, 1),
		AsOf:           date(2025, time.March, 15),
	})

	assert.Equal(t, monthly.PathStandard, resolved.Pick(comp.NewMoney(1000)).Path)
}

// =============================================================================
// FLAT FEE AND USE-GREATER
// =============================================================================

func TestResolve_FlatFee_ReplacesPercentage(t *testing.T) {
	snap := testSnapshot()
	snap.Special.RepTransfer.FlatFee = comp.NewMoney(50)

	resolved := resolve(t, snap, monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferTransferred,
		LastOrderDate:  datePtr(2025, time.February, 1),
		AsOf:           date(2025, time.March, 15),
	})

	require.Len(t, resolved.Candidates, 1)
	winner := resolved.Pick(comp.NewMoney(100000))
	assert.Equal(t, monthly.RateFlat, winner.Kind)
	assert.True(t, winner.Amount(comp.NewMoney(100000)).Equal(comp.NewMoney(50)),
		"without UseGreater the flat fee applies regardless of base")
}

func TestResolve_UseGreater_ComparesRealizedDollars(t *testing.T) {
	snap := testSnapshot()
	snap.Special.RepTransfer.FlatFee = comp.NewMoney(50)
	snap.Special.RepTransfer.UseGreater = true

	in := monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        monthly.SegmentWholesale,
		TransferStatus: comp.TransferTransferred,
		LastOrderDate:  datePtr(2025, time.February, 1),
		AsOf:           date(2025, time.March, 15),
	}
	resolved := resolve(t, snap, in)

	// $1,000 order: standard 9% ($90) beats the $50 flat fee and 3% ($30).
	small := resolved.Pick(comp.NewMoney(1000))
	assert.Equal(t, monthly.PathStandard, small.Path)
	assert.True(t, small.Amount(comp.NewMoney(1000)).Equal(comp.NewMoney(90)))

	// Tiny order: $100. Flat $50 beats 3% ($3) and 9% ($9).
	tiny := resolved.Pick(comp.NewMoney(100))
	assert.Equal(t, monthly.RateFlat, tiny.Kind)
}

func TestResolve_UseGreater_NoStandardRate_StillResolves(t *testing.T) {
	// The standard path has no rate for an unknown segment, but a transfer
	// customer still resolves through the percent fallback.
	snap := testSnapshot()
	snap.Special.RepTransfer.UseGreater = true

	resolved := resolve(t, snap, monthly.ResolveInput{
		Title:          "Account Executive",
		Segment:        "retail",
		TransferStatus: comp.TransferTransferred,
		AsOf:           date(2025, time.March, 15),
	})

	winner := resolved.Pick(comp.NewMoney(1000))
	assert.Equal(t, monthly.PathTransfer, winner.Path)
	assert.True(t, winner.Percentage.Equal(comp.NewRatio(0.02)))
}
