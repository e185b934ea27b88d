package monthly_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
)

// =============================================================================
// FIXTURES
// =============================================================================

func engineSnapshot() monthly.Snapshot {
	snap := testSnapshot()
	snap.Rules.ExcludeShipping = true
	snap.Rules.ExcludeCCProcessing = true
	return snap
}

func wholesaleCustomer(id comp.CustomerID) monthly.Customer {
	return monthly.Customer{
		ID:             id,
		AccountType:    "standard",
		Segment:        monthly.SegmentWholesale,
		LastOrderDate:  datePtr(2025, time.February, 1),
		TransferStatus: comp.TransferAuto,
	}
}

func order(id comp.OrderID, customer comp.CustomerID, revenue float64) monthly.OrderRecord {
	return monthly.OrderRecord{
		OrderID:    id,
		Customer:   customer,
		Rep:        "rep-1",
		Product:    "SKU-100",
		Category:   monthly.CategoryStandard,
		OrderDate:  date(2025, time.March, 10),
		OrderValue: comp.NewMoney(revenue * 1.1),
		Revenue:    comp.NewMoney(revenue),
	}
}

var testTitles = monthly.RepTitles{"rep-1": "Account Executive"}

func calculate(t *testing.T, snap monthly.Snapshot, orders []monthly.OrderRecord, customers map[comp.CustomerID]monthly.Customer) ([]monthly.CommissionRecord, monthly.Summary) {
	t.Helper()
	return monthly.NewEngine(snap).Calculate(orders, customers, testTitles, date(2025, time.April, 1))
}

// =============================================================================
// PER-ORDER CALCULATION
// =============================================================================

func TestCalculate_SingleOrder(t *testing.T) {
	// GIVEN a $1,000 order for a 6-month-active wholesale customer
	// WHEN the matrix holds a 9% rate for the rep's title
	// THEN the record carries $90 commission and the summary matches
	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}
	records, summary := calculate(t, engineSnapshot(), []monthly.OrderRecord{order("ord-1", "cust-1", 1000)}, customers)

	require.Len(t, records, 1)
	rec := records[0]
	assert.Equal(t, comp.Status6MonthActive, rec.Status)
	assert.Equal(t, monthly.PathStandard, rec.RatePath)
	assert.True(t, rec.Commission.Equal(comp.NewMoney(90)))
	assert.True(t, rec.Total.Equal(comp.NewMoney(90)))

	assert.Equal(t, 1, summary.OrdersProcessed)
	assert.Equal(t, 1, summary.CommissionsCalculated)
	assert.True(t, summary.TotalCommission.Equal(comp.NewMoney(90)))
	assert.Equal(t, 1, summary.PerRep["rep-1"].Orders)
}

func TestCalculate_BaseSelection_OrderValue(t *testing.T) {
	snap := engineSnapshot()
	snap.Rules.UseOrderValue = true

	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}
	records, _ := calculate(t, snap, []monthly.OrderRecord{order("ord-1", "cust-1", 1000)}, customers)

	require.Len(t, records, 1)
	assert.True(t, records[0].Base.Equal(comp.NewMoney(1100)))
	assert.True(t, records[0].Commission.Equal(comp.NewMoney(99)))
}

// =============================================================================
// EXCLUSIONS AND SKIPS
// =============================================================================

func TestCalculate_ShippingExcluded_OtherLinesSurvive(t *testing.T) {
	// GIVEN an order whose shipping line is split out as its own record
	// WHEN shipping exclusion is on
	// THEN only the shipping line is dropped, and it is counted
	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}

	shipping := order("ord-1-ship", "cust-1", 25)
	shipping.Category = monthly.CategoryShipping

	records, summary := calculate(t, engineSnapshot(),
		[]monthly.OrderRecord{order("ord-1", "cust-1", 1000), shipping}, customers)

	require.Len(t, records, 1)
	assert.Equal(t, comp.OrderID("ord-1"), records[0].OrderID)
	assert.Equal(t, 2, summary.OrdersProcessed)
	assert.Equal(t, 1, summary.Skipped[comp.SkipExcludedProduct])
}

func TestCalculate_ExclusionsOff_ShippingCommissions(t *testing.T) {
	snap := engineSnapshot()
	snap.Rules.ExcludeShipping = false

	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}
	shipping := order("ord-1-ship", "cust-1", 25)
	shipping.Category = monthly.CategoryShipping

	records, _ := calculate(t, snap, []monthly.OrderRecord{shipping}, customers)
	assert.Len(t, records, 1)
}

func TestCalculate_MissingCustomer_Skipped(t *testing.T) {
	records, summary := calculate(t, engineSnapshot(),
		[]monthly.OrderRecord{order("ord-1", "cust-ghost", 1000)},
		map[comp.CustomerID]monthly.Customer{})

	assert.Empty(t, records)
	assert.Equal(t, 1, summary.Skipped[comp.SkipMissingCustomer])
}

func TestCalculate_NoRate_Skipped(t *testing.T) {
	cust := wholesaleCustomer("cust-1")
	cust.Segment = "retail"
	customers := map[comp.CustomerID]monthly.Customer{"cust-1": cust}

	records, summary := calculate(t, engineSnapshot(), []monthly.OrderRecord{order("ord-1", "cust-1", 1000)}, customers)

	assert.Empty(t, records)
	assert.Equal(t, 1, summary.Skipped[comp.SkipMissingRate])
}

func TestCalculate_OrderOutsideMonth_Skipped(t *testing.T) {
	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}

	stale := order("ord-old", "cust-1", 1000)
	stale.OrderDate = date(2025, time.February, 28)

	records, summary := calculate(t, engineSnapshot(), []monthly.OrderRecord{stale}, customers)

	assert.Empty(t, records)
	assert.Equal(t, 1, summary.Skipped[comp.SkipOutsidePeriod])
}

// =============================================================================
// SPIFFS
// =============================================================================

func q1Spiff(typ monthly.SpiffType, value float64) monthly.Spiff {
	return monthly.Spiff{
		Product:        "SKU-100",
		Name:           "Q1 Push",
		IncentiveType:  typ,
		IncentiveValue: decimal.NewFromFloat(value),
		StartDate:      date(2025, time.January, 1),
		EndDate:        date(2025, time.March, 31),
		IsActive:       true,
	}
}

func TestCalculate_FlatSpiff_AddsToTotal(t *testing.T) {
	snap := engineSnapshot()
	snap.Spiffs = []monthly.Spiff{q1Spiff(monthly.SpiffFlat, 25)}

	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}
	records, _ := calculate(t, snap, []monthly.OrderRecord{order("ord-1", "cust-1", 1000)}, customers)

	require.Len(t, records, 1)
	rec := records[0]
	require.Len(t, rec.AppliedSpiffs, 1)
	assert.True(t, rec.SpiffBonus.Equal(comp.NewMoney(25)))
	assert.True(t, rec.Commission.Equal(comp.NewMoney(90)), "spiffs never change base commission")
	assert.True(t, rec.Total.Equal(comp.NewMoney(115)))
}

func TestCalculate_PercentageSpiff_AppliesToBase(t *testing.T) {
	snap := engineSnapshot()
	snap.Spiffs = []monthly.Spiff{q1Spiff(monthly.SpiffPercentage, 0.05)}

	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}
	records, _ := calculate(t, snap, []monthly.OrderRecord{order("ord-1", "cust-1", 1000)}, customers)

	require.Len(t, records, 1)
	assert.True(t, records[0].SpiffBonus.Equal(comp.NewMoney(50)))
}

func TestCalculate_MultipleSpiffs_Additive(t *testing.T) {
	snap := engineSnapshot()
	snap.Spiffs = []monthly.Spiff{
		q1Spiff(monthly.SpiffFlat, 25),
		q1Spiff(monthly.SpiffPercentage, 0.05),
	}

	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}
	records, _ := calculate(t, snap, []monthly.OrderRecord{order("ord-1", "cust-1", 1000)}, customers)

	require.Len(t, records, 1)
	assert.Len(t, records[0].AppliedSpiffs, 2)
	assert.True(t, records[0].SpiffBonus.Equal(comp.NewMoney(75)))
}

func TestSpiff_Window_InclusiveBounds(t *testing.T) {
	s := q1Spiff(monthly.SpiffFlat, 25)

	assert.True(t, s.AppliesTo("SKU-100", date(2025, time.January, 1)), "start date qualifies")
	assert.True(t, s.AppliesTo("SKU-100", date(2025, time.March, 31)), "end date qualifies")
	assert.True(t, s.AppliesTo("SKU-100", date(2025, time.March, 31).Add(23*time.Hour)), "time of day is irrelevant")
	assert.False(t, s.AppliesTo("SKU-100", date(2025, time.April, 1)))
	assert.False(t, s.AppliesTo("SKU-100", date(2024, time.December, 31)))
}

func TestSpiff_OpenEndedWindow(t *testing.T) {
	s := q1Spiff(monthly.SpiffFlat, 25)
	s.EndDate = time.Time{}

	assert.True(t, s.AppliesTo("SKU-100", date(2027, time.June, 15)))
}

func TestSpiff_ProductAndActiveGating(t *testing.T) {
	s := q1Spiff(monthly.SpiffFlat, 25)
	assert.False(t, s.AppliesTo("SKU-999", date(2025, time.February, 1)))

	s.IsActive = false
	assert.False(t, s.AppliesTo("SKU-100", date(2025, time.February, 1)))
}

// =============================================================================
// DETERMINISM
// =============================================================================

func TestCalculate_Deterministic(t *testing.T) {
	// Two runs over the same snapshot and inputs produce identical records
	// and keys, so re-running a month upserts rather than duplicates.
	snap := engineSnapshot()
	snap.Spiffs = []monthly.Spiff{q1Spiff(monthly.SpiffFlat, 25)}
	customers := map[comp.CustomerID]monthly.Customer{"cust-1": wholesaleCustomer("cust-1")}
	orders := []monthly.OrderRecord{order("ord-1", "cust-1", 1000), order("ord-2", "cust-1", 500)}

	first, _ := calculate(t, snap, orders, customers)
	second, _ := calculate(t, snap, orders, customers)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Key(), second[i].Key())
		assert.True(t, first[i].Total.Equal(second[i].Total))
	}
	assert.Equal(t, "ord-1|2025-03", first[0].Key())
}
