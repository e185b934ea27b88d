/*
resolver.go - Ordered commission-rate resolution

PURPOSE:
  Resolves the single applicable commission for an order: usually a
  percentage, occasionally a flat dollar amount when flat-fee transfer
  logic wins. Deterministic given identical inputs - no hidden state.

RESOLUTION ORDER (first match wins):
  1. TransferStatus == transferred, OR the reorg rule is on and the
     customer was reassigned on/after the reorg date
       -> transfer path: segment transfer rate, else percent fallback;
          a configured flat fee replaces the percentage, and under
          UseGreater the transfer result competes with the standard path
          on realized dollars
  2. TransferStatus == own -> standard path, no transfer handling
  3. Standard path: derive customer status from order recency, look up
     the rate matrix, fall back to the default table

  The resolver returns rate CANDIDATES; when UseGreater puts a flat fee
  and a percentage in competition they can only be compared against a
  concrete order base, so the engine picks the winner in dollars.
*/
package monthly

import (
	"fmt"
	"time"

	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// RESOLVED RATE
// =============================================================================

// RateKind distinguishes percentage rates from flat-dollar fees.
type RateKind string

const (
	RatePercentage RateKind = "percentage"
	RateFlat       RateKind = "flat"
)

// RatePath records which branch of the resolution order produced a rate.
type RatePath string

const (
	PathStandard RatePath = "standard"
	PathTransfer RatePath = "transfer"
)

// RateCandidate is one possible commission rate for an order.
type RateCandidate struct {
	Kind       RateKind
	Percentage comp.Ratio
	Flat       comp.Money
	Path       RatePath
}

// Amount realizes the candidate against a commission base.
func (c RateCandidate) Amount(base comp.Money) comp.Money {
	if c.Kind == RateFlat {
		return c.Flat
	}
	return base.MulRatio(c.Percentage)
}

// ResolvedRate is the resolver output: the derived customer status plus one
// or more competing candidates (several only under UseGreater).
type ResolvedRate struct {
	Status     comp.CustomerStatus
	Candidates []RateCandidate
}

// Pick returns the winning candidate for a concrete base: the one paying
// the greatest dollar amount. With a single candidate it is just that one.
func (r ResolvedRate) Pick(base comp.Money) RateCandidate {
	best := r.Candidates[0]
	for _, c := range r.Candidates[1:] {
		if c.Amount(base).GreaterThan(best.Amount(base)) {
			best = c
		}
	}
	return best
}

// =============================================================================
// RESOLVER
// =============================================================================

// ResolveInput carries everything rate resolution depends on.
type ResolveInput struct {
	Title   comp.Title
	Segment comp.SegmentID

	// TransferStatus is the manual override; auto derives from history.
	TransferStatus comp.TransferStatus

	// LastOrderDate is the customer's most recent order before this one;
	// nil when the customer has never ordered.
	LastOrderDate *time.Time

	// TransferDate is the customer's most recent reassignment; nil when
	// the customer was never transferred.
	TransferDate *time.Time

	// AsOf anchors recency math, normally the order date.
	AsOf time.Time
}

// Resolver resolves commission rates against one monthly snapshot.
type Resolver struct {
	special SpecialRules
	rules   CommissionRules
	rates   RateMatrix
}

func NewResolver(snap Snapshot) *Resolver {
	return &Resolver{special: snap.Special, rules: snap.Rules, rates: snap.Rates}
}

// Resolve runs the ordered decision procedure. It returns an error only
// when no rate exists at all (unknown segment with no default); callers
// count that as a missing_rate skip.
func (r *Resolver) Resolve(in ResolveInput) (ResolvedRate, error) {
	status := DeriveStatus(in.LastOrderDate, r.special.Threshold(), in.AsOf)

	standard, stdErr := r.standardCandidate(in.Title, in.Segment, status)

	if r.takesTransferPath(in) && r.special.RepTransfer.Enabled {
		return r.transferResolved(in.Segment, status, standard, stdErr)
	}

	if stdErr != nil {
		return ResolvedRate{}, stdErr
	}
	return ResolvedRate{Status: status, Candidates: []RateCandidate{standard}}, nil
}

// takesTransferPath applies resolution steps 1 and 2: the manual override
// wins outright; under auto the reorg rule decides. A transfer dated
// exactly on the reorg date takes the transfer path.
func (r *Resolver) takesTransferPath(in ResolveInput) bool {
	switch in.TransferStatus {
	case comp.TransferTransferred:
		return true
	case comp.TransferOwn:
		return false
	}
	if !r.rules.ApplyReorgRule || in.TransferDate == nil {
		return false
	}
	return !comp.DayOf(*in.TransferDate).Before(comp.DayOf(r.rules.ReorgDate))
}

func (r *Resolver) transferResolved(segment comp.SegmentID, status comp.CustomerStatus, standard RateCandidate, stdErr error) (ResolvedRate, error) {
	rt := r.special.RepTransfer

	transfer := RateCandidate{Kind: RatePercentage, Path: PathTransfer, Percentage: rt.PercentFallback}
	if pct, ok := rt.SegmentRates[segment]; ok {
		transfer.Percentage = pct
	}
	if rt.FlatFee.IsPositive() {
		transfer = RateCandidate{Kind: RateFlat, Path: PathTransfer, Flat: rt.FlatFee}
	}

	candidates := []RateCandidate{transfer}
	if rt.UseGreater {
		// The flat fee competes as a flat-dollar alternative alongside
		// the transfer percentage, not instead of it.
		if rt.FlatFee.IsPositive() {
			pct := RateCandidate{Kind: RatePercentage, Path: PathTransfer, Percentage: rt.PercentFallback}
			if p, ok := rt.SegmentRates[segment]; ok {
				pct.Percentage = p
			}
			candidates = append(candidates, pct)
		}
		if stdErr == nil {
			candidates = append(candidates, standard)
		}
	}

	return ResolvedRate{Status: status, Candidates: candidates}, nil
}

// standardCandidate looks up the matrix and falls back to the default
// table.
func (r *Resolver) standardCandidate(title comp.Title, segment comp.SegmentID, status comp.CustomerStatus) (RateCandidate, error) {
	if pct, ok := r.rates.Lookup(title, segment, status); ok {
		return RateCandidate{Kind: RatePercentage, Path: PathStandard, Percentage: pct}, nil
	}
	if pct, ok := DefaultRate(segment, status); ok {
		return RateCandidate{Kind: RatePercentage, Path: PathStandard, Percentage: pct}, nil
	}
	return RateCandidate{}, fmt.Errorf("no rate for title=%q segment=%q status=%q: %w",
		title, segment, status, comp.ErrRecordNotFound)
}
