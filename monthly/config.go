/*
Package monthly implements the tiered-rate monthly commission track.

PURPOSE:
  Computes one commission record per order per month. The rate applied to
  an order is resolved from the rep's title, the customer's segment, and
  the customer's activity status - unless transfer handling (a manual
  override or the reorg grandfather rule) routes it through the special
  transfer rates. Time-bounded spiff incentives stack on top.

KEY CONCEPTS:
  - Snapshot: The full monthly configuration, loaded once per run.
  - RateMatrix: title x segment x status -> percentage rows.
  - SpecialRules: rep-transfer handling and the inactivity threshold.
  - CommissionRules: base selection and category exclusions.
  - Spiff: A product-specific incentive with an inclusive date window.
  - Resolver: The ordered rate-resolution procedure.
  - Engine: The per-order calculation pass.

SEE ALSO:
  - resolver.go: Rate resolution order
  - engine.go: The order-stream calculation
  - defaults.go: Centralized fallback rate table
*/
package monthly

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// SNAPSHOT - Monthly configuration, immutable per run
// =============================================================================

// Snapshot bundles everything a monthly run reads. It is loaded once at the
// start of a run; the run must never re-read configuration mid-flight, so a
// correction during a run cannot mix old and new rules.
type Snapshot struct {
	Month   comp.CalendarMonth
	Rates   RateMatrix
	Special SpecialRules
	Rules   CommissionRules
	Spiffs  []Spiff
}

// =============================================================================
// RATE MATRIX
// =============================================================================

// Rate is one row of the commission rate matrix.
type Rate struct {
	Title      comp.Title
	SegmentID  comp.SegmentID
	Status     comp.CustomerStatus
	Percentage comp.Ratio
	Active     bool
}

// RateMatrix holds the configured commission rates.
type RateMatrix struct {
	Rates []Rate
}

// Lookup finds the active rate for (title, segment, status). Inactive rows
// are invisible: the caller falls back to the default table.
func (m RateMatrix) Lookup(title comp.Title, segment comp.SegmentID, status comp.CustomerStatus) (comp.Ratio, bool) {
	for _, r := range m.Rates {
		if r.Active && r.Title == title && r.SegmentID == segment && r.Status == status {
			return r.Percentage, true
		}
	}
	return comp.ZeroRatio(), false
}

// =============================================================================
// SPECIAL RULES
// =============================================================================

// RepTransferRules govern commissions on customers reassigned between reps.
type RepTransferRules struct {
	Enabled bool

	// FlatFee, when positive, is a flat-dollar commission alternative for
	// transferred customers.
	FlatFee comp.Money

	// PercentFallback applies when the customer's segment has no entry in
	// SegmentRates.
	PercentFallback comp.Ratio

	// UseGreater compares the transfer-path result (including the flat
	// fee, as realized dollars) against the standard-path result and
	// keeps the greater.
	UseGreater bool

	// SegmentRates maps segment -> transfer percentage.
	SegmentRates map[comp.SegmentID]comp.Ratio
}

// SpecialRules carries the transfer rules and the recency horizon.
type SpecialRules struct {
	RepTransfer RepTransferRules

	// InactivityThreshold is the number of months without an order after
	// which a customer counts as new business again. Zero means the
	// default of 12.
	InactivityThreshold int
}

// DefaultInactivityThreshold is used when the configured threshold is unset.
const DefaultInactivityThreshold = 12

// Threshold returns the effective inactivity threshold in months.
func (s SpecialRules) Threshold() int {
	if s.InactivityThreshold <= 0 {
		return DefaultInactivityThreshold
	}
	return s.InactivityThreshold
}

// =============================================================================
// COMMISSION RULES
// =============================================================================

// CommissionRules select the commission base and category exclusions.
type CommissionRules struct {
	// ExcludeShipping removes shipping line items from the commission
	// base (other line items of the order still qualify).
	ExcludeShipping bool

	// ExcludeCCProcessing removes credit-card processing fee items.
	ExcludeCCProcessing bool

	// UseOrderValue selects the order-value field as the commission base;
	// otherwise the revenue field is used.
	UseOrderValue bool

	// ApplyReorgRule routes customers reassigned on/after ReorgDate
	// through the transfer path even without a manual override.
	ApplyReorgRule bool
	ReorgDate      time.Time
}

// =============================================================================
// SPIFF - Time-bounded product incentive
// =============================================================================

type SpiffType string

const (
	SpiffFlat       SpiffType = "flat"
	SpiffPercentage SpiffType = "percentage"
)

// Spiff is a product-specific bonus layered on top of base commission.
// The [StartDate, EndDate] window is inclusive on both ends; a zero
// EndDate means open-ended.
type Spiff struct {
	Product       comp.ProductCode
	Name          string
	IncentiveType SpiffType

	// IncentiveValue is dollars for flat spiffs and a ratio (0.05 = 5%)
	// for percentage spiffs.
	IncentiveValue decimal.Decimal

	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
}
