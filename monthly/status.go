package monthly

import (
	"time"

	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// CUSTOMER STATUS DERIVATION
// =============================================================================

// DeriveStatus classifies a customer by order recency as of a given date.
//
// Rules, in order:
//   - no prior order at all, or the last order is at least
//     thresholdMonths old: new_business
//   - last order strictly within the past 6 months: 6_month_active
//   - last order 6-12 months ago: 12_month_active
//   - anything older (possible when the threshold exceeds 12): new_business
//
// Boundaries: an order exactly 6 months old counts as 12_month_active; an
// order exactly thresholdMonths old counts as new_business.
func DeriveStatus(lastOrder *time.Time, thresholdMonths int, asOf time.Time) comp.CustomerStatus {
	if lastOrder == nil || lastOrder.IsZero() {
		return comp.StatusNewBusiness
	}
	if thresholdMonths <= 0 {
		thresholdMonths = DefaultInactivityThreshold
	}

	months := comp.MonthsBetween(*lastOrder, asOf)
	switch {
	case months >= thresholdMonths:
		return comp.StatusNewBusiness
	case months < 6:
		return comp.Status6MonthActive
	case months < 12:
		return comp.Status12MonthActive
	default:
		return comp.StatusNewBusiness
	}
}
