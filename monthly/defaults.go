/*
defaults.go - Centralized fallback commission rates

PURPOSE:
  When a (title, segment, status) lookup misses the rate matrix - or hits
  an inactive row - the resolver falls back to this single default table
  instead of scattering implicit defaults across call sites. Distributor
  rates sit below wholesale at every status tier.
*/
package monthly

import "github.com/warp/commission-engine/comp"

// Well-known segments. The store may carry others; unknown segments have
// no default and resolve as a missing rate.
const (
	SegmentWholesale   comp.SegmentID = "wholesale"
	SegmentDistributor comp.SegmentID = "distributor"
)

// defaultRates is the fallback rate table, keyed segment -> status.
var defaultRates = map[comp.SegmentID]map[comp.CustomerStatus]comp.Ratio{
	SegmentWholesale: {
		comp.StatusNewBusiness:   comp.NewRatio(0.10),
		comp.Status6MonthActive:  comp.NewRatio(0.07),
		comp.Status12MonthActive: comp.NewRatio(0.05),
	},
	SegmentDistributor: {
		comp.StatusNewBusiness:   comp.NewRatio(0.08),
		comp.Status6MonthActive:  comp.NewRatio(0.05),
		comp.Status12MonthActive: comp.NewRatio(0.03),
	},
}

// DefaultRate returns the fallback rate for a segment/status pair.
func DefaultRate(segment comp.SegmentID, status comp.CustomerStatus) (comp.Ratio, bool) {
	byStatus, ok := defaultRates[segment]
	if !ok {
		return comp.ZeroRatio(), false
	}
	r, ok := byStatus[status]
	return r, ok
}
