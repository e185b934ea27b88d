package monthly

import (
	"fmt"
	"time"

	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// INPUT RECORDS - What the import pipeline hands the engine
// =============================================================================

// ProductCategory classifies an order line for exclusion rules. The import
// pipeline assigns categories; the engine only switches on them.
type ProductCategory string

const (
	CategoryStandard     ProductCategory = "standard"
	CategoryShipping     ProductCategory = "shipping"
	CategoryCCProcessing ProductCategory = "cc_processing"
)

// OrderRecord is one normalized order/line-item record.
type OrderRecord struct {
	OrderID  comp.OrderID
	Customer comp.CustomerID
	Rep      comp.RepID

	Product  comp.ProductCode
	Category ProductCategory

	OrderDate  time.Time
	OrderValue comp.Money
	Revenue    comp.Money
}

// Customer is the engine's view of a customer: segment, account type, and
// the history needed for status derivation and transfer handling.
type Customer struct {
	ID          comp.CustomerID
	AccountType string
	Segment     comp.SegmentID

	// LastOrderDate is the most recent order before the calculation
	// period; nil for a first-time customer.
	LastOrderDate *time.Time

	// TransferDate is the most recent reassignment to the current rep.
	TransferDate *time.Time

	// TransferStatus is the manual override (auto / own / transferred).
	TransferStatus comp.TransferStatus
}

// RepTitles maps reps to their titles for rate lookup.
type RepTitles map[comp.RepID]comp.Title

// =============================================================================
// OUTPUT RECORDS
// =============================================================================

// AppliedSpiff records one spiff's contribution to a commission record.
type AppliedSpiff struct {
	Product       comp.ProductCode
	Name          string
	IncentiveType SpiffType
	Amount        comp.Money
}

// CommissionRecord is the monthly output: one per order per calculation
// run. Re-running a month upserts by (order id, period) - never duplicates.
type CommissionRecord struct {
	Period  comp.CalendarMonth
	OrderID comp.OrderID

	Rep         comp.RepID
	Customer    comp.CustomerID
	AccountType string
	Segment     comp.SegmentID
	Status      comp.CustomerStatus

	// Base is the selected monetary base (order value or revenue).
	Base comp.Money

	RateKind RateKind
	Rate     comp.Ratio // zero when a flat fee won
	RatePath RatePath

	// Commission is the base commission before spiffs.
	Commission comp.Money

	AppliedSpiffs []AppliedSpiff
	SpiffBonus    comp.Money

	// Total is commission + spiff bonus; what the rep is paid.
	Total comp.Money

	CalculatedAt time.Time
}

// Key identifies a CommissionRecord for idempotent upserts.
func (r CommissionRecord) Key() string {
	return fmt.Sprintf("%s|%s", r.OrderID, r.Period)
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RepTotal is the per-rep slice of a run summary.
type RepTotal struct {
	Orders     int
	Commission comp.Money
}

// Summary reports what a monthly run did, including skip counts by reason.
type Summary struct {
	Period                comp.CalendarMonth
	OrdersProcessed       int
	CommissionsCalculated int
	TotalCommission       comp.Money
	PerRep                map[comp.RepID]RepTotal
	Skipped               map[comp.SkipReason]int
}

// NewSummary initializes the counters for a period.
func NewSummary(period comp.CalendarMonth) Summary {
	return Summary{
		Period:          period,
		TotalCommission: comp.ZeroMoney(),
		PerRep:          make(map[comp.RepID]RepTotal),
		Skipped:         make(map[comp.SkipReason]int),
	}
}

func (s *Summary) recordSkip(reason comp.SkipReason) {
	s.Skipped[reason]++
}

func (s *Summary) recordCommission(rec CommissionRecord) {
	s.CommissionsCalculated++
	s.TotalCommission = s.TotalCommission.Add(rec.Total)
	rt := s.PerRep[rec.Rep]
	rt.Orders++
	rt.Commission = rt.Commission.Add(rec.Total)
	s.PerRep[rec.Rep] = rt
}
