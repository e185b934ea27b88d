/*
engine.go - The per-order monthly calculation pass

PURPOSE:
  Turns a filtered stream of order records into commission records for one
  month. Every order either produces exactly one CommissionRecord or is
  counted under a named skip reason - nothing is silently dropped.

PER-ORDER STEPS:
  1. Drop orders dated outside the month (counted, they indicate an
     import problem)
  2. Category exclusions (shipping, credit-card processing fees)
  3. Select the monetary base (order value vs revenue)
  4. Resolve the rate via resolver.go
  5. Apply matching spiffs additively
  6. Emit the record

  Each record's computation is a pure function of the order, the customer,
  and the read-only snapshot, so callers are free to parallelize the loop.
*/
package monthly

import (
	"time"

	"github.com/warp/commission-engine/comp"
)

// Engine computes commission records against one monthly snapshot.
type Engine struct {
	snap     Snapshot
	resolver *Resolver
}

func NewEngine(snap Snapshot) *Engine {
	return &Engine{snap: snap, resolver: NewResolver(snap)}
}

// Snapshot returns the configuration this engine was built from.
func (e *Engine) Snapshot() Snapshot { return e.snap }

// Calculate runs the per-order pass. Customers and titles are read-only
// lookups; at stamps the emitted records.
func (e *Engine) Calculate(orders []OrderRecord, customers map[comp.CustomerID]Customer, titles RepTitles, at time.Time) ([]CommissionRecord, Summary) {
	summary := NewSummary(e.snap.Month)
	var records []CommissionRecord

	for _, order := range orders {
		summary.OrdersProcessed++

		rec, reason := e.calculateOne(order, customers, titles, at)
		if reason != "" {
			summary.recordSkip(reason)
			continue
		}
		records = append(records, rec)
		summary.recordCommission(rec)
	}

	return records, summary
}

// calculateOne evaluates a single order. A non-empty SkipReason means no
// record was produced.
func (e *Engine) calculateOne(order OrderRecord, customers map[comp.CustomerID]Customer, titles RepTitles, at time.Time) (CommissionRecord, comp.SkipReason) {
	if !e.snap.Month.Contains(order.OrderDate) {
		return CommissionRecord{}, comp.SkipOutsidePeriod
	}

	if e.excluded(order.Category) {
		return CommissionRecord{}, comp.SkipExcludedProduct
	}

	customer, ok := customers[order.Customer]
	if !ok {
		return CommissionRecord{}, comp.SkipMissingCustomer
	}

	base := order.Revenue
	if e.snap.Rules.UseOrderValue {
		base = order.OrderValue
	}

	resolved, err := e.resolver.Resolve(ResolveInput{
		Title:          titles[order.Rep],
		Segment:        customer.Segment,
		TransferStatus: customer.TransferStatus,
		LastOrderDate:  customer.LastOrderDate,
		TransferDate:   customer.TransferDate,
		AsOf:           order.OrderDate,
	})
	if err != nil {
		return CommissionRecord{}, comp.SkipMissingRate
	}

	winner := resolved.Pick(base)
	commission := winner.Amount(base).Round()

	applied, spiffTotal := ApplySpiffs(e.snap.Spiffs, order.Product, order.OrderDate, base)

	return CommissionRecord{
		Period:        e.snap.Month,
		OrderID:       order.OrderID,
		Rep:           order.Rep,
		Customer:      customer.ID,
		AccountType:   customer.AccountType,
		Segment:       customer.Segment,
		Status:        resolved.Status,
		Base:          base,
		RateKind:      winner.Kind,
		Rate:          winner.Percentage,
		RatePath:      winner.Path,
		Commission:    commission,
		AppliedSpiffs: applied,
		SpiffBonus:    spiffTotal,
		Total:         commission.Add(spiffTotal),
		CalculatedAt:  at,
	}, ""
}

func (e *Engine) excluded(cat ProductCategory) bool {
	switch cat {
	case CategoryShipping:
		return e.snap.Rules.ExcludeShipping
	case CategoryCCProcessing:
		return e.snap.Rules.ExcludeCCProcessing
	}
	return false
}
