/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the store with small, self-contained sales organizations so the
  API can be exercised without an import pipeline. Each scenario loads a
  quarterly plan, a monthly rate snapshot, and matching input records,
  ready for a run trigger.

SCENARIOS:
  starter:
    Two reps, plain buckets, standard wholesale rates. The simplest
    end-to-end walkthrough.

  transfers-and-spiffs:
    Transferred accounts, a flat-fee transfer rule, product spiffs, and
    excluded shipping lines. Exercises the special rate paths.

SEE ALSO:
  - handlers.go: The scenario endpoints
*/
package api

import (
	"context"
	"time"

	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
	"github.com/warp/commission-engine/store"

	"github.com/shopspring/decimal"
)

// Scenario is one loadable demo dataset.
type Scenario struct {
	ID          string
	Name        string
	Description string
	Load        func(ctx context.Context, st store.Store) error
}

// Scenarios lists the available demo datasets in display order.
var Scenarios = []Scenario{
	{
		ID:          "starter",
		Name:        "Starter Org",
		Description: "Two reps, plain buckets, standard wholesale rates",
		Load:        loadStarter,
	},
	{
		ID:          "transfers-and-spiffs",
		Name:        "Transfers and Spiffs",
		Description: "Transferred accounts, flat-fee transfer rule, product spiffs, excluded shipping",
		Load:        loadTransfersAndSpiffs,
	},
}

// FindScenario returns the scenario with the given ID, or nil.
func FindScenario(id string) *Scenario {
	for i := range Scenarios {
		if Scenarios[i].ID == id {
			return &Scenarios[i]
		}
	}
	return nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

// =============================================================================
// STARTER
// =============================================================================

func loadStarter(ctx context.Context, st store.Store) error {
	quarter, _ := comp.ParseQuarter("2025-Q1")
	month, _ := comp.ParseMonth("2025-03")

	cfg := quarterly.Config{
		Quarter:        quarter,
		MaxBonusPerRep: comp.NewMoney(10000),
		OverPerfCap:    comp.NewRatio(1.25),
		MinAttainment:  comp.NewRatio(0.75),
		Buckets: []quarterly.Bucket{
			{Code: "A", Name: "New Business", Weight: comp.NewRatio(0.6), Active: true},
			{Code: "B", Name: "Retention", Weight: comp.NewRatio(0.4), Active: true},
		},
		RoleScales: []quarterly.RoleScale{
			{Title: "Account Executive", Percentage: comp.OneRatio()},
			{Title: "Senior Account Executive", Percentage: comp.NewRatio(1.2)},
		},
		Budgets: []quarterly.Budget{
			{Title: "Account Executive", BucketGoals: map[comp.BucketCode]comp.Money{
				"A": comp.NewMoney(50000), "B": comp.NewMoney(30000),
			}},
			{Title: "Senior Account Executive", BucketGoals: map[comp.BucketCode]comp.Money{
				"A": comp.NewMoney(80000), "B": comp.NewMoney(50000),
			}},
		},
	}
	if err := st.SaveQuarterlyConfig(ctx, cfg); err != nil {
		return err
	}

	snap := monthly.Snapshot{
		Month: month,
		Rates: monthly.RateMatrix{Rates: []monthly.Rate{
			{Title: "Account Executive", SegmentID: monthly.SegmentWholesale,
				Status: comp.StatusNewBusiness, Percentage: comp.NewRatio(0.10), Active: true},
			{Title: "Account Executive", SegmentID: monthly.SegmentWholesale,
				Status: comp.Status6MonthActive, Percentage: comp.NewRatio(0.07), Active: true},
			{Title: "Senior Account Executive", SegmentID: monthly.SegmentWholesale,
				Status: comp.Status6MonthActive, Percentage: comp.NewRatio(0.08), Active: true},
		}},
	}
	if err := st.SaveMonthlySnapshot(ctx, snap); err != nil {
		return err
	}

	if err := st.SaveReps(ctx, []store.Rep{
		{ID: "rep-ana", Name: "Ana Torres", Title: "Account Executive", Active: true},
		{ID: "rep-ben", Name: "Ben Okafor", Title: "Senior Account Executive", Active: true},
	}); err != nil {
		return err
	}

	if err := st.SaveCustomers(ctx, []monthly.Customer{
		{ID: "cust-acme", AccountType: "direct", Segment: monthly.SegmentWholesale,
			LastOrderDate: dayPtr(2025, time.January, 20), TransferStatus: comp.TransferAuto},
		{ID: "cust-fresh", AccountType: "direct", Segment: monthly.SegmentWholesale,
			TransferStatus: comp.TransferAuto},
	}); err != nil {
		return err
	}

	if err := st.SaveOrders(ctx, []monthly.OrderRecord{
		{OrderID: "ord-1001", Customer: "cust-acme", Rep: "rep-ana", Product: "SKU-100",
			Category: monthly.CategoryStandard, OrderDate: day(2025, time.March, 5),
			OrderValue: comp.NewMoney(5500), Revenue: comp.NewMoney(5000)},
		{OrderID: "ord-1002", Customer: "cust-fresh", Rep: "rep-ana", Product: "SKU-200",
			Category: monthly.CategoryStandard, OrderDate: day(2025, time.March, 12),
			OrderValue: comp.NewMoney(2200), Revenue: comp.NewMoney(2000)},
		{OrderID: "ord-1003", Customer: "cust-acme", Rep: "rep-ben", Product: "SKU-100",
			Category: monthly.CategoryStandard, OrderDate: day(2025, time.March, 18),
			OrderValue: comp.NewMoney(8800), Revenue: comp.NewMoney(8000)},
	}); err != nil {
		return err
	}

	return st.SaveRepActuals(ctx, quarter, []quarterly.RepActuals{
		{Rep: "rep-ana", Title: "Account Executive", BucketActuals: map[comp.BucketCode]comp.Money{
			"A": comp.NewMoney(52000), "B": comp.NewMoney(24000),
		}},
		{Rep: "rep-ben", Title: "Senior Account Executive", BucketActuals: map[comp.BucketCode]comp.Money{
			"A": comp.NewMoney(90000), "B": comp.NewMoney(41000),
		}},
	})
}

// =============================================================================
// TRANSFERS AND SPIFFS
// =============================================================================

func loadTransfersAndSpiffs(ctx context.Context, st store.Store) error {
	quarter, _ := comp.ParseQuarter("2025-Q1")
	month, _ := comp.ParseMonth("2025-03")

	cfg := quarterly.Config{
		Quarter:        quarter,
		MaxBonusPerRep: comp.NewMoney(15000),
		OverPerfCap:    comp.NewRatio(1.25),
		MinAttainment:  comp.NewRatio(0.75),
		Buckets: []quarterly.Bucket{
			{Code: "A", Name: "New Business", Weight: comp.NewRatio(0.5), Active: true},
			{Code: "B", Name: "Product Mix", Weight: comp.NewRatio(0.3), Active: true,
				HasSubGoals: true, SubGoals: []quarterly.SubGoal{
					{ID: "b-core", Name: "Core line share", Kind: quarterly.SubGoalProduct,
						TargetPercent: comp.OneRatio(), SubWeight: comp.NewRatio(0.5), Active: true},
					{ID: "b-demos", Name: "Demos run", Kind: quarterly.SubGoalActivity,
						Goal: comp.NewMoney(40), SubWeight: comp.NewRatio(0.5), Active: true},
				}},
			{Code: "C", Name: "Retention", Weight: comp.NewRatio(0.2), Active: true},
		},
		RoleScales: []quarterly.RoleScale{
			{Title: "Account Executive", Percentage: comp.OneRatio()},
		},
		Budgets: []quarterly.Budget{
			{Title: "Account Executive", BucketGoals: map[comp.BucketCode]comp.Money{
				"A": comp.NewMoney(60000), "B": comp.NewMoney(40000), "C": comp.NewMoney(25000),
			}},
		},
	}
	if err := st.SaveQuarterlyConfig(ctx, cfg); err != nil {
		return err
	}

	snap := monthly.Snapshot{
		Month: month,
		Rates: monthly.RateMatrix{Rates: []monthly.Rate{
			{Title: "Account Executive", SegmentID: monthly.SegmentWholesale,
				Status: comp.StatusNewBusiness, Percentage: comp.NewRatio(0.12), Active: true},
			{Title: "Account Executive", SegmentID: monthly.SegmentWholesale,
				Status: comp.Status6MonthActive, Percentage: comp.NewRatio(0.09), Active: true},
			{Title: "Account Executive", SegmentID: monthly.SegmentDistributor,
				Status: comp.Status6MonthActive, Percentage: comp.NewRatio(0.05), Active: true},
		}},
		Special: monthly.SpecialRules{
			RepTransfer: monthly.RepTransferRules{
				Enabled:         true,
				FlatFee:         comp.NewMoney(50),
				PercentFallback: comp.NewRatio(0.02),
				SegmentRates: map[comp.SegmentID]comp.Ratio{
					monthly.SegmentWholesale: comp.NewRatio(0.03),
				},
			},
		},
		Rules: monthly.CommissionRules{
			ExcludeShipping: true,
			ApplyReorgRule:  true,
			ReorgDate:       day(2025, time.January, 1),
		},
		Spiffs: []monthly.Spiff{
			{Product: "SKU-100", Name: "Q1 Core Push", IncentiveType: monthly.SpiffFlat,
				IncentiveValue: decimal.NewFromInt(25),
				StartDate:      day(2025, time.January, 1), EndDate: day(2025, time.March, 31),
				IsActive: true},
		},
	}
	if err := st.SaveMonthlySnapshot(ctx, snap); err != nil {
		return err
	}

	if err := st.SaveReps(ctx, []store.Rep{
		{ID: "rep-ana", Name: "Ana Torres", Title: "Account Executive", Active: true},
		{ID: "rep-kim", Name: "Kim Park", Title: "Account Executive", Active: true},
	}); err != nil {
		return err
	}

	if err := st.SaveCustomers(ctx, []monthly.Customer{
		// Reassigned to rep-kim after the reorg; pays the transfer rate.
		{ID: "cust-moved", AccountType: "direct", Segment: monthly.SegmentWholesale,
			LastOrderDate: dayPtr(2025, time.February, 10),
			TransferDate:  dayPtr(2025, time.February, 1),
			TransferStatus: comp.TransferAuto},
		{ID: "cust-loyal", AccountType: "direct", Segment: monthly.SegmentWholesale,
			LastOrderDate: dayPtr(2025, time.February, 20), TransferStatus: comp.TransferOwn},
		{ID: "cust-dist", AccountType: "distributor", Segment: monthly.SegmentDistributor,
			LastOrderDate: dayPtr(2025, time.January, 5), TransferStatus: comp.TransferAuto},
	}); err != nil {
		return err
	}

	if err := st.SaveOrders(ctx, []monthly.OrderRecord{
		{OrderID: "ord-2001", Customer: "cust-moved", Rep: "rep-kim", Product: "SKU-100",
			Category: monthly.CategoryStandard, OrderDate: day(2025, time.March, 4),
			OrderValue: comp.NewMoney(3300), Revenue: comp.NewMoney(3000)},
		{OrderID: "ord-2002", Customer: "cust-loyal", Rep: "rep-ana", Product: "SKU-100",
			Category: monthly.CategoryStandard, OrderDate: day(2025, time.March, 9),
			OrderValue: comp.NewMoney(4400), Revenue: comp.NewMoney(4000)},
		{OrderID: "ord-2002-ship", Customer: "cust-loyal", Rep: "rep-ana", Product: "SHIP",
			Category: monthly.CategoryShipping, OrderDate: day(2025, time.March, 9),
			OrderValue: comp.NewMoney(60), Revenue: comp.NewMoney(60)},
		{OrderID: "ord-2003", Customer: "cust-dist", Rep: "rep-ana", Product: "SKU-300",
			Category: monthly.CategoryStandard, OrderDate: day(2025, time.March, 21),
			OrderValue: comp.NewMoney(6600), Revenue: comp.NewMoney(6000)},
	}); err != nil {
		return err
	}

	return st.SaveRepActuals(ctx, quarter, []quarterly.RepActuals{
		{Rep: "rep-ana", Title: "Account Executive",
			BucketActuals: map[comp.BucketCode]comp.Money{
				"A": comp.NewMoney(58000), "C": comp.NewMoney(26000),
			},
			SubGoalActuals: map[comp.BucketCode]map[string]comp.Money{
				"B": {"b-core": comp.NewMoney(25000), "b-demos": comp.NewMoney(36)},
			}},
		{Rep: "rep-kim", Title: "Account Executive",
			BucketActuals: map[comp.BucketCode]comp.Money{
				"A": comp.NewMoney(44000), "C": comp.NewMoney(20000),
			},
			SubGoalActuals: map[comp.BucketCode]map[string]comp.Money{
				"B": {"b-core": comp.NewMoney(18000), "b-demos": comp.NewMoney(44)},
			}},
	})
}
