/*
Package factory provides JSON to Go configuration conversion.

PURPOSE:
  Converts JSON configuration documents into quarterly.Config and
  monthly.Snapshot values. This enables compensation plan changes without
  code changes - sales ops can define a quarter's plan in JSON, and the
  factory creates the proper Go structs with defaults filled centrally.

WHY JSON?
  - Non-developers can modify the plan
  - Easy integration with an admin UI
  - Version control for plan definitions
  - Database storage of plan configs

QUARTERLY SCHEMA:
  {
    "quarter": "2025-Q1",
    "max_bonus_per_rep": 10000,
    "over_perf_cap": 1.25,
    "min_attainment": 0.75,
    "buckets": [
      {"code": "A", "name": "New Business", "weight": 0.4},
      {"code": "B", "name": "Product Mix", "weight": 0.3,
       "sub_goals": [
         {"id": "b-core", "kind": "product", "target_percent": 0.6, "sub_weight": 0.5},
         {"id": "b-demos", "kind": "activity", "goal": 40, "sub_weight": 0.5}
       ]}
    ],
    "role_scales": [{"title": "Account Executive", "percentage": 1.0}],
    "budgets": [{"title": "Account Executive", "bucket_goals": {"A": 50000}}]
  }

MONTHLY SCHEMA:
  {
    "month": "2025-03",
    "rates": [{"title": "Account Executive", "segment": "wholesale",
               "status": "new_business", "percentage": 0.12}],
    "special_rules": {
      "rep_transfer": {"enabled": true, "percent_fallback": 0.02,
                       "segment_rates": {"wholesale": 0.03}},
      "inactivity_threshold": 12
    },
    "commission_rules": {"exclude_shipping": true, "apply_reorg_rule": true,
                         "reorg_date": "2025-01-01"},
    "spiffs": [{"product": "SKU-100", "name": "Q1 Push",
                "incentive_type": "flat", "incentive_value": 25,
                "start_date": "2025-01-01", "end_date": "2025-03-31"}]
  }

  All rates and weights are fractions (0.08 = 8%). Dates are YYYY-MM-DD.
  "active" defaults to true when omitted.

SEE ALSO:
  - quarterly/config.go, monthly/config.go: The typed configurations
  - api/handlers.go: The config get/put endpoints using this package
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
)

const dateLayout = "2006-01-02"

// Defaults applied when the document omits the thresholds.
var (
	DefaultOverPerfCap   = comp.NewRatio(1.25)
	DefaultMinAttainment = comp.NewRatio(0.75)
)

// =============================================================================
// QUARTERLY JSON SCHEMA
// =============================================================================

// QuarterlyConfigJSON is the JSON representation of a quarterly config.
type QuarterlyConfigJSON struct {
	Quarter        string           `json:"quarter"`
	MaxBonusPerRep comp.Money       `json:"max_bonus_per_rep"`
	OverPerfCap    *comp.Ratio      `json:"over_perf_cap,omitempty"`
	MinAttainment  *comp.Ratio      `json:"min_attainment,omitempty"`
	Buckets        []BucketJSON     `json:"buckets"`
	RoleScales     []RoleScaleJSON  `json:"role_scales"`
	Budgets        []BudgetJSON     `json:"budgets"`
}

// BucketJSON is one weighted bucket. Sub-goal composition is implied by a
// non-empty sub_goals list.
type BucketJSON struct {
	Code     string        `json:"code"`
	Name     string        `json:"name"`
	Weight   comp.Ratio    `json:"weight"`
	Active   *bool         `json:"active,omitempty"`
	SubGoals []SubGoalJSON `json:"sub_goals,omitempty"`
}

// SubGoalJSON is one sub-goal: kind "product" (target_percent of the
// bucket goal) or "activity" (absolute goal count).
type SubGoalJSON struct {
	ID            string     `json:"id"`
	Name          string     `json:"name,omitempty"`
	Kind          string     `json:"kind"`
	TargetPercent comp.Ratio `json:"target_percent,omitempty"`
	Goal          comp.Money `json:"goal,omitempty"`
	SubWeight     comp.Ratio `json:"sub_weight"`
	Active        *bool      `json:"active,omitempty"`
}

type RoleScaleJSON struct {
	Title      string     `json:"title"`
	Percentage comp.Ratio `json:"percentage"`
}

type BudgetJSON struct {
	Title       string                `json:"title"`
	BucketGoals map[string]comp.Money `json:"bucket_goals"`
}

// =============================================================================
// MONTHLY JSON SCHEMA
// =============================================================================

// MonthlyConfigJSON is the JSON representation of a monthly snapshot.
type MonthlyConfigJSON struct {
	Month           string               `json:"month"`
	Rates           []RateJSON           `json:"rates"`
	SpecialRules    *SpecialRulesJSON    `json:"special_rules,omitempty"`
	CommissionRules *CommissionRulesJSON `json:"commission_rules,omitempty"`
	Spiffs          []SpiffJSON          `json:"spiffs,omitempty"`
}

type RateJSON struct {
	Title      string     `json:"title"`
	Segment    string     `json:"segment"`
	Status     string     `json:"status"`
	Percentage comp.Ratio `json:"percentage"`
	Active     *bool      `json:"active,omitempty"`
}

type SpecialRulesJSON struct {
	RepTransfer         *RepTransferJSON `json:"rep_transfer,omitempty"`
	InactivityThreshold int              `json:"inactivity_threshold,omitempty"`
}

type RepTransferJSON struct {
	Enabled         bool                  `json:"enabled"`
	FlatFee         comp.Money            `json:"flat_fee,omitempty"`
	PercentFallback comp.Ratio            `json:"percent_fallback,omitempty"`
	UseGreater      bool                  `json:"use_greater,omitempty"`
	SegmentRates    map[string]comp.Ratio `json:"segment_rates,omitempty"`
}

type CommissionRulesJSON struct {
	ExcludeShipping     bool   `json:"exclude_shipping,omitempty"`
	ExcludeCCProcessing bool   `json:"exclude_cc_processing,omitempty"`
	UseOrderValue       bool   `json:"use_order_value,omitempty"`
	ApplyReorgRule      bool   `json:"apply_reorg_rule,omitempty"`
	ReorgDate           string `json:"reorg_date,omitempty"`
}

type SpiffJSON struct {
	Product        string          `json:"product"`
	Name           string          `json:"name"`
	IncentiveType  string          `json:"incentive_type"`
	IncentiveValue decimal.Decimal `json:"incentive_value"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date,omitempty"`
	Active         *bool           `json:"active,omitempty"`
}

// =============================================================================
// QUARTERLY PARSING
// =============================================================================

// ParseQuarterlyConfig parses and validates a quarterly config document.
func ParseQuarterlyConfig(data []byte) (quarterly.Config, error) {
	var doc QuarterlyConfigJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return quarterly.Config{}, fmt.Errorf("failed to parse quarterly config JSON: %w", err)
	}
	return QuarterlyFromJSON(doc)
}

// QuarterlyFromJSON converts the document to a validated quarterly.Config.
func QuarterlyFromJSON(doc QuarterlyConfigJSON) (quarterly.Config, error) {
	quarter, err := comp.ParseQuarter(doc.Quarter)
	if err != nil {
		return quarterly.Config{}, err
	}

	cfg := quarterly.Config{
		Quarter:        quarter,
		MaxBonusPerRep: doc.MaxBonusPerRep,
		OverPerfCap:    DefaultOverPerfCap,
		MinAttainment:  DefaultMinAttainment,
	}
	if doc.OverPerfCap != nil {
		cfg.OverPerfCap = *doc.OverPerfCap
	}
	if doc.MinAttainment != nil {
		cfg.MinAttainment = *doc.MinAttainment
	}

	for _, bj := range doc.Buckets {
		bucket := quarterly.Bucket{
			Code:        comp.BucketCode(bj.Code),
			Name:        bj.Name,
			Weight:      bj.Weight,
			Active:      activeDefault(bj.Active),
			HasSubGoals: len(bj.SubGoals) > 0,
		}
		for _, sj := range bj.SubGoals {
			kind, err := parseSubGoalKind(sj.Kind)
			if err != nil {
				return quarterly.Config{}, fmt.Errorf("bucket %s: %w", bj.Code, err)
			}
			bucket.SubGoals = append(bucket.SubGoals, quarterly.SubGoal{
				ID:            sj.ID,
				Name:          sj.Name,
				Kind:          kind,
				TargetPercent: sj.TargetPercent,
				Goal:          sj.Goal,
				SubWeight:     sj.SubWeight,
				Active:        activeDefault(sj.Active),
			})
		}
		cfg.Buckets = append(cfg.Buckets, bucket)
	}

	for _, rj := range doc.RoleScales {
		cfg.RoleScales = append(cfg.RoleScales, quarterly.RoleScale{
			Title:      comp.Title(rj.Title),
			Percentage: rj.Percentage,
		})
	}

	for _, bj := range doc.Budgets {
		budget := quarterly.Budget{
			Title:       comp.Title(bj.Title),
			BucketGoals: make(map[comp.BucketCode]comp.Money, len(bj.BucketGoals)),
		}
		for code, goal := range bj.BucketGoals {
			budget.BucketGoals[comp.BucketCode(code)] = goal
		}
		cfg.Budgets = append(cfg.Budgets, budget)
	}

	if err := cfg.Validate(); err != nil {
		return quarterly.Config{}, err
	}
	return cfg, nil
}

// QuarterlyToJSON converts a config back to its document form.
func QuarterlyToJSON(cfg quarterly.Config) QuarterlyConfigJSON {
	doc := QuarterlyConfigJSON{
		Quarter:        cfg.Quarter.String(),
		MaxBonusPerRep: cfg.MaxBonusPerRep,
		OverPerfCap:    &cfg.OverPerfCap,
		MinAttainment:  &cfg.MinAttainment,
	}

	for _, b := range cfg.Buckets {
		active := b.Active
		bj := BucketJSON{
			Code:   string(b.Code),
			Name:   b.Name,
			Weight: b.Weight,
			Active: &active,
		}
		for _, sg := range b.SubGoals {
			sgActive := sg.Active
			bj.SubGoals = append(bj.SubGoals, SubGoalJSON{
				ID:            sg.ID,
				Name:          sg.Name,
				Kind:          string(sg.Kind),
				TargetPercent: sg.TargetPercent,
				Goal:          sg.Goal,
				SubWeight:     sg.SubWeight,
				Active:        &sgActive,
			})
		}
		doc.Buckets = append(doc.Buckets, bj)
	}

	for _, rs := range cfg.RoleScales {
		doc.RoleScales = append(doc.RoleScales, RoleScaleJSON{
			Title:      string(rs.Title),
			Percentage: rs.Percentage,
		})
	}

	for _, b := range cfg.Budgets {
		bj := BudgetJSON{Title: string(b.Title), BucketGoals: make(map[string]comp.Money, len(b.BucketGoals))}
		for code, goal := range b.BucketGoals {
			bj.BucketGoals[string(code)] = goal
		}
		doc.Budgets = append(doc.Budgets, bj)
	}

	return doc
}

// =============================================================================
// MONTHLY PARSING
// =============================================================================

// ParseMonthlySnapshot parses a monthly config document.
func ParseMonthlySnapshot(data []byte) (monthly.Snapshot, error) {
	var doc MonthlyConfigJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return monthly.Snapshot{}, fmt.Errorf("failed to parse monthly config JSON: %w", err)
	}
	return MonthlyFromJSON(doc)
}

// MonthlyFromJSON converts the document to a monthly.Snapshot.
func MonthlyFromJSON(doc MonthlyConfigJSON) (monthly.Snapshot, error) {
	month, err := comp.ParseMonth(doc.Month)
	if err != nil {
		return monthly.Snapshot{}, err
	}

	snap := monthly.Snapshot{Month: month}

	for _, rj := range doc.Rates {
		status, err := parseCustomerStatus(rj.Status)
		if err != nil {
			return monthly.Snapshot{}, err
		}
		snap.Rates.Rates = append(snap.Rates.Rates, monthly.Rate{
			Title:      comp.Title(rj.Title),
			SegmentID:  comp.SegmentID(rj.Segment),
			Status:     status,
			Percentage: rj.Percentage,
			Active:     activeDefault(rj.Active),
		})
	}

	if doc.SpecialRules != nil {
		snap.Special.InactivityThreshold = doc.SpecialRules.InactivityThreshold
		if rt := doc.SpecialRules.RepTransfer; rt != nil {
			snap.Special.RepTransfer = monthly.RepTransferRules{
				Enabled:         rt.Enabled,
				FlatFee:         rt.FlatFee,
				PercentFallback: rt.PercentFallback,
				UseGreater:      rt.UseGreater,
			}
			if len(rt.SegmentRates) > 0 {
				snap.Special.RepTransfer.SegmentRates = make(map[comp.SegmentID]comp.Ratio, len(rt.SegmentRates))
				for seg, pct := range rt.SegmentRates {
					snap.Special.RepTransfer.SegmentRates[comp.SegmentID(seg)] = pct
				}
			}
		}
	}

	if doc.CommissionRules != nil {
		snap.Rules = monthly.CommissionRules{
			ExcludeShipping:     doc.CommissionRules.ExcludeShipping,
			ExcludeCCProcessing: doc.CommissionRules.ExcludeCCProcessing,
			UseOrderValue:       doc.CommissionRules.UseOrderValue,
			ApplyReorgRule:      doc.CommissionRules.ApplyReorgRule,
		}
		if doc.CommissionRules.ReorgDate != "" {
			reorg, err := time.Parse(dateLayout, doc.CommissionRules.ReorgDate)
			if err != nil {
				return monthly.Snapshot{}, fmt.Errorf("invalid reorg_date: %w", err)
			}
			snap.Rules.ReorgDate = reorg
		}
	}

	for _, sj := range doc.Spiffs {
		spiff, err := spiffFromJSON(sj)
		if err != nil {
			return monthly.Snapshot{}, err
		}
		snap.Spiffs = append(snap.Spiffs, spiff)
	}

	return snap, nil
}

// MonthlyToJSON converts a snapshot back to its document form.
func MonthlyToJSON(snap monthly.Snapshot) MonthlyConfigJSON {
	doc := MonthlyConfigJSON{Month: snap.Month.String()}

	for _, r := range snap.Rates.Rates {
		active := r.Active
		doc.Rates = append(doc.Rates, RateJSON{
			Title:      string(r.Title),
			Segment:    string(r.SegmentID),
			Status:     string(r.Status),
			Percentage: r.Percentage,
			Active:     &active,
		})
	}

	special := &SpecialRulesJSON{InactivityThreshold: snap.Special.InactivityThreshold}
	rt := snap.Special.RepTransfer
	rtj := &RepTransferJSON{
		Enabled:         rt.Enabled,
		FlatFee:         rt.FlatFee,
		PercentFallback: rt.PercentFallback,
		UseGreater:      rt.UseGreater,
	}
	if len(rt.SegmentRates) > 0 {
		rtj.SegmentRates = make(map[string]comp.Ratio, len(rt.SegmentRates))
		for seg, pct := range rt.SegmentRates {
			rtj.SegmentRates[string(seg)] = pct
		}
	}
	special.RepTransfer = rtj
	doc.SpecialRules = special

	rules := &CommissionRulesJSON{
		ExcludeShipping:     snap.Rules.ExcludeShipping,
		ExcludeCCProcessing: snap.Rules.ExcludeCCProcessing,
		UseOrderValue:       snap.Rules.UseOrderValue,
		ApplyReorgRule:      snap.Rules.ApplyReorgRule,
	}
	if !snap.Rules.ReorgDate.IsZero() {
		rules.ReorgDate = snap.Rules.ReorgDate.Format(dateLayout)
	}
	doc.CommissionRules = rules

	for _, s := range snap.Spiffs {
		active := s.IsActive
		sj := SpiffJSON{
			Product:        string(s.Product),
			Name:           s.Name,
			IncentiveType:  string(s.IncentiveType),
			IncentiveValue: s.IncentiveValue,
			StartDate:      s.StartDate.Format(dateLayout),
			Active:         &active,
		}
		if !s.EndDate.IsZero() {
			sj.EndDate = s.EndDate.Format(dateLayout)
		}
		doc.Spiffs = append(doc.Spiffs, sj)
	}

	return doc
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func activeDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}

func parseSubGoalKind(s string) (quarterly.SubGoalKind, error) {
	switch s {
	case string(quarterly.SubGoalProduct):
		return quarterly.SubGoalProduct, nil
	case string(quarterly.SubGoalActivity):
		return quarterly.SubGoalActivity, nil
	default:
		return "", fmt.Errorf("unknown sub-goal kind %q", s)
	}
}

func parseCustomerStatus(s string) (comp.CustomerStatus, error) {
	switch s {
	case string(comp.StatusNewBusiness):
		return comp.StatusNewBusiness, nil
	case string(comp.Status6MonthActive):
		return comp.Status6MonthActive, nil
	case string(comp.Status12MonthActive):
		return comp.Status12MonthActive, nil
	default:
		return "", fmt.Errorf("unknown customer status %q", s)
	}
}

func spiffFromJSON(sj SpiffJSON) (monthly.Spiff, error) {
	var typ monthly.SpiffType
	switch sj.IncentiveType {
	case string(monthly.SpiffFlat):
		typ = monthly.SpiffFlat
	case string(monthly.SpiffPercentage):
		typ = monthly.SpiffPercentage
	default:
		return monthly.Spiff{}, fmt.Errorf("unknown spiff incentive type %q", sj.IncentiveType)
	}

	start, err := time.Parse(dateLayout, sj.StartDate)
	if err != nil {
		return monthly.Spiff{}, fmt.Errorf("spiff %q: invalid start_date: %w", sj.Name, err)
	}

	spiff := monthly.Spiff{
		Product:        comp.ProductCode(sj.Product),
		Name:           sj.Name,
		IncentiveType:  typ,
		IncentiveValue: sj.IncentiveValue,
		StartDate:      start,
		IsActive:       activeDefault(sj.Active),
	}
	if sj.EndDate != "" {
		end, err := time.Parse(dateLayout, sj.EndDate)
		if err != nil {
			return monthly.Spiff{}, fmt.Errorf("spiff %q: invalid end_date: %w", sj.Name, err)
		}
		spiff.EndDate = end
	}
	return spiff, nil
}
