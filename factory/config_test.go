package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/commission-engine/comp"
	"github.com/warp/commission-engine/factory"
	"github.com/warp/commission-engine/monthly"
	"github.com/warp/commission-engine/quarterly"
)

const quarterlyDoc = `{
	"quarter": "2025-Q1",
	"max_bonus_per_rep": 10000,
	"buckets": [
		{"code": "A", "name": "New Business", "weight": 0.5},
		{"code": "B", "name": "Product Mix", "weight": 0.3,
		 "sub_goals": [
			{"id": "b-core", "kind": "product", "target_percent": 1.0, "sub_weight": 0.5},
			{"id": "b-demos", "kind": "activity", "goal": 40, "sub_weight": 0.5}
		 ]},
		{"code": "C", "name": "Retention", "weight": 0.2},
		{"code": "D", "name": "Legacy", "weight": 0.9, "active": false}
	],
	"role_scales": [{"title": "Account Executive", "percentage": 1.0}],
	"budgets": [{"title": "Account Executive", "bucket_goals": {"A": 50000, "B": 30000, "C": 20000}}]
}`

func TestParseQuarterlyConfig(t *testing.T) {
	cfg, err := factory.ParseQuarterlyConfig([]byte(quarterlyDoc))
	require.NoError(t, err)

	assert.Equal(t, "2025-Q1", cfg.Quarter.String())
	assert.True(t, cfg.MaxBonusPerRep.Equal(comp.NewMoney(10000)))

	// Omitted thresholds get the central defaults.
	assert.True(t, cfg.OverPerfCap.Equal(factory.DefaultOverPerfCap))
	assert.True(t, cfg.MinAttainment.Equal(factory.DefaultMinAttainment))

	require.Len(t, cfg.Buckets, 4)
	assert.True(t, cfg.Buckets[0].Active, "active defaults to true")
	assert.False(t, cfg.Buckets[3].Active)
	assert.True(t, cfg.Buckets[1].HasSubGoals)
	require.Len(t, cfg.Buckets[1].SubGoals, 2)
	assert.Equal(t, quarterly.SubGoalProduct, cfg.Buckets[1].SubGoals[0].Kind)
	assert.Equal(t, quarterly.SubGoalActivity, cfg.Buckets[1].SubGoals[1].Kind)
	assert.True(t, cfg.Buckets[1].SubGoals[1].Goal.Equal(comp.NewMoney(40)))

	require.Len(t, cfg.Budgets, 1)
	assert.True(t, cfg.Budgets[0].BucketGoals["A"].Equal(comp.NewMoney(50000)))
}

func TestParseQuarterlyConfig_InvalidWeights(t *testing.T) {
	doc := `{
		"quarter": "2025-Q1",
		"max_bonus_per_rep": 10000,
		"buckets": [
			{"code": "A", "weight": 0.5},
			{"code": "B", "weight": 0.3}
		],
		"role_scales": [],
		"budgets": []
	}`

	_, err := factory.ParseQuarterlyConfig([]byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, comp.ErrInvalidWeights)
}

func TestParseQuarterlyConfig_UnknownSubGoalKind(t *testing.T) {
	doc := `{
		"quarter": "2025-Q1",
		"max_bonus_per_rep": 10000,
		"buckets": [
			{"code": "A", "weight": 1.0,
			 "sub_goals": [{"id": "x", "kind": "mystery", "sub_weight": 1.0}]}
		],
		"role_scales": [],
		"budgets": []
	}`

	_, err := factory.ParseQuarterlyConfig([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")
}

func TestQuarterlyConfig_JSONRoundTrip(t *testing.T) {
	cfg, err := factory.ParseQuarterlyConfig([]byte(quarterlyDoc))
	require.NoError(t, err)

	back, err := factory.QuarterlyFromJSON(factory.QuarterlyToJSON(cfg))
	require.NoError(t, err)
	assert.Equal(t, cfg.Quarter, back.Quarter)
	assert.Len(t, back.Buckets, len(cfg.Buckets))
	assert.True(t, back.Buckets[1].SubGoals[0].SubWeight.Equal(cfg.Buckets[1].SubGoals[0].SubWeight))
}

const monthlyDoc = `{
	"month": "2025-03",
	"rates": [
		{"title": "Account Executive", "segment": "wholesale", "status": "new_business", "percentage": 0.12},
		{"title": "Account Executive", "segment": "wholesale", "status": "6_month_active", "percentage": 0.09, "active": false}
	],
	"special_rules": {
		"rep_transfer": {
			"enabled": true,
			"flat_fee": 50,
			"percent_fallback": 0.02,
			"use_greater": true,
			"segment_rates": {"wholesale": 0.03}
		},
		"inactivity_threshold": 18
	},
	"commission_rules": {
		"exclude_shipping": true,
		"apply_reorg_rule": true,
		"reorg_date": "2025-01-01"
	},
	"spiffs": [
		{"product": "SKU-100", "name": "Q1 Push", "incentive_type": "flat",
		 "incentive_value": 25, "start_date": "2025-01-01", "end_date": "2025-03-31"}
	]
}`

func TestParseMonthlySnapshot(t *testing.T) {
	snap, err := factory.ParseMonthlySnapshot([]byte(monthlyDoc))
	require.NoError(t, err)

	assert.Equal(t, "2025-03", snap.Month.String())
	require.Len(t, snap.Rates.Rates, 2)
	assert.True(t, snap.Rates.Rates[0].Active)
	assert.False(t, snap.Rates.Rates[1].Active)

	assert.True(t, snap.Special.RepTransfer.Enabled)
	assert.True(t, snap.Special.RepTransfer.FlatFee.Equal(comp.NewMoney(50)))
	assert.True(t, snap.Special.RepTransfer.UseGreater)
	assert.Equal(t, 18, snap.Special.Threshold())

	assert.True(t, snap.Rules.ExcludeShipping)
	assert.True(t, snap.Rules.ApplyReorgRule)
	assert.True(t, snap.Rules.ReorgDate.Equal(time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)))

	require.Len(t, snap.Spiffs, 1)
	spiff := snap.Spiffs[0]
	assert.Equal(t, monthly.SpiffFlat, spiff.IncentiveType)
	assert.True(t, spiff.IsActive)
	assert.True(t, spiff.AppliesTo("SKU-100", time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, spiff.AppliesTo("SKU-100", time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)))
}

func TestParseMonthlySnapshot_UnknownStatus(t *testing.T) {
	doc := `{
		"month": "2025-03",
		"rates": [{"title": "AE", "segment": "wholesale", "status": "vip", "percentage": 0.2}]
	}`

	_, err := factory.ParseMonthlySnapshot([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vip")
}

func TestMonthlySnapshot_JSONRoundTrip(t *testing.T) {
	snap, err := factory.ParseMonthlySnapshot([]byte(monthlyDoc))
	require.NoError(t, err)

	back, err := factory.MonthlyFromJSON(factory.MonthlyToJSON(snap))
	require.NoError(t, err)
	assert.Equal(t, snap.Month, back.Month)
	assert.Len(t, back.Rates.Rates, 2)
	assert.Equal(t, 18, back.Special.InactivityThreshold)
	require.Len(t, back.Spiffs, 1)
	assert.True(t, back.Spiffs[0].EndDate.Equal(snap.Spiffs[0].EndDate))
}
