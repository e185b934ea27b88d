/*
Package quarterly implements the weighted-bucket quarterly bonus track.

PURPOSE:
  Computes each sales representative's quarterly bonus from goal/actual
  attainment across weighted buckets. A bucket is one category of quarterly
  performance (new business, product mix, retention, activity); buckets may
  be composed of finer-grained sub-goals (per product or per activity type).

KEY CONCEPTS:
  - Config: The full quarterly configuration snapshot (buckets, role
    scales, budgets, thresholds). Immutable for the duration of a run.
  - Bucket: A weighted category. Active bucket weights must sum to 1.0.
  - SubGoal: Product or activity component of a bucket; sub-weights and
    product target percentages carry the same 1.0 sum invariant.
  - RoleScale: Scales the per-rep max bonus by title.
  - Budget: Per-title per-bucket goal values (currency, or a count for
    activity buckets - the ratio math is identical).
  - Scorer: Turns a rep's actuals into CommissionEntry records.

CONFIGURATION IS VALIDATED UP FRONT:
  A quarter must never be calculated against inconsistent configuration.
  NewScorer refuses invalid weight sums with a ConfigError rather than
  silently zeroing anything.

SEE ALSO:
  - scorer.go: The bucket scoring algorithm
  - comp/attainment.go: The shared attainment/payout math
*/
package quarterly

import (
	"fmt"

	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// CONFIG - Quarterly configuration snapshot
// =============================================================================

// Config is the configuration for one quarter. Loaded once per run from the
// store; the run never observes mid-run edits.
type Config struct {
	Quarter comp.Quarter

	// MaxBonusPerRep is the 100%-attainment bonus before role scaling.
	MaxBonusPerRep comp.Money

	// OverPerfCap bounds payout-relevant attainment (e.g. 1.25).
	OverPerfCap comp.Ratio

	// MinAttainment is the qualification threshold (e.g. 0.75).
	MinAttainment comp.Ratio

	Buckets    []Bucket
	RoleScales []RoleScale
	Budgets    []Budget
}

// Bucket is one weighted quarterly goal category.
type Bucket struct {
	Code        comp.BucketCode
	Name        string
	Weight      comp.Ratio
	HasSubGoals bool
	Active      bool
	SubGoals    []SubGoal
}

// SubGoalKind distinguishes the two sub-goal variants.
type SubGoalKind string

const (
	// SubGoalProduct targets a share of the bucket's budget goal
	// (TargetPercent of the bucket goal).
	SubGoalProduct SubGoalKind = "product"

	// SubGoalActivity targets an absolute count (Goal).
	SubGoalActivity SubGoalKind = "activity"
)

// SubGoal is a finer-grained goal whose weighted attainment composes its
// bucket's actual value.
type SubGoal struct {
	ID   string
	Name string
	Kind SubGoalKind

	// TargetPercent applies to product sub-goals: the share of the
	// bucket's budget goal this product should contribute.
	TargetPercent comp.Ratio

	// Goal applies to activity sub-goals: an absolute target count.
	Goal comp.Money

	SubWeight comp.Ratio
	Active    bool
}

// RoleScale scales MaxBonusPerRep for a title.
type RoleScale struct {
	Title      comp.Title
	Percentage comp.Ratio // 0-1 share of MaxBonusPerRep
}

// Budget holds the per-bucket goal values for one title. These are the
// attainment denominators. Activity buckets store counts; the math does
// not care.
type Budget struct {
	Title       comp.Title
	BucketGoals map[comp.BucketCode]comp.Money
}

// =============================================================================
// LOOKUPS
// =============================================================================

// ActiveBuckets returns the buckets participating in this quarter.
func (c *Config) ActiveBuckets() []Bucket {
	var out []Bucket
	for _, b := range c.Buckets {
		if b.Active {
			out = append(out, b)
		}
	}
	return out
}

// RoleScaleFor resolves the role scale for a title. A missing role scale is
// a configuration error, not a silent default: the affected rep's quarter
// must fail loudly.
func (c *Config) RoleScaleFor(title comp.Title) (RoleScale, error) {
	for _, rs := range c.RoleScales {
		if rs.Title == title {
			return rs, nil
		}
	}
	return RoleScale{}, comp.NewConfigError(
		fmt.Sprintf("title %q", title), comp.ErrRoleScaleMissing, "")
}

// BudgetFor resolves the budget record for a title.
func (c *Config) BudgetFor(title comp.Title) (Budget, error) {
	for _, b := range c.Budgets {
		if b.Title == title {
			return b, nil
		}
	}
	return Budget{}, comp.NewConfigError(
		fmt.Sprintf("title %q", title), comp.ErrBudgetMissing, "")
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the weight-sum invariants:
//   - active bucket weights sum to 1.0 +/- 0.001
//   - active sub-goal sub-weights sum to 1.0 within each sub-goal bucket
//   - active product sub-goal target percentages sum to 1.0
//
// Violations are ConfigErrors; the caller must not calculate against them.
func (c *Config) Validate() error {
	active := c.ActiveBuckets()
	if len(active) == 0 {
		return comp.NewConfigError("buckets", comp.ErrInvalidWeights, "no active buckets")
	}

	var weights []comp.Ratio
	for _, b := range active {
		weights = append(weights, b.Weight)
	}
	if !comp.ValidWeights(weights) {
		return comp.NewConfigError("bucket weights", comp.ErrInvalidWeights,
			fmt.Sprintf("sum=%s", comp.WeightSum(weights)))
	}

	for _, b := range active {
		if !b.HasSubGoals {
			continue
		}
		if err := validateSubGoals(b); err != nil {
			return err
		}
	}
	return nil
}

func validateSubGoals(b Bucket) error {
	var subWeights, targetPcts []comp.Ratio
	for _, sg := range b.SubGoals {
		if !sg.Active {
			continue
		}
		subWeights = append(subWeights, sg.SubWeight)
		if sg.Kind == SubGoalProduct {
			targetPcts = append(targetPcts, sg.TargetPercent)
		}
	}

	if len(subWeights) == 0 {
		return comp.NewConfigError(
			fmt.Sprintf("bucket %s sub-goals", b.Code),
			comp.ErrInvalidWeights, "bucket has sub-goals enabled but none active")
	}
	if !comp.ValidWeights(subWeights) {
		return comp.NewConfigError(
			fmt.Sprintf("bucket %s sub-goal weights", b.Code),
			comp.ErrInvalidWeights,
			fmt.Sprintf("sum=%s", comp.WeightSum(subWeights)))
	}
	if len(targetPcts) > 0 && !comp.ValidWeights(targetPcts) {
		return comp.NewConfigError(
			fmt.Sprintf("bucket %s product target percents", b.Code),
			comp.ErrInvalidWeights,
			fmt.Sprintf("sum=%s", comp.WeightSum(targetPcts)))
	}
	return nil
}
