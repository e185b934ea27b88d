/*
scorer.go - The bucket scoring algorithm

PURPOSE:
  For one representative, one quarter: resolve the role-scaled max bonus,
  evaluate each active bucket's attainment against the title's budget, and
  compose the weighted quarterly payout.

ALGORITHM (per rep):
  1. maxBonus = MaxBonusPerRep * roleScale(title)
  2. goals come from the title's Budget (counts for activity buckets)
  3. sub-goal buckets: each sub-goal's actual is normalized by its own
     target, then sub-weight-summed; the bucket's goal becomes 1.0 in
     ratio space
  4. per-bucket attainment/payout via comp.CalculateAttainment
  5. totalPayout = sum(weight * payoutFraction) * maxBonus, capped at
     maxBonus

  One CommissionEntry per active bucket, plus the per-rep total.

SUB-GOAL NORMALIZATION:
  A product sub-goal's target is TargetPercent of the bucket's budget goal;
  an activity sub-goal's target is its own Goal count. Normalized sub-goal
  attainment is uncapped raw attainment (the bucket-level cap applies after
  composition), with the zero-goal convention from comp/attainment.go.
*/
package quarterly

import (
	"fmt"
	"time"

	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// INPUT / OUTPUT TYPES
// =============================================================================

// RepActuals carries one representative's raw quarterly figures, as handed
// over by the import pipeline.
type RepActuals struct {
	Rep   comp.RepID
	Title comp.Title

	// BucketActuals holds actual values for plain buckets.
	BucketActuals map[comp.BucketCode]comp.Money

	// SubGoalActuals holds actual values per sub-goal for composed buckets,
	// keyed bucket code -> sub-goal ID.
	SubGoalActuals map[comp.BucketCode]map[string]comp.Money
}

// CommissionEntry is the quarterly output record: one per rep per active
// bucket per quarter. Immutable once finalized except by re-run, which
// replaces it via keyed upsert.
type CommissionEntry struct {
	Rep     comp.RepID
	Quarter comp.Quarter
	Bucket  comp.BucketCode

	Goal          comp.Money
	Actual        comp.Money
	Attainment    comp.Ratio
	WeightedScore comp.Ratio // bucket weight * payout fraction
	Payout        comp.Money

	CalculatedAt time.Time
}

// RepResult is the scored quarter for one representative.
type RepResult struct {
	Rep      comp.RepID
	Title    comp.Title
	MaxBonus comp.Money
	Entries  []CommissionEntry

	// TotalPayout is the weighted sum across buckets, capped at MaxBonus.
	TotalPayout comp.Money
}

// =============================================================================
// SCORER
// =============================================================================

// Scorer evaluates representatives against a validated quarterly Config.
type Scorer struct {
	cfg Config
}

// NewScorer validates the configuration and returns a scorer. Invalid
// weight sums fail here, before any rep is calculated.
func NewScorer(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Config returns the snapshot this scorer was built from.
func (s *Scorer) Config() Config { return s.cfg }

// ScoreRep scores one representative. Missing role scale or budget for the
// rep's title returns a ConfigError; the caller surfaces it per rep and
// continues with the others.
func (s *Scorer) ScoreRep(in RepActuals, at time.Time) (RepResult, error) {
	roleScale, err := s.cfg.RoleScaleFor(in.Title)
	if err != nil {
		return RepResult{}, err
	}
	budget, err := s.cfg.BudgetFor(in.Title)
	if err != nil {
		return RepResult{}, err
	}

	maxBonus := s.cfg.MaxBonusPerRep.MulRatio(roleScale.Percentage)

	result := RepResult{
		Rep:         in.Rep,
		Title:       in.Title,
		MaxBonus:    maxBonus,
		TotalPayout: comp.ZeroMoney(),
	}

	totalFraction := comp.ZeroRatio()
	for _, bucket := range s.cfg.ActiveBuckets() {
		goal, actual := s.bucketPair(bucket, budget, in)

		att := comp.CalculateAttainment(goal, actual, s.cfg.MinAttainment, s.cfg.OverPerfCap)
		weighted := bucket.Weight.Mul(att.PayoutFraction)
		totalFraction = totalFraction.Add(weighted)

		result.Entries = append(result.Entries, CommissionEntry{
			Rep:           in.Rep,
			Quarter:       s.cfg.Quarter,
			Bucket:        bucket.Code,
			Goal:          goal,
			Actual:        actual,
			Attainment:    att.Attainment,
			WeightedScore: weighted,
			Payout:        maxBonus.MulRatio(weighted).Round(),
			CalculatedAt:  at,
		})
	}

	result.TotalPayout = maxBonus.MulRatio(totalFraction).Min(maxBonus).Round()
	return result, nil
}

// bucketPair resolves the goal/actual pair for one bucket. Plain buckets
// read the budget goal and the raw actual; sub-goal buckets compose the
// actual from normalized sub-goal attainments against a goal of 1.0.
func (s *Scorer) bucketPair(bucket Bucket, budget Budget, in RepActuals) (goal, actual comp.Money) {
	if !bucket.HasSubGoals {
		return budget.BucketGoals[bucket.Code], in.BucketActuals[bucket.Code]
	}

	bucketGoal := budget.BucketGoals[bucket.Code]
	composed := comp.ZeroRatio()
	for _, sg := range bucket.SubGoals {
		if !sg.Active {
			continue
		}
		target := sg.Goal
		if sg.Kind == SubGoalProduct {
			target = bucketGoal.MulRatio(sg.TargetPercent)
		}
		subActual := in.SubGoalActuals[bucket.Code][sg.ID]

		// Uncapped raw attainment; the cap applies at the bucket level.
		subAtt := comp.CalculateAttainment(target, subActual, comp.ZeroRatio(), s.cfg.OverPerfCap)
		composed = composed.Add(sg.SubWeight.Mul(subAtt.Attainment))
	}

	return comp.NewMoney(1), comp.Money{Value: composed.Value}
}

// Key identifies a CommissionEntry for idempotent upserts.
func (e CommissionEntry) Key() string {
	return fmt.Sprintf("%s|%s|%s", e.Rep, e.Quarter, e.Bucket)
}
