/*
attainment.go - Attainment and payout-fraction calculation

PURPOSE:
  Converts a goal/actual pair plus policy thresholds into an attainment
  ratio and a capped payout fraction. This is the single piece of math
  shared by every quarterly bucket: currency buckets, count buckets, and
  sub-goal-composed ratio buckets all flow through here.

ALGORITHM:
  1. attainment = actual / goal (see ZERO GOAL below)
  2. effective  = clamp(attainment, 0, overPerfCap)
  3. qualifies  = attainment >= minAttainment
  4. payoutFraction = qualifies ? effective : 0

ZERO GOAL:
  A goal of zero (or negative, from a blank budget cell) cannot divide.
  The policy:
    - goal <= 0 and actual <= 0: attainment 0, does not qualify
    - goal <= 0 and actual  > 0: attainment = overPerfCap, qualifies
  Progress against an undefined goal is treated as fully capped
  over-performance rather than raising an error mid-run. The test suite
  pins both branches down.

EXAMPLE:
  goal=100, actual=130, min=0.75, cap=1.25
    attainment=1.30, qualifies=true, payoutFraction=1.25 (capped)
  goal=100, actual=50, min=0.75
    attainment=0.50, qualifies=false, payoutFraction=0
*/
package comp

// Attainment is the result of a goal/actual evaluation.
type Attainment struct {
	// Attainment is the raw actual/goal ratio, clamped to >= 0 but NOT
	// capped. Reports show the real number even when payout is capped.
	Attainment Ratio

	// Qualifies is true when attainment reached the minimum threshold.
	Qualifies bool

	// PayoutFraction is the fraction of the bucket's weighted bonus that
	// pays out: the capped attainment when qualified, zero otherwise.
	// Always within [0, overPerfCap].
	PayoutFraction Ratio
}

// CalculateAttainment evaluates an actual value against a goal under the
// given thresholds. Pure function: no side effects, no error returns; every
// finite input produces a well-defined result.
func CalculateAttainment(goal, actual Money, minAttainment, overPerfCap Ratio) Attainment {
	attainment := rawAttainment(goal, actual, overPerfCap)

	effective := attainment.Clamp(ZeroRatio(), overPerfCap)
	qualifies := attainment.GreaterThanOrEqual(minAttainment)

	payout := ZeroRatio()
	if qualifies {
		payout = effective
	}

	return Attainment{
		Attainment:     attainment,
		Qualifies:      qualifies,
		PayoutFraction: payout,
	}
}

func rawAttainment(goal, actual Money, overPerfCap Ratio) Ratio {
	if !goal.IsPositive() {
		if actual.IsPositive() {
			return overPerfCap
		}
		return ZeroRatio()
	}
	if actual.IsNegative() {
		return ZeroRatio()
	}
	return actual.DivMoney(goal)
}
