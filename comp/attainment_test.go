package comp_test

import (
	"testing"

	"github.com/warp/commission-engine/comp"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func money(v float64) comp.Money { return comp.NewMoney(v) }
func ratio(v float64) comp.Ratio { return comp.NewRatio(v) }

func calc(goal, actual float64) comp.Attainment {
	return comp.CalculateAttainment(money(goal), money(actual), ratio(0.75), ratio(1.25))
}

// =============================================================================
// STANDARD PATH TESTS
// =============================================================================

func TestAttainment_OverPerformance_CappedAtOverPerfCap(t *testing.T) {
	// GIVEN: goal=100, actual=130, min=0.75, cap=1.25
	// WHEN: Calculating attainment
	// THEN: attainment=1.30 (raw), payoutFraction=1.25 (capped), qualifies

	result := calc(100, 130)

	if !result.Attainment.Equal(ratio(1.30)) {
		t.Errorf("expected attainment 1.30, got %v", result.Attainment)
	}
	if !result.Qualifies {
		t.Error("130/100 should qualify at 0.75 threshold")
	}
	if !result.PayoutFraction.Equal(ratio(1.25)) {
		t.Errorf("expected payout fraction capped at 1.25, got %v", result.PayoutFraction)
	}
}

func TestAttainment_BelowThreshold_NoPayout(t *testing.T) {
	// GIVEN: goal=100, actual=50, min=0.75
	// WHEN: Calculating attainment
	// THEN: attainment=0.50, does not qualify, payoutFraction=0

	result := calc(100, 50)

	if !result.Attainment.Equal(ratio(0.50)) {
		t.Errorf("expected attainment 0.50, got %v", result.Attainment)
	}
	if result.Qualifies {
		t.Error("0.50 attainment should not qualify at 0.75 threshold")
	}
	if !result.PayoutFraction.IsZero() {
		t.Errorf("expected zero payout fraction, got %v", result.PayoutFraction)
	}
}

func TestAttainment_ExactlyAtThreshold_Qualifies(t *testing.T) {
	result := calc(100, 75)

	if !result.Qualifies {
		t.Error("attainment exactly at minAttainment should qualify")
	}
	if !result.PayoutFraction.Equal(ratio(0.75)) {
		t.Errorf("expected payout fraction 0.75, got %v", result.PayoutFraction)
	}
}

func TestAttainment_FullAttainment_FullPayout(t *testing.T) {
	result := calc(200, 200)

	if !result.Attainment.Equal(ratio(1)) {
		t.Errorf("expected attainment 1.0, got %v", result.Attainment)
	}
	if !result.PayoutFraction.Equal(ratio(1)) {
		t.Errorf("expected payout fraction 1.0, got %v", result.PayoutFraction)
	}
}

func TestAttainment_MonotoneInActual(t *testing.T) {
	// GIVEN: A fixed positive goal
	// WHEN: Actual increases
	// THEN: Attainment never decreases

	prev := calc(100, 0)
	for actual := 10.0; actual <= 300; actual += 10 {
		cur := calc(100, actual)
		if cur.Attainment.LessThan(prev.Attainment) {
			t.Fatalf("attainment decreased: %v -> %v at actual=%v",
				prev.Attainment, cur.Attainment, actual)
		}
		prev = cur
	}
}

// =============================================================================
// ZERO-GOAL POLICY TESTS
// =============================================================================
// These pin down the documented convention: an undefined goal with actual
// progress is treated as fully capped over-performance; an undefined goal
// with no progress is zero attainment.

func TestAttainment_ZeroGoal_ZeroActual_NoAttainment(t *testing.T) {
	result := calc(0, 0)

	if !result.Attainment.IsZero() {
		t.Errorf("expected 0 attainment for 0/0, got %v", result.Attainment)
	}
	if result.Qualifies {
		t.Error("0/0 should not qualify")
	}
	if !result.PayoutFraction.IsZero() {
		t.Errorf("expected 0 payout fraction for 0/0, got %v", result.PayoutFraction)
	}
}

func TestAttainment_ZeroGoal_PositiveActual_CappedAttainment(t *testing.T) {
	result := calc(0, 500)

	if !result.Attainment.Equal(ratio(1.25)) {
		t.Errorf("expected capped attainment 1.25 for 500/0, got %v", result.Attainment)
	}
	if !result.Qualifies {
		t.Error("positive actual against zero goal should qualify")
	}
	if !result.PayoutFraction.Equal(ratio(1.25)) {
		t.Errorf("expected payout fraction 1.25, got %v", result.PayoutFraction)
	}
}

func TestAttainment_NegativeGoal_TreatedAsZeroGoal(t *testing.T) {
	result := calc(-50, 100)

	if !result.Attainment.Equal(ratio(1.25)) {
		t.Errorf("expected capped attainment for negative goal, got %v", result.Attainment)
	}
}

func TestAttainment_NegativeActual_ClampedToZero(t *testing.T) {
	// Returns and credits can push a rep's actual negative; attainment
	// floors at zero rather than going negative.
	result := calc(100, -40)

	if !result.Attainment.IsZero() {
		t.Errorf("expected 0 attainment for negative actual, got %v", result.Attainment)
	}
	if !result.PayoutFraction.IsZero() {
		t.Errorf("expected 0 payout fraction, got %v", result.PayoutFraction)
	}
}

// =============================================================================
// PAYOUT BOUND PROPERTY
// =============================================================================

func TestAttainment_PayoutFractionNeverExceedsCap(t *testing.T) {
	cases := [][2]float64{
		{100, 130}, {100, 1000}, {0, 50}, {1, 500}, {100, 124.9}, {100, 125.1},
	}
	for _, c := range cases {
		result := calc(c[0], c[1])
		if result.PayoutFraction.GreaterThan(ratio(1.25)) {
			t.Errorf("payout fraction %v exceeds cap for goal=%v actual=%v",
				result.PayoutFraction, c[0], c[1])
		}
		if result.PayoutFraction.IsNegative() {
			t.Errorf("payout fraction %v negative for goal=%v actual=%v",
				result.PayoutFraction, c[0], c[1])
		}
	}
}
