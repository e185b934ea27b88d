package comp

import "github.com/shopspring/decimal"

// =============================================================================
// WEIGHT VALIDATOR
// =============================================================================

// WeightTolerance is the allowed deviation of a weight sum from 1.0.
// Admin-entered percentages routinely carry rounding residue (33% + 33% +
// 34% style splits), so exact equality is not required.
var WeightTolerance = decimal.NewFromFloat(0.001)

// ValidWeights reports whether the given ratios sum to 1.0 within tolerance.
//
// An empty sequence is invalid: "no active entries" is a skip condition the
// caller must detect before asking whether the weights are consistent. The
// same function validates bucket weights, sub-goal weights, and product
// target percentages.
func ValidWeights(weights []Ratio) bool {
	if len(weights) == 0 {
		return false
	}
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w.Value)
	}
	diff := sum.Sub(decimal.NewFromInt(1)).Abs()
	return !diff.GreaterThan(WeightTolerance)
}

// WeightSum returns the sum of the given ratios. Used by error messages to
// report how far off an invalid configuration is.
func WeightSum(weights []Ratio) Ratio {
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w.Value)
	}
	return Ratio{Value: sum}
}
