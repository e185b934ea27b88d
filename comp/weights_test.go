package comp_test

import (
	"testing"

	"github.com/warp/commission-engine/comp"
)

func ratios(vs ...float64) []comp.Ratio {
	out := make([]comp.Ratio, 0, len(vs))
	for _, v := range vs {
		out = append(out, comp.NewRatio(v))
	}
	return out
}

func TestValidWeights_ExactSum_Valid(t *testing.T) {
	if !comp.ValidWeights(ratios(0.25, 0.25, 0.25, 0.25)) {
		t.Error("weights summing to exactly 1.0 should be valid")
	}
}

func TestValidWeights_WithinTolerance_Valid(t *testing.T) {
	// 33% + 33% + 34% splits entered as thirds carry rounding residue.
	if !comp.ValidWeights(ratios(0.333, 0.333, 0.333)) {
		t.Error("sum 0.999 is within the 0.001 tolerance")
	}
	if !comp.ValidWeights(ratios(0.3335, 0.3335, 0.3335)) {
		t.Error("sum 1.0005 is within the 0.001 tolerance")
	}
}

func TestValidWeights_OffByMoreThanTolerance_Invalid(t *testing.T) {
	if comp.ValidWeights(ratios(0.5, 0.3)) {
		t.Error("sum 0.8 should be invalid")
	}
	if comp.ValidWeights(ratios(0.5, 0.5, 0.002)) {
		t.Error("sum 1.002 should be invalid")
	}
}

func TestValidWeights_Empty_Invalid(t *testing.T) {
	// Callers treat "no active entries" as a separate skip condition and
	// must check non-emptiness first; the validator itself says invalid.
	if comp.ValidWeights(nil) {
		t.Error("empty weight list should be invalid")
	}
}

func TestValidWeights_SingleWeight(t *testing.T) {
	if !comp.ValidWeights(ratios(1.0)) {
		t.Error("a single weight of 1.0 should be valid")
	}
	if comp.ValidWeights(ratios(0.9)) {
		t.Error("a single weight of 0.9 should be invalid")
	}
}
