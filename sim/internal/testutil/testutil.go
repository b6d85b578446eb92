// Package testutil provides shared test infrastructure for the simulator.
// It consolidates assertion helpers used across sim/ and sim/sweep/ test packages.
package testutil

import (
	"math"
	"testing"
)

// Seed returns a pointer to seed, for NetworkConfig.Seed.
func Seed(seed int64) *int64 {
	return &seed
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
