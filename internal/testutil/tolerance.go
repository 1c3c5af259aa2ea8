package testutil

import (
	"math"
	"testing"
)

// RequireSliceNearlyEqual fails t if got and want differ in length or if
// any element pair differs by more than eps.
func RequireSliceNearlyEqual(t *testing.T, got, want []float64, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("index %d: got %v, want %v (diff %v > eps %v)", i, got[i], want[i], diff, eps)
		}
	}
}

// RequireGridNearlyEqual is RequireSliceNearlyEqual for row-major grids of
// the given width; failures report the (row, col) of the first mismatch.
func RequireGridNearlyEqual(t *testing.T, got, want []float64, cols int, eps float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("length mismatch: got %d, want %d", len(got), len(want))
	}
	for i := range got {
		if diff := math.Abs(got[i] - want[i]); diff > eps {
			t.Fatalf("pixel (%d, %d): got %v, want %v (diff %v > eps %v)", i/cols, i%cols, got[i], want[i], diff, eps)
		}
	}
}

// RequireRelClose fails t unless got is within a relative tolerance rtol
// of want. A zero want requires |got| <= rtol.
func RequireRelClose(t *testing.T, name string, got, want, rtol float64) {
	t.Helper()
	if RelDiff(got, want) > rtol {
		t.Fatalf("%s = %v, want %v (rtol %v)", name, got, want, rtol)
	}
}

// RelDiff returns |a-b| relative to |b|, or |a| when b is 0.
func RelDiff(a, b float64) float64 {
	if b == 0 {
		return math.Abs(a)
	}
	return math.Abs(a-b) / math.Abs(b)
}

// RequireFinite fails t if any element is NaN or Inf.
func RequireFinite(t *testing.T, data []float64) {
	t.Helper()
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("index %d: non-finite value %v", i, v)
		}
	}
}
