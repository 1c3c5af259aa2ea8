package testutil

import (
	"math"
	"testing"
)

func TestRelDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{"equal", 2, 2, 0},
		{"one percent", 1.01, 1, 0.01},
		{"negative reference", -0.99, -1, 0.01},
		{"zero reference", 0.5, 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelDiff(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
				t.Fatalf("RelDiff(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRequireHelpersPass(t *testing.T) {
	RequireSliceNearlyEqual(t, []float64{1, 2}, []float64{1, 2 + 1e-12}, 1e-9)
	RequireGridNearlyEqual(t, Ramp(2, 3, 0), Ramp(2, 3, 0), 3, 0)
	RequireRelClose(t, "value", 100.5, 100, 0.01)
	RequireFinite(t, Constant(1, 4))
}
