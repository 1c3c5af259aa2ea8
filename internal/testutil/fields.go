package testutil

import (
	"math/rand"

	"github.com/cwbudde/algo-likelihood/dsp/core"
)

// Ramp returns a row-major rows x cols field whose values step with the
// column (period 7) and rise slowly with the row. All values are >= offset.
func Ramp(rows, cols int, offset float64) []float64 {
	out := make([]float64, rows*cols)
	for i := range out {
		out[i] = offset + float64(i%7) + 0.25*float64(i/cols)
	}
	return out
}

// DeterministicField generates a rows x cols field of uniform noise in
// [0, amplitude) with a fixed seed for reproducibility.
func DeterministicField(seed int64, amplitude float64, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = rng.Float64() * amplitude
	}
	return out
}

// Impulse returns a rows x cols field with a single 1 at (row, col).
func Impulse(rows, cols, row, col int) []float64 {
	out := make([]float64, rows*cols)
	if row >= 0 && row < rows && col >= 0 && col < cols {
		out[row*cols+col] = 1
	}
	return out
}

// Constant returns a slice of length n filled with value.
func Constant(value float64, n int) []float64 {
	out := make([]float64, n)
	core.Fill(out, value)
	return out
}
