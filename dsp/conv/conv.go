package conv

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput     = errors.New("conv: empty input")
	ErrEmptyKernel    = errors.New("conv: empty kernel")
	ErrKernelNotOdd   = errors.New("conv: kernel dimensions must be odd")
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")
	ErrZeroKernel     = errors.New("conv: kernel sums to zero")
)

// directThreshold is the largest kernel area convolved directly.
const directThreshold = 64

// snapTolerance is the FFT round-off level, relative to the output peak,
// below which non-negative convolutions are set to 0.
const snapTolerance = 1e-12

// Grid is a row-major 2D array of samples.
type Grid struct {
	Rows int
	Cols int
	Data []float64
}

// NewGrid allocates a zeroed rows x cols grid.
func NewGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: make([]float64, rows*cols)}
}

// At returns the sample at (row, col).
func (g *Grid) At(row, col int) float64 { return g.Data[row*g.Cols+col] }

// Set stores v at (row, col).
func (g *Grid) Set(row, col int, v float64) { g.Data[row*g.Cols+col] = v }

// Row returns the slice backing row r.
func (g *Grid) Row(r int) []float64 { return g.Data[r*g.Cols : (r+1)*g.Cols] }

// Sum returns the sum of all samples.
func (g *Grid) Sum() float64 { return floats.Sum(g.Data) }

func (g *Grid) validate() error {
	if g == nil || g.Rows <= 0 || g.Cols <= 0 {
		return ErrEmptyInput
	}
	if len(g.Data) != g.Rows*g.Cols {
		return fmt.Errorf("%w: %d samples for %dx%d", ErrLengthMismatch, len(g.Data), g.Rows, g.Cols)
	}
	return nil
}

func validateKernel(k *Grid) error {
	if k == nil || k.Rows <= 0 || k.Cols <= 0 {
		return ErrEmptyKernel
	}
	if len(k.Data) != k.Rows*k.Cols {
		return fmt.Errorf("%w: kernel has %d samples for %dx%d", ErrLengthMismatch, len(k.Data), k.Rows, k.Cols)
	}
	if k.Rows%2 == 0 || k.Cols%2 == 0 {
		return fmt.Errorf("%w: %dx%d", ErrKernelNotOdd, k.Rows, k.Cols)
	}
	return nil
}

// Normalize scales kernel in place to unit sum. Each tap is divided by the
// sum, so a single-tap kernel becomes exactly 1.
func Normalize(kernel *Grid) error {
	if err := validateKernel(kernel); err != nil {
		return err
	}
	total := floats.Sum(kernel.Data)
	if total == 0 {
		return ErrZeroKernel
	}
	for i := range kernel.Data {
		kernel.Data[i] /= total
	}
	return nil
}

// Convolve2D convolves src with a centered odd-sized kernel and returns a
// grid with the dimensions of src. Small kernels and kernels with a single
// non-zero tap use [Direct2D], so a unit delta reproduces src exactly.
// Larger kernels use [FFT2D]; when src and kernel are both non-negative,
// its round-off below snapTolerance x the output peak is set to 0 and the
// result is non-negative.
func Convolve2D(src, kernel *Grid, periodicX bool) (*Grid, error) {
	if err := validateKernel(kernel); err != nil {
		return nil, err
	}
	if kernel.Rows*kernel.Cols <= directThreshold || nonZeroTaps(kernel.Data) == 1 {
		return Direct2D(src, kernel, periodicX)
	}
	out, err := FFT2D(src, kernel, periodicX)
	if err != nil {
		return nil, err
	}
	if floats.Min(src.Data) >= 0 && floats.Min(kernel.Data) >= 0 {
		snapRoundOff(out.Data)
	}
	return out, nil
}

func nonZeroTaps(data []float64) int {
	n := 0
	for _, v := range data {
		if v != 0 {
			n++
		}
	}
	return n
}

// snapRoundOff zeroes values below snapTolerance x max(data), negatives
// included.
func snapRoundOff(data []float64) {
	tol := snapTolerance * floats.Max(data)
	for i, v := range data {
		if v < tol {
			data[i] = 0
		}
	}
}

// Direct2D performs direct "same" convolution:
//
//	out[y][x] = sum_{ky,kx} src[y+cy-ky][x+cx-kx] * kernel[ky][kx]
//
// with (cy, cx) the kernel center.
func Direct2D(src, kernel *Grid, periodicX bool) (*Grid, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	if err := validateKernel(kernel); err != nil {
		return nil, err
	}

	h, w := src.Rows, src.Cols
	cy, cx := kernel.Rows/2, kernel.Cols/2
	out := NewGrid(h, w)

	for ky := 0; ky < kernel.Rows; ky++ {
		for kx := 0; kx < kernel.Cols; kx++ {
			weight := kernel.At(ky, kx)
			if weight == 0 {
				continue
			}
			shift := cx - kx
			for y := 0; y < h; y++ {
				sy := y + cy - ky
				if sy < 0 || sy >= h {
					continue
				}
				accumulateRow(out.Row(y), src.Row(sy), weight, shift, periodicX)
			}
		}
	}
	return out, nil
}

// accumulateRow adds weight*srcRow[x+shift] to dst[x].
func accumulateRow(dst, srcRow []float64, weight float64, shift int, periodic bool) {
	w := len(dst)
	if periodic {
		s := ((shift % w) + w) % w
		floats.AddScaled(dst[:w-s], weight, srcRow[s:])
		if s > 0 {
			floats.AddScaled(dst[w-s:], weight, srcRow[:s])
		}
		return
	}
	lo, hi := 0, w
	if shift < 0 {
		lo = -shift
	}
	if w-shift < hi {
		hi = w - shift
	}
	if lo >= hi {
		return
	}
	floats.AddScaled(dst[lo:hi], weight, srcRow[lo+shift:hi+shift])
}

// nextPowerOf2 returns the smallest power of 2 >= n.
func nextPowerOf2(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}
