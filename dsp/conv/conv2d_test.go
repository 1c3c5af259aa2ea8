package conv

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-likelihood/internal/testutil"
)

func rampGrid(rows, cols int) *Grid {
	return &Grid{Rows: rows, Cols: cols, Data: testutil.Ramp(rows, cols, 0)}
}

func deltaKernel(size int) *Grid {
	return &Grid{Rows: size, Cols: size, Data: testutil.Impulse(size, size, size/2, size/2)}
}

func boxKernel(size int) *Grid {
	return &Grid{Rows: size, Cols: size, Data: testutil.Constant(1, size*size)}
}

// bruteForce is the reference definition of "same" convolution.
func bruteForce(src, kernel *Grid, periodic bool) *Grid {
	out := NewGrid(src.Rows, src.Cols)
	cy, cx := kernel.Rows/2, kernel.Cols/2
	for y := 0; y < src.Rows; y++ {
		for x := 0; x < src.Cols; x++ {
			sum := 0.0
			for ky := 0; ky < kernel.Rows; ky++ {
				for kx := 0; kx < kernel.Cols; kx++ {
					sy := y + cy - ky
					sx := x + cx - kx
					if sy < 0 || sy >= src.Rows {
						continue
					}
					if periodic {
						sx = ((sx % src.Cols) + src.Cols) % src.Cols
					} else if sx < 0 || sx >= src.Cols {
						continue
					}
					sum += src.At(sy, sx) * kernel.At(ky, kx)
				}
			}
			out.Set(y, x, sum)
		}
	}
	return out
}

func TestDeltaKernelReproducesImage(t *testing.T) {
	src := rampGrid(9, 12)
	for _, periodic := range []bool{false, true} {
		out, err := Convolve2D(src, deltaKernel(3), periodic)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for i := range src.Data {
			if out.Data[i] != src.Data[i] {
				t.Fatalf("periodic=%v index %d: got %v want %v", periodic, i, out.Data[i], src.Data[i])
			}
		}
	}

	out, err := FFT2D(src, deltaKernel(9), false)
	if err != nil {
		t.Fatalf("FFT2D: %v", err)
	}
	testutil.RequireSliceNearlyEqual(t, out.Data, src.Data, 1e-12)
}

func TestLargeDeltaKernelReproducesImage(t *testing.T) {
	src := &Grid{Rows: 21, Cols: 21, Data: testutil.DeterministicField(3, 5, 21, 21)}
	for _, size := range []int{9, 15, 21} {
		for _, periodic := range []bool{false, true} {
			kernel := deltaKernel(size)
			kernel.Data[(size/2)*size+size/2] = 3
			if err := Normalize(kernel); err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			out, err := Convolve2D(src, kernel, periodic)
			if err != nil {
				t.Fatalf("size %d: %v", size, err)
			}
			for i := range src.Data {
				if out.Data[i] != src.Data[i] {
					t.Fatalf("size %d periodic=%v index %d: got %v want %v", size, periodic, i, out.Data[i], src.Data[i])
				}
			}
		}
	}
}

func TestFFTPathKeepsNonNegativeOutput(t *testing.T) {
	const n, size = 33, 15
	src := &Grid{Rows: n, Cols: n, Data: testutil.Impulse(n, n, n/2, n/2)}
	kernel := NewGrid(size, size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dy, dx := float64(y-size/2), float64(x-size/2)
			kernel.Set(y, x, math.Exp(-(dx*dx+dy*dy)/8))
		}
	}
	for _, periodic := range []bool{false, true} {
		out, err := Convolve2D(src, kernel, periodic)
		if err != nil {
			t.Fatal(err)
		}
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				v := out.At(y, x)
				if v < 0 {
					t.Fatalf("periodic=%v pixel (%d, %d) = %v is negative", periodic, y, x, v)
				}
				inside := abs(y-n/2) <= size/2 && abs(x-n/2) <= size/2
				if !inside && v != 0 {
					t.Fatalf("periodic=%v pixel (%d, %d) = %v outside the kernel support", periodic, y, x, v)
				}
				if inside && v == 0 {
					t.Fatalf("periodic=%v pixel (%d, %d) lost kernel weight", periodic, y, x)
				}
			}
		}
		if math.Abs(out.Sum()-kernel.Sum()) > 1e-9 {
			t.Fatalf("sum = %v, want %v", out.Sum(), kernel.Sum())
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestDirectMatchesReference(t *testing.T) {
	src := rampGrid(8, 10)
	kernel := NewGrid(3, 5)
	for i := range kernel.Data {
		kernel.Data[i] = float64(i + 1)
	}
	for _, periodic := range []bool{false, true} {
		got, err := Direct2D(src, kernel, periodic)
		if err != nil {
			t.Fatalf("Direct2D: %v", err)
		}
		want := bruteForce(src, kernel, periodic)
		testutil.RequireGridNearlyEqual(t, got.Data, want.Data, src.Cols, 1e-12)
	}
}

func TestFFTMatchesDirect(t *testing.T) {
	src := rampGrid(21, 17)
	kernel := NewGrid(9, 11)
	for i := range kernel.Data {
		kernel.Data[i] = math.Exp(-float64(i%11) / 4)
	}
	for _, periodic := range []bool{false, true} {
		direct, err := Direct2D(src, kernel, periodic)
		if err != nil {
			t.Fatalf("Direct2D: %v", err)
		}
		fft, err := FFT2D(src, kernel, periodic)
		if err != nil {
			t.Fatalf("FFT2D: %v", err)
		}
		testutil.RequireGridNearlyEqual(t, fft.Data, direct.Data, src.Cols, 1e-9)
	}
}

func TestFFTMatchesDirectOnNoise(t *testing.T) {
	src := &Grid{Rows: 32, Cols: 24, Data: testutil.DeterministicField(7, 10, 32, 24)}
	kernel := &Grid{Rows: 7, Cols: 7, Data: testutil.DeterministicField(8, 1, 7, 7)}
	for _, periodic := range []bool{false, true} {
		direct, err := Direct2D(src, kernel, periodic)
		if err != nil {
			t.Fatalf("Direct2D: %v", err)
		}
		fft, err := FFT2D(src, kernel, periodic)
		if err != nil {
			t.Fatalf("FFT2D: %v", err)
		}
		testutil.RequireGridNearlyEqual(t, fft.Data, direct.Data, src.Cols, 1e-9)
	}
}

func TestPeriodicConservesRowSum(t *testing.T) {
	// Rows are zero-padded, so only the periodic axis conserves the sum
	// exactly; check it on a one-row image.
	src := rampGrid(6, 8)
	row := &Grid{Rows: 1, Cols: src.Cols, Data: append([]float64(nil), src.Row(2)...)}
	k := &Grid{Rows: 1, Cols: 5, Data: []float64{0.2, 0.2, 0.2, 0.2, 0.2}}

	out, err := Direct2D(row, k, true)
	if err != nil {
		t.Fatalf("Direct2D: %v", err)
	}
	if math.Abs(out.Sum()-row.Sum()) > 1e-12 {
		t.Fatalf("periodic sum %v, want %v", out.Sum(), row.Sum())
	}

	trunc, err := Direct2D(row, k, false)
	if err != nil {
		t.Fatalf("Direct2D: %v", err)
	}
	if trunc.Sum() >= row.Sum() {
		t.Fatalf("truncated sum %v should lose flux at the edges (source %v)", trunc.Sum(), row.Sum())
	}
}

func TestNormalize(t *testing.T) {
	k := boxKernel(3)
	if err := Normalize(k); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if math.Abs(k.Sum()-1) > 1e-15 {
		t.Fatalf("sum = %v", k.Sum())
	}
	if err := Normalize(NewGrid(3, 3)); !errors.Is(err, ErrZeroKernel) {
		t.Fatalf("err = %v, want ErrZeroKernel", err)
	}
}

func TestValidation(t *testing.T) {
	src := rampGrid(4, 4)
	if _, err := Convolve2D(src, NewGrid(2, 3), false); !errors.Is(err, ErrKernelNotOdd) {
		t.Fatalf("err = %v, want ErrKernelNotOdd", err)
	}
	if _, err := Convolve2D(src, nil, false); !errors.Is(err, ErrEmptyKernel) {
		t.Fatalf("err = %v, want ErrEmptyKernel", err)
	}
	if _, err := Direct2D(&Grid{Rows: 2, Cols: 2, Data: []float64{1}}, deltaKernel(1), false); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("err = %v, want ErrLengthMismatch", err)
	}
	if _, err := FFT2D(&Grid{}, deltaKernel(1), false); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
}
