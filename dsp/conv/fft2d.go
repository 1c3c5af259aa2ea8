package conv

import (
	"fmt"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// FFT2D performs "same" convolution through 2D FFTs on a zero-padded
// power-of-two grid large enough for the full linear result. A periodic x
// axis is handled by folding the full result back onto the source width.
func FFT2D(src, kernel *Grid, periodicX bool) (*Grid, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	if err := validateKernel(kernel); err != nil {
		return nil, err
	}

	h, w := src.Rows, src.Cols
	fullH := h + kernel.Rows - 1
	fullW := w + kernel.Cols - 1
	fh := nextPowerOf2(fullH)
	fw := nextPowerOf2(fullW)

	rowPlan, err := algofft.NewPlan64(fw)
	if err != nil {
		return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
	}
	colPlan := rowPlan
	if fh != fw {
		colPlan, err = algofft.NewPlan64(fh)
		if err != nil {
			return nil, fmt.Errorf("conv: failed to create FFT plan: %w", err)
		}
	}

	a := make([]complex128, fh*fw)
	b := make([]complex128, fh*fw)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			a[y*fw+x] = complex(src.At(y, x), 0)
		}
	}
	for y := 0; y < kernel.Rows; y++ {
		for x := 0; x < kernel.Cols; x++ {
			b[y*fw+x] = complex(kernel.At(y, x), 0)
		}
	}

	if err := transform2D(a, fh, fw, rowPlan, colPlan, true); err != nil {
		return nil, err
	}
	if err := transform2D(b, fh, fw, rowPlan, colPlan, true); err != nil {
		return nil, err
	}
	for i := range a {
		a[i] *= b[i]
	}
	if err := transform2D(a, fh, fw, rowPlan, colPlan, false); err != nil {
		return nil, err
	}

	// Crop the centered "same" window out of the full result.
	cy, cx := kernel.Rows/2, kernel.Cols/2
	out := NewGrid(h, w)
	for y := 0; y < h; y++ {
		row := a[(y+cy)*fw : (y+cy)*fw+fullW]
		dst := out.Row(y)
		if !periodicX {
			for x := 0; x < w; x++ {
				dst[x] = real(row[x+cx])
			}
			continue
		}
		for xf := 0; xf < fullW; xf++ {
			x := ((xf-cx)%w + w) % w
			dst[x] += real(row[xf])
		}
	}
	return out, nil
}

// transform2D applies a separable 2D FFT (rows, then columns) in place.
// algo-fft normalizes the inverse transform.
func transform2D(data []complex128, rows, cols int, rowPlan, colPlan *algofft.Plan[complex128], forward bool) error {
	for y := 0; y < rows; y++ {
		row := data[y*cols : (y+1)*cols]
		var err error
		if forward {
			err = rowPlan.Forward(row, row)
		} else {
			err = rowPlan.Inverse(row, row)
		}
		if err != nil {
			return fmt.Errorf("conv: row FFT failed: %w", err)
		}
	}

	col := make([]complex128, rows)
	for x := 0; x < cols; x++ {
		for y := 0; y < rows; y++ {
			col[y] = data[y*cols+x]
		}
		var err error
		if forward {
			err = colPlan.Forward(col, col)
		} else {
			err = colPlan.Inverse(col, col)
		}
		if err != nil {
			return fmt.Errorf("conv: column FFT failed: %w", err)
		}
		for y := 0; y < rows; y++ {
			data[y*cols+x] = col[y]
		}
	}
	return nil
}
