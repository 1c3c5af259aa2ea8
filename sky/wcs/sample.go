package wcs

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// Sample returns the value of plane k at dir. Directions that do not
// project into the map give 0.
func (img *Image) Sample(dir coord.Direction, k int) (float64, error) {
	if err := img.checkPlane(k); err != nil {
		return 0, err
	}
	x, y, err := img.proj.Project(dir)
	if err != nil {
		return 0, nil
	}
	n1, n2 := float64(img.naxis1), float64(img.naxis2)
	if img.periodic {
		x = core.Wrap(x-0.5, n1) + 0.5
	} else if x < 0.5 || x > n1+0.5 {
		return 0, nil
	}
	if y < 0.5 || y > n2+0.5 {
		return 0, nil
	}

	img.planeMu.RLock()
	defer img.planeMu.RUnlock()
	plane := img.planes[k]
	if !img.cfg.Interpolate {
		return img.nearest(plane, x, y), nil
	}
	return img.bilinear(plane, x, y), nil
}

func (img *Image) nearest(plane []float64, x, y float64) float64 {
	ix := int(math.Round(x)) - 1
	iy := int(math.Round(y)) - 1
	if img.periodic {
		ix = core.WrapIndex(ix, img.naxis1)
	} else if ix < 0 || ix >= img.naxis1 {
		return 0
	}
	if iy < 0 || iy >= img.naxis2 {
		return 0
	}
	return plane[iy*img.naxis1+ix]
}

// bilinear interpolates between the four pixel centres around (x, y).
// Points within half a pixel of an edge are extrapolated from the edge
// cell, except along a periodic axis.
func (img *Image) bilinear(plane []float64, x, y float64) float64 {
	ix := int(math.Floor(x))
	iy := int(math.Floor(y))
	if !img.periodic {
		ix = clampCell(ix, img.naxis1)
	}
	iy = clampCell(iy, img.naxis2)
	tt := x - float64(ix)
	uu := y - float64(iy)

	col1, col2 := ix-1, ix
	if img.periodic {
		col1 = core.WrapIndex(col1, img.naxis1)
		col2 = core.WrapIndex(col2, img.naxis1)
	} else if img.naxis1 == 1 {
		col2 = col1
	}
	row1, row2 := iy-1, iy
	if img.naxis2 == 1 {
		row2 = row1
	}
	at := func(col, row int) float64 { return plane[row*img.naxis1+col] }
	return interp.Bilinear(tt, uu, at(col1, row1), at(col2, row1), at(col2, row2), at(col1, row2))
}

// clampCell limits the 1-based lower cell corner to [1, n-1].
func clampCell(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 1 {
		i = 1
	}
	return i
}

// SampleEnergy returns the value at dir and energy (MeV), interpolating
// between the bracketing planes with a power law. Energies outside the
// axis of a multi-plane image are ErrEnergyOutOfRange. A single-plane
// image has no energy dependence and returns its only plane for any
// energy, so it never reports ErrEnergyOutOfRange.
func (img *Image) SampleEnergy(dir coord.Direction, energy float64) (float64, error) {
	if img.energies.Len() == 1 {
		return img.Sample(dir, 0)
	}
	k, err := img.energies.Bracket(energy)
	if err != nil {
		return 0, fmt.Errorf("%w: %g MeV", ErrEnergyOutOfRange, energy)
	}
	y1, err := img.Sample(dir, k)
	if err != nil {
		return 0, err
	}
	if energy == img.energies.At(k) {
		return y1, nil
	}
	y2, err := img.Sample(dir, k+1)
	if err != nil {
		return 0, err
	}
	if energy == img.energies.At(k+1) {
		return y2, nil
	}
	v, err := interp.PowerLaw(energy, img.energies.At(k), img.energies.At(k+1), y1, y2)
	if err != nil {
		return 0, fmt.Errorf("wcs: sample: %w", err)
	}
	return v, nil
}
