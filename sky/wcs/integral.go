package wcs

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"github.com/cwbudde/algo-likelihood/sky/proj"
	"github.com/cwbudde/algo-vecmath"
	"gonum.org/v1/gonum/floats"
)

// SolidAngles returns the solid angle (sr) of every pixel, row-major. Pixels
// whose centre or edge midpoints fall outside the projection domain are 0.
// The result is shared; callers must not modify it.
func (img *Image) SolidAngles() []float64 {
	return img.solid.get(func() []float64 {
		return solidAngles(img.proj, img.naxis1, img.naxis2)
	})
}

func solidAngles(p *proj.WCS, naxis1, naxis2 int) []float64 {
	out := make([]float64, naxis1*naxis2)
	for row := 0; row < naxis2; row++ {
		for col := 0; col < naxis1; col++ {
			out[row*naxis1+col] = pixelSolidAngle(p, float64(col+1), float64(row+1))
		}
	}
	return out
}

// pixelSolidAngle approximates the pixel at (x, y) as a rectangle whose
// width is the great-circle distance between its left and right edge
// midpoints and whose height is the latitude difference between its top
// and bottom edge midpoints.
func pixelSolidAngle(p *proj.WCS, x, y float64) float64 {
	if !p.Valid(x, y) {
		return 0
	}
	lonL, latL, err := p.PixToSky(x-0.5, y)
	if err != nil {
		return 0
	}
	lonR, latR, err := p.PixToSky(x+0.5, y)
	if err != nil {
		return 0
	}
	_, latB, err := p.PixToSky(x, y-0.5)
	if err != nil {
		return 0
	}
	_, latT, err := p.PixToSky(x, y+0.5)
	if err != nil {
		return 0
	}
	sys := p.System()
	width := coord.New(lonL, latL, sys).Separation(coord.New(lonR, latR, sys))
	height := (latT - latB) * core.DegToRad
	return math.Abs(width * height)
}

// planeIntegrals returns the solid-angle-weighted sum of every plane.
func (img *Image) planeIntegrals() []float64 {
	return img.integrals.get(func() []float64 {
		omega := img.SolidAngles()
		img.planeMu.RLock()
		defer img.planeMu.RUnlock()
		out := make([]float64, len(img.planes))
		weighted := make([]float64, len(omega))
		for k, plane := range img.planes {
			vecmath.MulBlock(weighted, plane, omega)
			out[k] = floats.Sum(weighted)
		}
		return out
	})
}

// PlaneIntegral returns the integral of plane k over solid angle.
func (img *Image) PlaneIntegral(k int) (float64, error) {
	if err := img.checkPlane(k); err != nil {
		return 0, err
	}
	return img.planeIntegrals()[k], nil
}

// MapIntegralTotal returns the sum of all plane integrals.
func (img *Image) MapIntegralTotal() float64 {
	return floats.Sum(img.planeIntegrals())
}

// MapIntegral returns the solid-angle integral at energy (MeV), power-law
// interpolated between planes. Energies outside the axis of a multi-plane
// image are ErrEnergyOutOfRange. A single-plane image returns its only
// plane integral for any energy and never reports ErrEnergyOutOfRange.
func (img *Image) MapIntegral(energy float64) (float64, error) {
	integrals := img.planeIntegrals()
	if img.energies.Len() == 1 {
		return integrals[0], nil
	}
	k, err := img.energies.Bracket(energy)
	if err != nil {
		return 0, fmt.Errorf("%w: %g MeV", ErrEnergyOutOfRange, energy)
	}
	switch energy {
	case img.energies.At(k):
		return integrals[k], nil
	case img.energies.At(k + 1):
		return integrals[k+1], nil
	}
	v, err := interp.PowerLaw(energy, img.energies.At(k), img.energies.At(k+1), integrals[k], integrals[k+1])
	if err != nil {
		return 0, fmt.Errorf("wcs: map integral: %w", err)
	}
	return v, nil
}
