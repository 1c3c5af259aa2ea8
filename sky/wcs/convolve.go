package wcs

import (
	"fmt"

	"github.com/cwbudde/algo-likelihood/dsp/conv"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"github.com/cwbudde/algo-likelihood/sky/proj"
	"github.com/cwbudde/algo-vecmath"
)

// PSF evaluates a radially symmetric point-spread function (sr^-1) at
// angular offset theta (deg) and azimuth phi (deg).
type PSF interface {
	Evaluate(energy, theta, phi float64) (float64, error)
}

// Exposure evaluates the exposure (cm^2 s) towards a direction.
type Exposure interface {
	Value(energy float64, dir coord.Direction) (float64, error)
}

// Convolve returns the predicted counts of plane k at energy: the plane
// times the exposure towards each pixel, convolved with the PSF when
// convolve is set. The result is a new single-plane image on the same
// projection.
func (img *Image) Convolve(energy float64, psf PSF, exposure Exposure, convolve bool, k int) (*Image, error) {
	if err := img.checkPlane(k); err != nil {
		return nil, err
	}
	axis, err := interp.NewEnergyAxis([]float64{energy})
	if err != nil {
		return nil, fmt.Errorf("wcs: convolve: %w", err)
	}

	expo := make([]float64, img.naxis1*img.naxis2)
	for row := 0; row < img.naxis2; row++ {
		for col := 0; col < img.naxis1; col++ {
			dir, err := img.proj.Direction(float64(col+1), float64(row+1))
			if err != nil {
				continue
			}
			v, err := exposure.Value(energy, dir)
			if err != nil {
				return nil, fmt.Errorf("wcs: convolve: exposure at pixel (%d, %d): %w", col+1, row+1, err)
			}
			expo[row*img.naxis1+col] = v
		}
	}
	counts := conv.NewGrid(img.naxis2, img.naxis1)
	img.planeMu.RLock()
	vecmath.MulBlock(counts.Data, img.planes[k], expo)
	img.planeMu.RUnlock()

	out := newImage(img.proj, img.naxis1, img.naxis2, axis, img.cfg)
	if !convolve {
		out.planes[0] = counts.Data
		return out, nil
	}

	kernel, err := img.psfKernel(energy, psf)
	if err != nil {
		return nil, err
	}
	if err := conv.Normalize(kernel); err != nil {
		return nil, fmt.Errorf("wcs: convolve: psf kernel: %w", err)
	}
	smoothed, err := conv.Convolve2D(counts, kernel, img.periodic)
	if err != nil {
		return nil, fmt.Errorf("wcs: convolve: %w", err)
	}
	out.planes[0] = smoothed.Data
	return out, nil
}

// psfKernel samples psf on an odd, square grid with the image's pixel scale
// and projection type. The side is the smaller image axis, reduced by one
// when even.
func (img *Image) psfKernel(energy float64, psf PSF) (*conv.Grid, error) {
	npix := min(img.naxis1, img.naxis2)
	if npix%2 == 0 {
		npix--
	}
	ref := float64(npix+1) / 2
	kp, err := proj.New(proj.WCS{
		Type:     img.proj.Type,
		Crpix1:   ref,
		Crpix2:   ref,
		Crval1:   img.proj.Crval1,
		Crval2:   img.proj.Crval2,
		Cdelt1:   img.proj.Cdelt1,
		Cdelt2:   img.proj.Cdelt2,
		Galactic: img.proj.Galactic,
	})
	if err != nil {
		return nil, fmt.Errorf("wcs: psf kernel: %w", err)
	}
	center, err := kp.Direction(ref, ref)
	if err != nil {
		return nil, fmt.Errorf("wcs: psf kernel: %w", err)
	}

	kernel := conv.NewGrid(npix, npix)
	for row := 0; row < npix; row++ {
		for col := 0; col < npix; col++ {
			dir, err := kp.Direction(float64(col+1), float64(row+1))
			if err != nil {
				continue
			}
			v, err := psf.Evaluate(energy, center.SeparationDeg(dir), 0)
			if err != nil {
				return nil, fmt.Errorf("wcs: psf kernel: %w", err)
			}
			kernel.Set(row, col, v)
		}
	}
	return kernel, nil
}
