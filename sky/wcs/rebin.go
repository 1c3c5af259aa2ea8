package wcs

import (
	"fmt"

	"github.com/cwbudde/algo-likelihood/internal/logging"
)

// Rebin returns a new image with factor x factor source pixels merged into
// each destination pixel. Partial destination pixels at the far edges are
// kept. The reference direction is unchanged; the reference pixel and
// pixel scale follow the coarser grid.
//
// Each destination pixel collects flux = sum(value x solid angle) of its
// source pixels. With average unset the destination value is flux divided
// by the destination solid angle, which conserves the map integral; with
// average set it is flux divided by the summed source solid angles, the
// solid-angle-weighted mean.
func (img *Image) Rebin(factor int, average bool) (*Image, error) {
	if factor < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFactor, factor)
	}
	n1 := (img.naxis1 + factor - 1) / factor
	n2 := (img.naxis2 + factor - 1) / factor
	f := float64(factor)
	p, err := img.proj.WithGrid(
		(img.proj.Crpix1-0.5)/f+0.5,
		(img.proj.Crpix2-0.5)/f+0.5,
		img.proj.Cdelt1*f,
		img.proj.Cdelt2*f,
	)
	if err != nil {
		return nil, fmt.Errorf("wcs: rebin: %w", err)
	}
	logging.Logger().Debug("rebin",
		"factor", factor, "average", average,
		"naxis1", n1, "naxis2", n2,
		"crpix1", p.Crpix1, "crpix2", p.Crpix2,
		"cdelt1", p.Cdelt1, "cdelt2", p.Cdelt2)

	out := newImage(p, n1, n2, img.energies, img.cfg)
	srcOmega := img.SolidAngles()

	var norm []float64
	if average {
		norm = make([]float64, n1*n2)
		for row := 0; row < img.naxis2; row++ {
			for col := 0; col < img.naxis1; col++ {
				norm[(row/factor)*n1+col/factor] += srcOmega[row*img.naxis1+col]
			}
		}
	} else {
		norm = out.SolidAngles()
	}

	img.planeMu.RLock()
	defer img.planeMu.RUnlock()
	for k, plane := range img.planes {
		dst := make([]float64, n1*n2)
		for row := 0; row < img.naxis2; row++ {
			for col := 0; col < img.naxis1; col++ {
				i := row*img.naxis1 + col
				dst[(row/factor)*n1+col/factor] += plane[i] * srcOmega[i]
			}
		}
		for i, w := range norm {
			if w > 0 {
				dst[i] /= w
			} else {
				dst[i] = 0
			}
		}
		out.planes[k] = dst
	}
	return out, nil
}
