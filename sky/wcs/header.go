package wcs

import (
	"fmt"
	"strings"

	"github.com/cwbudde/algo-likelihood/sky/proj"
)

// DefaultEnergy is the energy (MeV) assigned to a single-plane image read
// without an energy table.
const DefaultEnergy = 100.0

// Header holds the FITS keywords that describe an image.
type Header struct {
	Naxis  int
	Naxis1 int
	Naxis2 int
	Naxis3 int
	Ctype1 string
	Ctype2 string
	Crpix1 float64
	Crpix2 float64
	Crval1 float64
	Crval2 float64
	Cdelt1 float64
	Cdelt2 float64
	Crota2 float64
}

// FromHeader builds an image from header keywords, pixel data in FITS order
// (x fastest, then y, then energy) and the energy table. The energy table
// may be omitted for single-plane images.
func FromHeader(h Header, data, energies []float64, opts ...Option) (*Image, error) {
	if h.Naxis != 2 && h.Naxis != 3 {
		return nil, fmt.Errorf("%w: NAXIS = %d", proj.ErrInvalidHeader, h.Naxis)
	}
	naxis3 := 1
	if h.Naxis == 3 {
		naxis3 = h.Naxis3
	}
	if naxis3 < 1 {
		return nil, fmt.Errorf("%w: NAXIS3 = %d", proj.ErrInvalidHeader, naxis3)
	}
	if naxis3 == 1 && len(energies) == 0 {
		energies = []float64{DefaultEnergy}
	}
	if len(energies) != naxis3 {
		return nil, fmt.Errorf("%w: NAXIS3 = %d, %d energies", ErrEnergyAxisMismatch, naxis3, len(energies))
	}
	t, err := proj.ParseType(h.Ctype1)
	if err != nil {
		return nil, err
	}
	p, err := proj.New(proj.WCS{
		Type:     t,
		Crpix1:   h.Crpix1,
		Crpix2:   h.Crpix2,
		Crval1:   h.Crval1,
		Crval2:   h.Crval2,
		Cdelt1:   h.Cdelt1,
		Cdelt2:   h.Cdelt2,
		Crota2:   h.Crota2,
		Galactic: strings.HasPrefix(strings.ToUpper(strings.TrimSpace(h.Ctype1)), "GLON"),
	})
	if err != nil {
		return nil, err
	}
	npix := h.Naxis1 * h.Naxis2
	if h.Naxis1 <= 0 || h.Naxis2 <= 0 {
		return nil, fmt.Errorf("%w: %d x %d", ErrInvalidSize, h.Naxis1, h.Naxis2)
	}
	if len(data) != npix*naxis3 {
		return nil, fmt.Errorf("%w: %d values for %d x %d x %d", ErrShapeMismatch, len(data), h.Naxis1, h.Naxis2, naxis3)
	}
	planes := make([][]float64, naxis3)
	for k := range planes {
		planes[k] = data[k*npix : (k+1)*npix]
	}
	return New(p, h.Naxis1, h.Naxis2, planes, energies, opts...)
}

// Header returns the keywords describing img.
func (img *Image) Header() Header {
	c1, c2 := img.proj.CType()
	h := Header{
		Naxis:  2,
		Naxis1: img.naxis1,
		Naxis2: img.naxis2,
		Naxis3: img.energies.Len(),
		Ctype1: c1,
		Ctype2: c2,
		Crpix1: img.proj.Crpix1,
		Crpix2: img.proj.Crpix2,
		Crval1: img.proj.Crval1,
		Crval2: img.proj.Crval2,
		Cdelt1: img.proj.Cdelt1,
		Cdelt2: img.proj.Cdelt2,
		Crota2: img.proj.Crota2,
	}
	if h.Naxis3 > 1 {
		h.Naxis = 3
	}
	return h
}

// Data returns all planes concatenated in FITS order.
func (img *Image) Data() []float64 {
	img.planeMu.RLock()
	defer img.planeMu.RUnlock()
	out := make([]float64, 0, len(img.planes)*img.naxis1*img.naxis2)
	for _, plane := range img.planes {
		out = append(out, plane...)
	}
	return out
}
