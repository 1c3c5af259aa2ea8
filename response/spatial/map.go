package spatial

import (
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"github.com/cwbudde/algo-likelihood/sky/wcs"
)

// Map is an intensity distribution sampled from an image.
type Map struct {
	image *wcs.Image
}

// NewMap wraps img.
func NewMap(img *wcs.Image) (Map, error) {
	if img == nil {
		return Map{}, ErrNilImage
	}
	return Map{image: img}, nil
}

func (Map) sealed() {}

// Kind implements Template.
func (Map) Kind() Kind { return KindMap }

// Image returns the underlying image.
func (m Map) Image() *wcs.Image { return m.image }

// Value samples the image at dir and energy.
func (m Map) Value(dir coord.Direction, energy float64) (float64, error) {
	return m.image.SampleEnergy(dir, energy)
}

// SpatialResponse sums pixel value x solid angle x fn over the image.
func (m Map) SpatialResponse(dir coord.Direction, energy float64, fn ResponseFunctor) (float64, error) {
	omega := m.image.SolidAngles()
	n1, n2 := m.image.Size()
	total := 0.0
	for row := 0; row < n2; row++ {
		for col := 0; col < n1; col++ {
			w := omega[row*n1+col]
			if w == 0 {
				continue
			}
			pix, err := m.image.SkyDir(float64(col+1), float64(row+1))
			if err != nil {
				continue
			}
			v, err := m.image.SampleEnergy(pix, energy)
			if err != nil {
				return 0, err
			}
			if v == 0 {
				continue
			}
			r, err := fn.Response(energy, dir.SeparationDeg(pix))
			if err != nil {
				return 0, err
			}
			total += v * w * r
		}
	}
	return total, nil
}

// DiffuseResponse always fails: a map has no centre.
func (Map) DiffuseResponse(ResponseFunctor, float64, float64) (float64, error) {
	return 0, ErrNotRadial
}
