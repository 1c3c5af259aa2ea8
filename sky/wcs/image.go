package wcs

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"github.com/cwbudde/algo-likelihood/sky/proj"
)

// Errors returned by images.
var (
	ErrEnergyOutOfRange   = errors.New("wcs: energy outside image range")
	ErrEnergyAxisMismatch = errors.New("wcs: energy axis does not match plane count")
	ErrShapeMismatch      = errors.New("wcs: pixel data does not match image shape")
	ErrPlaneOutOfRange    = errors.New("wcs: plane index out of range")
	ErrInvalidFactor      = errors.New("wcs: rebin factor must be positive")
	ErrInvalidSize        = errors.New("wcs: image dimensions must be positive")
)

// Config holds image behaviour settings.
type Config struct {
	// Interpolate enables bilinear sampling; otherwise the nearest pixel
	// is returned.
	Interpolate bool
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns bilinear sampling.
func DefaultConfig() Config {
	return Config{Interpolate: true}
}

// WithInterpolation selects bilinear (true) or nearest-pixel sampling.
func WithInterpolation(enabled bool) Option {
	return func(cfg *Config) {
		cfg.Interpolate = enabled
	}
}

func applyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// memo caches a lazily computed value until reset.
type memo[T any] struct {
	mu    sync.Mutex
	valid bool
	value T
}

func (m *memo[T]) get(compute func() T) T {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.valid {
		m.value = compute()
		m.valid = true
	}
	return m.value
}

func (m *memo[T]) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.valid = false
}

// Image is a stack of equally shaped planes on one projection. Plane k
// holds the values at energy k of the energy axis, stored row-major.
//
// Images must not be copied after construction.
type Image struct {
	proj     *proj.WCS
	naxis1   int
	naxis2   int
	planes   [][]float64
	energies interp.EnergyAxis
	periodic bool
	cfg      Config

	// planeMu guards planes against SetPlane.
	planeMu   sync.RWMutex
	solid     memo[[]float64]
	integrals memo[[]float64]
}

// New returns an image with a copy of planes, one per energy.
func New(p *proj.WCS, naxis1, naxis2 int, planes [][]float64, energies []float64, opts ...Option) (*Image, error) {
	if p == nil {
		return nil, proj.ErrInvalidHeader
	}
	if naxis1 <= 0 || naxis2 <= 0 {
		return nil, fmt.Errorf("%w: %d x %d", ErrInvalidSize, naxis1, naxis2)
	}
	if len(planes) != len(energies) {
		return nil, fmt.Errorf("%w: %d planes, %d energies", ErrEnergyAxisMismatch, len(planes), len(energies))
	}
	axis, err := interp.NewEnergyAxis(energies)
	if err != nil {
		return nil, fmt.Errorf("wcs: energies: %w", err)
	}
	img := newImage(p, naxis1, naxis2, axis, applyOptions(opts...))
	for k, plane := range planes {
		if len(plane) != naxis1*naxis2 {
			return nil, fmt.Errorf("%w: plane %d has %d pixels, want %d", ErrShapeMismatch, k, len(plane), naxis1*naxis2)
		}
		img.planes[k] = core.Clone(plane)
	}
	return img, nil
}

func newImage(p *proj.WCS, naxis1, naxis2 int, axis interp.EnergyAxis, cfg Config) *Image {
	return &Image{
		proj:     p,
		naxis1:   naxis1,
		naxis2:   naxis2,
		planes:   make([][]float64, axis.Len()),
		energies: axis,
		periodic: math.Round(float64(naxis1)*math.Abs(p.Cdelt1)) == 360,
		cfg:      cfg,
	}
}

// FromFunc fills a single-plane image at energy with fn evaluated at every
// pixel centre. Pixels outside the projection domain are 0.
func FromFunc(p *proj.WCS, naxis1, naxis2 int, energy float64, fn func(coord.Direction) (float64, error), opts ...Option) (*Image, error) {
	if p == nil {
		return nil, proj.ErrInvalidHeader
	}
	if naxis1 <= 0 || naxis2 <= 0 {
		return nil, fmt.Errorf("%w: %d x %d", ErrInvalidSize, naxis1, naxis2)
	}
	axis, err := interp.NewEnergyAxis([]float64{energy})
	if err != nil {
		return nil, fmt.Errorf("wcs: energies: %w", err)
	}
	img := newImage(p, naxis1, naxis2, axis, applyOptions(opts...))
	plane := make([]float64, naxis1*naxis2)
	for row := 0; row < naxis2; row++ {
		for col := 0; col < naxis1; col++ {
			dir, err := p.Direction(float64(col+1), float64(row+1))
			if err != nil {
				continue
			}
			v, err := fn(dir)
			if err != nil {
				return nil, fmt.Errorf("wcs: pixel (%d, %d): %w", col+1, row+1, err)
			}
			plane[row*naxis1+col] = v
		}
	}
	img.planes[0] = plane
	return img, nil
}

// CenteredWCS returns a square npts x npts projection of pixel size pixSize
// (deg) centred on center, with longitude increasing to the left.
func CenteredWCS(t proj.Type, center coord.Direction, galactic bool, pixSize float64, npts int) (*proj.WCS, error) {
	sys := coord.Equatorial
	if galactic {
		sys = coord.Galactic
	}
	lon, lat := center.LonLat(sys)
	ref := float64(npts+1) / 2
	return proj.New(proj.WCS{
		Type:     t,
		Crpix1:   ref,
		Crpix2:   ref,
		Crval1:   lon,
		Crval2:   lat,
		Cdelt1:   -pixSize,
		Cdelt2:   pixSize,
		Galactic: galactic,
	})
}

// Projection returns the image projection.
func (img *Image) Projection() *proj.WCS { return img.proj }

// Size returns naxis1 and naxis2.
func (img *Image) Size() (naxis1, naxis2 int) { return img.naxis1, img.naxis2 }

// Planes returns the number of energy planes.
func (img *Image) Planes() int { return img.energies.Len() }

// Energies returns a copy of the energy axis (MeV).
func (img *Image) Energies() []float64 { return img.energies.Values() }

// Periodic reports whether the first axis wraps around the sky.
func (img *Image) Periodic() bool { return img.periodic }

// Interpolating reports whether sampling is bilinear.
func (img *Image) Interpolating() bool { return img.cfg.Interpolate }

// Plane returns a copy of plane k.
func (img *Image) Plane(k int) ([]float64, error) {
	if err := img.checkPlane(k); err != nil {
		return nil, err
	}
	img.planeMu.RLock()
	defer img.planeMu.RUnlock()
	return core.Clone(img.planes[k]), nil
}

// Pixel returns the value of 1-based pixel (x, y) in plane k.
func (img *Image) Pixel(x, y, k int) (float64, error) {
	if err := img.checkPlane(k); err != nil {
		return 0, err
	}
	if x < 1 || x > img.naxis1 || y < 1 || y > img.naxis2 {
		return 0, fmt.Errorf("%w: (%d, %d)", proj.ErrInvalidPixel, x, y)
	}
	img.planeMu.RLock()
	defer img.planeMu.RUnlock()
	return img.planes[k][(y-1)*img.naxis1+x-1], nil
}

// SetPlane replaces plane k and invalidates the cached integrals.
func (img *Image) SetPlane(k int, data []float64) error {
	if err := img.checkPlane(k); err != nil {
		return err
	}
	if len(data) != img.naxis1*img.naxis2 {
		return fmt.Errorf("%w: %d pixels, want %d", ErrShapeMismatch, len(data), img.naxis1*img.naxis2)
	}
	img.planeMu.Lock()
	img.planes[k] = core.Clone(data)
	img.planeMu.Unlock()
	img.integrals.reset()
	return nil
}

func (img *Image) checkPlane(k int) error {
	if k < 0 || k >= img.energies.Len() {
		return fmt.Errorf("%w: %d of %d", ErrPlaneOutOfRange, k, img.energies.Len())
	}
	return nil
}
