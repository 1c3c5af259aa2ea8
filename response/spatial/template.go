package spatial

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/sky/coord"
	"gonum.org/v1/gonum/integrate/quad"
)

// Errors returned by templates.
var (
	ErrNotRadial     = errors.New("spatial: template is not radially symmetric")
	ErrInvalidRadius = errors.New("spatial: radius must be positive")
	ErrNilImage      = errors.New("spatial: nil image")
)

// Kind identifies a template variant.
type Kind int

const (
	// KindPoint is a point source at a single direction.
	KindPoint Kind = iota
	// KindDisk is a uniform disk of fixed angular radius.
	KindDisk
	// KindGaussian is a radially symmetric 2D Gaussian.
	KindGaussian
	// KindMap is a WCS intensity map.
	KindMap
)

// String returns the lower-case name of the kind, or "unknown" for values
// outside the defined set.
func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "point"
	case KindDisk:
		return "disk"
	case KindGaussian:
		return "gaussian"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// ResponseFunctor is a radially symmetric response (sr^-1) as a function of
// separation (deg).
type ResponseFunctor interface {
	Response(energy, separation float64) (float64, error)
}

// ResponseFunc adapts a function to ResponseFunctor.
type ResponseFunc func(energy, separation float64) (float64, error)

// Response implements ResponseFunctor.
func (f ResponseFunc) Response(energy, separation float64) (float64, error) {
	return f(energy, separation)
}

// Template is a spatial intensity distribution. The set of implementations
// is closed.
type Template interface {
	Kind() Kind
	// Value returns the intensity (sr^-1) at dir.
	Value(dir coord.Direction, energy float64) (float64, error)
	// SpatialResponse returns the template convolved with fn, evaluated
	// at dir.
	SpatialResponse(dir coord.Direction, energy float64, fn ResponseFunctor) (float64, error)
	// DiffuseResponse returns the template convolved with fn at the given
	// separation (deg) from the template centre.
	DiffuseResponse(fn ResponseFunctor, energy, separation float64) (float64, error)

	sealed()
}

// Quadrature settings for the radial integrals.
const (
	radialPoints  = 32
	azimuthPoints = 48
	// gaussianExtent is the number of sigmas integrated around a Gaussian.
	gaussianExtent = 5
)

// integrateRadial integrates f over [lo, hi] with Gauss-Legendre panels.
// When the range starts at zero the panels are spaced by decades so that
// responses peaked at zero separation are resolved; otherwise the range is
// split evenly.
func integrateRadial(f func(float64) float64, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	var edges []float64
	if lo == 0 {
		edges = []float64{0, hi * 1e-4, hi * 1e-3, hi * 1e-2, hi * 1e-1, hi}
	} else {
		edges = []float64{lo, lo + 0.25*(hi-lo), lo + 0.5*(hi-lo), lo + 0.75*(hi-lo), hi}
	}
	total := 0.0
	for i := 1; i < len(edges); i++ {
		total += quad.Fixed(f, edges[i-1], edges[i], radialPoints, quad.Legendre{}, 0)
	}
	return total
}

// radialFn wraps fn so quadrature callbacks can record the first error.
type radialFn struct {
	fn     ResponseFunctor
	energy float64
	err    error
}

func (r *radialFn) at(separation float64) float64 {
	if r.err != nil {
		return 0
	}
	v, err := r.fn.Response(r.energy, separation)
	if err != nil {
		r.err = err
		return 0
	}
	return v
}

// Point is a point source.
type Point struct {
	Dir coord.Direction
}

func (Point) sealed() {}

// Kind implements Template.
func (Point) Kind() Kind { return KindPoint }

// Value is 0 everywhere; a point source has no finite intensity.
func (Point) Value(coord.Direction, float64) (float64, error) { return 0, nil }

// SpatialResponse returns fn at the separation between dir and the source.
func (p Point) SpatialResponse(dir coord.Direction, energy float64, fn ResponseFunctor) (float64, error) {
	return fn.Response(energy, p.Dir.SeparationDeg(dir))
}

// DiffuseResponse returns fn at separation.
func (Point) DiffuseResponse(fn ResponseFunctor, energy, separation float64) (float64, error) {
	return fn.Response(energy, separation)
}

// Disk is a uniform disk of angular Radius (deg) around Center.
type Disk struct {
	Center coord.Direction
	Radius float64
}

// NewDisk validates the radius.
func NewDisk(center coord.Direction, radius float64) (Disk, error) {
	if !(radius > 0 && radius <= 180) {
		return Disk{}, fmt.Errorf("%w: %g", ErrInvalidRadius, radius)
	}
	return Disk{Center: center, Radius: radius}, nil
}

func (Disk) sealed() {}

// Kind implements Template.
func (Disk) Kind() Kind { return KindDisk }

// Value returns 1/(pi r^2) inside the disk and 0 outside.
func (d Disk) Value(dir coord.Direction, _ float64) (float64, error) {
	if d.Center.SeparationDeg(dir) >= d.Radius {
		return 0, nil
	}
	r := d.Radius * core.DegToRad
	return 1 / (math.Pi * r * r), nil
}

// SpatialResponse implements Template.
func (d Disk) SpatialResponse(dir coord.Direction, energy float64, fn ResponseFunctor) (float64, error) {
	return d.DiffuseResponse(fn, energy, d.Center.SeparationDeg(dir))
}

// DiffuseResponse averages fn over the disk as seen from a point at
// separation x from its centre. The circle of radius xp about the point
// lies wholly inside the disk for xp < r - x and intersects it in an arc
// for |r - x| < xp < r + x.
func (d Disk) DiffuseResponse(fn ResponseFunctor, energy, x float64) (float64, error) {
	s := d.Radius
	norm := math.Pi * s * s
	rf := &radialFn{fn: fn, energy: energy}
	full := func(xp float64) float64 {
		return xp * rf.at(xp) * 2 * math.Pi / norm
	}
	arc := func(xp float64) float64 {
		if xp == 0 || x == 0 {
			return 0
		}
		c := core.Clamp((x*x+xp*xp-s*s)/(2*x*xp), -1, 1)
		return xp * rf.at(xp) * 2 * math.Acos(c) / norm
	}
	total := 0.0
	if x < s {
		total += integrateRadial(full, 0, s-x)
	}
	total += integrateRadial(arc, math.Abs(s-x), s+x)
	if rf.err != nil {
		return 0, rf.err
	}
	return total, nil
}

// Gaussian is a circular 2D Gaussian of width Sigma (deg) around Center.
type Gaussian struct {
	Center coord.Direction
	Sigma  float64
}

// NewGaussian validates the width.
func NewGaussian(center coord.Direction, sigma float64) (Gaussian, error) {
	if !(sigma > 0) {
		return Gaussian{}, fmt.Errorf("%w: %g", ErrInvalidRadius, sigma)
	}
	return Gaussian{Center: center, Sigma: sigma}, nil
}

func (Gaussian) sealed() {}

// Kind implements Template.
func (Gaussian) Kind() Kind { return KindGaussian }

// Value implements Template.
func (g Gaussian) Value(dir coord.Direction, _ float64) (float64, error) {
	s := g.Sigma * core.DegToRad
	x := g.Center.Separation(dir)
	return math.Exp(-x*x/(2*s*s)) / (2 * math.Pi * s * s), nil
}

// density returns the Gaussian in deg^-2 at offset r (deg).
func (g Gaussian) density(r float64) float64 {
	s2 := g.Sigma * g.Sigma
	return math.Exp(-r*r/(2*s2)) / (2 * math.Pi * s2)
}

// SpatialResponse implements Template.
func (g Gaussian) SpatialResponse(dir coord.Direction, energy float64, fn ResponseFunctor) (float64, error) {
	return g.DiffuseResponse(fn, energy, g.Center.SeparationDeg(dir))
}

// DiffuseResponse integrates fn(xp) times the Gaussian over circles of
// radius xp about a point at separation x from the centre.
func (g Gaussian) DiffuseResponse(fn ResponseFunctor, energy, x float64) (float64, error) {
	rf := &radialFn{fn: fn, energy: energy}
	ext := gaussianExtent * g.Sigma
	ring := func(xp float64) float64 {
		// Beyond phiMax the circle is more than ext from the centre.
		phiMax := math.Pi
		if x > 0 && xp > 0 {
			phiMax = math.Acos(core.Clamp((x*x+xp*xp-ext*ext)/(2*x*xp), -1, 1))
		}
		if phiMax == 0 {
			return 0
		}
		az := quad.Fixed(func(phi float64) float64 {
			r := math.Sqrt(math.Max(x*x+xp*xp-2*x*xp*math.Cos(phi), 0))
			return g.density(r)
		}, 0, phiMax, azimuthPoints, quad.Legendre{}, 0)
		return 2 * xp * rf.at(xp) * az
	}
	total := integrateRadial(ring, math.Max(x-ext, 0), x+ext)
	if rf.err != nil {
		return 0, rf.err
	}
	return total, nil
}
