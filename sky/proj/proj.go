package proj

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// Errors returned by projections.
var (
	ErrUnknownType   = errors.New("proj: unknown projection type")
	ErrInvalidPixel  = errors.New("proj: pixel outside projection domain")
	ErrInvalidSky    = errors.New("proj: direction cannot be projected")
	ErrInvalidHeader = errors.New("proj: invalid projection parameters")
)

// Type identifies a projection.
type Type int

const (
	// CAR is the plate carrée (cylindrical equidistant) projection.
	CAR Type = iota
	// TAN is the gnomonic projection.
	TAN
	// AIT is the Hammer-Aitoff projection.
	AIT
)

// String returns the three-letter WCS code.
func (t Type) String() string {
	switch t {
	case CAR:
		return "CAR"
	case TAN:
		return "TAN"
	case AIT:
		return "AIT"
	default:
		return "???"
	}
}

// ParseType parses a three-letter WCS code, or a full CTYPE value such as
// "RA---TAN" or "GLON-CAR".
func ParseType(s string) (Type, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 3 {
		s = s[len(s)-3:]
	}
	switch s {
	case "CAR":
		return CAR, nil
	case "TAN":
		return TAN, nil
	case "AIT":
		return AIT, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// theta0 is the native latitude of the reference point.
func (t Type) theta0() float64 {
	if t == TAN {
		return 90
	}
	return 0
}

// WCS holds the linear and spherical parameters of a projection. Angles are
// in degrees.
type WCS struct {
	Type     Type
	Crpix1   float64
	Crpix2   float64
	Crval1   float64
	Crval2   float64
	Cdelt1   float64
	Cdelt2   float64
	Crota2   float64
	Galactic bool

	alphaP, deltaP, phiP float64
	cosRot, sinRot       float64
}

// New validates p and precomputes the native <-> celestial rotation.
func New(p WCS) (*WCS, error) {
	if p.Type < CAR || p.Type > AIT {
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, int(p.Type))
	}
	if p.Cdelt1 == 0 || p.Cdelt2 == 0 {
		return nil, fmt.Errorf("%w: zero pixel scale", ErrInvalidHeader)
	}
	if math.Abs(p.Crval2) > 90 {
		return nil, fmt.Errorf("%w: CRVAL2 = %g", ErrInvalidHeader, p.Crval2)
	}
	w := p
	rot := w.Crota2 * math.Pi / 180
	w.cosRot, w.sinRot = math.Cos(rot), math.Sin(rot)
	w.alphaP, w.deltaP, w.phiP = celestialPole(w.Crval1, w.Crval2, w.Type.theta0())
	return &w, nil
}

// System returns the celestial system of the projection.
func (w *WCS) System() coord.System {
	if w.Galactic {
		return coord.Galactic
	}
	return coord.Equatorial
}

// CType returns the CTYPE1 and CTYPE2 header values.
func (w *WCS) CType() (string, string) {
	if w.Galactic {
		return "GLON-" + w.Type.String(), "GLAT-" + w.Type.String()
	}
	return "RA---" + w.Type.String(), "DEC--" + w.Type.String()
}

// WithGrid returns a copy of w with new reference pixel and pixel scale.
func (w *WCS) WithGrid(crpix1, crpix2, cdelt1, cdelt2 float64) (*WCS, error) {
	p := *w
	p.Crpix1, p.Crpix2 = crpix1, crpix2
	p.Cdelt1, p.Cdelt2 = cdelt1, cdelt2
	return New(p)
}

// Valid reports whether pixel (x, y) maps onto the sphere.
func (w *WCS) Valid(x, y float64) bool {
	_, _, err := w.PixToSky(x, y)
	return err == nil
}

// PixToSky maps pixel (x, y) to (lon, lat) in the projection's system.
func (w *WCS) PixToSky(x, y float64) (lon, lat float64, err error) {
	dx := w.Cdelt1 * (x - w.Crpix1)
	dy := w.Cdelt2 * (y - w.Crpix2)
	ix := dx*w.cosRot - dy*w.sinRot
	iy := dx*w.sinRot + dy*w.cosRot

	phi, theta, err := w.deproject(ix, iy)
	if err != nil {
		return 0, 0, err
	}
	lon, lat = nativeToCelestial(phi, theta, w.alphaP, w.deltaP, w.phiP)
	return lon, lat, nil
}

// SkyToPix maps (lon, lat) in the projection's system to pixel coordinates.
func (w *WCS) SkyToPix(lon, lat float64) (x, y float64, err error) {
	phi, theta := celestialToNative(lon, lat, w.alphaP, w.deltaP, w.phiP)
	ix, iy, err := w.project(phi, theta)
	if err != nil {
		return 0, 0, err
	}
	dx := ix*w.cosRot + iy*w.sinRot
	dy := -ix*w.sinRot + iy*w.cosRot
	return dx/w.Cdelt1 + w.Crpix1, dy/w.Cdelt2 + w.Crpix2, nil
}

// Project maps a direction to pixel coordinates.
func (w *WCS) Project(dir coord.Direction) (x, y float64, err error) {
	lon, lat := dir.LonLat(w.System())
	return w.SkyToPix(lon, lat)
}

// Direction maps pixel (x, y) to a sky direction.
func (w *WCS) Direction(x, y float64) (coord.Direction, error) {
	lon, lat, err := w.PixToSky(x, y)
	if err != nil {
		return coord.Direction{}, err
	}
	return coord.New(lon, lat, w.System()), nil
}

// deproject maps intermediate world coordinates (degrees) to native
// spherical coordinates.
func (w *WCS) deproject(x, y float64) (phi, theta float64, err error) {
	switch w.Type {
	case CAR:
		if math.Abs(y) > 90 {
			return 0, 0, ErrInvalidPixel
		}
		return x, y, nil
	case TAN:
		r := math.Hypot(x, y)
		if r == 0 {
			return 0, 90, nil
		}
		return atan2d(x, -y), atan2d(180/math.Pi, r), nil
	case AIT:
		xr := x * math.Pi / 180
		yr := y * math.Pi / 180
		s := 1 - xr*xr/16 - yr*yr/4
		if s < 0.5 {
			return 0, 0, ErrInvalidPixel
		}
		z := math.Sqrt(s)
		phi = 2 * atan2d(z*xr/2, 2*z*z-1)
		theta = math.Asin(core.Clamp(yr*z, -1, 1)) * core.RadToDeg
		return phi, theta, nil
	}
	return 0, 0, ErrUnknownType
}

// project maps native spherical coordinates to intermediate world
// coordinates (degrees).
func (w *WCS) project(phi, theta float64) (x, y float64, err error) {
	switch w.Type {
	case CAR:
		return normalize180(phi), theta, nil
	case TAN:
		if theta <= 0 {
			return 0, 0, ErrInvalidSky
		}
		r := 180 / math.Pi / math.Tan(theta*math.Pi/180)
		p := phi * core.DegToRad
		return r * math.Sin(p), -r * math.Cos(p), nil
	case AIT:
		p := normalize180(phi) * math.Pi / 180
		t := theta * core.DegToRad
		g := math.Sqrt(2 / (1 + math.Cos(t)*math.Cos(p/2)))
		return 2 * g * math.Cos(t) * math.Sin(p/2) * core.RadToDeg, g * math.Sin(t) * core.RadToDeg, nil
	}
	return 0, 0, ErrUnknownType
}

// celestialPole returns the celestial coordinates of the native pole and the
// native longitude of the celestial pole for reference point (alpha0,
// delta0) at native latitude theta0, with LONPOLE and LATPOLE defaults.
func celestialPole(alpha0, delta0, theta0 float64) (alphaP, deltaP, phiP float64) {
	if theta0 == 90 {
		return alpha0, delta0, 180
	}
	// phi0 = 0 for the cylindrical and pseudo-cylindrical projections here.
	phiP = 0
	if delta0 < theta0 {
		phiP = 180
	}
	t0 := theta0 * math.Pi / 180
	d0 := delta0 * math.Pi / 180
	dphi := phiP * math.Pi / 180

	a := math.Atan2(math.Sin(t0), math.Cos(t0)*math.Cos(dphi))
	denom := math.Sqrt(1 - math.Pow(math.Cos(t0)*math.Sin(dphi), 2))
	b := math.Acos(core.Clamp(math.Sin(d0)/denom, -1, 1))

	// LATPOLE defaults to +90: take the solution nearest the north pole.
	d1, d2 := a+b, a-b
	dp := d1
	if !inLatRange(d1) || (inLatRange(d2) && math.Abs(d2-math.Pi/2) < math.Abs(d1-math.Pi/2)) {
		dp = d2
	}
	deltaP = dp * core.RadToDeg

	switch {
	case math.Abs(deltaP-90) < 1e-12:
		alphaP = alpha0 + phiP - 180
	case math.Abs(deltaP+90) < 1e-12:
		alphaP = alpha0 - phiP
	default:
		num := math.Sin(dphi) * math.Cos(t0) / math.Cos(d0)
		den := (math.Sin(t0) - math.Sin(dp)*math.Sin(d0)) / (math.Cos(dp) * math.Cos(d0))
		alphaP = alpha0 - atan2d(num, den)
	}
	return alphaP, deltaP, phiP
}

func inLatRange(x float64) bool {
	return x >= -math.Pi/2-1e-12 && x <= math.Pi/2+1e-12
}

func nativeToCelestial(phi, theta, alphaP, deltaP, phiP float64) (lon, lat float64) {
	t := theta * core.DegToRad
	dp := deltaP * math.Pi / 180
	dphi := (phi - phiP) * math.Pi / 180

	x := math.Sin(t)*math.Cos(dp) - math.Cos(t)*math.Sin(dp)*math.Cos(dphi)
	y := -math.Cos(t) * math.Sin(dphi)
	lon = alphaP + math.Atan2(y, x)*180/math.Pi
	lat = math.Asin(core.Clamp(math.Sin(t)*math.Sin(dp)+math.Cos(t)*math.Cos(dp)*math.Cos(dphi), -1, 1)) * core.RadToDeg
	return normalize360(lon), lat
}

func celestialToNative(lon, lat, alphaP, deltaP, phiP float64) (phi, theta float64) {
	d := lat * core.DegToRad
	dp := deltaP * math.Pi / 180
	da := (lon - alphaP) * math.Pi / 180

	x := math.Sin(d)*math.Cos(dp) - math.Cos(d)*math.Sin(dp)*math.Cos(da)
	y := -math.Cos(d) * math.Sin(da)
	phi = phiP + math.Atan2(y, x)*180/math.Pi
	theta = math.Asin(core.Clamp(math.Sin(d)*math.Sin(dp)+math.Cos(d)*math.Cos(dp)*math.Cos(da), -1, 1)) * core.RadToDeg
	return normalize180(phi), theta
}

func atan2d(y, x float64) float64 {
	return math.Atan2(y, x) * core.RadToDeg
}

func normalize360(x float64) float64 {
	x = math.Mod(x, 360)
	if x < 0 {
		x += 360
	}
	return x
}

// normalize180 maps x into [-180, 180).
func normalize180(x float64) float64 {
	x = math.Mod(x+180, 360)
	if x < 0 {
		x += 360
	}
	return x - 180
}
