package coord

import (
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"gonum.org/v1/gonum/spatial/r3"
)

// System identifies a celestial coordinate system.
type System int

const (
	// Equatorial is the J2000 (RA, Dec) frame.
	Equatorial System = iota
	// Galactic is the (l, b) frame.
	Galactic
)

// String returns the conventional name of the system.
func (s System) String() string {
	switch s {
	case Equatorial:
		return "equatorial"
	case Galactic:
		return "galactic"
	default:
		return "unknown"
	}
}

// Rows of the J2000 equatorial -> galactic rotation matrix.
var (
	galRow0 = r3.Vec{X: -0.0548755604162154, Y: -0.8734370902348850, Z: -0.4838350155487132}
	galRow1 = r3.Vec{X: +0.4941094278755837, Y: -0.4448296299600112, Z: +0.7469822444972189}
	galRow2 = r3.Vec{X: -0.8676661490190047, Y: -0.1980763734312015, Z: +0.4559837761750669}
)

// Direction is an immutable point on the celestial sphere, stored as an
// equatorial unit vector.
type Direction struct {
	v r3.Vec
}

// NewEquatorial returns the direction at (ra, dec) degrees.
func NewEquatorial(ra, dec float64) Direction {
	return Direction{v: lonLatToVec(ra, dec)}
}

// NewGalactic returns the direction at galactic (l, b) degrees.
func NewGalactic(l, b float64) Direction {
	g := lonLatToVec(l, b)
	// Transpose of the equatorial -> galactic matrix.
	eq := r3.Vec{
		X: galRow0.X*g.X + galRow1.X*g.Y + galRow2.X*g.Z,
		Y: galRow0.Y*g.X + galRow1.Y*g.Y + galRow2.Y*g.Z,
		Z: galRow0.Z*g.X + galRow1.Z*g.Y + galRow2.Z*g.Z,
	}
	return Direction{v: r3.Unit(eq)}
}

// New returns the direction at (lon, lat) degrees in the given system.
func New(lon, lat float64, sys System) Direction {
	if sys == Galactic {
		return NewGalactic(lon, lat)
	}
	return NewEquatorial(lon, lat)
}

// FromVec returns the direction of the equatorial vector v. v need not be
// normalized but must be non-zero.
func FromVec(v r3.Vec) Direction {
	return Direction{v: r3.Unit(v)}
}

// Vec returns the equatorial unit vector.
func (d Direction) Vec() r3.Vec { return d.v }

// RA returns the right ascension in degrees, in [0, 360).
func (d Direction) RA() float64 {
	lon, _ := vecToLonLat(d.v)
	return lon
}

// Dec returns the declination in degrees.
func (d Direction) Dec() float64 {
	_, lat := vecToLonLat(d.v)
	return lat
}

// L returns the galactic longitude in degrees, in [0, 360).
func (d Direction) L() float64 {
	lon, _ := vecToLonLat(d.galactic())
	return lon
}

// B returns the galactic latitude in degrees.
func (d Direction) B() float64 {
	_, lat := vecToLonLat(d.galactic())
	return lat
}

// LonLat returns the longitude and latitude in degrees in the given system.
func (d Direction) LonLat(sys System) (lon, lat float64) {
	if sys == Galactic {
		return vecToLonLat(d.galactic())
	}
	return vecToLonLat(d.v)
}

// Separation returns the angular distance to other in radians.
func (d Direction) Separation(other Direction) float64 {
	return math.Atan2(r3.Norm(r3.Cross(d.v, other.v)), r3.Dot(d.v, other.v))
}

// SeparationDeg returns the angular distance to other in degrees.
func (d Direction) SeparationDeg(other Direction) float64 {
	return d.Separation(other) * core.RadToDeg
}

// Offset returns the direction reached by moving theta degrees along the
// great circle leaving d at position angle phi degrees (measured from north
// through east).
func (d Direction) Offset(theta, phi float64) Direction {
	north, east := d.tangentBasis()
	t := theta * core.DegToRad
	p := phi * core.DegToRad
	dir := r3.Add(r3.Scale(math.Cos(p), north), r3.Scale(math.Sin(p), east))
	v := r3.Add(r3.Scale(math.Cos(t), d.v), r3.Scale(math.Sin(t), dir))
	return FromVec(v)
}

// tangentBasis returns unit vectors towards north and east at d. At the
// poles north is taken along -x (towards ra = 180) for determinism.
func (d Direction) tangentBasis() (north, east r3.Vec) {
	pole := r3.Vec{Z: 1}
	east = r3.Cross(pole, d.v)
	if r3.Norm(east) < 1e-12 {
		east = r3.Vec{Y: 1}
	}
	east = r3.Unit(east)
	north = r3.Cross(d.v, east)
	return north, east
}

func (d Direction) galactic() r3.Vec {
	return r3.Vec{X: r3.Dot(galRow0, d.v), Y: r3.Dot(galRow1, d.v), Z: r3.Dot(galRow2, d.v)}
}

func lonLatToVec(lon, lat float64) r3.Vec {
	lo := lon * core.DegToRad
	la := lat * core.DegToRad
	return r3.Vec{
		X: math.Cos(la) * math.Cos(lo),
		Y: math.Cos(la) * math.Sin(lo),
		Z: math.Sin(la),
	}
}

func vecToLonLat(v r3.Vec) (lon, lat float64) {
	lat = math.Asin(core.Clamp(v.Z, -1, 1)) * core.RadToDeg
	lon = math.Atan2(v.Y, v.X) * core.RadToDeg
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon -= 360
	}
	return lon, lat
}
