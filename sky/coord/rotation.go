package coord

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Rotation maps directions expressed in a local frame, whose +z pole sits on
// an anchor direction, onto the sky.
type Rotation struct {
	anchor Direction
	rot    r3.Rotation
	ident  bool
}

// NewRotation returns the rotation carrying the local +z pole onto anchor.
func NewRotation(anchor Direction) Rotation {
	z := r3.Vec{Z: 1}
	axis := r3.Cross(z, anchor.v)
	s := r3.Norm(axis)
	c := r3.Dot(z, anchor.v)
	if s < 1e-15 {
		if c > 0 {
			return Rotation{anchor: anchor, ident: true}
		}
		// Antipodal anchor: half turn about x.
		return Rotation{anchor: anchor, rot: r3.NewRotation(math.Pi, r3.Vec{X: 1})}
	}
	return Rotation{anchor: anchor, rot: r3.NewRotation(math.Atan2(s, c), r3.Scale(1/s, axis))}
}

// Anchor returns the direction the local pole is carried to.
func (r Rotation) Anchor() Direction { return r.anchor }

// Apply rotates the local unit vector v onto the sky.
func (r Rotation) Apply(v r3.Vec) Direction {
	if r.ident {
		return FromVec(v)
	}
	return FromVec(r.rot.Rotate(v))
}

// Local returns the sky direction at local colatitude cosine mu and azimuth
// phi (radians) about the anchor.
func (r Rotation) Local(mu, phi float64) Direction {
	if mu > 1 {
		mu = 1
	} else if mu < -1 {
		mu = -1
	}
	st := math.Sqrt(1 - mu*mu)
	return r.Apply(r3.Vec{X: st * math.Cos(phi), Y: st * math.Sin(phi), Z: mu})
}
