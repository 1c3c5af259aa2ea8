package diffuse

import (
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
	"github.com/cwbudde/algo-likelihood/dsp/interp"
	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// Grid samples the source region: a cone about the ROI centre in
// cos(colatitude) mu and azimuth phi (rad).
type Grid struct {
	mu   []float64
	phi  []float64
	dirs []coord.Direction // [mu][phi], row major
}

func newGrid(center coord.Direction, cfg Config) *Grid {
	muMin := math.Cos(cfg.Radius * core.DegToRad)
	// Points counts are validated by the options, so the spans cannot fail.
	mu, _ := interp.LinSpace(muMin, 1, cfg.MuPoints)
	phi, _ := interp.LinSpace(0, 2*math.Pi, cfg.PhiPoints)

	rot := coord.NewRotation(center)
	dirs := make([]coord.Direction, 0, len(mu)*len(phi))
	for _, m := range mu {
		for _, p := range phi {
			dirs = append(dirs, rot.Local(m, p))
		}
	}
	return &Grid{mu: mu, phi: phi, dirs: dirs}
}

// Mu returns the cos(colatitude) samples.
func (g *Grid) Mu() []float64 { return core.Clone(g.mu) }

// Phi returns the azimuth samples (rad).
func (g *Grid) Phi() []float64 { return core.Clone(g.phi) }

// Len returns the number of sampled directions.
func (g *Grid) Len() int { return len(g.dirs) }

// Direction returns the sky direction at mu index i and phi index j.
func (g *Grid) Direction(i, j int) coord.Direction {
	return g.dirs[i*len(g.phi)+j]
}

// SolidAngle returns the solid angle (sr) covered by the grid.
func (g *Grid) SolidAngle() float64 {
	return 2 * math.Pi * (1 - g.mu[0])
}
