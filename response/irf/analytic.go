package irf

import (
	"math"

	"github.com/cwbudde/algo-likelihood/dsp/core"
)

// Analytic is a closed-form response: effective area rising with energy and
// falling as cos(inclination), a Gaussian PSF narrowing as a power law in
// energy, and Gaussian energy dispersion.
type Analytic struct {
	// Area is the on-axis high-energy effective area (cm^2).
	Area float64
	// TurnOn is the energy scale (MeV) of the effective-area rise.
	TurnOn float64
	// Sigma100 is the PSF width (deg) at 100 MeV on axis.
	Sigma100 float64
	// Index is the power-law index of the PSF width with energy.
	Index float64
	// Floor is the high-energy PSF width limit (deg).
	Floor float64
	// Resolution is the fractional energy resolution sigma_E/E.
	Resolution float64
	// MaxInc is the largest valid inclination (deg).
	MaxInc float64
}

// DefaultAnalytic returns a response with LAT-like scales.
func DefaultAnalytic() Analytic {
	return Analytic{
		Area:       8000,
		TurnOn:     150,
		Sigma100:   3.5,
		Index:      0.8,
		Floor:      0.1,
		Resolution: 0.1,
		MaxInc:     70,
	}
}

// Aeff implements Response.
func (a Analytic) Aeff(energy, inclination float64) float64 {
	if inclination > a.MaxInc || energy <= 0 {
		return 0
	}
	return a.Area * (1 - math.Exp(-energy/a.TurnOn)) * math.Cos(inclination*core.DegToRad)
}

// Sigma returns the PSF width (deg) at energy and inclination.
func (a Analytic) Sigma(energy, inclination float64) float64 {
	s := a.Sigma100 * math.Pow(energy/100, -a.Index)
	s = math.Hypot(s, a.Floor)
	// Off-axis events are reconstructed less well.
	return s * (1 + 0.3*(1-math.Cos(inclination*core.DegToRad)))
}

// Psf implements Response.
func (a Analytic) Psf(separation, energy, inclination float64) float64 {
	s := a.Sigma(energy, inclination) * core.DegToRad
	x := separation * core.DegToRad
	return math.Exp(-x*x/(2*s*s)) / (2 * math.Pi * s * s)
}

// Edisp implements Response.
func (a Analytic) Edisp(appEnergy, trueEnergy, _ float64) float64 {
	if trueEnergy <= 0 {
		return 0
	}
	s := a.Resolution * trueEnergy
	d := appEnergy - trueEnergy
	return math.Exp(-d*d/(2*s*s)) / (math.Sqrt(2*math.Pi) * s)
}

// MaxInclination implements Response.
func (a Analytic) MaxInclination() float64 { return a.MaxInc }
