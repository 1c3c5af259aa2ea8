package irf

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-likelihood/sky/coord"
)

// ErrNilRegistry is returned when a calculator is built without responses.
var ErrNilRegistry = errors.New("irf: nil registry")

// ExposureCalculator evaluates exposure (cm^2 s) for arbitrary directions
// from a registry and a livetime history.
type ExposureCalculator struct {
	reg   *Registry
	hist  History
	nbins int
}

// NewExposureCalculator returns a calculator using nbins cos(inclination)
// bins; nbins <= 0 selects DefaultProfileBins.
func NewExposureCalculator(reg *Registry, hist History, nbins int) (*ExposureCalculator, error) {
	if reg == nil {
		return nil, ErrNilRegistry
	}
	if hist == nil {
		return nil, ErrEmptyHistory
	}
	if nbins <= 0 {
		nbins = DefaultProfileBins
	}
	return &ExposureCalculator{reg: reg, hist: hist, nbins: nbins}, nil
}

// Value returns the exposure at energy (MeV) towards dir.
func (c *ExposureCalculator) Value(energy float64, dir coord.Direction) (float64, error) {
	p, err := NewLivetimeProfile(c.hist, dir, c.nbins)
	if err != nil {
		return 0, fmt.Errorf("irf: exposure: %w", err)
	}
	return p.Exposure(c.reg, energy), nil
}
