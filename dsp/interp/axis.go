package interp

import (
	"fmt"
	"math"
)

// EnergyAxis is a strictly ascending sequence of positive energies (MeV).
// The zero value is an empty axis.
type EnergyAxis struct {
	values []float64
}

// NewEnergyAxis validates and copies energies into an axis.
func NewEnergyAxis(energies []float64) (EnergyAxis, error) {
	if len(energies) == 0 {
		return EnergyAxis{}, ErrEmptyAxis
	}
	values := make([]float64, len(energies))
	copy(values, energies)
	for i, e := range values {
		if e <= 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			return EnergyAxis{}, fmt.Errorf("%w: energy[%d] = %g", ErrNonPositive, i, e)
		}
		if i > 0 && e <= values[i-1] {
			return EnergyAxis{}, fmt.Errorf("%w: energy[%d] = %g after %g", ErrNotAscending, i, e, values[i-1])
		}
	}
	return EnergyAxis{values: values}, nil
}

// Len returns the number of energies.
func (a EnergyAxis) Len() int { return len(a.values) }

// At returns the k-th energy.
func (a EnergyAxis) At(k int) float64 { return a.values[k] }

// Min returns the lowest energy.
func (a EnergyAxis) Min() float64 { return a.values[0] }

// Max returns the highest energy.
func (a EnergyAxis) Max() float64 { return a.values[len(a.values)-1] }

// Values returns a copy of the energies.
func (a EnergyAxis) Values() []float64 {
	out := make([]float64, len(a.values))
	copy(out, a.values)
	return out
}

// Contains reports whether energy lies within [Min, Max].
func (a EnergyAxis) Contains(energy float64) bool {
	return len(a.values) > 0 && energy >= a.values[0] && energy <= a.values[len(a.values)-1]
}

// Bracket returns k with At(k) <= energy <= At(k+1). See [Bracket].
func (a EnergyAxis) Bracket(energy float64) (int, error) {
	return Bracket(a.values, energy)
}

// LogFraction returns the position of energy between At(k) and At(k+1) in
// log space. A single-element axis yields 0.
func (a EnergyAxis) LogFraction(k int, energy float64) float64 {
	if len(a.values) < 2 {
		return 0
	}
	lo, hi := a.values[k], a.values[k+1]
	return math.Log(energy/lo) / math.Log(hi/lo)
}
