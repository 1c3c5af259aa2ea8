package interp

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Errors returned by interpolation functions.
var (
	ErrOutOfRange    = errors.New("interp: value outside tabulated range")
	ErrNonPositive   = errors.New("interp: non-positive abscissa or ordinate")
	ErrNotAscending  = errors.New("interp: axis is not strictly ascending")
	ErrEmptyAxis     = errors.New("interp: empty axis")
	ErrInvalidPoints = errors.New("interp: invalid number of points")
)

// Linear interpolates between (x1, y1) and (x2, y2) at x.
// If x1 == x2, y1 is returned.
func Linear(x, x1, x2, y1, y2 float64) float64 {
	if x2 == x1 {
		return y1
	}
	return y1 + (x-x1)/(x2-x1)*(y2-y1)
}

// Bilinear interpolates within a unit cell. tt and uu are the fractional
// offsets along the first and second axis; the corner values are ordered
// counter-clockwise starting at the origin: y1=(0,0), y2=(1,0), y3=(1,1),
// y4=(0,1).
func Bilinear(tt, uu, y1, y2, y3, y4 float64) float64 {
	return (1-tt)*(1-uu)*y1 + tt*(1-uu)*y2 + tt*uu*y3 + (1-tt)*uu*y4
}

// PowerLaw interpolates between (x1, y1) and (x2, y2) assuming y = n0*x^gamma.
// Two zero ordinates give zero. Any other non-positive abscissa or ordinate
// is reported as ErrNonPositive.
func PowerLaw(x, x1, x2, y1, y2 float64) (float64, error) {
	if y1 == 0 && y2 == 0 {
		return 0, nil
	}
	if x1 <= 0 || x2 <= 0 || y1 <= 0 || y2 <= 0 {
		return 0, fmt.Errorf("%w: x1=%g x2=%g y1=%g y2=%g", ErrNonPositive, x1, x2, y1, y2)
	}
	if x1 == x2 {
		return y1, nil
	}
	gamma := math.Log(y2/y1) / math.Log(x2/x1)
	return y1 * math.Pow(x/x1, gamma), nil
}

// Bracket returns the index k such that xs[k] <= x <= xs[k+1].
// For x equal to the last element, k is len(xs)-2 so that xs[k+1] is valid.
// A single-element axis only brackets its own value and returns 0.
func Bracket(xs []float64, x float64) (int, error) {
	n := len(xs)
	if n == 0 {
		return 0, ErrEmptyAxis
	}
	if math.IsNaN(x) || x < xs[0] || x > xs[n-1] {
		return 0, fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfRange, x, xs[0], xs[n-1])
	}
	if n == 1 {
		return 0, nil
	}
	k := sort.SearchFloat64s(xs, x)
	if k < n && xs[k] == x {
		if k == n-1 {
			return n - 2, nil
		}
		return k, nil
	}
	return k - 1, nil
}

// LogSpace returns n logarithmically spaced points from lo to hi inclusive.
func LogSpace(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, ErrInvalidPoints
	}
	if lo <= 0 || hi <= lo {
		return nil, fmt.Errorf("%w: log grid [%g, %g]", ErrNonPositive, lo, hi)
	}
	return floats.LogSpan(make([]float64, n), lo, hi), nil
}

// LinSpace returns n evenly spaced points from lo to hi inclusive.
func LinSpace(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, ErrInvalidPoints
	}
	return floats.Span(make([]float64, n), lo, hi), nil
}
