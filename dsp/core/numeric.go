package core

import "math"

const defaultEpsilon = 1e-12

// Angle conversion factors.
const (
	DegToRad = math.Pi / 180
	RadToDeg = 180 / math.Pi
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// CapSolidAngle returns the solid angle (sr) of a spherical cap of angular
// radius radius degrees.
func CapSolidAngle(radius float64) float64 {
	return 2 * math.Pi * (1 - math.Cos(radius*DegToRad))
}

// Wrap returns x reduced into [0, period).
func Wrap(x, period float64) float64 {
	x = math.Mod(x, period)
	if x < 0 {
		x += period
	}
	if x >= period {
		x -= period
	}
	return x
}

// WrapIndex returns i reduced into [0, n).
func WrapIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
