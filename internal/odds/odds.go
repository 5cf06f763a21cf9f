// Package odds provides pure conversions between implied probabilities and
// American / decimal odds representations.
package odds

import "math"

// ToAmerican converts an implied probability to signed American odds. It
// fails closed: probabilities outside (0,1) return 0, the "unknown" sentinel.
// Favorites (p >= 0.5) produce negative odds, underdogs positive, rounded to
// the nearest integer.
func ToAmerican(p float64) int {
	if p <= 0 || p >= 1 {
		return 0
	}
	if p >= 0.5 {
		return int(math.Round(-100 * p / (1 - p)))
	}
	return int(math.Round(100 * (1 - p) / p))
}

// ToDecimal converts signed American odds to decimal odds. Zero (the unknown
// sentinel) returns 0.
func ToDecimal(american int) float64 {
	if american == 0 {
		return 0
	}
	a := float64(american)
	if a > 0 {
		return a/100 + 1
	}
	return 100/math.Abs(a) + 1
}

// ImpliedFromAmerican returns the implied probability of signed American
// odds, or 0 for the unknown sentinel.
func ImpliedFromAmerican(american int) float64 {
	d := ToDecimal(american)
	if d <= 0 {
		return 0
	}
	return 1 / d
}
