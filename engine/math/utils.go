package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Wrap folds f into [0, period) for a positive period. Used to keep
// accumulated angles bounded.
func Wrap[T constraints.Float](f, period T) T {
	for f >= period {
		f -= period
	}
	for f < 0 {
		f += period
	}
	return f
}
