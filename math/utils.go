package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// AlignUp rounds v up to the next multiple of align. align must be a
// power of two greater than zero.
func AlignUp[T constraints.Integer](v, align T) T {
	return (v + align - 1) &^ (align - 1)
}
