package geo

import "math"

// Epsilon is the tolerance for AlmostEqual and the zero-length checks
const Epsilon = 1e-7

// AlmostEqual reports whether a and b differ by less than Epsilon
func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

