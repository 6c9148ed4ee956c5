package helper

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// EuclideanDistance returns the L2 distance between two descriptors. Vectors of
// mismatched length never match anything, so the distance is +Inf rather than
// a panic deep inside a verification loop.
func EuclideanDistance(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	return floats.Distance(a, b, 2)
}
