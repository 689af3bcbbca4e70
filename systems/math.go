package systems

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Clamp functions for common value ranges

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// lerp interpolates from a to b by t.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Distance functions

// distance returns the Euclidean distance between two points.
func distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}

// groundDelta returns to - from on the X/Z plane.
func groundDelta(from, to r3.Vec) r3.Vec {
	return r3.Vec{X: to.X - from.X, Z: to.Z - from.Z}
}

// steerTowards returns the unit ground direction from one point to another
// and the ground distance. The direction is zero when the points are within
// minDist of each other.
func steerTowards(from, to r3.Vec, minDist float64) (r3.Vec, float64) {
	d := groundDelta(from, to)
	dist := r3.Norm(d)
	if dist <= minDist || dist == 0 {
		return r3.Vec{}, dist
	}
	return r3.Scale(1/dist, d), dist
}

// headingOf returns the rotation about the vertical axis facing dir.
func headingOf(dir r3.Vec) float64 {
	return math.Atan2(dir.X, dir.Z)
}

// Finite reports whether every coordinate is a real number.
func Finite(p r3.Vec) bool {
	for _, v := range [3]float64{p.X, p.Y, p.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
