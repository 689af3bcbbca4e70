package components

import "gonum.org/v1/gonum/spatial/r3"

// Body is an agent's physical presence. Movement happens on the X/Z plane;
// Y carries the standing height and is left untouched by steering.
type Body struct {
	Pos        r3.Vec
	Heading    float64 // radians about the vertical axis, atan2(dir.X, dir.Z)
	HalfExtent float64 // collision half-size on X and Z
}

// Ground returns v projected onto the X/Z plane.
func Ground(v r3.Vec) r3.Vec {
	return r3.Vec{X: v.X, Z: v.Z}
}

// Distance returns the Euclidean distance between two points.
func Distance(a, b r3.Vec) float64 {
	return r3.Norm(r3.Sub(a, b))
}
