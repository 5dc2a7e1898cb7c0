// Package field provides scalar field primitives and combinators for
// describing implicit surfaces. A field maps every point in space to a
// value; by convention the value is negative inside the solid, positive
// outside, and zero on the surface, so meshing a field at iso level 0
// extracts its boundary.
//
// The primitives are signed distance functions and the combinators
// preserve that property approximately, which keeps the extracted
// surfaces well conditioned at any resolution.
package field

import "github.com/voxelforge/isomesh/pkg/math3d"

// Field is a scalar function over 3D space. Sample must be safe for
// concurrent use; the grid mesher evaluates fields from many goroutines.
type Field interface {
	Sample(p math3d.Vec3) float64
}

// Func adapts a plain function into a Field.
type Func func(math3d.Vec3) float64

// Sample invokes the wrapped function.
func (f Func) Sample(p math3d.Vec3) float64 {
	return f(p)
}
