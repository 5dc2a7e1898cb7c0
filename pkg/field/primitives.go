package field

import (
	"math"

	"github.com/voxelforge/isomesh/pkg/math3d"
)

// Sphere is the signed distance to a sphere surface.
type Sphere struct {
	Center math3d.Vec3
	Radius float64
}

func (s Sphere) Sample(p math3d.Vec3) float64 {
	return p.Sub(s.Center).Len() - s.Radius
}

// Box is the signed distance to an axis-aligned box with half-extents
// Half around Center.
type Box struct {
	Center math3d.Vec3
	Half   math3d.Vec3
}

func (b Box) Sample(p math3d.Vec3) float64 {
	q := p.Sub(b.Center).Abs().Sub(b.Half)
	outside := q.Max(math3d.Zero3()).Len()
	inside := math.Min(q.MaxComponent(), 0)
	return outside + inside
}

// Torus is the signed distance to a torus lying in the XZ plane around
// Center. Major is the radius of the ring, Minor the radius of the tube.
type Torus struct {
	Center math3d.Vec3
	Major  float64
	Minor  float64
}

func (t Torus) Sample(p math3d.Vec3) float64 {
	q := p.Sub(t.Center)
	ring := math.Hypot(q.X, q.Z) - t.Major
	return math.Hypot(ring, q.Y) - t.Minor
}

// Cylinder is the signed distance to a capped cylinder along the Y axis
// through Center.
type Cylinder struct {
	Center     math3d.Vec3
	Radius     float64
	HalfHeight float64
}

func (c Cylinder) Sample(p math3d.Vec3) float64 {
	q := p.Sub(c.Center)
	dr := math.Hypot(q.X, q.Z) - c.Radius
	dy := math.Abs(q.Y) - c.HalfHeight
	outside := math.Hypot(math.Max(dr, 0), math.Max(dy, 0))
	inside := math.Min(math.Max(dr, dy), 0)
	return outside + inside
}

// Plane is the signed distance to an infinite plane. The side the
// normal points toward is outside.
type Plane struct {
	origin math3d.Vec3
	normal math3d.Vec3
}

// NewPlane builds a plane through point with the given normal. The
// normal is normalized here so Sample returns true distances.
func NewPlane(point, normal math3d.Vec3) Plane {
	return Plane{origin: point, normal: normal.Normalize()}
}

func (pl Plane) Sample(p math3d.Vec3) float64 {
	return p.Sub(pl.origin).Dot(pl.normal)
}

// Gyroid is a triply periodic minimal surface thickened into a shell.
// Scale sets the period of the lattice and Thickness the half-width of
// the shell. It is not a true distance function but its zero set is
// well behaved for meshing.
type Gyroid struct {
	Scale     float64
	Thickness float64
}

func (g Gyroid) Sample(p math3d.Vec3) float64 {
	k := 2 * math.Pi / g.Scale
	x, y, z := p.X*k, p.Y*k, p.Z*k
	v := math.Sin(x)*math.Cos(y) + math.Sin(y)*math.Cos(z) + math.Sin(z)*math.Cos(x)
	return math.Abs(v)/k - g.Thickness
}
