package field

import "github.com/voxelforge/isomesh/pkg/math3d"

type translated struct {
	f      Field
	offset math3d.Vec3
}

// Translate moves a field by offset.
func Translate(f Field, offset math3d.Vec3) Field {
	return translated{f: f, offset: offset}
}

func (t translated) Sample(p math3d.Vec3) float64 {
	return t.f.Sample(p.Sub(t.offset))
}

type scaled struct {
	f      Field
	factor float64
}

// Scale grows a field uniformly by factor about the origin. The sampled
// value is rescaled so distances stay true.
func Scale(f Field, factor float64) Field {
	return scaled{f: f, factor: factor}
}

func (s scaled) Sample(p math3d.Vec3) float64 {
	return s.f.Sample(p.Div(s.factor)) * s.factor
}

type rounded struct {
	f      Field
	radius float64
}

// Round inflates a field's surface outward by radius, rounding its
// edges and corners.
func Round(f Field, radius float64) Field {
	return rounded{f: f, radius: radius}
}

func (r rounded) Sample(p math3d.Vec3) float64 {
	return r.f.Sample(p) - r.radius
}
