package field

import (
	"math"

	"github.com/voxelforge/isomesh/pkg/math3d"
)

type union struct {
	fields []Field
}

// Union combines fields into the solid covered by any of them. With no
// arguments the result is empty everywhere.
func Union(fields ...Field) Field {
	return union{fields: fields}
}

func (u union) Sample(p math3d.Vec3) float64 {
	d := math.Inf(1)
	for _, f := range u.fields {
		d = math.Min(d, f.Sample(p))
	}
	return d
}

type intersection struct {
	fields []Field
}

// Intersection combines fields into the solid covered by all of them.
func Intersection(fields ...Field) Field {
	return intersection{fields: fields}
}

func (s intersection) Sample(p math3d.Vec3) float64 {
	d := math.Inf(-1)
	for _, f := range s.fields {
		d = math.Max(d, f.Sample(p))
	}
	return d
}

type difference struct {
	a, b Field
}

// Difference is the solid of a with b carved out of it.
func Difference(a, b Field) Field {
	return difference{a: a, b: b}
}

func (d difference) Sample(p math3d.Vec3) float64 {
	return math.Max(d.a.Sample(p), -d.b.Sample(p))
}

type smoothUnion struct {
	a, b Field
	k    float64
}

// SmoothUnion joins two fields with a fillet of radius k blending the
// seam between them. With k = 0 it degenerates to Union.
func SmoothUnion(a, b Field, k float64) Field {
	return smoothUnion{a: a, b: b, k: k}
}

func (s smoothUnion) Sample(p math3d.Vec3) float64 {
	da := s.a.Sample(p)
	db := s.b.Sample(p)
	if s.k <= 0 {
		return math.Min(da, db)
	}
	h := clamp(0.5+0.5*(db-da)/s.k, 0, 1)
	return db*(1-h) + da*h - s.k*h*(1-h)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
