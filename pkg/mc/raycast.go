package mc

import (
	"math"

	"github.com/voxelforge/isomesh/pkg/math3d"
)

// parallelEps rejects ray/triangle determinants too close to zero to
// invert safely (ray parallel to the triangle plane).
const parallelEps = 1e-12

// RayIntersectTriangle tests the ray origin+t*dir, t >= 0, against a
// triangle using the Möller-Trumbore barycentric test. The test is
// two-sided: back-facing triangles count as hits, so surfaces produced
// by CaseGeometry can be queried from either side. On a hit it returns
// the intersection point and true; a ray parallel to (or lying in) the
// triangle plane reports no intersection rather than dividing by zero.
func RayIntersectTriangle(origin, dir math3d.Vec3, tri *[3]math3d.Vec3) (math3d.Vec3, bool) {
	e1 := tri[1].Sub(tri[0])
	e2 := tri[2].Sub(tri[0])

	pvec := dir.Cross(e2)
	det := e1.Dot(pvec)
	if det > -parallelEps && det < parallelEps {
		return math3d.Vec3{}, false
	}
	invDet := 1 / det

	tvec := origin.Sub(tri[0])
	u := tvec.Dot(pvec) * invDet
	if u < 0 || u > 1 {
		return math3d.Vec3{}, false
	}

	qvec := tvec.Cross(e1)
	v := dir.Dot(qvec) * invDet
	if v < 0 || u+v > 1 {
		return math3d.Vec3{}, false
	}

	t := e2.Dot(qvec) * invDet
	if t < 0 {
		return math3d.Vec3{}, false
	}
	return origin.Add(dir.Scale(t)), true
}

// RayIntersectAABB tests the ray origin+t*dir, t >= 0, against the box
// [boxMin, boxMax] using the slab method. On a hit it returns the entry
// point on the box surface and true; if the origin is inside the box,
// the entry distance clamps to zero and the origin itself is returned.
//
// A direction component of exactly zero means the ray is parallel to
// that axis's slab: it is rejected unless the origin already lies
// within the slab's span, in which case the axis imposes no constraint.
func RayIntersectAABB(boxMin, boxMax, origin, dir math3d.Vec3) (math3d.Vec3, bool) {
	tMin := math.Inf(-1)
	tMax := math.Inf(1)

	ok := true
	tMin, tMax, ok = clipSlab(boxMin.X, boxMax.X, origin.X, dir.X, tMin, tMax)
	if !ok {
		return math3d.Vec3{}, false
	}
	tMin, tMax, ok = clipSlab(boxMin.Y, boxMax.Y, origin.Y, dir.Y, tMin, tMax)
	if !ok {
		return math3d.Vec3{}, false
	}
	tMin, tMax, ok = clipSlab(boxMin.Z, boxMax.Z, origin.Z, dir.Z, tMin, tMax)
	if !ok {
		return math3d.Vec3{}, false
	}

	if tMin > tMax || tMax < 0 {
		return math3d.Vec3{}, false
	}
	if tMin < 0 {
		// Origin inside the box.
		tMin = 0
	}
	return origin.Add(dir.Scale(tMin)), true
}

// clipSlab intersects the running [tMin, tMax] interval with one axis
// slab [lo, hi]. A zero direction component cannot shrink the interval;
// it either rejects outright (origin outside the slab) or passes the
// interval through unchanged.
func clipSlab(lo, hi, o, d, tMin, tMax float64) (float64, float64, bool) {
	if d == 0 {
		if o < lo || o > hi {
			return 0, 0, false
		}
		return tMin, tMax, true
	}
	t1 := (lo - o) / d
	t2 := (hi - o) / d
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	if t1 > tMin {
		tMin = t1
	}
	if t2 < tMax {
		tMax = t2
	}
	return tMin, tMax, true
}
