// Package pick answers ray queries against an extracted mesh. It
// builds a bounding volume hierarchy over the triangles once and then
// resolves each ray to the nearest intersection, which is what mouse
// picking and surface probes need.
package pick

import (
	"sort"

	"github.com/voxelforge/isomesh/pkg/math3d"
	"github.com/voxelforge/isomesh/pkg/mc"
	"github.com/voxelforge/isomesh/pkg/models"
)

// maxLeafSize caps how many triangles a leaf holds before it splits.
const maxLeafSize = 8

// Hit describes the nearest intersection found by Pick.
type Hit struct {
	Point    math3d.Vec3
	Triangle int     // face index into the picked mesh
	T        float64 // distance from the ray origin
}

// Picker holds a mesh and the hierarchy built over its triangles. It is
// safe for concurrent Pick calls; the hierarchy is immutable after
// construction.
type Picker struct {
	mesh *models.Mesh
	root *node
}

type node struct {
	min, max math3d.Vec3
	left     *node
	right    *node
	tris     []int // non-nil means leaf
}

type prim struct {
	index    int
	min, max math3d.Vec3
	centroid math3d.Vec3
}

// NewPicker builds the hierarchy for m. The mesh must not be mutated
// while the picker is in use.
func NewPicker(m *models.Mesh) *Picker {
	prims := make([]prim, m.TriangleCount())
	for i := range prims {
		tri := m.Triangle(i)
		lo := tri[0].Min(tri[1]).Min(tri[2])
		hi := tri[0].Max(tri[1]).Max(tri[2])
		prims[i] = prim{
			index:    i,
			min:      lo,
			max:      hi,
			centroid: lo.Add(hi).Scale(0.5),
		}
	}
	return &Picker{mesh: m, root: build(prims)}
}

func build(prims []prim) *node {
	n := len(prims)
	if n == 0 {
		return nil
	}

	lo, hi := prims[0].min, prims[0].max
	clo, chi := prims[0].centroid, prims[0].centroid
	for _, p := range prims[1:] {
		lo = lo.Min(p.min)
		hi = hi.Max(p.max)
		clo = clo.Min(p.centroid)
		chi = chi.Max(p.centroid)
	}

	if n <= maxLeafSize {
		tris := make([]int, n)
		for i, p := range prims {
			tris[i] = p.index
		}
		return &node{min: lo, max: hi, tris: tris}
	}

	// Split at the median along the widest centroid spread; fall back
	// to the widest box extent when all centroids coincide.
	axis := widestAxis(chi.Sub(clo))
	if axisComponent(chi.Sub(clo), axis) <= 1e-18 {
		axis = widestAxis(hi.Sub(lo))
	}
	sort.Slice(prims, func(i, j int) bool {
		ci := axisComponent(prims[i].centroid, axis)
		cj := axisComponent(prims[j].centroid, axis)
		if ci == cj {
			return prims[i].index < prims[j].index
		}
		return ci < cj
	})

	mid := n / 2
	return &node{
		min:   lo,
		max:   hi,
		left:  build(prims[:mid]),
		right: build(prims[mid:]),
	}
}

func widestAxis(ext math3d.Vec3) int {
	axis := 0
	if ext.Y > ext.X {
		axis = 1
	}
	if ext.Z > axisComponent(ext, axis) {
		axis = 2
	}
	return axis
}

func axisComponent(v math3d.Vec3, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	default:
		return v.Z
	}
}

// Pick traces the ray origin+t*dir and returns the nearest triangle
// intersection. dir need not be normalized; T is reported as the
// distance from origin in world units.
func (p *Picker) Pick(origin, dir math3d.Vec3) (Hit, bool) {
	d := dir.Normalize()
	best := Hit{T: -1}
	p.walk(p.root, origin, d, &best)
	return best, best.T >= 0
}

func (p *Picker) walk(n *node, origin, dir math3d.Vec3, best *Hit) {
	if n == nil {
		return
	}
	entry, ok := mc.RayIntersectAABB(n.min, n.max, origin, dir)
	if !ok {
		return
	}
	// A node farther than the current best cannot improve it.
	if best.T >= 0 && entry.Sub(origin).Len() > best.T {
		return
	}

	if n.tris != nil {
		for _, ti := range n.tris {
			tri := p.mesh.Triangle(ti)
			pt, ok := mc.RayIntersectTriangle(origin, dir, &tri)
			if !ok {
				continue
			}
			t := pt.Sub(origin).Len()
			if best.T < 0 || t < best.T {
				*best = Hit{Point: pt, Triangle: ti, T: t}
			}
		}
		return
	}

	p.walk(n.left, origin, dir, best)
	p.walk(n.right, origin, dir, best)
}
