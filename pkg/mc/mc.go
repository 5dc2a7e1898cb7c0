// Package mc implements the marching-cubes core: classifying a single
// cube of scalar samples against an iso level, emitting the interpolated
// triangles for it, and the two ray intersection primitives used to
// query the generated surface.
//
// All functions are pure and reentrant. They read only their arguments
// and the immutable lookup tables, so any number of goroutines may call
// them concurrently on disjoint cubes or rays.
package mc

import (
	"math"

	"github.com/voxelforge/isomesh/pkg/math3d"
)

// MaxVertices is the most vertices CaseGeometry can emit for one cube
// (4 triangles). The triangulation table guarantees no case needs more.
const MaxVertices = 12

// degenerateEdge guards the interpolation denominator. An active edge
// has endpoint values on opposite sides of the iso level, so the
// denominator can only approach zero when both endpoints sit almost
// exactly on the surface; the midpoint is then as good an answer as any.
const degenerateEdge = 1e-12

// CornerOffset returns the unit-cube position of corner i under the
// package's corner numbering. Grid traversals use it to map corner
// indices to sample lattice offsets.
func CornerOffset(i int) math3d.Vec3 {
	return cornerOffset[i]
}

// CaseIndex classifies the eight corner samples of a cube against the
// iso level and returns the 8-bit marching-cubes case index. Bit i is
// set iff corners[i] is strictly below the iso level; a sample exactly
// equal to the iso level counts as outside. Indices 0 and 255 mean the
// cube does not cross the surface.
func CaseIndex(corners [8]float64, iso float64) uint8 {
	var index uint8
	for i := range corners {
		if corners[i] < iso {
			index |= 1 << i
		}
	}
	return index
}

// CaseGeometry emits the triangles approximating the iso-surface inside
// one unit cube. It classifies the corner samples, interpolates a vertex
// on each active edge, and writes the triangle list for the case into
// verts, returning the number of vertices written: always a multiple of
// 3, at most MaxVertices, and 0 for cases 0 and 255 (verts untouched).
//
// Vertex positions are in the cube's local frame, corner 0 at the
// origin and corner 6 at (1,1,1). Callers meshing a grid offset them by
// the cube's position; because an edge shared by two neighboring cubes
// interpolates the same two sample values, the emitted vertices agree
// exactly across cube boundaries.
func CaseGeometry(corners [8]float64, iso float64, verts *[12]math3d.Vec3) int {
	index := CaseIndex(corners, iso)
	edges := edgeTable[index]
	if edges == 0 {
		return 0
	}

	var edgeVert [12]math3d.Vec3
	for e := 0; e < 12; e++ {
		if edges&(1<<e) == 0 {
			continue
		}
		c0, c1 := edgeCorners[e][0], edgeCorners[e][1]
		edgeVert[e] = interpolateEdge(cornerOffset[c0], cornerOffset[c1], corners[c0], corners[c1], iso)
	}

	n := 0
	tri := &triTable[index]
	for i := 0; tri[i] != -1; i += 3 {
		verts[n] = edgeVert[tri[i]]
		verts[n+1] = edgeVert[tri[i+1]]
		verts[n+2] = edgeVert[tri[i+2]]
		n += 3
	}
	return n
}

// interpolateEdge places a vertex on the edge p0-p1 where the linearly
// interpolated field value equals iso.
func interpolateEdge(p0, p1 math3d.Vec3, v0, v1, iso float64) math3d.Vec3 {
	d := v1 - v0
	if math.Abs(d) < degenerateEdge {
		return p0.Lerp(p1, 0.5)
	}
	return p0.Lerp(p1, (iso-v0)/d)
}
