package mesher

import (
	"math"
	"testing"

	"github.com/voxelforge/isomesh/pkg/field"
	"github.com/voxelforge/isomesh/pkg/math3d"
	"github.com/voxelforge/isomesh/pkg/models"
)

// sphereCenter sits slightly off the sample lattice so no corner sample
// lands exactly on the surface.
var sphereCenter = math3d.V3(0.017, 0.005, -0.011)

func sphereMesh(t *testing.T, cells int) *models.Mesh {
	t.Helper()
	s := field.Sphere{Center: sphereCenter, Radius: 1}
	m, err := March(s, math3d.V3(-1.5, -1.5, -1.5), math3d.V3(1.5, 1.5, 1.5), cells, 0)
	if err != nil {
		t.Fatalf("March: %v", err)
	}
	return m
}

func TestMarchSphere(t *testing.T) {
	m := sphereMesh(t, 24)

	if m.TriangleCount() < 100 {
		t.Fatalf("only %d triangles for a sphere", m.TriangleCount())
	}

	// Every welded vertex sits close to the unit sphere surface. The
	// tolerance is the linear interpolation error at this cell size.
	cellSize := 3.0 / 24
	for i, v := range m.Vertices {
		r := v.Position.Sub(sphereCenter).Len()
		if math.Abs(r-1) > cellSize {
			t.Fatalf("vertex %d at radius %g", i, r)
		}
	}

	// Smooth normals on a sphere point radially outward.
	for i, v := range m.Vertices {
		out := v.Position.Sub(sphereCenter).Normalize()
		if v.Normal.Dot(out) < 0.8 {
			t.Errorf("vertex %d normal %v not outward (position %v)", i, v.Normal, v.Position)
		}
	}

	// The bounding box hugs the sphere, not the sampling box.
	slack := 1 + cellSize + sphereCenter.Abs().MaxComponent()
	if m.BoundsMax.MaxComponent() > slack || m.BoundsMin.Abs().MaxComponent() > slack {
		t.Errorf("bounds %v..%v too large", m.BoundsMin, m.BoundsMax)
	}
}

func TestMarchWeldsSharedVertices(t *testing.T) {
	m := sphereMesh(t, 16)

	// An unwelded soup would have 3 unique positions per triangle. A
	// closed welded mesh reuses each vertex across ~6 triangles.
	if got, soup := m.VertexCount(), 3*m.TriangleCount(); got >= soup/2 {
		t.Errorf("%d vertices for %d triangles, welding not effective", got, m.TriangleCount())
	}

	// No two distinct vertices share a position.
	seen := make(map[math3d.Vec3]bool, m.VertexCount())
	for _, v := range m.Vertices {
		if seen[v.Position] {
			t.Fatalf("duplicate vertex at %v", v.Position)
		}
		seen[v.Position] = true
	}
}

func TestMarchClosedSurface(t *testing.T) {
	m := sphereMesh(t, 12)

	// Each undirected edge of a closed surface is used by exactly two
	// faces.
	type edge struct{ a, b int }
	count := make(map[edge]int)
	for _, f := range m.Faces {
		for c := 0; c < 3; c++ {
			a, b := f.V[c], f.V[(c+1)%3]
			if a > b {
				a, b = b, a
			}
			count[edge{a, b}]++
		}
	}
	for e, n := range count {
		if n != 2 {
			t.Fatalf("edge %v used by %d faces", e, n)
		}
	}
}

func TestMarchEmptyAndFullCells(t *testing.T) {
	s := field.Sphere{Center: math3d.Zero3(), Radius: 1}

	// A box entirely inside the solid produces no geometry.
	m, err := March(s, math3d.V3(-0.2, -0.2, -0.2), math3d.V3(0.2, 0.2, 0.2), 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 0 {
		t.Errorf("inside box produced %d triangles", m.TriangleCount())
	}

	// Entirely outside likewise.
	m, err = March(s, math3d.V3(5, 5, 5), math3d.V3(6, 6, 6), 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	if m.TriangleCount() != 0 {
		t.Errorf("outside box produced %d triangles", m.TriangleCount())
	}
}

func TestMarchArgumentErrors(t *testing.T) {
	s := field.Sphere{Radius: 1}
	lo, hi := math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1)

	if _, err := March(nil, lo, hi, 8, 0); err == nil {
		t.Error("nil field accepted")
	}
	if _, err := March(s, lo, hi, 0, 0); err == nil {
		t.Error("zero resolution accepted")
	}
	if _, err := March(s, hi, lo, 8, 0); err == nil {
		t.Error("inverted bounds accepted")
	}
	if _, err := MarchParallel(s, lo, hi, 0, 0); err == nil {
		t.Error("MarchParallel zero resolution accepted")
	}
}

func TestMarchParallelMatchesSerial(t *testing.T) {
	f := field.SmoothUnion(
		field.Sphere{Center: math3d.V3(-0.5, 0, 0), Radius: 0.8},
		field.Sphere{Center: math3d.V3(0.5, 0.2, 0), Radius: 0.6},
		0.3,
	)
	lo, hi := math3d.V3(-2, -2, -2), math3d.V3(2, 2, 2)

	for _, cells := range []int{1, 7, 16, 33} {
		serial, err := March(f, lo, hi, cells, 0)
		if err != nil {
			t.Fatal(err)
		}
		parallel, err := MarchParallel(f, lo, hi, cells, 0)
		if err != nil {
			t.Fatal(err)
		}

		if serial.VertexCount() != parallel.VertexCount() ||
			serial.TriangleCount() != parallel.TriangleCount() {
			t.Fatalf("cells=%d: %d/%d verts, %d/%d tris", cells,
				serial.VertexCount(), parallel.VertexCount(),
				serial.TriangleCount(), parallel.TriangleCount())
		}
		for i := range serial.Vertices {
			if serial.Vertices[i] != parallel.Vertices[i] {
				t.Fatalf("cells=%d: vertex %d differs", cells, i)
			}
		}
		for i := range serial.Faces {
			if serial.Faces[i] != parallel.Faces[i] {
				t.Fatalf("cells=%d: face %d differs", cells, i)
			}
		}
	}
}

func TestMarchSpan(t *testing.T) {
	// Chunks cover 0..n contiguously for any worker count.
	for _, n := range []int{1, 5, 16, 17} {
		for _, workers := range []int{1, 3, 16} {
			prev := 0
			for w := 0; w < workers; w++ {
				from, to := span(n, workers, w)
				if from != prev || to < from {
					t.Fatalf("n=%d workers=%d w=%d: span %d..%d after %d", n, workers, w, from, to, prev)
				}
				prev = to
			}
			if prev != n {
				t.Fatalf("n=%d workers=%d: covered %d", n, workers, prev)
			}
		}
	}
}

func BenchmarkMarch(b *testing.B) {
	s := field.Sphere{Center: math3d.Zero3(), Radius: 1}
	lo, hi := math3d.V3(-1.5, -1.5, -1.5), math3d.V3(1.5, 1.5, 1.5)
	for b.Loop() {
		_, _ = March(s, lo, hi, 32, 0)
	}
}

func BenchmarkMarchParallel(b *testing.B) {
	s := field.Sphere{Center: math3d.Zero3(), Radius: 1}
	lo, hi := math3d.V3(-1.5, -1.5, -1.5), math3d.V3(1.5, 1.5, 1.5)
	for b.Loop() {
		_, _ = MarchParallel(s, lo, hi, 32, 0)
	}
}
