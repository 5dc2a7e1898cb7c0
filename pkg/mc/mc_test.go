package mc

import (
	"math"
	"testing"

	"github.com/voxelforge/isomesh/pkg/math3d"
)

// cornersFor builds a sample array where every corner whose bit is set
// in mask lies below the iso level.
func cornersFor(mask uint8, iso float64) [8]float64 {
	var c [8]float64
	for i := range c {
		if mask&(1<<i) != 0 {
			c[i] = iso - 1
		} else {
			c[i] = iso + 1
		}
	}
	return c
}

func TestCaseIndex(t *testing.T) {
	tests := []struct {
		name    string
		corners [8]float64
		iso     float64
		want    uint8
	}{
		{"all outside", [8]float64{1, 1, 1, 1, 1, 1, 1, 1}, 0.5, 0},
		{"all inside", [8]float64{0, 0, 0, 0, 0, 0, 0, 0}, 0.5, 255},
		{"corner 0 inside", [8]float64{0, 1, 1, 1, 1, 1, 1, 1}, 0.5, 1},
		{"corner 7 inside", [8]float64{1, 1, 1, 1, 1, 1, 1, 0}, 0.5, 128},
		{"equality counts as outside", [8]float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5, 0.5}, 0.5, 0},
		{"mixed", [8]float64{0, 0, 1, 1, 0, 1, 1, 1}, 0.5, 0x13},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CaseIndex(tc.corners, tc.iso); got != tc.want {
				t.Errorf("CaseIndex = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestCaseIndexMatchesMask(t *testing.T) {
	for mask := 0; mask < 256; mask++ {
		c := cornersFor(uint8(mask), 0)
		if got := CaseIndex(c, 0); got != uint8(mask) {
			t.Fatalf("mask %d: CaseIndex = %d", mask, got)
		}
	}
}

func TestCaseGeometryAllCases(t *testing.T) {
	var verts [12]math3d.Vec3
	for mask := 0; mask < 256; mask++ {
		c := cornersFor(uint8(mask), 0.5)
		n := CaseGeometry(c, 0.5, &verts)

		if n%3 != 0 {
			t.Fatalf("case %d: vertex count %d not a multiple of 3", mask, n)
		}
		if n > MaxVertices {
			t.Fatalf("case %d: vertex count %d exceeds %d", mask, n, MaxVertices)
		}
		if (mask == 0 || mask == 255) != (n == 0) {
			t.Fatalf("case %d: vertex count %d", mask, n)
		}

		// Every vertex must lie inside the unit cube.
		for i := range n {
			v := verts[i]
			if v.X < 0 || v.X > 1 || v.Y < 0 || v.Y > 1 || v.Z < 0 || v.Z > 1 {
				t.Fatalf("case %d: vertex %d = %v outside unit cube", mask, i, v)
			}
		}

		// No degenerate triangles for clean inside/outside samples.
		for i := 0; i < n; i += 3 {
			e1 := verts[i+1].Sub(verts[i])
			e2 := verts[i+2].Sub(verts[i])
			if e1.Cross(e2).Len() < 1e-12 {
				t.Fatalf("case %d: triangle %d is degenerate", mask, i/3)
			}
		}
	}
}

func TestCaseGeometryEmptyCasesWriteNothing(t *testing.T) {
	sentinel := math3d.V3(-99, -99, -99)
	for _, mask := range []uint8{0, 255} {
		var verts [12]math3d.Vec3
		for i := range verts {
			verts[i] = sentinel
		}
		if n := CaseGeometry(cornersFor(mask, 0.5), 0.5, &verts); n != 0 {
			t.Fatalf("case %d: expected 0 vertices, got %d", mask, n)
		}
		for i := range verts {
			if verts[i] != sentinel {
				t.Fatalf("case %d: output buffer written at %d", mask, i)
			}
		}
	}
}

// incidentMidpoints lists, for each corner, the midpoints of its three
// incident edges under the package's corner numbering.
var incidentMidpoints = func() [8][3]math3d.Vec3 {
	var m [8][3]math3d.Vec3
	for corner := range 8 {
		k := 0
		for e := range 12 {
			if edgeCorners[e][0] == corner || edgeCorners[e][1] == corner {
				m[corner][k] = cornerOffset[edgeCorners[e][0]].Lerp(cornerOffset[edgeCorners[e][1]], 0.5)
				k++
			}
		}
	}
	return m
}()

func TestSingleCornerCases(t *testing.T) {
	// One corner inside (and the symmetric seven-inside case) must emit
	// exactly one triangle whose vertices sit on the corner's three
	// incident edges; with samples 0/1 and iso 0.5 those are the exact
	// edge midpoints.
	for corner := range 8 {
		for _, invert := range []bool{false, true} {
			mask := uint8(1) << corner
			if invert {
				mask = ^mask
			}
			c := cornersFor(mask, 0.5)
			for i := range c {
				// Map inside to 0, outside to 1 for exact midpoints.
				if c[i] < 0.5 {
					c[i] = 0
				} else {
					c[i] = 1
				}
			}

			var verts [12]math3d.Vec3
			n := CaseGeometry(c, 0.5, &verts)
			if n != 3 {
				t.Fatalf("corner %d invert=%v: got %d vertices, want 3", corner, invert, n)
			}

			for i := range 3 {
				found := false
				for _, mid := range incidentMidpoints[corner] {
					if verts[i] == mid {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("corner %d invert=%v: vertex %v not on an incident edge midpoint", corner, invert, verts[i])
				}
			}
		}
	}
}

func TestInterpolationExactMidpoint(t *testing.T) {
	// Corner 0 inside with samples 0 and 1 across each incident edge at
	// iso 0.5: (iso-v0)/(v1-v0) = 0.5 exactly, so the emitted vertices
	// are the exact midpoints, not approximations.
	c := [8]float64{0, 1, 1, 1, 1, 1, 1, 1}
	var verts [12]math3d.Vec3
	n := CaseGeometry(c, 0.5, &verts)
	if n != 3 {
		t.Fatalf("got %d vertices, want 3", n)
	}
	want := map[math3d.Vec3]bool{
		math3d.V3(0.5, 0, 0): true,
		math3d.V3(0, 0.5, 0): true,
		math3d.V3(0, 0, 0.5): true,
	}
	for i := range 3 {
		if !want[verts[i]] {
			t.Errorf("vertex %v is not an exact midpoint", verts[i])
		}
	}
}

func TestInterpolationPosition(t *testing.T) {
	// Uneven samples: corner 0 at 0, corner 1 at 4, iso 1 places the
	// vertex a quarter of the way along edge 0.
	c := [8]float64{0, 4, 4, 4, 4, 4, 4, 4}
	var verts [12]math3d.Vec3
	n := CaseGeometry(c, 1, &verts)
	if n != 3 {
		t.Fatalf("got %d vertices, want 3", n)
	}
	found := false
	for i := range 3 {
		if math.Abs(verts[i].X-0.25) < 1e-15 && verts[i].Y == 0 && verts[i].Z == 0 {
			found = true
		}
	}
	if !found {
		t.Errorf("no vertex at (0.25, 0, 0): %v", verts[:3])
	}
}

func TestDegenerateEdgeGuard(t *testing.T) {
	// Both endpoints of the active edges sit essentially on the surface;
	// the denominator guard must produce finite positions, not NaN.
	const tiny = 1e-14
	c := [8]float64{0.5 - tiny, 0.5 + tiny, 0.5 + tiny, 0.5 + tiny, 0.5 + tiny, 0.5 + tiny, 0.5 + tiny, 0.5 + tiny}
	var verts [12]math3d.Vec3
	n := CaseGeometry(c, 0.5, &verts)
	if n != 3 {
		t.Fatalf("got %d vertices, want 3", n)
	}
	for i := range n {
		v := verts[i]
		if math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z) ||
			math.IsInf(v.X, 0) || math.IsInf(v.Y, 0) || math.IsInf(v.Z, 0) {
			t.Fatalf("vertex %d = %v is not finite", i, v)
		}
	}
}

func TestSharedFaceVerticesAgree(t *testing.T) {
	// Two cubes side by side along x sample a common field; vertices
	// emitted on the shared face x=1 (cube A) / x=0 (cube B) must
	// coincide exactly once offset to world space.
	field := func(x, y, z float64) float64 {
		return x + 0.7*y + 0.3*z - 1.1
	}
	sample := func(ox float64) [8]float64 {
		var c [8]float64
		for i := range 8 {
			p := cornerOffset[i]
			c[i] = field(ox+p.X, p.Y, p.Z)
		}
		return c
	}

	var va, vb [12]math3d.Vec3
	na := CaseGeometry(sample(0), 0, &va)
	nb := CaseGeometry(sample(1), 0, &vb)
	if na == 0 || nb == 0 {
		t.Fatal("expected both cubes to emit geometry")
	}

	onFaceA := map[math3d.Vec3]bool{}
	for i := range na {
		if va[i].X == 1 {
			onFaceA[math3d.V3(va[i].X, va[i].Y, va[i].Z)] = true
		}
	}
	matched := 0
	for i := range nb {
		if vb[i].X == 0 {
			w := math3d.V3(vb[i].X+1, vb[i].Y, vb[i].Z)
			if !onFaceA[w] {
				t.Errorf("cube B face vertex %v has no exact match on cube A", w)
			}
			matched++
		}
	}
	if len(onFaceA) == 0 || matched == 0 {
		t.Fatal("expected shared-face vertices on both cubes")
	}
}

func TestCaseGeometryIdempotent(t *testing.T) {
	c := [8]float64{-0.3, 0.7, 1.2, -0.1, 0.4, -0.9, 0.2, 0.6}
	var a, b [12]math3d.Vec3
	na := CaseGeometry(c, 0.15, &a)
	nb := CaseGeometry(c, 0.15, &b)
	if na != nb || a != b {
		t.Errorf("identical inputs produced different outputs: %d/%d", na, nb)
	}
	if CaseIndex(c, 0.15) != CaseIndex(c, 0.15) {
		t.Error("CaseIndex not idempotent")
	}
}

func TestTableInvariants(t *testing.T) {
	for mask := 0; mask < 256; mask++ {
		// Complementary cases activate the same edges.
		if edgeTable[mask] != edgeTable[255-mask] {
			t.Errorf("edge table asymmetry at %d", mask)
		}

		// Every edge referenced by the triangulation is active, and the
		// row is -1 terminated within bounds.
		row := triTable[mask]
		i := 0
		for ; i < 16 && row[i] != -1; i++ {
			e := row[i]
			if e < 0 || e > 11 {
				t.Fatalf("case %d: edge index %d out of range", mask, e)
			}
			if edgeTable[mask]&(1<<e) == 0 {
				t.Errorf("case %d references inactive edge %d", mask, e)
			}
		}
		if i%3 != 0 {
			t.Errorf("case %d: triangle list length %d not a multiple of 3", mask, i)
		}
		if i > 15 {
			t.Errorf("case %d: row not terminated", mask)
		}
	}
}

func BenchmarkCaseIndex(b *testing.B) {
	c := [8]float64{-0.3, 0.7, 1.2, -0.1, 0.4, -0.9, 0.2, 0.6}
	for b.Loop() {
		_ = CaseIndex(c, 0.15)
	}
}

func BenchmarkCaseGeometry(b *testing.B) {
	c := [8]float64{-0.3, 0.7, 1.2, -0.1, 0.4, -0.9, 0.2, 0.6}
	var verts [12]math3d.Vec3
	for b.Loop() {
		_ = CaseGeometry(c, 0.15, &verts)
	}
}
