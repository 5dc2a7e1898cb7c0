package field

import (
	"math"
	"testing"

	"github.com/voxelforge/isomesh/pkg/math3d"
)

const eps = 1e-12

func TestSphere(t *testing.T) {
	s := Sphere{Center: math3d.V3(1, 2, 3), Radius: 2}

	tests := []struct {
		name string
		p    math3d.Vec3
		want float64
	}{
		{"center", math3d.V3(1, 2, 3), -2},
		{"on surface", math3d.V3(3, 2, 3), 0},
		{"outside", math3d.V3(1, 2, 8), 3},
		{"inside", math3d.V3(1, 3, 3), -1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.Sample(tc.p); math.Abs(got-tc.want) > eps {
				t.Errorf("Sample(%v) = %g, want %g", tc.p, got, tc.want)
			}
		})
	}
}

func TestBox(t *testing.T) {
	b := Box{Center: math3d.Zero3(), Half: math3d.V3(1, 2, 3)}

	tests := []struct {
		name string
		p    math3d.Vec3
		want float64
	}{
		{"center", math3d.Zero3(), -1},
		{"on face", math3d.V3(1, 0, 0), 0},
		{"outside one axis", math3d.V3(4, 0, 0), 3},
		{"outside corner", math3d.V3(2, 3, 4), math.Sqrt(3)},
		{"inside near face", math3d.V3(0.5, 0, 0), -0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Sample(tc.p); math.Abs(got-tc.want) > eps {
				t.Errorf("Sample(%v) = %g, want %g", tc.p, got, tc.want)
			}
		})
	}
}

func TestTorus(t *testing.T) {
	tor := Torus{Center: math3d.Zero3(), Major: 3, Minor: 1}

	if got := tor.Sample(math3d.V3(3, 0, 0)); math.Abs(got+1) > eps {
		t.Errorf("ring center = %g, want -1", got)
	}
	if got := tor.Sample(math3d.V3(4, 0, 0)); math.Abs(got) > eps {
		t.Errorf("outer equator = %g, want 0", got)
	}
	if got := tor.Sample(math3d.V3(0, 0, 2)); math.Abs(got) > eps {
		t.Errorf("inner equator = %g, want 0", got)
	}
	if got := tor.Sample(math3d.Zero3()); math.Abs(got-2) > eps {
		t.Errorf("hole center = %g, want 2", got)
	}
}

func TestCylinder(t *testing.T) {
	c := Cylinder{Center: math3d.Zero3(), Radius: 1, HalfHeight: 2}

	if got := c.Sample(math3d.Zero3()); math.Abs(got+1) > eps {
		t.Errorf("center = %g, want -1", got)
	}
	if got := c.Sample(math3d.V3(0, 2, 0)); math.Abs(got) > eps {
		t.Errorf("cap center = %g, want 0", got)
	}
	if got := c.Sample(math3d.V3(3, 0, 0)); math.Abs(got-2) > eps {
		t.Errorf("beside wall = %g, want 2", got)
	}
	want := math.Sqrt2
	if got := c.Sample(math3d.V3(2, 3, 0)); math.Abs(got-want) > eps {
		t.Errorf("past rim = %g, want %g", got, want)
	}
}

func TestPlane(t *testing.T) {
	pl := NewPlane(math3d.V3(0, 1, 0), math3d.V3(0, 5, 0))

	if got := pl.Sample(math3d.V3(7, 3, -2)); math.Abs(got-2) > eps {
		t.Errorf("above = %g, want 2", got)
	}
	if got := pl.Sample(math3d.V3(0, 0, 0)); math.Abs(got+1) > eps {
		t.Errorf("below = %g, want -1", got)
	}
}

func TestGyroidSymmetry(t *testing.T) {
	g := Gyroid{Scale: 2, Thickness: 0.1}

	// The lattice repeats with period Scale along each axis.
	p := math3d.V3(0.3, 0.7, -0.2)
	a := g.Sample(p)
	b := g.Sample(p.Add(math3d.V3(2, 0, 0)))
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("not periodic: %g vs %g", a, b)
	}
	if g.Sample(math3d.Zero3()) >= 0 {
		t.Error("origin lies on the gyroid surface, expected inside the shell")
	}
}

func TestCSG(t *testing.T) {
	a := Sphere{Center: math3d.V3(-1, 0, 0), Radius: 1.5}
	b := Sphere{Center: math3d.V3(1, 0, 0), Radius: 1.5}

	u := Union(a, b)
	i := Intersection(a, b)
	d := Difference(a, b)

	probe := math3d.V3(-2, 0, 0)
	if got, want := u.Sample(probe), a.Sample(probe); got != want {
		t.Errorf("union = %g, want %g", got, want)
	}
	if got, want := i.Sample(probe), b.Sample(probe); got != want {
		t.Errorf("intersection = %g, want %g", got, want)
	}

	// Origin is inside both: the difference carves it out.
	if got := d.Sample(math3d.Zero3()); got <= 0 {
		t.Errorf("difference at origin = %g, want positive", got)
	}
	// -2 is inside a only: it survives the difference.
	if got := d.Sample(probe); got >= 0 {
		t.Errorf("difference at %v = %g, want negative", probe, got)
	}
}

func TestSmoothUnion(t *testing.T) {
	a := Sphere{Center: math3d.V3(-1, 0, 0), Radius: 1}
	b := Sphere{Center: math3d.V3(1, 0, 0), Radius: 1}
	s := SmoothUnion(a, b, 0.5)

	// Far from the seam the blend matches the plain union.
	far := math3d.V3(-3, 0, 0)
	if got, want := s.Sample(far), math.Min(a.Sample(far), b.Sample(far)); math.Abs(got-want) > 1e-9 {
		t.Errorf("far from seam = %g, want %g", got, want)
	}

	// At the seam the blend is strictly less than the hard minimum,
	// which is what fills the crease in.
	seam := math3d.Zero3()
	hard := math.Min(a.Sample(seam), b.Sample(seam))
	if got := s.Sample(seam); got >= hard {
		t.Errorf("seam = %g, want < %g", got, hard)
	}

	// Zero radius degenerates to the hard union.
	if got := SmoothUnion(a, b, 0).Sample(seam); got != hard {
		t.Errorf("k=0 seam = %g, want %g", got, hard)
	}
}

func TestTransforms(t *testing.T) {
	s := Sphere{Center: math3d.Zero3(), Radius: 1}

	moved := Translate(s, math3d.V3(5, 0, 0))
	if got := moved.Sample(math3d.V3(5, 0, 0)); math.Abs(got+1) > eps {
		t.Errorf("translated center = %g, want -1", got)
	}

	big := Scale(s, 3)
	if got := big.Sample(math3d.V3(3, 0, 0)); math.Abs(got) > eps {
		t.Errorf("scaled surface = %g, want 0", got)
	}
	if got := big.Sample(math3d.V3(6, 0, 0)); math.Abs(got-3) > eps {
		t.Errorf("scaled distance = %g, want 3", got)
	}

	soft := Round(s, 0.25)
	if got := soft.Sample(math3d.V3(1.25, 0, 0)); math.Abs(got) > eps {
		t.Errorf("rounded surface = %g, want 0", got)
	}
}

func TestFuncAdapter(t *testing.T) {
	f := Func(func(p math3d.Vec3) float64 { return p.X - 1 })
	if got := f.Sample(math3d.V3(4, 0, 0)); got != 3 {
		t.Errorf("Sample = %g, want 3", got)
	}
}

func BenchmarkSphereSample(b *testing.B) {
	s := Sphere{Center: math3d.V3(1, 2, 3), Radius: 2}
	p := math3d.V3(0.5, -0.3, 1.1)
	for b.Loop() {
		_ = s.Sample(p)
	}
}

func BenchmarkSmoothUnionSample(b *testing.B) {
	s := SmoothUnion(
		Sphere{Center: math3d.V3(-1, 0, 0), Radius: 1},
		Sphere{Center: math3d.V3(1, 0, 0), Radius: 1},
		0.5,
	)
	p := math3d.V3(0.1, 0.2, 0.3)
	for b.Loop() {
		_ = s.Sample(p)
	}
}
