package render

import (
	"math"
	"testing"

	"github.com/voxelforge/isomesh/pkg/math3d"
	"github.com/voxelforge/isomesh/pkg/models"
)

func TestFramebufferPixels(t *testing.T) {
	fb := NewFramebuffer(8, 4)

	fb.SetPixel(3, 2, ColorRed)
	if fb.GetPixel(3, 2) != ColorRed {
		t.Error("pixel readback mismatch")
	}

	// Out-of-bounds writes are dropped, reads are transparent.
	fb.SetPixel(-1, 0, ColorRed)
	fb.SetPixel(8, 0, ColorRed)
	fb.SetPixel(0, 4, ColorRed)
	if fb.GetPixel(-1, 0) != (Color{}) || fb.GetPixel(8, 0) != (Color{}) {
		t.Error("out-of-bounds read not transparent")
	}

	fb.Clear(ColorBlack)
	if fb.GetPixel(3, 2) != ColorBlack {
		t.Error("clear did not overwrite")
	}
}

func TestDrawLine(t *testing.T) {
	fb := NewFramebuffer(8, 8)
	fb.DrawLine(0, 0, 7, 7, ColorWhite)

	// A diagonal through a square grid writes the diagonal pixels.
	for i := 0; i < 8; i++ {
		if fb.GetPixel(i, i) != ColorWhite {
			t.Errorf("diagonal pixel (%d,%d) not set", i, i)
		}
	}

	// Endpoints of any line are always set, regardless of direction.
	fb2 := NewFramebuffer(8, 8)
	fb2.DrawLine(6, 1, 2, 5, ColorRed)
	if fb2.GetPixel(6, 1) != ColorRed || fb2.GetPixel(2, 5) != ColorRed {
		t.Error("line endpoints not set")
	}

	// Lines may leave the buffer without panicking.
	fb2.DrawLine(-5, -5, 20, 3, ColorWhite)
}

func TestOrbitCameraPosition(t *testing.T) {
	c := NewOrbitCamera(math3d.Zero3(), 10)
	c.Pitch = 0
	c.Yaw = 0

	// Yaw 0, pitch 0 places the camera on +Z looking at the target.
	if p := c.Position(); p.Distance(math3d.V3(0, 0, 10)) > 1e-12 {
		t.Errorf("position = %v, want (0,0,10)", p)
	}

	c.Orbit(math.Pi/2, 0)
	if p := c.Position(); p.Distance(math3d.V3(10, 0, 0)) > 1e-9 {
		t.Errorf("after quarter turn position = %v, want (10,0,0)", p)
	}

	// Distance to target is invariant under orbiting.
	c.Orbit(0.7, 0.3)
	if d := c.Position().Distance(c.Target); math.Abs(d-10) > 1e-9 {
		t.Errorf("orbit distance drifted to %g", d)
	}

	// Pitch clamps short of the poles.
	c.Orbit(0, 10)
	if c.Pitch >= math.Pi/2 {
		t.Errorf("pitch %g not clamped", c.Pitch)
	}
}

func TestOrbitCameraZoom(t *testing.T) {
	c := NewOrbitCamera(math3d.Zero3(), 10)
	c.Zoom(0.5)
	if c.Distance != 5 {
		t.Errorf("distance = %g, want 5", c.Distance)
	}
	// Zooming all the way in never reaches zero.
	for i := 0; i < 100; i++ {
		c.Zoom(0.1)
	}
	if c.Distance <= 0 {
		t.Errorf("distance collapsed to %g", c.Distance)
	}
}

func TestWorldToScreen(t *testing.T) {
	c := NewOrbitCamera(math3d.Zero3(), 10)
	c.Aspect = 1

	// The orbit target projects to the screen center.
	x, y, _, vis := c.WorldToScreen(math3d.Zero3(), 100, 100)
	if !vis {
		t.Fatal("target not visible")
	}
	if math.Abs(x-50) > 1 || math.Abs(y-50) > 1 {
		t.Errorf("target projected to (%g, %g), want center", x, y)
	}

	// A point behind the camera is not visible.
	behind := c.Position().Add(c.Position().Sub(c.Target).Normalize().Scale(5))
	if _, _, _, vis := c.WorldToScreen(behind, 100, 100); vis {
		t.Error("point behind camera reported visible")
	}

	// A point far off to the side leaves the frustum.
	if _, _, _, vis := c.WorldToScreen(math3d.V3(1000, 0, 0), 100, 100); vis {
		t.Error("point outside frustum reported visible")
	}
}

func TestWireframeDrawMesh(t *testing.T) {
	m := models.NewMesh("tri")
	m.Vertices = []models.Vertex{
		{Position: math3d.V3(-1, -1, 0)},
		{Position: math3d.V3(1, -1, 0)},
		{Position: math3d.V3(0, 1, 0)},
	}
	m.Faces = []models.Face{{V: [3]int{0, 1, 2}}}

	fb := NewFramebuffer(64, 64)
	cam := NewOrbitCamera(math3d.Zero3(), 5)
	cam.Aspect = 1
	w := NewWireframe(cam, fb)

	w.DrawMesh(m, ColorWhite)

	set := 0
	for _, p := range fb.Pixels {
		if p == ColorWhite {
			set++
		}
	}
	// Three projected edges of a triangle facing the camera cover at
	// least a few dozen pixels at this resolution.
	if set < 20 {
		t.Errorf("only %d pixels set", set)
	}
}

func TestWireframeDrawBox(t *testing.T) {
	fb := NewFramebuffer(64, 64)
	cam := NewOrbitCamera(math3d.Zero3(), 6)
	cam.Aspect = 1
	w := NewWireframe(cam, fb)

	w.DrawBox(math3d.V3(-1, -1, -1), math3d.V3(1, 1, 1), ColorAmber)

	set := 0
	for _, p := range fb.Pixels {
		if p == ColorAmber {
			set++
		}
	}
	if set < 20 {
		t.Errorf("only %d pixels set", set)
	}
}
