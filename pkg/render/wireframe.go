package render

import (
	"github.com/voxelforge/isomesh/pkg/math3d"
	"github.com/voxelforge/isomesh/pkg/models"
)

// Wireframe projects 3D lines through a camera into a framebuffer.
type Wireframe struct {
	camera *OrbitCamera
	fb     *Framebuffer
}

// NewWireframe creates a wireframe renderer.
func NewWireframe(camera *OrbitCamera, fb *Framebuffer) *Wireframe {
	return &Wireframe{camera: camera, fb: fb}
}

// DrawLine3D draws a world-space line segment. Segments with both
// endpoints outside the frustum are skipped.
func (w *Wireframe) DrawLine3D(a, b math3d.Vec3, c Color) {
	x1, y1, _, vis1 := w.camera.WorldToScreen(a, w.fb.Width, w.fb.Height)
	x2, y2, _, vis2 := w.camera.WorldToScreen(b, w.fb.Width, w.fb.Height)
	if !vis1 && !vis2 {
		return
	}
	w.fb.DrawLine(int(x1), int(y1), int(x2), int(y2), c)
}

// DrawMesh draws every unique edge of the mesh once.
func (w *Wireframe) DrawMesh(m *models.Mesh, c Color) {
	type edge struct{ a, b int }
	seen := make(map[edge]bool, 3*m.TriangleCount()/2)

	for _, f := range m.Faces {
		for i := 0; i < 3; i++ {
			a, b := f.V[i], f.V[(i+1)%3]
			if a > b {
				a, b = b, a
			}
			e := edge{a, b}
			if seen[e] {
				continue
			}
			seen[e] = true
			w.DrawLine3D(m.Vertices[a].Position, m.Vertices[b].Position, c)
		}
	}
}

// DrawBox draws the twelve edges of an axis-aligned box.
func (w *Wireframe) DrawBox(min, max math3d.Vec3, c Color) {
	corners := [8]math3d.Vec3{
		{X: min.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: min.Y, Z: min.Z},
		{X: max.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: max.Y, Z: min.Z},
		{X: min.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: min.Y, Z: max.Z},
		{X: max.X, Y: max.Y, Z: max.Z},
		{X: min.X, Y: max.Y, Z: max.Z},
	}
	edges := [12][2]int{
		{0, 1}, {1, 2}, {2, 3}, {3, 0},
		{4, 5}, {5, 6}, {6, 7}, {7, 4},
		{0, 4}, {1, 5}, {2, 6}, {3, 7},
	}
	for _, e := range edges {
		w.DrawLine3D(corners[e[0]], corners[e[1]], c)
	}
}

// DrawAxes draws the coordinate axes from origin: X red, Y green,
// Z blue.
func (w *Wireframe) DrawAxes(origin math3d.Vec3, length float64) {
	w.DrawLine3D(origin, origin.Add(math3d.V3(length, 0, 0)), ColorRed)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, length, 0)), ColorGreen)
	w.DrawLine3D(origin, origin.Add(math3d.V3(0, 0, length)), ColorBlue)
}
