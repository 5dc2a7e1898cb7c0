// isomesh - iso-surface extraction tool
// Meshes a scalar field with marching cubes and exports the result to
// GLB or STL, or shows it as an interactive terminal wireframe.
//
// A field comes from a built-in shape (-shape) or a Lisp scene script
// (-scene). Viewer controls:
//
//	Mouse drag  - Orbit
//	Scroll      - Zoom in/out
//	W/S A/D     - Orbit with keys
//	Click       - Probe the surface under the cursor
//	B           - Toggle bounds box
//	R           - Reset view
//	Esc         - Quit
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/harmonica"
	uv "github.com/charmbracelet/ultraviolet"

	"github.com/voxelforge/isomesh/pkg/field"
	"github.com/voxelforge/isomesh/pkg/math3d"
	"github.com/voxelforge/isomesh/pkg/mesher"
	"github.com/voxelforge/isomesh/pkg/models"
	"github.com/voxelforge/isomesh/pkg/pick"
	"github.com/voxelforge/isomesh/pkg/render"
	"github.com/voxelforge/isomesh/pkg/script"
)

var (
	shapeName  = flag.String("shape", "sphere", "Built-in shape (sphere|box|torus|cylinder|gyroid|blobs)")
	scenePath  = flag.String("scene", "", "Lisp scene script (overrides -shape)")
	resolution = flag.Int("res", 64, "Grid cells per axis")
	isoLevel   = flag.Float64("iso", 0, "Iso level to extract")
	extent     = flag.Float64("extent", 1.5, "Half-extent of the sampling box")
	outPath    = flag.String("o", "", "Output file (.glb or .stl)")
	view       = flag.Bool("view", false, "Open the interactive terminal viewer")
	serial     = flag.Bool("serial", false, "Disable parallel extraction")
	targetFPS  = flag.Int("fps", 60, "Viewer target FPS")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "isomesh - iso-surface extraction tool\n\n")
		fmt.Fprintf(os.Stderr, "Usage: isomesh [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  isomesh -shape torus -res 96 -o torus.glb\n")
		fmt.Fprintf(os.Stderr, "  isomesh -scene scene.lisp -view\n")
	}
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	f, err := buildField()
	if err != nil {
		return err
	}

	lo := math3d.V3(-*extent, -*extent, -*extent)
	hi := math3d.V3(*extent, *extent, *extent)

	start := time.Now()
	var mesh *models.Mesh
	if *serial {
		mesh, err = mesher.March(f, lo, hi, *resolution, *isoLevel)
	} else {
		mesh, err = mesher.MarchParallel(f, lo, hi, *resolution, *isoLevel)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Extracted %d triangles, %d vertices in %v\n",
		mesh.TriangleCount(), mesh.VertexCount(), time.Since(start).Round(time.Millisecond))

	if mesh.TriangleCount() == 0 {
		return fmt.Errorf("the surface does not cross the sampling box; adjust -extent or -iso")
	}

	if *outPath != "" {
		if err := export(mesh, *outPath); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", *outPath)
	}

	if *view {
		return runViewer(mesh, lo, hi)
	}
	if *outPath == "" {
		return fmt.Errorf("nothing to do: pass -o or -view")
	}
	return nil
}

func buildField() (field.Field, error) {
	if *scenePath != "" {
		src, err := os.ReadFile(*scenePath)
		if err != nil {
			return nil, fmt.Errorf("read scene: %w", err)
		}
		f, err := script.NewEngine().Evaluate(string(src))
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	switch *shapeName {
	case "sphere":
		return field.Sphere{Radius: 1}, nil
	case "box":
		return field.Round(field.Box{Half: math3d.V3(0.8, 0.6, 0.6)}, 0.1), nil
	case "torus":
		return field.Torus{Major: 1, Minor: 0.35}, nil
	case "cylinder":
		return field.Cylinder{Radius: 0.6, HalfHeight: 1}, nil
	case "gyroid":
		return field.Intersection(
			field.Gyroid{Scale: 1, Thickness: 0.08},
			field.Box{Half: math3d.V3(1.2, 1.2, 1.2)},
		), nil
	case "blobs":
		return field.SmoothUnion(
			field.Sphere{Center: math3d.V3(-0.5, 0, 0), Radius: 0.7},
			field.Sphere{Center: math3d.V3(0.5, 0.2, 0.1), Radius: 0.55},
			0.3,
		), nil
	}
	return nil, fmt.Errorf("unknown shape %q", *shapeName)
}

func export(mesh *models.Mesh, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".glb":
		return models.SaveGLB(mesh, path)
	case ".stl":
		return models.SaveSTL(mesh, path)
	}
	return fmt.Errorf("unsupported output format %q (use .glb or .stl)", filepath.Ext(path))
}

// orbitAxis is one orbit angle with spring-damped velocity, so the view
// keeps gliding briefly after input stops.
type orbitAxis struct {
	velocity float64
	accel    float64
	spring   harmonica.Spring
}

func newOrbitAxis(fps int) orbitAxis {
	return orbitAxis{spring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)}
}

// update advances the spring toward zero velocity and returns the angle
// delta for this frame.
func (a *orbitAxis) update() float64 {
	d := a.velocity
	a.velocity, a.accel = a.spring.Update(a.velocity, a.accel, 0)
	return d
}

func (a *orbitAxis) impulse(v float64) {
	a.velocity += v
}

func runViewer(mesh *models.Mesh, boundsMin, boundsMax math3d.Vec3) error {
	term := uv.DefaultTerminal()

	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}

	term.EnterAltScreen()
	term.HideCursor()
	term.Resize(width, height)

	// Any-event mouse tracking with SGR encoding.
	fmt.Fprint(os.Stdout, "\x1b[?1003h\x1b[?1006h")

	cleanup := func() {
		fmt.Fprint(os.Stdout, "\x1b[?1003l\x1b[?1006l")
		term.ExitAltScreen()
		term.ShowCursor()
		term.Shutdown(context.Background())
	}

	fb := render.NewFramebuffer(width, height*2)
	startDistance := mesh.Size().MaxComponent() * 2.5
	camera := render.NewOrbitCamera(mesh.Center(), startDistance)
	camera.Aspect = float64(fb.Width) / float64(fb.Height) * 2 // cells are twice as tall as wide
	wf := render.NewWireframe(camera, fb)
	picker := pick.NewPicker(mesh)

	yaw := newOrbitAxis(*targetFPS)
	pitch := newOrbitAxis(*targetFPS)

	showBounds := true
	var probe *pick.Hit

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	var mouseDown bool
	var lastMouseX, lastMouseY int

	go func() {
		for ev := range term.Events() {
			switch ev := ev.(type) {
			case uv.WindowSizeEvent:
				width, height = ev.Width, ev.Height
				term.Erase()
				term.Resize(width, height)
				fb = render.NewFramebuffer(width, height*2)
				camera.Aspect = float64(fb.Width) / float64(fb.Height) * 2
				wf = render.NewWireframe(camera, fb)

			case uv.KeyPressEvent:
				switch {
				case ev.MatchString("escape"), ev.MatchString("q"), ev.MatchString("ctrl+c"):
					cancel()
					return
				case ev.MatchString("a", "left"):
					yaw.impulse(-0.04)
				case ev.MatchString("d", "right"):
					yaw.impulse(0.04)
				case ev.MatchString("w", "up"):
					pitch.impulse(0.04)
				case ev.MatchString("s", "down"):
					pitch.impulse(-0.04)
				case ev.MatchString("+", "="):
					camera.Zoom(0.9)
				case ev.MatchString("-", "_"):
					camera.Zoom(1.1)
				case ev.MatchString("b"):
					showBounds = !showBounds
				case ev.MatchString("r"):
					camera.Yaw, camera.Pitch = 0, 0.35
					camera.Distance = startDistance
					probe = nil
				}

			case uv.MouseClickEvent:
				mouseDown = true
				lastMouseX, lastMouseY = ev.X, ev.Y
				origin, dir := pixelRay(camera, ev.X, ev.Y*2, fb.Width, fb.Height)
				if hit, ok := picker.Pick(origin, dir); ok {
					probe = &hit
				} else {
					probe = nil
				}

			case uv.MouseReleaseEvent:
				mouseDown = false

			case uv.MouseMotionEvent:
				if mouseDown {
					yaw.impulse(float64(ev.X-lastMouseX) * 0.01)
					pitch.impulse(float64(ev.Y-lastMouseY) * 0.02)
					lastMouseX, lastMouseY = ev.X, ev.Y
				}

			case uv.MouseWheelEvent:
				switch ev.Button {
				case uv.MouseWheelUp:
					camera.Zoom(0.9)
				case uv.MouseWheelDown:
					camera.Zoom(1.1)
				}
			}
		}
	}()

	frame := time.Second / time.Duration(*targetFPS)
	for {
		select {
		case <-ctx.Done():
			cleanup()
			return nil
		default:
		}
		frameStart := time.Now()

		camera.Orbit(yaw.update(), pitch.update())

		fb.Clear(render.RGB(18, 18, 26))
		wf.DrawMesh(mesh, render.RGB(120, 220, 160))
		if showBounds {
			wf.DrawBox(boundsMin, boundsMax, render.ColorGray)
		}
		if probe != nil {
			marker := mesh.Size().MaxComponent() * 0.05
			wf.DrawAxes(probe.Point.Sub(math3d.V3(marker/2, marker/2, marker/2)), marker)
		}

		fb.Draw(term, uv.Rect(0, 0, width, height))
		if err := term.Display(); err != nil {
			cleanup()
			return fmt.Errorf("display: %w", err)
		}

		if elapsed := time.Since(frameStart); elapsed < frame {
			time.Sleep(frame - elapsed)
		}
	}
}

// pixelRay builds the world-space ray from the camera eye through a
// framebuffer pixel.
func pixelRay(c *render.OrbitCamera, px, py, width, height int) (origin, dir math3d.Vec3) {
	origin = c.Position()

	forward := c.Target.Sub(origin).Normalize()
	right := forward.Cross(math3d.V3(0, 1, 0)).Normalize()
	up := right.Cross(forward)

	ndcX := 2*(float64(px)+0.5)/float64(width) - 1
	ndcY := 1 - 2*(float64(py)+0.5)/float64(height)
	tan := math.Tan(c.FOV / 2)

	dir = forward.
		Add(right.Scale(ndcX * tan * c.Aspect)).
		Add(up.Scale(ndcY * tan)).
		Normalize()
	return origin, dir
}
