// Package mesher extracts triangle meshes from scalar fields by
// marching a voxel grid through the cube kernels in pkg/mc.
//
// The field is sampled once per lattice corner and each cell reads the
// shared samples, so two cells flanking a face interpolate identical
// crossing positions and the extracted surface has no cracks. Welding
// coincident vertices then works on exact equality, no epsilon needed.
package mesher

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/voxelforge/isomesh/pkg/field"
	"github.com/voxelforge/isomesh/pkg/math3d"
	"github.com/voxelforge/isomesh/pkg/mc"
	"github.com/voxelforge/isomesh/pkg/models"
)

// March extracts the iso-surface of f inside the box [min, max],
// divided into cells×cells×cells voxels. The returned mesh has welded
// vertices and smooth normals.
func March(f field.Field, min, max math3d.Vec3, cells int, iso float64) (*models.Mesh, error) {
	g, err := newGrid(f, min, max, cells, iso)
	if err != nil {
		return nil, err
	}
	g.sampleRange(0, g.points)
	return weld(g.emitRange(0, cells)), nil
}

// MarchParallel is March with the sampling and cell passes fanned out
// over runtime.NumCPU() workers. The output is identical to March for
// the same inputs.
func MarchParallel(f field.Field, min, max math3d.Vec3, cells int, iso float64) (*models.Mesh, error) {
	g, err := newGrid(f, min, max, cells, iso)
	if err != nil {
		return nil, err
	}

	workers := runtime.NumCPU()
	if workers > cells {
		workers = cells
	}
	if workers < 1 {
		workers = 1
	}

	// Pass 1: fill the sample lattice, a z-slab of points per worker.
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		from, to := span(g.points, workers, w)
		go func() {
			defer wg.Done()
			g.sampleRange(from, to)
		}()
	}
	wg.Wait()

	// Pass 2: march a z-slab of cells per worker into per-worker soups,
	// then concatenate in slab order so the triangle sequence matches
	// the serial walk exactly.
	soups := make([][]math3d.Vec3, workers)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		from, to := span(cells, workers, w)
		go func(w int) {
			defer wg.Done()
			soups[w] = g.emitRange(from, to)
		}(w)
	}
	wg.Wait()

	var soup []math3d.Vec3
	for _, s := range soups {
		soup = append(soup, s...)
	}
	return weld(soup), nil
}

// span splits n items into worker-many contiguous chunks, spreading the
// remainder over the first chunks.
func span(n, workers, w int) (from, to int) {
	base, rem := n/workers, n%workers
	from = w*base + min(w, rem)
	to = from + base
	if w < rem {
		to++
	}
	return from, to
}

// grid holds the sample lattice for one extraction. cells voxels per
// axis means cells+1 sample points per axis.
type grid struct {
	f       field.Field
	min     math3d.Vec3
	step    math3d.Vec3
	cells   int
	points  int // sample points per axis
	iso     float64
	samples []float64
}

func newGrid(f field.Field, min, max math3d.Vec3, cells int, iso float64) (*grid, error) {
	if f == nil {
		return nil, fmt.Errorf("march: nil field")
	}
	if cells < 1 {
		return nil, fmt.Errorf("march: resolution %d, need at least 1 cell", cells)
	}
	size := max.Sub(min)
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		return nil, fmt.Errorf("march: empty bounds %v..%v", min, max)
	}

	points := cells + 1
	return &grid{
		f:       f,
		min:     min,
		step:    size.Div(float64(cells)),
		cells:   cells,
		points:  points,
		iso:     iso,
		samples: make([]float64, points*points*points),
	}, nil
}

// cornerPos maps an integer lattice coordinate to world space. Using
// the integer index keeps the result identical no matter which cell
// asks for the corner.
func (g *grid) cornerPos(x, y, z float64) math3d.Vec3 {
	return math3d.V3(
		g.min.X+x*g.step.X,
		g.min.Y+y*g.step.Y,
		g.min.Z+z*g.step.Z,
	)
}

func (g *grid) sampleIndex(x, y, z int) int {
	return (z*g.points+y)*g.points + x
}

// sampleRange fills lattice layers zFrom..zTo (exclusive).
func (g *grid) sampleRange(zFrom, zTo int) {
	for z := zFrom; z < zTo; z++ {
		for y := 0; y < g.points; y++ {
			for x := 0; x < g.points; x++ {
				p := g.cornerPos(float64(x), float64(y), float64(z))
				g.samples[g.sampleIndex(x, y, z)] = g.f.Sample(p)
			}
		}
	}
}

// emitRange marches the cell layers zFrom..zTo (exclusive) and returns
// the world-space triangle soup, three vertices per triangle, in cell
// walk order.
func (g *grid) emitRange(zFrom, zTo int) []math3d.Vec3 {
	var soup []math3d.Vec3
	var corners [8]float64
	var verts [12]math3d.Vec3

	for z := zFrom; z < zTo; z++ {
		for y := 0; y < g.cells; y++ {
			for x := 0; x < g.cells; x++ {
				for i := 0; i < 8; i++ {
					o := mc.CornerOffset(i)
					corners[i] = g.samples[g.sampleIndex(x+int(o.X), y+int(o.Y), z+int(o.Z))]
				}

				n := mc.CaseGeometry(corners, g.iso, &verts)
				for i := 0; i < n; i++ {
					v := verts[i]
					soup = append(soup, g.cornerPos(
						float64(x)+v.X,
						float64(y)+v.Y,
						float64(z)+v.Z,
					))
				}
			}
		}
	}
	return soup
}

// weld builds an indexed mesh from a triangle soup, merging vertices
// that compare exactly equal, and computes smooth normals.
func weld(soup []math3d.Vec3) *models.Mesh {
	m := models.NewMesh("isosurface")
	index := make(map[math3d.Vec3]int, len(soup)/4)

	for i := 0; i+2 < len(soup); i += 3 {
		var face models.Face
		for c := 0; c < 3; c++ {
			p := soup[i+c]
			vi, ok := index[p]
			if !ok {
				vi = len(m.Vertices)
				index[p] = vi
				m.Vertices = append(m.Vertices, models.Vertex{Position: p})
			}
			face.V[c] = vi
		}
		m.Faces = append(m.Faces, face)
	}

	m.CalculateSmoothNormals()
	m.CalculateBounds()
	return m
}
