package models

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// stlHeaderSize is the fixed binary STL header length. The header
// carries no structure, only the triangle count that follows it.
const stlHeaderSize = 80

// SaveSTL writes the mesh to path in binary STL format. STL stores
// independent triangles, so the index structure is flattened and each
// triangle carries its own face normal.
func SaveSTL(m *Mesh, path string) error {
	if len(m.Faces) == 0 {
		return fmt.Errorf("save stl: mesh %q has no faces", m.Name)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save stl: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	var header [stlHeaderSize]byte
	copy(header[:], m.Name)
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("save stl: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("save stl: %w", err)
	}

	// 12 floats per triangle (normal + 3 corners) plus the attribute
	// byte count, always zero.
	var rec [50]byte
	for i := range m.Faces {
		n := m.FaceNormal(i)
		tri := m.Triangle(i)

		putVec3f(rec[0:], n.X, n.Y, n.Z)
		putVec3f(rec[12:], tri[0].X, tri[0].Y, tri[0].Z)
		putVec3f(rec[24:], tri[1].X, tri[1].Y, tri[1].Z)
		putVec3f(rec[36:], tri[2].X, tri[2].Y, tri[2].Z)
		rec[48], rec[49] = 0, 0

		if _, err := w.Write(rec[:]); err != nil {
			return fmt.Errorf("save stl: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("save stl: %w", err)
	}
	return nil
}

func putVec3f(b []byte, x, y, z float64) {
	binary.LittleEndian.PutUint32(b[0:], math.Float32bits(float32(x)))
	binary.LittleEndian.PutUint32(b[4:], math.Float32bits(float32(y)))
	binary.LittleEndian.PutUint32(b[8:], math.Float32bits(float32(z)))
}
