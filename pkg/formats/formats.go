// Package formats reads and writes triangle mesh files (STL and Wavefront OBJ).
package formats

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/meshreduce/pkg/math"
	"github.com/Faultbox/meshreduce/pkg/mesh/cornertable"
)

// ErrUnsupportedFormat is returned for a file extension no codec handles.
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// Format identifies a mesh file encoding.
type Format int

const (
	FormatSTL      Format = iota // binary STL
	FormatSTLASCII               // ASCII STL
	FormatOBJ                    // Wavefront OBJ
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatSTL:
		return "STL"
	case FormatSTLASCII:
		return "STL (ASCII)"
	case FormatOBJ:
		return "OBJ"
	default:
		return fmt.Sprintf("Unknown(%d)", int(f))
	}
}

// Mesh is an indexed triangle list as stored in a file.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Indices   []int // three per triangle, counter-clockwise

	// Skipped counts input triangles dropped because two of their corners
	// collapsed onto the same vertex.
	Skipped int
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Table builds a corner table from the mesh.
func (m *Mesh) Table() (*cornertable.Table, error) {
	t, err := cornertable.New(m.Positions, m.Indices)
	if err != nil {
		return nil, fmt.Errorf("building corner table for %q: %w", m.Name, err)
	}
	return t, nil
}

// FromTable exports the live part of a table.
func FromTable(name string, t *cornertable.Table) *Mesh {
	positions, indices := t.Buffers()
	return &Mesh{Name: name, Positions: positions, Indices: indices}
}

// FormatFromPath picks a format from the file extension. ".stl" maps to binary STL.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".stl":
		return FormatSTL, nil
	case ".obj":
		return FormatOBJ, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ParseFile reads a mesh file, choosing the codec by extension.
// STL files are sniffed for ASCII or binary encoding.
func ParseFile(path string) (*Mesh, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	var m *Mesh
	switch format {
	case FormatOBJ:
		m, err = ParseOBJFile(path)
	default:
		m, err = ParseSTLFile(path)
	}
	if err != nil {
		return nil, err
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m, nil
}

// WriteFile writes m to path in the given format.
func WriteFile(path string, m *Mesh, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	switch format {
	case FormatSTL:
		err = WriteSTL(w, m)
	case FormatSTLASCII:
		err = WriteSTLASCII(w, m)
	case FormatOBJ:
		err = WriteOBJ(w, m)
	default:
		err = fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// welder merges vertices with bit-identical coordinates.
type welder struct {
	mesh  *Mesh
	index map[math.Vec3]int
}

func newWelder(m *Mesh) *welder {
	return &welder{mesh: m, index: make(map[math.Vec3]int)}
}

func (w *welder) vertex(p math.Vec3) int {
	if i, ok := w.index[p]; ok {
		return i
	}
	i := len(w.mesh.Positions)
	w.mesh.Positions = append(w.mesh.Positions, p)
	w.index[p] = i
	return i
}

// addTriangle appends a triangle unless two of its indices coincide.
func (m *Mesh) addTriangle(a, b, c int) {
	if a == b || b == c || c == a {
		m.Skipped++
		return
	}
	m.Indices = append(m.Indices, a, b, c)
}
