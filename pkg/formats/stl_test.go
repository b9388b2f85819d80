package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/Faultbox/meshreduce/pkg/math"
	"github.com/Faultbox/meshreduce/pkg/mesh/meshtest"
)

// createTestSTL builds a binary STL with one record per triangle.
func createTestSTL(header string, triangles [][3][3]float32) []byte {
	buf := new(bytes.Buffer)

	var h [80]byte
	copy(h[:], header)
	buf.Write(h[:])

	binary.Write(buf, binary.LittleEndian, uint32(len(triangles)))
	for _, tri := range triangles {
		binary.Write(buf, binary.LittleEndian, [3]float32{}) // normal
		binary.Write(buf, binary.LittleEndian, tri)
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	return buf.Bytes()
}

var squareTriangles = [][3][3]float32{
	{{0, 1, 0}, {0, 0, 0}, {1, 0, 0}},
	{{1, 0, 0}, {1, 1, 0}, {0, 1, 0}},
}

func TestParseSTL_Binary(t *testing.T) {
	m, err := ParseSTL(createTestSTL("square", squareTriangles))
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}

	if m.Name != "square" {
		t.Errorf("expected name 'square', got %q", m.Name)
	}
	if len(m.Positions) != 4 {
		t.Errorf("expected 4 welded vertices, got %d", len(m.Positions))
	}
	if want := []int{0, 1, 2, 2, 3, 0}; !slices.Equal(m.Indices, want) {
		t.Errorf("expected indices %v, got %v", want, m.Indices)
	}

	table, err := m.Table()
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}
	if table.EdgeCount() != 5 {
		t.Errorf("expected 5 edges, got %d", table.EdgeCount())
	}
}

func TestParseSTL_BinaryHeaderStartingWithSolid(t *testing.T) {
	m, err := ParseSTL(createTestSTL("solid exported by a CAD tool", squareTriangles))
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if m.TriangleCount() != 2 {
		t.Errorf("expected 2 triangles, got %d", m.TriangleCount())
	}
}

func TestParseSTL_SkipsDegenerate(t *testing.T) {
	triangles := append(slices.Clone(squareTriangles), [3][3]float32{{0, 0, 0}, {0, 0, 0}, {1, 0, 0}})

	m, err := ParseSTL(createTestSTL("", triangles))
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if m.TriangleCount() != 2 || m.Skipped != 1 {
		t.Errorf("expected 2 triangles and 1 skipped, got %d and %d", m.TriangleCount(), m.Skipped)
	}
}

func TestParseSTL_Truncated(t *testing.T) {
	data := createTestSTL("", squareTriangles)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"header only", data[:80]},
		{"missing last triangle", data[:len(data)-10]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSTL(tt.data)
			if !errors.Is(err, ErrTruncatedSTL) {
				t.Errorf("expected ErrTruncatedSTL, got %v", err)
			}
		})
	}
}

const asciiSquare = `solid square
  facet normal 0 0 1
    outer loop
      vertex 0 1 0
      vertex 0 0 0
      vertex 1 0 0
    endloop
  endfacet
  facet normal 0 0 1
    outer loop
      vertex 1 0 0
      vertex 1 1 0
      vertex 0 1 0
    endloop
  endfacet
endsolid square
`

func TestParseSTL_ASCII(t *testing.T) {
	m, err := ParseSTL([]byte(asciiSquare))
	if err != nil {
		t.Fatalf("ParseSTL failed: %v", err)
	}
	if m.Name != "square" {
		t.Errorf("expected name 'square', got %q", m.Name)
	}
	if len(m.Positions) != 4 || m.TriangleCount() != 2 {
		t.Errorf("expected 4 vertices and 2 triangles, got %d and %d", len(m.Positions), m.TriangleCount())
	}
}

func TestParseSTL_InvalidASCII(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad coordinate", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 a 0\n"},
		{"short facet", "solid x\nfacet normal 0 0 1\nouter loop\nvertex 0 0 0\nvertex 1 0 0\nendloop\nendfacet\n"},
		{"unknown keyword", "solid x\nbogus\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSTL([]byte(tt.data))
			if !errors.Is(err, ErrInvalidSTL) {
				t.Errorf("expected ErrInvalidSTL, got %v", err)
			}
		})
	}
}

func TestWriteSTL_RoundTrip(t *testing.T) {
	src := meshtest.Octahedron()
	m := &Mesh{Name: "octahedron", Positions: src.Positions, Indices: src.Indices}

	var binaryBuf, asciiBuf bytes.Buffer
	if err := WriteSTL(&binaryBuf, m); err != nil {
		t.Fatalf("WriteSTL failed: %v", err)
	}
	if err := WriteSTLASCII(&asciiBuf, m); err != nil {
		t.Fatalf("WriteSTLASCII failed: %v", err)
	}
	if got, want := binaryBuf.Len(), 84+50*8; got != want {
		t.Errorf("expected %d bytes, got %d", want, got)
	}
	if !strings.HasPrefix(asciiBuf.String(), "solid octahedron\n") {
		t.Errorf("unexpected ASCII header: %q", asciiBuf.String()[:20])
	}

	for name, data := range map[string][]byte{"binary": binaryBuf.Bytes(), "ascii": asciiBuf.Bytes()} {
		t.Run(name, func(t *testing.T) {
			got, err := ParseSTL(data)
			if err != nil {
				t.Fatalf("ParseSTL failed: %v", err)
			}
			if len(got.Positions) != len(m.Positions) || got.TriangleCount() != m.TriangleCount() {
				t.Fatalf("expected %d vertices / %d triangles, got %d / %d",
					len(m.Positions), m.TriangleCount(), len(got.Positions), got.TriangleCount())
			}
			// Welding renumbers vertices by first use; the triangles themselves must match.
			for f := 0; f < len(m.Indices); f += 3 {
				if got.facePositions(f) != m.facePositions(f) {
					t.Errorf("triangle %d: expected %v, got %v", f/3, m.facePositions(f), got.facePositions(f))
				}
			}
		})
	}
}

func TestFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	src := meshtest.Grid(4)
	m := &Mesh{Name: "grid", Positions: src.Positions, Indices: src.Indices}

	tests := []struct {
		file   string
		format Format
	}{
		{"grid.stl", FormatSTL},
		{"grid_ascii.stl", FormatSTLASCII},
		{"grid.obj", FormatOBJ},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := WriteFile(path, m, tt.format); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}

			got, err := ParseFile(path)
			if err != nil {
				t.Fatalf("ParseFile failed: %v", err)
			}
			if got.TriangleCount() != m.TriangleCount() || len(got.Positions) != len(m.Positions) {
				t.Errorf("expected %d triangles / %d vertices, got %d / %d",
					m.TriangleCount(), len(m.Positions), got.TriangleCount(), len(got.Positions))
			}

			table, err := got.Table()
			if err != nil {
				t.Fatalf("Table failed: %v", err)
			}
			if err := table.Validate(); err != nil {
				t.Errorf("Validate failed: %v", err)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"model.stl", FormatSTL, false},
		{"MODEL.STL", FormatSTL, false},
		{"dir/model.obj", FormatOBJ, false},
		{"model.ply", 0, true},
		{"model", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("expected ErrUnsupportedFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("expected %s, got %s (%v)", tt.want, got, err)
			}
		})
	}
}

func TestFromTable(t *testing.T) {
	src := meshtest.CrossSquare()
	m := &Mesh{Positions: src.Positions, Indices: src.Indices}
	table, err := m.Table()
	if err != nil {
		t.Fatalf("Table failed: %v", err)
	}

	table.CollapseEdge(1, math.Vec3{X: 0.5, Y: 0.5})
	out := FromTable("collapsed", table)

	if out.TriangleCount() != 2 || len(out.Positions) != 4 {
		t.Errorf("expected 2 triangles / 4 vertices, got %d / %d", out.TriangleCount(), len(out.Positions))
	}
	for _, idx := range out.Indices {
		if idx < 0 || idx >= len(out.Positions) {
			t.Fatalf("index %d out of range", idx)
		}
	}
}
