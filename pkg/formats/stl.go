package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/meshreduce/pkg/encoding"
	"github.com/Faultbox/meshreduce/pkg/math"
)

// STL format errors.
var (
	ErrTruncatedSTL = errors.New("truncated STL data")
	ErrInvalidSTL   = errors.New("invalid ASCII STL")
)

const (
	stlHeaderSize   = 80
	stlTriangleSize = 50 // normal, three vertices, attribute word
)

// ParseSTL parses binary or ASCII STL. Vertices with identical coordinates are
// welded; triangles that degenerate after welding are skipped.
func ParseSTL(data []byte) (*Mesh, error) {
	if isBinarySTL(data) {
		return parseBinarySTL(data)
	}
	if bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte("solid")) {
		return parseASCIISTL(data)
	}
	return parseBinarySTL(data)
}

// ParseSTLFile parses an STL file from disk.
func ParseSTLFile(path string) (*Mesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading STL file: %w", err)
	}
	return ParseSTL(data)
}

// isBinarySTL checks the size implied by the triangle count. ASCII files may start
// with "solid" but binary exporters write it into the header too.
func isBinarySTL(data []byte) bool {
	if len(data) < stlHeaderSize+4 {
		return false
	}
	n := binary.LittleEndian.Uint32(data[stlHeaderSize:])
	return uint64(len(data)) == stlHeaderSize+4+uint64(n)*stlTriangleSize
}

func parseBinarySTL(data []byte) (*Mesh, error) {
	if len(data) < stlHeaderSize+4 {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncatedSTL, len(data), stlHeaderSize+4)
	}

	name := encoding.FixedStringToUTF8(data[:stlHeaderSize])
	r := bytes.NewReader(data[stlHeaderSize:])

	var count uint32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, fmt.Errorf("%w: reading triangle count", ErrTruncatedSTL)
	}
	if uint64(r.Len()) < uint64(count)*stlTriangleSize {
		return nil, fmt.Errorf("%w: %d triangles need %d bytes, have %d",
			ErrTruncatedSTL, count, uint64(count)*stlTriangleSize, r.Len())
	}

	m := &Mesh{Name: name}
	w := newWelder(m)

	var raw struct {
		Normal   [3]float32
		Vertices [3][3]float32
		Attr     uint16
	}
	for i := uint32(0); i < count; i++ {
		if err := binary.Read(r, binary.LittleEndian, &raw); err != nil {
			return nil, fmt.Errorf("%w: triangle %d", ErrTruncatedSTL, i)
		}
		var idx [3]int
		for k, v := range raw.Vertices {
			idx[k] = w.vertex(math.Vec3{X: float64(v[0]), Y: float64(v[1]), Z: float64(v[2])})
		}
		m.addTriangle(idx[0], idx[1], idx[2])
	}

	return m, nil
}

func parseASCIISTL(data []byte) (*Mesh, error) {
	m := &Mesh{}
	w := newWelder(m)
	sc := bufio.NewScanner(bytes.NewReader(data))

	var facet []int
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "solid":
			m.Name = strings.Join(fields[1:], " ")
		case "facet":
			facet = facet[:0]
		case "vertex":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidSTL, line, err)
			}
			facet = append(facet, w.vertex(p))
		case "endfacet":
			if len(facet) != 3 {
				return nil, fmt.Errorf("%w: line %d: facet has %d vertices", ErrInvalidSTL, line, len(facet))
			}
			m.addTriangle(facet[0], facet[1], facet[2])
		case "outer", "endloop", "endsolid":
		default:
			return nil, fmt.Errorf("%w: line %d: unexpected %q", ErrInvalidSTL, line, fields[0])
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading ASCII STL: %w", err)
	}

	return m, nil
}

func parseVec3(fields []string) (math.Vec3, error) {
	if len(fields) < 3 {
		return math.Vec3{}, fmt.Errorf("expected 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i := range c {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return math.Vec3{}, err
		}
		c[i] = v
	}
	return math.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// WriteSTL writes m as binary STL. Coordinates are narrowed to float32.
func WriteSTL(w io.Writer, m *Mesh) error {
	if uint64(m.TriangleCount()) > gomath.MaxUint32 {
		return fmt.Errorf("%d triangles do not fit a binary STL", m.TriangleCount())
	}

	if _, err := w.Write(encoding.UTF8ToFixedString(m.Name, stlHeaderSize)); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(m.TriangleCount())); err != nil {
		return err
	}

	buf := make([]byte, stlTriangleSize)
	for f := 0; f < len(m.Indices); f += 3 {
		p := m.facePositions(f)
		n := math.TriangleNormal(p[0], p[1], p[2]).Normalize()

		putVec3(buf[0:], n)
		putVec3(buf[12:], p[0])
		putVec3(buf[24:], p[1])
		putVec3(buf[36:], p[2])
		binary.LittleEndian.PutUint16(buf[48:], 0)

		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// WriteSTLASCII writes m as ASCII STL.
func WriteSTLASCII(w io.Writer, m *Mesh) error {
	name := m.Name
	if name == "" {
		name = "mesh"
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "solid %s\n", name)
	for f := 0; f < len(m.Indices); f += 3 {
		p := m.facePositions(f)
		n := math.TriangleNormal(p[0], p[1], p[2]).Normalize()

		fmt.Fprintf(bw, "  facet normal %s\n", formatVec3(n))
		fmt.Fprintln(bw, "    outer loop")
		for _, v := range p {
			fmt.Fprintf(bw, "      vertex %s\n", formatVec3(v))
		}
		fmt.Fprintln(bw, "    endloop")
		fmt.Fprintln(bw, "  endfacet")
	}
	fmt.Fprintf(bw, "endsolid %s\n", name)
	return bw.Flush()
}

func (m *Mesh) facePositions(f int) [3]math.Vec3 {
	return [3]math.Vec3{
		m.Positions[m.Indices[f]],
		m.Positions[m.Indices[f+1]],
		m.Positions[m.Indices[f+2]],
	}
}

func putVec3(b []byte, v math.Vec3) {
	binary.LittleEndian.PutUint32(b[0:], gomath.Float32bits(float32(v.X)))
	binary.LittleEndian.PutUint32(b[4:], gomath.Float32bits(float32(v.Y)))
	binary.LittleEndian.PutUint32(b[8:], gomath.Float32bits(float32(v.Z)))
}

func formatVec3(v math.Vec3) string {
	return strconv.FormatFloat(v.X, 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Y, 'g', -1, 64) + " " +
		strconv.FormatFloat(v.Z, 'g', -1, 64)
}
