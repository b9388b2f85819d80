package formats

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrInvalidOBJ is returned for malformed OBJ records.
var ErrInvalidOBJ = errors.New("invalid OBJ data")

// ParseOBJ reads the geometry of a Wavefront OBJ stream. Only "v" and "f" records
// are used; polygons are fan-triangulated and texture/normal references in face
// corners ("v/vt/vn") are ignored. Negative indices count back from the last vertex.
func ParseOBJ(r io.Reader) (*Mesh, error) {
	m := &Mesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseVec3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
			}
			m.Positions = append(m.Positions, p)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face has %d corners", ErrInvalidOBJ, line, len(fields)-1)
			}
			poly := make([]int, 0, len(fields)-1)
			for _, corner := range fields[1:] {
				idx, err := parseOBJIndex(corner, len(m.Positions))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidOBJ, line, err)
				}
				poly = append(poly, idx)
			}
			for k := 1; k+1 < len(poly); k++ {
				m.addTriangle(poly[0], poly[k], poly[k+1])
			}

		case "o":
			if m.Name == "" && len(fields) > 1 {
				m.Name = strings.Join(fields[1:], " ")
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading OBJ: %w", err)
	}

	return m, nil
}

// ParseOBJFile parses an OBJ file from disk.
func ParseOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading OBJ file: %w", err)
	}
	defer f.Close()
	return ParseOBJ(f)
}

// parseOBJIndex resolves the vertex part of a face corner to a 0-based index.
func parseOBJIndex(corner string, vertexCount int) (int, error) {
	ref, _, _ := strings.Cut(corner, "/")
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", corner)
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = vertexCount + n
	default:
		return 0, fmt.Errorf("vertex index 0 in %q", corner)
	}
	if idx < 0 || idx >= vertexCount {
		return 0, fmt.Errorf("vertex %d out of range (%d vertices)", n, vertexCount)
	}
	return idx, nil
}

// WriteOBJ writes m as OBJ with 1-based triangle faces.
func WriteOBJ(w io.Writer, m *Mesh) error {
	bw := bufio.NewWriter(w)
	if m.Name != "" {
		fmt.Fprintf(bw, "o %s\n", m.Name)
	}
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %s\n", formatVec3(p))
	}
	for f := 0; f < len(m.Indices); f += 3 {
		fmt.Fprintf(bw, "f %d %d %d\n", m.Indices[f]+1, m.Indices[f+1]+1, m.Indices[f+2]+1)
	}
	return bw.Flush()
}
