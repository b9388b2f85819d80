package cornertable

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks the structural invariants of the table and returns every violation
// found, combined into one error. A nil result means the table is a consistent
// manifold (with boundary).
func (t *Table) Validate() error {
	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidTopology}, args...)...))
	}

	liveVertices, liveFaces := 0, 0
	incident := make([]int, len(t.vertices))

	for f := 0; f < len(t.corners); f += 3 {
		deleted := t.corners[f].Deleted
		if t.corners[f+1].Deleted != deleted || t.corners[f+2].Deleted != deleted {
			fail("face %d is partially deleted", f/3)
			continue
		}
		if deleted {
			continue
		}
		liveFaces++

		for c := f; c < f+3; c++ {
			corner := t.corners[c]
			if corner.Next < f || corner.Next >= f+3 || t.next(t.next(t.next(c))) != c {
				fail("corner %d next cycle leaves its face", c)
				continue
			}
			if t.IsVertexDeleted(corner.Vertex) {
				fail("corner %d references missing vertex %d", c, corner.Vertex)
				continue
			}
			incident[corner.Vertex]++

			o := corner.Opposite
			if o == NoCorner {
				continue
			}
			if t.IsCornerDeleted(o) {
				fail("corner %d has deleted opposite %d", c, o)
				continue
			}
			if t.opp(o) != c {
				fail("opposite of corner %d is %d, but opposite of %d is %d", c, o, o, t.opp(o))
				continue
			}
			if t.vert(t.next(c)) != t.vert(t.prev(o)) || t.vert(t.prev(c)) != t.vert(t.next(o)) {
				fail("corners %d and %d do not face the same edge", c, o)
			}
		}

		a, b, c := t.FaceVertices(f)
		if a == b || b == c || c == a {
			fail("face %d is degenerate (%d, %d, %d)", f/3, a, b, c)
		}
	}

	for v := range t.vertices {
		vertex := t.vertices[v]
		if vertex.Deleted {
			continue
		}
		liveVertices++
		if t.IsCornerDeleted(vertex.Corner) {
			fail("vertex %d has no live corner (%d)", v, vertex.Corner)
		} else if t.vert(vertex.Corner) != v {
			fail("vertex %d corner %d belongs to vertex %d", v, vertex.Corner, t.vert(vertex.Corner))
		}
	}

	if liveVertices != t.vertexCount {
		fail("vertex count is %d, found %d live vertices", t.vertexCount, liveVertices)
	}
	if liveFaces != t.faceCount {
		fail("face count is %d, found %d live faces", t.faceCount, liveFaces)
	}

	// Fan walks are only safe on a table with sound links.
	if errs != nil {
		return errs
	}
	for v := range t.Vertices() {
		fan := 0
		for range t.CornersAroundVertex(v) {
			fan++
		}
		if fan != incident[v] {
			fail("vertex %d is non-manifold: %d corners, fan of %d", v, incident[v], fan)
		}
	}

	return errs
}
