package cornertable

import "github.com/Faultbox/meshreduce/pkg/math"

// VertexPosition returns the position of vertex v, or false if v is out of range.
func (t *Table) VertexPosition(v int) (math.Vec3, bool) {
	if v < 0 || v >= len(t.vertices) {
		return math.Vec3{}, false
	}
	return t.vertices[v].Position, true
}

// SetVertexPosition moves vertex v. It reports false if v is out of range or deleted.
func (t *Table) SetVertexPosition(v int, p math.Vec3) bool {
	if t.IsVertexDeleted(v) {
		return false
	}
	t.vertices[v].Position = p
	return true
}

// FaceVertices returns the vertices of the face containing corner, in winding order
// starting at that corner. An out-of-range corner yields (-1, -1, -1).
func (t *Table) FaceVertices(corner int) (int, int, int) {
	if !t.validCorner(corner) {
		return -1, -1, -1
	}
	n := t.next(corner)
	return t.vert(corner), t.vert(n), t.vert(t.next(n))
}

// FacePositions returns the vertex positions of the face containing corner, or zero
// vectors for an out-of-range corner.
func (t *Table) FacePositions(corner int) [3]math.Vec3 {
	if !t.validCorner(corner) {
		return [3]math.Vec3{}
	}
	a, b, c := t.FaceVertices(corner)
	return [3]math.Vec3{t.pos(a), t.pos(b), t.pos(c)}
}

// FaceNormal returns the unit normal of the face containing corner.
// Degenerate faces and out-of-range corners yield the zero vector.
func (t *Table) FaceNormal(corner int) math.Vec3 {
	p := t.FacePositions(corner)
	return math.TriangleNormal(p[0], p[1], p[2]).Normalize()
}

// VertexNormal returns the area-weighted average normal of the faces around v.
func (t *Table) VertexNormal(v int) (math.Vec3, bool) {
	var sum math.Vec3
	for f := range t.FacesAroundVertex(v) {
		p := t.FacePositions(f)
		sum = sum.Add(math.TriangleNormal(p[0], p[1], p[2]))
	}
	n := sum.Normalize()
	return n, n != (math.Vec3{})
}

// EdgeVertices returns the endpoints of the edge opposite to corner.
// The first endpoint is the one kept when the edge is collapsed.
// An out-of-range corner yields (-1, -1).
func (t *Table) EdgeVertices(edge int) (int, int) {
	if !t.validCorner(edge) {
		return -1, -1
	}
	return t.vert(t.next(edge)), t.vert(t.prev(edge))
}

// EdgePositions returns the endpoint positions of the edge opposite to corner, or
// zero vectors for an out-of-range corner.
func (t *Table) EdgePositions(edge int) (math.Vec3, math.Vec3) {
	if !t.validCorner(edge) {
		return math.Vec3{}, math.Vec3{}
	}
	a, b := t.EdgeVertices(edge)
	return t.pos(a), t.pos(b)
}

// IsEdgeOnBoundary reports whether the edge opposite to corner has a single face.
// Out-of-range corners report false.
func (t *Table) IsEdgeOnBoundary(edge int) bool {
	return t.validCorner(edge) && t.opp(edge) == NoCorner
}

// validCorner guards the public corner-keyed queries. Deleted corners keep their
// last links and are still answered.
func (t *Table) validCorner(c int) bool {
	return c >= 0 && c < len(t.corners)
}

// IsVertexOnBoundary reports whether any edge incident to v is a boundary edge.
func (t *Table) IsVertexOnBoundary(v int) bool {
	for c := range t.CornersAroundVertex(v) {
		if t.opp(t.next(c)) == NoCorner || t.opp(t.prev(c)) == NoCorner {
			return true
		}
	}
	return false
}

// Valence returns the number of one-ring neighbours of v.
func (t *Table) Valence(v int) int {
	n := 0
	for range t.VerticesAroundVertex(v) {
		n++
	}
	return n
}

func (t *Table) faceDegree(v int) int {
	n := 0
	for range t.FacesAroundVertex(v) {
		n++
	}
	return n
}

// BoundingBox returns the bounds of all non-deleted vertices.
func (t *Table) BoundingBox() math.Box3 {
	box := math.EmptyBox()
	for v := range t.Vertices() {
		box = box.Extend(t.pos(v))
	}
	return box
}
