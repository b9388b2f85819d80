package cornertable

import (
	"slices"

	"github.com/Faultbox/meshreduce/pkg/math"
)

// IsEdgeCollapseSafe reports whether collapsing the edge opposite to corner keeps the
// mesh a manifold (with boundary). Only topology is checked; geometric checks such as
// face flips are left to the caller. The table is not modified.
//
// A collapse is refused when:
//   - the two apexes across the edge are the same vertex,
//   - an apex would lose its last face,
//   - the edge is interior but joins two boundary vertices,
//   - the endpoints share a neighbour other than the apexes (link condition),
//   - the merged vertex would be left with fewer than two faces,
//   - an interior apex has valence three or less (tetrahedron and pillow cases).
func (t *Table) IsEdgeCollapseSafe(edge int) bool {
	if t.IsCornerDeleted(edge) {
		return false
	}

	cn, cp := t.next(edge), t.prev(edge)
	v0, v1 := t.vert(cn), t.vert(cp)
	o := t.opp(edge)

	apexes := []int{t.vert(edge)}
	if o != NoCorner {
		apexB := t.vert(o)
		if apexB == apexes[0] {
			return false
		}
		apexes = append(apexes, apexB)
	}

	if t.opp(cn) == NoCorner && t.opp(cp) == NoCorner {
		return false
	}
	if o != NoCorner && t.opp(t.next(o)) == NoCorner && t.opp(t.prev(o)) == NoCorner {
		return false
	}

	if o != NoCorner && t.IsVertexOnBoundary(v0) && t.IsVertexOnBoundary(v1) {
		return false
	}

	ring := slices.Collect(t.VerticesAroundVertex(v0))
	for n := range t.VerticesAroundVertex(v1) {
		if slices.Contains(ring, n) && !slices.Contains(apexes, n) {
			return false
		}
	}

	if t.faceDegree(v0)+t.faceDegree(v1)-2*len(apexes) < 2 {
		return false
	}

	for _, apex := range apexes {
		if !t.IsVertexOnBoundary(apex) && t.Valence(apex) <= 3 {
			return false
		}
	}

	return true
}

// CollapseEdge merges the endpoints of the edge opposite to corner into one vertex at
// position. The faces on the edge are deleted, the outer neighbours of each deleted
// face are linked to each other, and every corner of the removed vertex is retargeted
// to the survivor. It returns the surviving and removed vertex indices.
//
// The caller must check IsEdgeCollapseSafe first. Between retargeting and relinking
// the table is inconsistent; nothing may observe it concurrently.
func (t *Table) CollapseEdge(edge int, position math.Vec3) (survivor, removed int) {
	cn, cp := t.next(edge), t.prev(edge)
	survivor, removed = t.vert(cn), t.vert(cp)
	apexA := t.vert(edge)

	// Outer neighbours of the faces being removed.
	a, b := t.opp(cn), t.opp(cp)
	o := t.opp(edge)
	oa, ob, apexB := NoCorner, NoCorner, NoCorner
	if o != NoCorner {
		oa, ob = t.opp(t.next(o)), t.opp(t.prev(o))
		apexB = t.vert(o)
	}

	moved := slices.Collect(t.CornersAroundVertex(removed))
	for _, c := range moved {
		t.corners[c].Vertex = survivor
	}

	t.link(a, b)
	if o != NoCorner {
		t.link(oa, ob)
		t.deleteFace(o)
	}
	t.deleteFace(edge)
	t.deleteVertex(removed)
	t.vertices[survivor].Position = position

	// Corner layout around the removed faces:
	//   a: next = apexA, prev = survivor     b: next = survivor, prev = apexA
	//   oa: next = apexB, prev = survivor    ob: next = survivor, prev = apexB
	t.vertices[survivor].Corner = firstLive(t,
		t.prevOf(a), t.nextOf(b), t.prevOf(oa), t.nextOf(ob))
	t.vertices[apexA].Corner = firstLive(t, t.nextOf(a), t.prevOf(b))
	if apexB != NoCorner {
		t.vertices[apexB].Corner = firstLive(t, t.nextOf(oa), t.prevOf(ob))
	}

	return survivor, removed
}

func (t *Table) nextOf(c int) int {
	if c == NoCorner {
		return NoCorner
	}
	return t.next(c)
}

func (t *Table) prevOf(c int) int {
	if c == NoCorner {
		return NoCorner
	}
	return t.prev(c)
}

func firstLive(t *Table, corners ...int) int {
	for _, c := range corners {
		if c != NoCorner && !t.corners[c].Deleted {
			return c
		}
	}
	return NoCorner
}
