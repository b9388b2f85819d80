// Package cornertable implements an indexed triangle mesh stored as a corner table.
//
// Every triangle owns three consecutive corners (3k, 3k+1, 3k+2). A corner knows its
// vertex, its successor inside the triangle and the corner facing it across the shared
// edge in the neighbouring triangle. Faces and edges are not stored: a face is named by
// any of its corners and an edge by the corner opposite to it. Deletion only sets flags,
// so indices stay stable until Compact is called.
package cornertable

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshreduce/pkg/math"
)

// NoCorner marks a missing corner reference (boundary edge or isolated vertex).
const NoCorner = -1

// Corner table errors.
var (
	ErrInvalidTopology = errors.New("invalid mesh topology")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Vertex is a mesh vertex.
type Vertex struct {
	Position math.Vec3
	Corner   int // one incident corner
	Deleted  bool
}

// Corner is one vertex of one triangle.
type Corner struct {
	Vertex   int
	Next     int
	Opposite int // NoCorner on a boundary edge
	Deleted  bool

	visited bool // edge enumeration scratch
}

// Table is a corner table triangle mesh.
type Table struct {
	vertices []Vertex
	corners  []Corner

	vertexCount int
	faceCount   int
}

type halfEdge struct {
	from, to int
}

// New builds a corner table from vertex positions and a flat list of triangle
// vertex indices (three per triangle, counter-clockwise).
//
// Opposite corners are found by matching every directed half-edge with its reverse.
// A directed half-edge used by two triangles, a triangle repeating a vertex, or a vertex
// whose triangles form more than one fan is rejected with ErrInvalidTopology.
// Vertices not referenced by any triangle are marked deleted.
func New(positions []math.Vec3, indices []int) (*Table, error) {
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: %d triangle indices is not a multiple of 3", ErrIndexOutOfRange, len(indices))
	}

	t := &Table{
		vertices: make([]Vertex, len(positions)),
		corners:  make([]Corner, len(indices)),
	}

	for i, p := range positions {
		t.vertices[i] = Vertex{Position: p, Corner: NoCorner}
	}

	incident := make([]int, len(positions))
	for f := 0; f < len(indices); f += 3 {
		a, b, c := indices[f], indices[f+1], indices[f+2]
		for _, v := range [3]int{a, b, c} {
			if v < 0 || v >= len(positions) {
				return nil, fmt.Errorf("%w: face %d references vertex %d of %d", ErrIndexOutOfRange, f/3, v, len(positions))
			}
		}
		if a == b || b == c || c == a {
			return nil, fmt.Errorf("%w: face %d is degenerate (%d, %d, %d)", ErrInvalidTopology, f/3, a, b, c)
		}

		for k := 0; k < 3; k++ {
			ci := f + k
			v := indices[ci]
			t.corners[ci] = Corner{
				Vertex:   v,
				Next:     f + (k+1)%3,
				Opposite: NoCorner,
			}
			// Last incident corner wins.
			t.vertices[v].Corner = ci
			incident[v]++
		}
	}

	edges := make(map[halfEdge]int, len(indices))
	for c := range t.corners {
		he := halfEdge{t.vert(t.next(c)), t.vert(t.prev(c))}
		if other, ok := edges[he]; ok {
			return nil, fmt.Errorf("%w: half-edge %d->%d shared by corners %d and %d",
				ErrInvalidTopology, he.from, he.to, other, c)
		}
		edges[he] = c
	}
	for c := range t.corners {
		if o, ok := edges[halfEdge{t.vert(t.prev(c)), t.vert(t.next(c))}]; ok {
			t.corners[c].Opposite = o
		}
	}

	for v := range t.vertices {
		if t.vertices[v].Corner == NoCorner {
			t.vertices[v].Deleted = true
			continue
		}
		t.vertexCount++
	}
	t.faceCount = len(indices) / 3

	for v := range t.vertices {
		if t.vertices[v].Deleted {
			continue
		}
		fan := 0
		for range t.CornersAroundVertex(v) {
			fan++
		}
		if fan != incident[v] {
			return nil, fmt.Errorf("%w: vertex %d has %d incident corners but its fan reaches %d",
				ErrInvalidTopology, v, incident[v], fan)
		}
	}

	return t, nil
}

// VertexCount returns the number of non-deleted vertices.
func (t *Table) VertexCount() int {
	return t.vertexCount
}

// FaceCount returns the number of non-deleted faces.
func (t *Table) FaceCount() int {
	return t.faceCount
}

// VertexCapacity returns the size of the vertex array, deleted entries included.
func (t *Table) VertexCapacity() int {
	return len(t.vertices)
}

// CornerCapacity returns the size of the corner array, deleted entries included.
func (t *Table) CornerCapacity() int {
	return len(t.corners)
}

// Vertex returns a copy of vertex i, or false if i is out of range.
func (t *Table) Vertex(i int) (Vertex, bool) {
	if i < 0 || i >= len(t.vertices) {
		return Vertex{}, false
	}
	return t.vertices[i], true
}

// Corner returns a copy of corner i, or false if i is out of range.
func (t *Table) Corner(i int) (Corner, bool) {
	if i < 0 || i >= len(t.corners) {
		return Corner{}, false
	}
	return t.corners[i], true
}

// IsVertexDeleted reports whether vertex i is deleted. Out of range counts as deleted.
func (t *Table) IsVertexDeleted(i int) bool {
	return i < 0 || i >= len(t.vertices) || t.vertices[i].Deleted
}

// IsCornerDeleted reports whether corner i is deleted. Out of range counts as deleted.
func (t *Table) IsCornerDeleted(i int) bool {
	return i < 0 || i >= len(t.corners) || t.corners[i].Deleted
}

func (t *Table) next(c int) int {
	return t.corners[c].Next
}

func (t *Table) prev(c int) int {
	return t.corners[t.corners[c].Next].Next
}

func (t *Table) opp(c int) int {
	return t.corners[c].Opposite
}

func (t *Table) vert(c int) int {
	return t.corners[c].Vertex
}

func (t *Table) pos(v int) math.Vec3 {
	return t.vertices[v].Position
}

// link makes a and b opposite to each other. Either may be NoCorner.
func (t *Table) link(a, b int) {
	if a != NoCorner {
		t.corners[a].Opposite = b
	}
	if b != NoCorner {
		t.corners[b].Opposite = a
	}
}

func (t *Table) deleteFace(c int) {
	first := c - c%3
	for k := first; k < first+3; k++ {
		t.corners[k].Deleted = true
		t.corners[k].Opposite = NoCorner
	}
	t.faceCount--
}

func (t *Table) deleteVertex(v int) {
	t.vertices[v].Deleted = true
	t.vertices[v].Corner = NoCorner
	t.vertexCount--
}
