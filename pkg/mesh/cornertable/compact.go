package cornertable

import "github.com/Faultbox/meshreduce/pkg/math"

// Compact drops deleted vertices and faces and renumbers everything that is left,
// preserving relative order. It returns the old-to-new vertex index map, with -1 for
// dropped vertices. All indices obtained before the call are invalidated.
func (t *Table) Compact() []int {
	vertexMap := make([]int, len(t.vertices))
	vertices := make([]Vertex, 0, t.vertexCount)
	for v := range t.vertices {
		if t.vertices[v].Deleted {
			vertexMap[v] = -1
			continue
		}
		vertexMap[v] = len(vertices)
		vertices = append(vertices, t.vertices[v])
	}

	cornerMap := make([]int, len(t.corners))
	corners := make([]Corner, 0, 3*t.faceCount)
	for f := 0; f < len(t.corners); f += 3 {
		if t.corners[f].Deleted {
			cornerMap[f], cornerMap[f+1], cornerMap[f+2] = NoCorner, NoCorner, NoCorner
			continue
		}
		for k := 0; k < 3; k++ {
			cornerMap[f+k] = len(corners)
			corners = append(corners, t.corners[f+k])
		}
	}

	for i := range corners {
		c := &corners[i]
		c.Vertex = vertexMap[c.Vertex]
		c.Next = cornerMap[c.Next]
		if c.Opposite != NoCorner {
			c.Opposite = cornerMap[c.Opposite]
		}
		c.visited = false
	}
	for i := range vertices {
		vertices[i].Corner = cornerMap[vertices[i].Corner]
	}

	t.vertices = vertices
	t.corners = corners
	return vertexMap
}

// Buffers exports the live mesh as contiguous positions and a flat triangle index list,
// in vertex and face iteration order. The table is not modified.
func (t *Table) Buffers() ([]math.Vec3, []int) {
	remap := make([]int, len(t.vertices))
	positions := make([]math.Vec3, 0, t.vertexCount)
	for v := range t.Vertices() {
		remap[v] = len(positions)
		positions = append(positions, t.pos(v))
	}

	indices := make([]int, 0, 3*t.faceCount)
	for f := range t.Faces() {
		a, b, c := t.FaceVertices(f)
		indices = append(indices, remap[a], remap[b], remap[c])
	}
	return positions, indices
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	return &Table{
		vertices:    append([]Vertex(nil), t.vertices...),
		corners:     append([]Corner(nil), t.corners...),
		vertexCount: t.vertexCount,
		faceCount:   t.faceCount,
	}
}
