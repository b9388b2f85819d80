package cornertable

import "iter"

// Faces yields the first corner of every non-deleted face in increasing order.
func (t *Table) Faces() iter.Seq[int] {
	return func(yield func(int) bool) {
		for c := 0; c < len(t.corners); c += 3 {
			if t.corners[c].Deleted {
				continue
			}
			if !yield(c) {
				return
			}
		}
	}
}

// Vertices yields the index of every non-deleted vertex in increasing order.
func (t *Table) Vertices() iter.Seq[int] {
	return func(yield func(int) bool) {
		for v := range t.vertices {
			if t.vertices[v].Deleted {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Edges yields every undirected edge exactly once, named by a corner opposite to it.
//
// The pass marks corners in the table's visited flags, which are cleared when ranging
// starts. Two edge passes over the same table must not be interleaved.
func (t *Table) Edges() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := range t.corners {
			t.corners[i].visited = false
		}

		for c := range t.corners {
			corner := &t.corners[c]
			if corner.visited || corner.Deleted {
				continue
			}

			corner.visited = true
			if corner.Opposite != NoCorner {
				t.corners[corner.Opposite].visited = true
			}

			if !yield(c) {
				return
			}
		}
	}
}

// EdgeCount counts the undirected edges. It runs an edge pass.
func (t *Table) EdgeCount() int {
	n := 0
	for range t.Edges() {
		n++
	}
	return n
}

// CornersAroundVertex yields the corners of vertex v in angular order.
// Around a boundary vertex the walk runs to one border, then resumes from the start
// towards the other border.
func (t *Table) CornersAroundVertex(v int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if t.IsVertexDeleted(v) {
			return
		}

		w := Walker{table: t, corner: t.vertices[v].Corner}
		w.Previous()
		start := w.corner
		border := false

		for {
			if !yield(w.NextCorner()) {
				return
			}

			w.Previous()
			if !w.HasOpposite() {
				border = true
				break
			}
			w.Opposite()

			if w.corner == start {
				break
			}
		}

		w.SetCorner(start)
		if border && w.TryOpposite() {
			for {
				if !yield(w.PreviousCorner()) {
					return
				}

				w.Next()
				if !w.TryOpposite() {
					break
				}
			}
		}
	}
}

// VerticesAroundVertex yields the one-ring neighbours of vertex v in angular order.
func (t *Table) VerticesAroundVertex(v int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if t.IsVertexDeleted(v) {
			return
		}

		w := Walker{table: t, corner: t.vertices[v].Corner}
		w.Previous()
		start := w.corner
		border := false

		for {
			if !yield(w.Vertex()) {
				return
			}

			w.Previous()
			if !w.HasOpposite() {
				border = true
				break
			}
			w.Opposite()

			if w.corner == start {
				break
			}
		}

		if border {
			w.SetCorner(start).Previous()
			for {
				if !yield(w.Vertex()) {
					return
				}

				w.Next()
				if !w.TryOpposite() {
					break
				}
			}
		}
	}
}

// FacesAroundVertex yields the faces incident to vertex v in angular order.
// Each face is reported as one of its corners, not necessarily the first.
func (t *Table) FacesAroundVertex(v int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if t.IsVertexDeleted(v) {
			return
		}

		w := Walker{table: t, corner: t.vertices[v].Corner}
		w.Previous()
		start := w.corner
		border := false

		for {
			if !yield(w.corner) {
				return
			}

			w.Previous()
			if !w.HasOpposite() {
				border = true
				break
			}
			w.Opposite()

			if w.corner == start {
				break
			}
		}

		w.SetCorner(start)
		if border && w.TryOpposite() {
			for {
				if !yield(w.corner) {
					return
				}

				w.Next()
				if !w.TryOpposite() {
					break
				}
			}
		}
	}
}
