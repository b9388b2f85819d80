package cornertable

// Walker is a cursor over the corners of a table.
//
// Moves never modify the table. The table must not be mutated while a walker is in use.
type Walker struct {
	table  *Table
	corner int
}

// NewWalker returns a walker positioned at corner.
func NewWalker(t *Table, corner int) *Walker {
	return &Walker{table: t, corner: corner}
}

// WalkerFromVertex returns a walker positioned at the representative corner of vertex v.
func WalkerFromVertex(t *Table, v int) *Walker {
	return &Walker{table: t, corner: t.vertices[v].Corner}
}

// SetCorner jumps to corner.
func (w *Walker) SetCorner(corner int) *Walker {
	w.corner = corner
	return w
}

// Next moves to the next corner of the current triangle.
func (w *Walker) Next() *Walker {
	w.corner = w.table.corners[w.corner].Next
	return w
}

// Previous moves to the previous corner of the current triangle.
func (w *Walker) Previous() *Walker {
	return w.Next().Next()
}

// Opposite crosses to the opposite corner in the adjacent triangle.
// On a boundary edge there is nothing to cross to and the walker stays where it is;
// check CanSwingLeft/CanSwingRight or use TryOpposite first.
func (w *Walker) Opposite() *Walker {
	w.TryOpposite()
	return w
}

// TryOpposite crosses to the opposite corner and reports whether it exists.
func (w *Walker) TryOpposite() bool {
	o := w.table.corners[w.corner].Opposite
	if o == NoCorner {
		return false
	}
	w.corner = o
	return true
}

// Right moves to the right neighbour: next, then opposite.
func (w *Walker) Right() *Walker {
	return w.Next().Opposite()
}

// Left moves to the left neighbour: previous, then opposite.
func (w *Walker) Left() *Walker {
	return w.Previous().Opposite()
}

// SwingRight rotates one step to the right around the current vertex.
func (w *Walker) SwingRight() *Walker {
	return w.Previous().Opposite().Previous()
}

// SwingLeft rotates one step to the left around the current vertex.
func (w *Walker) SwingLeft() *Walker {
	return w.Next().Opposite().Next()
}

// CanSwingRight reports whether the edge crossed by SwingRight is interior.
func (w *Walker) CanSwingRight() bool {
	return w.table.opp(w.table.prev(w.corner)) != NoCorner
}

// CanSwingLeft reports whether the edge crossed by SwingLeft is interior.
func (w *Walker) CanSwingLeft() bool {
	return w.table.opp(w.table.next(w.corner)) != NoCorner
}

// SwingLeftOrStay swings left if possible and reports whether it moved.
func (w *Walker) SwingLeftOrStay() bool {
	if !w.CanSwingLeft() {
		return false
	}
	w.SwingLeft()
	return true
}

// SwingRightOrStay swings right if possible and reports whether it moved.
func (w *Walker) SwingRightOrStay() bool {
	if !w.CanSwingRight() {
		return false
	}
	w.SwingRight()
	return true
}

// Corner returns the current corner index.
func (w *Walker) Corner() int {
	return w.corner
}

// Vertex returns the vertex of the current corner.
func (w *Walker) Vertex() int {
	return w.table.corners[w.corner].Vertex
}

// NextCorner returns the index of the next corner without moving.
func (w *Walker) NextCorner() int {
	return w.table.next(w.corner)
}

// PreviousCorner returns the index of the previous corner without moving.
func (w *Walker) PreviousCorner() int {
	return w.table.prev(w.corner)
}

// OppositeCorner returns the opposite corner index, or false on a boundary edge.
func (w *Walker) OppositeCorner() (int, bool) {
	o := w.table.opp(w.corner)
	return o, o != NoCorner
}

// HasOpposite reports whether the current corner faces an interior edge.
func (w *Walker) HasOpposite() bool {
	return w.table.opp(w.corner) != NoCorner
}
