package decimation

import (
	"github.com/Faultbox/meshreduce/pkg/math"
	"github.com/Faultbox/meshreduce/pkg/mesh/cornertable"
)

// Placement is a candidate position for a merged vertex and its error.
type Placement struct {
	Position math.Vec3
	Cost     float64
}

// Estimate is the priced outcome of collapsing one edge. Fallbacks are tried in order
// when the primary placement is refused by the geometric checks.
type Estimate struct {
	Cost      float64
	Position  math.Vec3
	Fallbacks []Placement
}

// CollapseStrategy prices edge collapses.
//
// Init is called once before the first Cost, Merge after every applied collapse.
type CollapseStrategy interface {
	Init(t *cornertable.Table)
	Cost(t *cornertable.Table, edge int) Estimate
	Merge(survivor, removed int)
}

// QuadricError prices a collapse by the summed plane quadrics of its endpoints.
type QuadricError struct {
	// BoundaryWeight adds, for every boundary edge, a plane through the edge
	// perpendicular to its face. Zero disables boundary constraints.
	BoundaryWeight float64

	quadrics []Quadric
}

// Init accumulates the plane quadric of every live face into its three vertices.
func (s *QuadricError) Init(t *cornertable.Table) {
	s.quadrics = make([]Quadric, t.VertexCapacity())

	for f := range t.Faces() {
		p := t.FacePositions(f)
		n, d, ok := TrianglePlane(p[0], p[1], p[2])
		if !ok {
			continue
		}
		q := PlaneQuadric(n, d, 1)
		a, b, c := t.FaceVertices(f)
		s.quadrics[a] = s.quadrics[a].Add(q)
		s.quadrics[b] = s.quadrics[b].Add(q)
		s.quadrics[c] = s.quadrics[c].Add(q)

		if s.BoundaryWeight <= 0 {
			continue
		}
		for k := 0; k < 3; k++ {
			edge := f + k
			if !t.IsEdgeOnBoundary(edge) {
				continue
			}
			v0, v1 := t.EdgeVertices(edge)
			p0, p1 := t.EdgePositions(edge)
			side := p1.Sub(p0).Cross(n).Normalize()
			if side == (math.Vec3{}) {
				continue
			}
			bq := PlaneQuadric(side, -side.Dot(p0), s.BoundaryWeight)
			s.quadrics[v0] = s.quadrics[v0].Add(bq)
			s.quadrics[v1] = s.quadrics[v1].Add(bq)
		}
	}
}

// Cost solves for the optimal merged position. When the system is singular the
// midpoint is used, with the lower-error endpoint as the fallback.
func (s *QuadricError) Cost(t *cornertable.Table, edge int) Estimate {
	v0, v1 := t.EdgeVertices(edge)
	p0, p1 := t.EdgePositions(edge)
	q := s.quadrics[v0].Add(s.quadrics[v1])

	mid := p0.Midpoint(p1)
	end := Placement{Position: p0, Cost: q.Evaluate(p0)}
	if c1 := q.Evaluate(p1); c1 < end.Cost {
		end = Placement{Position: p1, Cost: c1}
	}

	if p, ok := q.Optimize(); ok {
		return Estimate{
			Cost:      q.Evaluate(p),
			Position:  p,
			Fallbacks: []Placement{{Position: mid, Cost: q.Evaluate(mid)}, end},
		}
	}
	return Estimate{
		Cost:      q.Evaluate(mid),
		Position:  mid,
		Fallbacks: []Placement{end},
	}
}

// Merge gives the survivor the sum of both quadrics.
func (s *QuadricError) Merge(survivor, removed int) {
	s.quadrics[survivor] = s.quadrics[survivor].Add(s.quadrics[removed])
	s.quadrics[removed] = Quadric{}
}

// Quadric returns the accumulated quadric of vertex v.
func (s *QuadricError) Quadric(v int) Quadric {
	if v < 0 || v >= len(s.quadrics) {
		return Quadric{}
	}
	return s.quadrics[v]
}

// EdgeLength prices a collapse by the squared length of the edge and merges at the
// midpoint. It ignores surface shape and suits uniform remeshing.
type EdgeLength struct{}

// Init is a no-op.
func (EdgeLength) Init(*cornertable.Table) {}

// Cost returns the squared edge length.
func (EdgeLength) Cost(t *cornertable.Table, edge int) Estimate {
	p0, p1 := t.EdgePositions(edge)
	cost := p0.Sub(p1).LengthSquared()
	return Estimate{
		Cost:      cost,
		Position:  p0.Midpoint(p1),
		Fallbacks: []Placement{{Position: p0, Cost: cost}, {Position: p1, Cost: cost}},
	}
}

// Merge is a no-op.
func (EdgeLength) Merge(int, int) {}
