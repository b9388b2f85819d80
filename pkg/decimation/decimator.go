// Package decimation simplifies a corner table by greedy edge collapse.
//
// Every edge is priced by a CollapseStrategy (quadric error by default) and kept in a
// min-priority queue. The cheapest edge is popped, checked against the current mesh
// and collapsed if it still passes; the edges around the merged vertex are then
// priced again. Queue records are never removed eagerly: a per-vertex generation
// counter and a per-edge stamp let stale records be detected when they are popped.
//
// A run is single-threaded and owns the table until it returns.
package decimation

import (
	"container/heap"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshreduce/pkg/math"
	"github.com/Faultbox/meshreduce/pkg/mesh/cornertable"
)

// DefaultMaxNormalDeviation is the largest rotation, in degrees, a face normal may
// undergo in one collapse.
const DefaultMaxNormalDeviation = 60.0

// degenerateSine is the smallest sine of a face angle accepted after a collapse.
const degenerateSine = 1e-10

// Options configures a run. The zero value uses quadric error, no boundary locking,
// the default normal deviation and no logging.
type Options struct {
	Strategy CollapseStrategy

	// KeepBoundary refuses any collapse touching a boundary vertex.
	KeepBoundary bool

	// MaxNormalDeviation in degrees. Zero means DefaultMaxNormalDeviation.
	MaxNormalDeviation float64

	Logger *zap.Logger
}

// Stats summarizes a run.
type Stats struct {
	Collapses  int // applied collapses
	Rejected   int // candidates refused by the topological or geometric checks
	Stale      int // candidates re-priced because an endpoint changed
	Superseded int // candidates dropped because their edge was pushed again or removed

	FacesBefore    int
	FacesAfter     int
	VerticesBefore int
	VerticesAfter  int

	Duration time.Duration
}

// Decimator runs one simplification over a table.
type Decimator struct {
	table    *cornertable.Table
	stop     StopPolicy
	filter   EdgeFilter
	strategy CollapseStrategy
	opts     Options
	log      *zap.Logger

	minCos float64
	queue  candidateQueue
	gen    []uint32
	stamps []uint32
	stats  Stats
}

// New prepares a run over t. A nil stop policy collapses until no edge passes the checks.
func New(t *cornertable.Table, stop StopPolicy, opts Options) *Decimator {
	if stop == nil {
		stop = never{}
	}
	if opts.Strategy == nil {
		opts.Strategy = &QuadricError{}
	}
	if opts.MaxNormalDeviation <= 0 {
		opts.MaxNormalDeviation = DefaultMaxNormalDeviation
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	d := &Decimator{
		table:    t,
		stop:     stop,
		strategy: opts.Strategy,
		opts:     opts,
		log:      opts.Logger,
		minCos:   gomath.Cos(opts.MaxNormalDeviation * gomath.Pi / 180),
	}
	d.filter, _ = stop.(EdgeFilter)
	return d
}

// Decimate simplifies t in place until stop says so or no edge can be collapsed.
func Decimate(t *cornertable.Table, stop StopPolicy, opts Options) Stats {
	return New(t, stop, opts).Run()
}

// Run executes the decimation. It must be called at most once.
func (d *Decimator) Run() Stats {
	t := d.table
	start := time.Now()

	d.stats.FacesBefore = t.FaceCount()
	d.stats.VerticesBefore = t.VertexCount()
	d.gen = make([]uint32, t.VertexCapacity())
	d.stamps = make([]uint32, t.CornerCapacity())

	d.log.Info("decimation started",
		zap.Int("faces", d.stats.FacesBefore),
		zap.Int("vertices", d.stats.VerticesBefore))

	d.strategy.Init(t)

	edges := make([]int, 0, t.CornerCapacity()/2)
	for e := range t.Edges() {
		edges = append(edges, e)
	}
	for _, e := range edges {
		d.queue = append(d.queue, d.price(e))
	}
	heap.Init(&d.queue)

	for d.queue.Len() > 0 {
		c := heap.Pop(&d.queue).(*candidate)

		if t.IsCornerDeleted(c.edge) || d.canonical(c.edge) != c.edge || d.stamps[c.edge] != c.stamp {
			d.stats.Superseded++
			continue
		}

		v0, v1 := t.EdgeVertices(c.edge)
		if v0 != c.v0 || v1 != c.v1 || d.gen[v0] != c.g0 || d.gen[v1] != c.g1 {
			d.stats.Stale++
			heap.Push(&d.queue, d.price(c.edge))
			continue
		}

		if d.stop.ShouldStop(c.cost, t) {
			d.log.Debug("stop policy reached", zap.Float64("cost", c.cost))
			break
		}

		position, ok := d.accept(c)
		if !ok {
			d.stats.Rejected++
			continue
		}

		survivor, removed := t.CollapseEdge(c.edge, position)
		d.strategy.Merge(survivor, removed)
		d.gen[survivor]++
		d.stats.Collapses++

		d.log.Debug("edge collapsed",
			zap.Int("edge", c.edge),
			zap.Int("survivor", survivor),
			zap.Int("removed", removed),
			zap.Float64("cost", c.cost))

		d.refresh(survivor)
	}

	d.stats.FacesAfter = t.FaceCount()
	d.stats.VerticesAfter = t.VertexCount()
	d.stats.Duration = time.Since(start)

	d.log.Info("decimation finished",
		zap.Int("faces", d.stats.FacesAfter),
		zap.Int("vertices", d.stats.VerticesAfter),
		zap.Int("collapses", d.stats.Collapses),
		zap.Int("rejected", d.stats.Rejected),
		zap.Duration("took", d.stats.Duration))

	return d.stats
}

// canonical names an undirected edge by the smaller of its two corners.
func (d *Decimator) canonical(edge int) int {
	c, _ := d.table.Corner(edge)
	if c.Opposite != cornertable.NoCorner && c.Opposite < edge {
		return c.Opposite
	}
	return edge
}

// price builds a fresh record for edge and invalidates every older one.
func (d *Decimator) price(edge int) *candidate {
	edge = d.canonical(edge)
	d.stamps[edge]++

	v0, v1 := d.table.EdgeVertices(edge)
	est := d.strategy.Cost(d.table, edge)
	return &candidate{
		cost:      est.Cost,
		edge:      edge,
		v0:        v0,
		v1:        v1,
		g0:        d.gen[v0],
		g1:        d.gen[v1],
		stamp:     d.stamps[edge],
		position:  est.Position,
		fallbacks: est.Fallbacks,
	}
}

// refresh re-prices every edge of every face around v.
func (d *Decimator) refresh(v int) {
	seen := make(map[int]struct{})
	for f := range d.table.FacesAroundVertex(v) {
		first := f - f%3
		for e := first; e < first+3; e++ {
			key := d.canonical(e)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			heap.Push(&d.queue, d.price(key))
		}
	}
}

// accept runs the collapse checks and picks the first placement that passes them.
func (d *Decimator) accept(c *candidate) (math.Vec3, bool) {
	t := d.table

	if d.filter != nil && !d.filter.Allows(c.cost, t, c.edge) {
		return math.Vec3{}, false
	}
	if d.opts.KeepBoundary && (t.IsVertexOnBoundary(c.v0) || t.IsVertexOnBoundary(c.v1)) {
		return math.Vec3{}, false
	}
	if !t.IsEdgeCollapseSafe(c.edge) {
		return math.Vec3{}, false
	}

	if !d.flips(c.v0, c.v1, c.position) {
		return c.position, true
	}
	for _, p := range c.fallbacks {
		if d.stop.ShouldStop(p.Cost, t) {
			continue
		}
		if d.filter != nil && !d.filter.Allows(p.Cost, t, c.edge) {
			continue
		}
		if !d.flips(c.v0, c.v1, p.Position) {
			return p.Position, true
		}
	}
	return math.Vec3{}, false
}

// flips reports whether moving v0 and v1 to p would turn a surviving face by more
// than the allowed deviation or leave it degenerate.
func (d *Decimator) flips(v0, v1 int, p math.Vec3) bool {
	t := d.table
	for _, v := range [2]int{v0, v1} {
		for f := range t.FacesAroundVertex(v) {
			a, b, c := t.FaceVertices(f)
			if (a == v0 || b == v0 || c == v0) && (a == v1 || b == v1 || c == v1) {
				continue
			}

			before := t.FacePositions(f)
			after := before
			for k, u := range [3]int{a, b, c} {
				if u == v0 || u == v1 {
					after[k] = p
				}
			}

			n := math.TriangleNormal(after[0], after[1], after[2])
			longest := max(
				after[1].Sub(after[0]).LengthSquared(),
				after[2].Sub(after[1]).LengthSquared(),
				after[0].Sub(after[2]).LengthSquared())
			if n.Length() <= degenerateSine*longest {
				return true
			}

			old := math.TriangleNormal(before[0], before[1], before[2]).Normalize()
			if old == (math.Vec3{}) {
				continue
			}
			if old.Dot(n.Normalize()) < d.minCos {
				return true
			}
		}
	}
	return false
}
