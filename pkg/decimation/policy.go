package decimation

import (
	"context"

	"github.com/Faultbox/meshreduce/pkg/math"
	"github.com/Faultbox/meshreduce/pkg/mesh/cornertable"
)

// StopPolicy decides when a run is over. It is consulted with the cost of every
// candidate about to be collapsed; candidates come in non-decreasing cost order
// except after re-pricing.
type StopPolicy interface {
	ShouldStop(cost float64, t *cornertable.Table) bool
}

// EdgeFilter is implemented by policies whose bound depends on where the edge is.
// A refused edge is skipped without ending the run.
type EdgeFilter interface {
	Allows(cost float64, t *cornertable.Table, edge int) bool
}

// StopFunc adapts a function to StopPolicy.
type StopFunc func(cost float64, t *cornertable.Table) bool

// ShouldStop calls f.
func (f StopFunc) ShouldStop(cost float64, t *cornertable.Table) bool {
	return f(cost, t)
}

// ConstantMaxError stops at the first candidate whose cost is not below the bound.
// A bound of zero rejects every candidate.
type ConstantMaxError float64

// ShouldStop implements StopPolicy.
func (m ConstantMaxError) ShouldStop(cost float64, _ *cornertable.Table) bool {
	return !(cost < float64(m))
}

// TargetFaceCount stops once the table has at most that many faces.
type TargetFaceCount int

// ShouldStop implements StopPolicy.
func (n TargetFaceCount) ShouldStop(_ float64, t *cornertable.Table) bool {
	return t.FaceCount() <= int(n)
}

// BoundedSphere is a region with its own error bound.
type BoundedSphere struct {
	Sphere   math.Sphere3
	MaxError float64
}

// BoundingSphereMaxError applies a spatially varying error bound. An edge whose
// midpoint lies in one or more spheres gets the smallest of their bounds; anything
// else gets Default.
type BoundingSphereMaxError struct {
	Spheres []BoundedSphere
	Default float64
}

// ShouldStop ends the run once the cost exceeds every bound in use.
func (b BoundingSphereMaxError) ShouldStop(cost float64, _ *cornertable.Table) bool {
	return !(cost < b.largest())
}

// Allows implements EdgeFilter.
func (b BoundingSphereMaxError) Allows(cost float64, t *cornertable.Table, edge int) bool {
	p0, p1 := t.EdgePositions(edge)
	return cost < b.BoundAt(p0.Midpoint(p1))
}

// BoundAt returns the error bound at point p.
func (b BoundingSphereMaxError) BoundAt(p math.Vec3) float64 {
	bound, inside := 0.0, false
	for _, s := range b.Spheres {
		if !s.Sphere.Contains(p) {
			continue
		}
		if !inside || s.MaxError < bound {
			bound = s.MaxError
		}
		inside = true
	}
	if !inside {
		return b.Default
	}
	return bound
}

func (b BoundingSphereMaxError) largest() float64 {
	m := b.Default
	for _, s := range b.Spheres {
		m = max(m, s.MaxError)
	}
	return m
}

type anyOf []StopPolicy

// AnyOf stops as soon as one of the policies would. Edge filters among them are
// combined so that every filter must allow an edge.
func AnyOf(policies ...StopPolicy) StopPolicy {
	return anyOf(policies)
}

func (a anyOf) ShouldStop(cost float64, t *cornertable.Table) bool {
	for _, p := range a {
		if p.ShouldStop(cost, t) {
			return true
		}
	}
	return false
}

func (a anyOf) Allows(cost float64, t *cornertable.Table, edge int) bool {
	for _, p := range a {
		if f, ok := p.(EdgeFilter); ok && !f.Allows(cost, t, edge) {
			return false
		}
	}
	return true
}

type cancelPolicy struct {
	ctx context.Context
}

// Cancel stops the run once ctx is done. Combine it with a cost policy via AnyOf.
func Cancel(ctx context.Context) StopPolicy {
	return cancelPolicy{ctx: ctx}
}

func (c cancelPolicy) ShouldStop(float64, *cornertable.Table) bool {
	return c.ctx.Err() != nil
}

type never struct{}

func (never) ShouldStop(float64, *cornertable.Table) bool { return false }
