package math

import "math"

// Box3 is an axis-aligned bounding box.
type Box3 struct {
	Min, Max Vec3
}

// EmptyBox returns a box that contains nothing; extending it by a point yields that point.
func EmptyBox() Box3 {
	inf := math.Inf(1)
	return Box3{
		Min: Vec3{inf, inf, inf},
		Max: Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend returns the box grown to contain p.
func (b Box3) Extend(p Vec3) Box3 {
	return Box3{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Center returns the box center.
func (b Box3) Center() Vec3 {
	return b.Min.Midpoint(b.Max)
}

// Size returns the box extent along each axis.
func (b Box3) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// SquaredDistance returns the squared distance from p to the box (0 inside).
func (b Box3) SquaredDistance(p Vec3) float64 {
	d := 0.0
	for i, v := range p.Array() {
		lo, hi := b.Min.Array()[i], b.Max.Array()[i]
		switch {
		case v < lo:
			d += (lo - v) * (lo - v)
		case v > hi:
			d += (v - hi) * (v - hi)
		}
	}
	return d
}

// Sphere3 is a ball in 3D.
type Sphere3 struct {
	Center Vec3
	Radius float64
}

// Contains reports whether p lies inside or on the sphere.
func (s Sphere3) Contains(p Vec3) bool {
	return s.Center.Sub(p).LengthSquared() <= s.Radius*s.Radius
}

// IntersectsBox reports whether the sphere overlaps the box.
func (s Sphere3) IntersectsBox(b Box3) bool {
	return b.SquaredDistance(s.Center) <= s.Radius*s.Radius
}

// BBox returns the sphere's bounding box.
func (s Sphere3) BBox() Box3 {
	r := Vec3{s.Radius, s.Radius, s.Radius}
	return Box3{Min: s.Center.Sub(r), Max: s.Center.Add(r)}
}
