// Package meshtest provides small reference meshes for tests.
// Every constructor returns vertex positions and a flat, counter-clockwise triangle index list.
package meshtest

import (
	gomath "math"

	"github.com/Faultbox/meshreduce/pkg/math"
)

// Mesh is an indexed triangle soup ready for cornertable.New.
type Mesh struct {
	Positions []math.Vec3
	Indices   []int
}

// UnitSquare is two triangles sharing the diagonal 0-2.
func UnitSquare() Mesh {
	return Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
		},
		Indices: []int{0, 1, 2, 2, 3, 0},
	}
}

// CrossSquare is a unit square fanned into four triangles around center vertex 4.
func CrossSquare() Mesh {
	return Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0.5, Y: 0.5, Z: 0},
		},
		Indices: []int{
			0, 1, 4,
			1, 2, 4,
			2, 3, 4,
			3, 0, 4,
		},
	}
}

// SingleFace is one triangle.
func SingleFace() Mesh {
	return Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
		},
		Indices: []int{0, 1, 2},
	}
}

// CollapseSample is a flat square with two interior vertices 8 and 9 joined by an edge.
func CollapseSample() Mesh {
	return Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0.5, Z: 0},
			{X: 0, Y: 0, Z: 0},
			{X: 0.5, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 1, Y: 0.5, Z: 0},
			{X: 1, Y: 1, Z: 0},
			{X: 0.5, Y: 1, Z: 0},
			{X: 0.25, Y: 0.5, Z: 0},
			{X: 0.75, Y: 0.5, Z: 0},
		},
		Indices: []int{
			0, 1, 8,
			1, 2, 8,
			2, 3, 8,
			3, 9, 8,
			3, 4, 9,
			4, 5, 9,
			5, 6, 9,
			6, 7, 9,
			7, 8, 9,
			7, 0, 8,
		},
	}
}

// Tetrahedron is the smallest closed mesh.
func Tetrahedron() Mesh {
	return Mesh{
		Positions: []math.Vec3{
			{X: 0, Y: 0, Z: 0},
			{X: 1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: 0, Z: 1},
		},
		Indices: []int{
			0, 2, 1,
			0, 1, 3,
			0, 3, 2,
			1, 2, 3,
		},
	}
}

// Octahedron is a closed mesh whose vertices all have valence four.
func Octahedron() Mesh {
	return Mesh{
		Positions: []math.Vec3{
			{X: 1, Y: 0, Z: 0},
			{X: -1, Y: 0, Z: 0},
			{X: 0, Y: 1, Z: 0},
			{X: 0, Y: -1, Z: 0},
			{X: 0, Y: 0, Z: 1},
			{X: 0, Y: 0, Z: -1},
		},
		Indices: []int{
			0, 2, 4,
			2, 1, 4,
			1, 3, 4,
			3, 0, 4,
			2, 0, 5,
			1, 2, 5,
			3, 1, 5,
			0, 3, 5,
		},
	}
}

// Grid is a flat n x n vertex grid in the XY plane with unit spacing.
// Vertex (i, j) has index j*n+i and every quad is split along its (i,j)-(i+1,j+1) diagonal.
func Grid(n int) Mesh {
	m := Mesh{}
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			m.Positions = append(m.Positions, math.Vec3{X: float64(i), Y: float64(j)})
		}
	}
	for j := 0; j < n-1; j++ {
		for i := 0; i < n-1; i++ {
			v00 := j*n + i
			v10, v01 := v00+1, v00+n
			v11 := v01 + 1
			m.Indices = append(m.Indices, v00, v10, v11, v00, v11, v01)
		}
	}
	return m
}

// NoisyGrid is Grid with a deterministic height field, so no two neighbouring faces are coplanar.
func NoisyGrid(n int, amplitude float64) Mesh {
	m := Grid(n)
	for k := range m.Positions {
		p := &m.Positions[k]
		p.Z = amplitude * gomath.Sin(1.7*p.X+0.3) * gomath.Cos(1.3*p.Y+0.1)
	}
	return m
}

// UVSphere is a closed unit sphere with the given number of latitude stacks (>= 2)
// and longitude slices (>= 3).
func UVSphere(stacks, slices int) Mesh {
	m := Mesh{}
	m.Positions = append(m.Positions, math.Vec3{Z: 1})
	for s := 1; s < stacks; s++ {
		phi := gomath.Pi * float64(s) / float64(stacks)
		for k := 0; k < slices; k++ {
			theta := 2 * gomath.Pi * float64(k) / float64(slices)
			m.Positions = append(m.Positions, math.Vec3{
				X: gomath.Sin(phi) * gomath.Cos(theta),
				Y: gomath.Sin(phi) * gomath.Sin(theta),
				Z: gomath.Cos(phi),
			})
		}
	}
	south := len(m.Positions)
	m.Positions = append(m.Positions, math.Vec3{Z: -1})

	ring := func(s, k int) int {
		return 1 + (s-1)*slices + (k % slices)
	}

	for k := 0; k < slices; k++ {
		m.Indices = append(m.Indices, 0, ring(1, k), ring(1, k+1))
	}
	for s := 1; s < stacks-1; s++ {
		for k := 0; k < slices; k++ {
			a, b := ring(s, k), ring(s, k+1)
			c, d := ring(s+1, k), ring(s+1, k+1)
			m.Indices = append(m.Indices, a, c, d, a, d, b)
		}
	}
	for k := 0; k < slices; k++ {
		m.Indices = append(m.Indices, south, ring(stacks-1, k+1), ring(stacks-1, k))
	}
	return m
}
