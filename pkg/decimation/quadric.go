package decimation

import (
	gomath "math"

	"gonum.org/v1/gonum/mat"

	"github.com/Faultbox/meshreduce/pkg/math"
)

// singularDeterminant is the smallest |det A| accepted when solving for the optimal
// position. Planes are built from unit normals, so A does not depend on model scale.
const singularDeterminant = 1e-10

// Quadric is a symmetric 4x4 error quadric stored as its upper triangle:
//
//	| a2 ab ac ad |
//	|    b2 bc bd |
//	|       c2 cd |
//	|          d2 |
//
// Evaluating it at p gives the weighted sum of squared distances from p to every
// plane accumulated into it.
type Quadric [10]float64

// PlaneQuadric returns the quadric of the plane n·p + d = 0 scaled by weight.
// n must be unit length for the result to measure squared distance.
func PlaneQuadric(n math.Vec3, d, weight float64) Quadric {
	a, b, c := n.X, n.Y, n.Z
	return Quadric{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}.Scale(weight)
}

// TrianglePlane returns the unit normal and offset of the plane through a, b and c.
// It reports false for a zero-area triangle.
func TrianglePlane(a, b, c math.Vec3) (math.Vec3, float64, bool) {
	n := math.TriangleNormal(a, b, c).Normalize()
	if n == (math.Vec3{}) {
		return n, 0, false
	}
	return n, -n.Dot(a), true
}

// Add returns q + other.
func (q Quadric) Add(other Quadric) Quadric {
	for i := range q {
		q[i] += other[i]
	}
	return q
}

// Scale returns q * s.
func (q Quadric) Scale(s float64) Quadric {
	for i := range q {
		q[i] *= s
	}
	return q
}

// Evaluate returns the error of position p. Round-off below zero is clamped.
func (q Quadric) Evaluate(p math.Vec3) float64 {
	x, y, z := p.X, p.Y, p.Z
	e := q[0]*x*x + 2*q[1]*x*y + 2*q[2]*x*z + 2*q[3]*x +
		q[4]*y*y + 2*q[5]*y*z + 2*q[6]*y +
		q[7]*z*z + 2*q[8]*z +
		q[9]
	return gomath.Max(e, 0)
}

// Optimize returns the position minimizing the quadric. It reports false when the
// 3x3 system is singular or ill-conditioned (flat or crease-only neighbourhoods).
func (q Quadric) Optimize() (math.Vec3, bool) {
	a := mat.NewSymDense(3, []float64{
		q[0], q[1], q[2],
		q[1], q[4], q[5],
		q[2], q[5], q[7],
	})
	if gomath.Abs(mat.Det(a)) < singularDeterminant {
		return math.Vec3{}, false
	}

	b := mat.NewVecDense(3, []float64{-q[3], -q[6], -q[8]})
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		return math.Vec3{}, false
	}

	p := math.Vec3{X: x.AtVec(0), Y: x.AtVec(1), Z: x.AtVec(2)}
	if gomath.IsNaN(p.X) || gomath.IsNaN(p.Y) || gomath.IsNaN(p.Z) {
		return math.Vec3{}, false
	}
	return p, true
}
