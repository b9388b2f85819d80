package decimation

import "github.com/Faultbox/meshreduce/pkg/math"

// candidate is one priced edge in the queue. It is checked against the table when
// popped: the stamp ties it to the latest push of its edge and the generations to
// the quadrics it was priced with.
type candidate struct {
	cost      float64
	edge      int
	v0, v1    int
	g0, g1    uint32
	stamp     uint32
	position  math.Vec3
	fallbacks []Placement
}

// candidateQueue is a min-heap ordered by cost, then by edge corner.
type candidateQueue []*candidate

func (q candidateQueue) Len() int { return len(q) }

func (q candidateQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].edge < q[j].edge
}

func (q candidateQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *candidateQueue) Push(x any) {
	*q = append(*q, x.(*candidate))
}

func (q *candidateQueue) Pop() any {
	old := *q
	n := len(old)
	c := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return c
}
