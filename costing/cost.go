// Package costing provides the per-travel-mode cost models the matrix
// engine queries while expanding edges: how expensive an edge is to
// traverse, whether it may be traversed at all, and the penalty for turning
// off of its predecessor. Grounded on the teacher's graph/weighting.go
// (IWeighting) generalized from a single scalar weight to Valhalla's
// (time, distance) cost pair.
package costing

// Cost pairs elapsed time (seconds) with distance (meters). The matrix
// engine sorts and compares thresholds purely on Seconds; Meters rides
// along but is not reported - the response distance comes from the
// label's PathDistance.
type Cost struct {
	Seconds float32
	Meters  float32
}

func (c Cost) Add(o Cost) Cost {
	return Cost{Seconds: c.Seconds + o.Seconds, Meters: c.Meters + o.Meters}
}

func (c Cost) Scale(f float32) Cost {
	return Cost{Seconds: c.Seconds * f, Meters: c.Meters * f}
}

func (c Cost) Less(o Cost) bool {
	return c.Seconds < o.Seconds
}
