package matrix

import (
	"math"

	"github.com/ttpr0/go-routing/costing"
	"github.com/ttpr0/go-routing/graph"
)

const maxCost = float32(math.MaxFloat32)

// Destination tracks one target location's progress toward being settled:
// which of its candidate edges still need a path found, the best cost seen
// so far, and the threshold beyond which the search gives up on any edge
// that remains unreached (spec.md §4.5).
type Destination struct {
	DestEdges map[graph.GraphId]float32 // edge id -> percent_along remaining
	BestCost  costing.Cost
	Distance  float32
	Threshold float32
	Settled   bool
}

func newDestination() *Destination {
	return &Destination{
		DestEdges: make(map[graph.GraphId]float32, 4),
		BestCost:  costing.Cost{Seconds: maxCost},
	}
}
