package costing

import "github.com/ttpr0/go-routing/graph"

// PedestrianCosting models walking at a flat pace; road class barely
// matters except to exclude motor-only ways.
type PedestrianCosting struct {
	WalkSpeedKph float32
}

func NewPedestrianCosting() *PedestrianCosting {
	return &PedestrianCosting{WalkSpeedKph: 5}
}

func (c *PedestrianCosting) Allowed(edge *graph.DirectedEdge, pred *graph.DirectedEdge) bool {
	return edge.Forward && !edge.Closed && edge.RoadType != 1 && edge.RoadType != 2
}

func (c *PedestrianCosting) AllowedReverse(edge *graph.DirectedEdge, pred *graph.DirectedEdge, opposingEdge *graph.DirectedEdge) bool {
	if opposingEdge == nil {
		return false
	}
	return opposingEdge.Forward && !edge.Closed && edge.RoadType != 1 && edge.RoadType != 2
}

func (c *PedestrianCosting) Restricted(edge *graph.DirectedEdge) bool {
	return edge.Restriction
}

func (c *PedestrianCosting) IsClosed(edge *graph.DirectedEdge) bool {
	return edge.Closed
}

func (c *PedestrianCosting) EdgeCost(edge *graph.DirectedEdge) Cost {
	speedMps := c.WalkSpeedKph / 3.6
	return Cost{
		Seconds: edge.LengthM / speedMps,
		Meters:  edge.LengthM,
	}
}

func (c *PedestrianCosting) TransitionCost(edge, pred *graph.DirectedEdge, turn TurnType) Cost {
	return Cost{} // pedestrians turn for free
}

func (c *PedestrianCosting) TransitionCostReverse(edge, pred *graph.DirectedEdge, turn TurnType) Cost {
	return Cost{}
}

// TurnType still classifies the turn for the label's Turn field even though
// pedestrians pay no transition cost for it - a path's turn-by-turn history
// shouldn't depend on which mode walked it.
func (c *PedestrianCosting) TurnType(fromLocalIdx uint32, node *graph.NodeInfo, toEdge *graph.DirectedEdge, fromEdge *graph.DirectedEdge) TurnType {
	idx := fromLocalIdx
	if fromEdge != nil {
		idx = fromEdge.LocalEdgeIdx()
	}
	return ClassifyTurn(node, idx, toEdge.LocalEdgeIdx())
}

func (c *PedestrianCosting) AvoidAsOriginEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return edge.Closed
}

func (c *PedestrianCosting) AvoidAsDestinationEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return edge.Closed
}

// UnitSize is the matrix engine's cost-threshold speed for walking -
// 2mph, matching spec.md §4.2's per-mode constant table (also used for the
// "transit" placeholder mode, which this implementation does not
// distinguish from pedestrian).
func (c *PedestrianCosting) UnitSize() float32 {
	return 2.0 * mphToMps
}
