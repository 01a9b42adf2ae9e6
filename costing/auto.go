package costing

import "github.com/ttpr0/go-routing/graph"

const mphToMps = 0.44704

// AutoCosting models a private automobile, using the edge's own maxspeed
// (decoded from OSM by loader.DrivingDecoder) rather than a flat per-class
// constant.
type AutoCosting struct {
	TurnPenaltySeconds float32
}

func NewAutoCosting() *AutoCosting {
	return &AutoCosting{TurnPenaltySeconds: 5}
}

func (c *AutoCosting) Allowed(edge *graph.DirectedEdge, pred *graph.DirectedEdge) bool {
	return edge.Forward && !edge.Closed
}

func (c *AutoCosting) AllowedReverse(edge *graph.DirectedEdge, pred *graph.DirectedEdge, opposingEdge *graph.DirectedEdge) bool {
	if opposingEdge == nil {
		return false
	}
	return opposingEdge.Forward && !edge.Closed
}

func (c *AutoCosting) Restricted(edge *graph.DirectedEdge) bool {
	return edge.Restriction
}

func (c *AutoCosting) IsClosed(edge *graph.DirectedEdge) bool {
	return edge.Closed
}

func (c *AutoCosting) EdgeCost(edge *graph.DirectedEdge) Cost {
	speedKph := edge.Maxspeed
	if speedKph == 0 {
		speedKph = 30
	}
	speedMps := float32(speedKph) / 3.6
	return Cost{
		Seconds: edge.LengthM / speedMps,
		Meters:  edge.LengthM,
	}
}

func (c *AutoCosting) TransitionCost(edge, pred *graph.DirectedEdge, turn TurnType) Cost {
	return Cost{Seconds: turnPenalty(turn, c.TurnPenaltySeconds)}
}

func (c *AutoCosting) TransitionCostReverse(edge, pred *graph.DirectedEdge, turn TurnType) Cost {
	return c.TransitionCost(edge, pred, turn)
}

func (c *AutoCosting) TurnType(fromLocalIdx uint32, node *graph.NodeInfo, toEdge *graph.DirectedEdge, fromEdge *graph.DirectedEdge) TurnType {
	idx := fromLocalIdx
	if fromEdge != nil {
		idx = fromEdge.LocalEdgeIdx()
	}
	return ClassifyTurn(node, idx, toEdge.LocalEdgeIdx())
}

func (c *AutoCosting) AvoidAsOriginEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return edge.Closed
}

func (c *AutoCosting) AvoidAsDestinationEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return edge.Closed
}

// UnitSize is the matrix engine's cost-threshold speed for driving - 35mph,
// matching spec.md §4.2's per-mode constant table.
func (c *AutoCosting) UnitSize() float32 {
	return 35.0 * mphToMps
}

func turnPenalty(turn TurnType, base float32) float32 {
	switch turn {
	case TurnStraight:
		return 0
	case TurnSlightLeft, TurnSlightRight:
		return base * 0.5
	case TurnLeft, TurnRight:
		return base
	case TurnSharpLeft, TurnSharpRight:
		return base * 2
	case TurnReverse:
		return base * 4
	}
	return base
}
