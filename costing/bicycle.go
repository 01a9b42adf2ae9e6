package costing

import "github.com/ttpr0/go-routing/graph"

// BicycleCosting models a bicycle at a flat cruising speed, adjusted down
// for road classes a cyclist would ride more cautiously on.
type BicycleCosting struct {
	CruiseSpeedKph     float32
	TurnPenaltySeconds float32
}

func NewBicycleCosting() *BicycleCosting {
	return &BicycleCosting{CruiseSpeedKph: 18, TurnPenaltySeconds: 3}
}

func (c *BicycleCosting) Allowed(edge *graph.DirectedEdge, pred *graph.DirectedEdge) bool {
	return edge.Forward && !edge.Closed
}

func (c *BicycleCosting) AllowedReverse(edge *graph.DirectedEdge, pred *graph.DirectedEdge, opposingEdge *graph.DirectedEdge) bool {
	if opposingEdge == nil {
		return false
	}
	return opposingEdge.Forward && !edge.Closed
}

func (c *BicycleCosting) Restricted(edge *graph.DirectedEdge) bool {
	return edge.Restriction
}

func (c *BicycleCosting) IsClosed(edge *graph.DirectedEdge) bool {
	return edge.Closed
}

func (c *BicycleCosting) EdgeCost(edge *graph.DirectedEdge) Cost {
	speed := c.CruiseSpeedKph
	switch edge.RoadType {
	case 1, 2, 3, 4: // motorway(_link)/trunk(_link): cyclists avoid, heavy penalty
		speed = speed * 0.3
	case 11, 12: // residential/living_street: comfortable
		speed = speed * 1.1
	}
	speedMps := speed / 3.6
	return Cost{
		Seconds: edge.LengthM / speedMps,
		Meters:  edge.LengthM,
	}
}

func (c *BicycleCosting) TransitionCost(edge, pred *graph.DirectedEdge, turn TurnType) Cost {
	return Cost{Seconds: turnPenalty(turn, c.TurnPenaltySeconds)}
}

func (c *BicycleCosting) TransitionCostReverse(edge, pred *graph.DirectedEdge, turn TurnType) Cost {
	return c.TransitionCost(edge, pred, turn)
}

func (c *BicycleCosting) TurnType(fromLocalIdx uint32, node *graph.NodeInfo, toEdge *graph.DirectedEdge, fromEdge *graph.DirectedEdge) TurnType {
	idx := fromLocalIdx
	if fromEdge != nil {
		idx = fromEdge.LocalEdgeIdx()
	}
	return ClassifyTurn(node, idx, toEdge.LocalEdgeIdx())
}

func (c *BicycleCosting) AvoidAsOriginEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return edge.Closed
}

func (c *BicycleCosting) AvoidAsDestinationEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return edge.Closed
}

// UnitSize is the matrix engine's cost-threshold speed for cycling -
// 10mph, matching spec.md §4.2's per-mode constant table.
func (c *BicycleCosting) UnitSize() float32 {
	return 10.0 * mphToMps
}
