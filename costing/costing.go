package costing

import "github.com/ttpr0/go-routing/graph"

// TurnType classifies the geometric relationship between a predecessor
// edge and the edge being expanded to, used to scale a transition penalty.
type TurnType int8

const (
	TurnStraight TurnType = iota
	TurnSlightLeft
	TurnLeft
	TurnSharpLeft
	TurnSlightRight
	TurnRight
	TurnSharpRight
	TurnReverse
)

// Costing is the per-travel-mode model the matrix engine queries on every
// candidate edge. Implementations must be stateless and safe to share
// across concurrent Engines - none of the concrete costings below hold
// mutable state.
type Costing interface {
	// Allowed reports whether edge may be traversed when expanding forward,
	// arriving from pred (the predecessor edge, nil at the origin).
	Allowed(edge *graph.DirectedEdge, pred *graph.DirectedEdge) bool

	// AllowedReverse reports whether edge may be traversed when expanding
	// backward from a target, i.e. whether opposingEdge (edge's opposing
	// direction) could have been used to reach edge's end node from pred's
	// end node in the forward sense. See spec.md §4 / §9 on why this must
	// be computed from a single non-shadowed set of locals.
	AllowedReverse(edge *graph.DirectedEdge, pred *graph.DirectedEdge, opposingEdge *graph.DirectedEdge) bool

	// Restricted reports whether edge carries a restriction this costing
	// can never cross (e.g. a complex turn restriction without an
	// alternate path encoded), independent of direction.
	Restricted(edge *graph.DirectedEdge) bool

	// EdgeCost returns the cost of traversing the full edge.
	EdgeCost(edge *graph.DirectedEdge) Cost

	// TransitionCost returns the extra cost of turning from pred onto edge
	// when expanding forward.
	TransitionCost(edge *graph.DirectedEdge, pred *graph.DirectedEdge, turn TurnType) Cost

	// TransitionCostReverse mirrors TransitionCost for reverse expansion.
	TransitionCostReverse(edge *graph.DirectedEdge, pred *graph.DirectedEdge, turn TurnType) Cost

	// TurnType classifies the turn made at node onto toEdge. fromLocalIdx is
	// the local edge index (at node) of the direction arrived from - in
	// forward expansion this is the predecessor's opposing edge's local
	// index, in reverse expansion it is toEdge's own local index (see
	// spec.md §4.5). fromEdge, non-nil only in reverse expansion, is the
	// node-local edge fromLocalIdx names, found by scanning node's edges -
	// its own local index is what actually gets compared against toEdge's,
	// with fromLocalIdx along for signature parity with the forward case.
	TurnType(fromLocalIdx uint32, node *graph.NodeInfo, toEdge *graph.DirectedEdge, fromEdge *graph.DirectedEdge) TurnType

	IsClosed(edge *graph.DirectedEdge) bool

	// AvoidAsOriginEdge excludes an edge from being used as a source snap
	// candidate (e.g. it is closed, or doesn't face the right direction).
	AvoidAsOriginEdge(edge *graph.DirectedEdge, percentAlong float32) bool

	// AvoidAsDestinationEdge mirrors AvoidAsOriginEdge for targets.
	AvoidAsDestinationEdge(edge *graph.DirectedEdge, percentAlong float32) bool

	// UnitSize is the speed (m/s) used to convert the shrinking distance
	// threshold into a cost threshold (spec.md §4.2).
	UnitSize() float32
}

// ClassifyTurn buckets the heading change between two of node's local edges
// into a TurnType, the way every concrete Costing below implements TurnType.
// fromIdx/toIdx index node.LocalHeadings; an out-of-range index (a node with
// no precomputed headings, e.g. a synthetic test fixture) classifies as
// straight rather than guessing.
func ClassifyTurn(node *graph.NodeInfo, fromIdx, toIdx uint32) TurnType {
	if int(fromIdx) >= len(node.LocalHeadings) || int(toIdx) >= len(node.LocalHeadings) {
		return TurnStraight
	}
	// LocalHeadings[fromIdx] is the bearing the *opposing* edge departs on,
	// i.e. the direction travel arrived from; add 180 degrees to get the
	// direction of travel itself.
	inbound := node.LocalHeadings[fromIdx] + 180
	for inbound >= 360 {
		inbound -= 360
	}
	turnDegree := node.LocalHeadings[toIdx] - inbound
	for turnDegree < 0 {
		turnDegree += 360
	}
	for turnDegree >= 360 {
		turnDegree -= 360
	}

	switch {
	case turnDegree < 20 || turnDegree > 340:
		return TurnStraight
	case turnDegree < 60:
		return TurnSlightRight
	case turnDegree < 120:
		return TurnRight
	case turnDegree < 160:
		return TurnSharpRight
	case turnDegree < 200:
		return TurnReverse
	case turnDegree < 240:
		return TurnSharpLeft
	case turnDegree < 300:
		return TurnLeft
	default:
		return TurnSlightLeft
	}
}
