package matrix

import (
	"github.com/ttpr0/go-routing/costing"
	"github.com/ttpr0/go-routing/graph"
)

// isoCosting is an isotropic fixture costing: every edge costs LengthM *
// secondsPerMeter seconds in either direction, with no turn penalty. Used
// throughout this package's tests so the expected numbers in spec.md's
// seed scenarios come out as simple arithmetic on edge lengths.
type isoCosting struct {
	secondsPerMeter float32
	speedMps        float32
}

func newIsoCosting(secondsPerMeter float32) isoCosting {
	return isoCosting{secondsPerMeter: secondsPerMeter, speedMps: 1 / secondsPerMeter}
}

func (c isoCosting) Allowed(edge, pred *graph.DirectedEdge) bool {
	return edge.Forward && !edge.Closed
}

func (c isoCosting) AllowedReverse(edge, pred, opposing *graph.DirectedEdge) bool {
	return opposing != nil && opposing.Forward && !edge.Closed
}

func (c isoCosting) Restricted(edge *graph.DirectedEdge) bool { return edge.Restriction }

func (c isoCosting) EdgeCost(edge *graph.DirectedEdge) costing.Cost {
	return costing.Cost{Seconds: edge.LengthM * c.secondsPerMeter, Meters: edge.LengthM}
}

func (c isoCosting) TransitionCost(edge, pred *graph.DirectedEdge, turn costing.TurnType) costing.Cost {
	return costing.Cost{}
}

func (c isoCosting) TransitionCostReverse(edge, pred *graph.DirectedEdge, turn costing.TurnType) costing.Cost {
	return costing.Cost{}
}

func (c isoCosting) TurnType(fromLocalIdx uint32, node *graph.NodeInfo, toEdge, fromEdge *graph.DirectedEdge) costing.TurnType {
	idx := fromLocalIdx
	if fromEdge != nil {
		idx = fromEdge.LocalEdgeIdx()
	}
	return costing.ClassifyTurn(node, idx, toEdge.LocalEdgeIdx())
}

func (c isoCosting) IsClosed(edge *graph.DirectedEdge) bool { return edge.Closed }

func (c isoCosting) AvoidAsOriginEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return false
}

func (c isoCosting) AvoidAsDestinationEdge(edge *graph.DirectedEdge, percentAlong float32) bool {
	return false
}

func (c isoCosting) UnitSize() float32 { return c.speedMps }

// chainGraph builds a straight line of len(lengths)+1 nodes joined by
// bidirectional edges of the given per-hop lengths, each direction usable
// both ways - the smallest fixture that exercises origin/destination
// snapping, multi-hop expansion, and (via the opposing pairs) reverse-mode
// search.
func chainGraph(lengths []float32) (*graph.MemGraphReader, []graph.GraphId, []graph.GraphId) {
	n := len(lengths)
	b := graph.NewGraphBuilder(0, 0)
	nodes := make([]graph.GraphId, n+1)
	for i := 0; i <= n; i++ {
		nodes[i] = b.AddNode(graph.NodeInfo{Access: true})
	}
	fwdRefs := make([]graph.EdgeRef, n)
	revRefs := make([]graph.EdgeRef, n)
	for i := 0; i < n; i++ {
		fwdRefs[i] = b.AddEdge(nodes[i], graph.DirectedEdge{EndNode: nodes[i+1], LengthM: lengths[i], Forward: true, Reverse: true})
		revRefs[i] = b.AddEdge(nodes[i+1], graph.DirectedEdge{EndNode: nodes[i], LengthM: lengths[i], Forward: true, Reverse: true})
	}
	reader := b.Build()
	edges := make([]graph.GraphId, n)
	for i := 0; i < n; i++ {
		fwd := b.ResolveEdge(fwdRefs[i])
		rev := b.ResolveEdge(revRefs[i])
		reader.AddOpposingPair(fwd, rev)
		edges[i] = fwd
	}
	return reader, nodes, edges
}

// uniformChainGraph is chainGraph for n equal-length hops.
func uniformChainGraph(n int, lengthM float32) (*graph.MemGraphReader, []graph.GraphId, []graph.GraphId) {
	lengths := make([]float32, n)
	for i := range lengths {
		lengths[i] = lengthM
	}
	return chainGraph(lengths)
}

// locAt returns a single-edge Location snapped at percentAlong, with
// BeginNode/EndNode set the way a real correlation step would.
func locAt(edgeId graph.GraphId, percentAlong float32) graph.Location {
	return graph.Location{Edges: []graph.PathEdge{{
		EdgeId:       edgeId,
		PercentAlong: percentAlong,
		BeginNode:    percentAlong <= 0,
		EndNode:      percentAlong >= 1,
	}}}
}
