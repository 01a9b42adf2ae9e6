package matrix

import (
	"golang.org/x/exp/slog"

	"github.com/ttpr0/go-routing/costing"
	"github.com/ttpr0/go-routing/graph"
)

// kInitialEdgeLabelCount from the original C++ TimeDistanceBSSMatrix header
// - reserving up front avoids repeated slice growth during a large search.
const kInitialEdgeLabelCount = 500000

// TimeDistance is one cell of a computed matrix: the cost and distance from
// a source to a target, or Unreachable() if no path was found within the
// configured threshold.
type TimeDistance struct {
	TimeSeconds    float32
	DistanceMeters float32
}

func Unreachable() TimeDistance {
	return TimeDistance{TimeSeconds: maxCost, DistanceMeters: maxCost}
}

// Engine runs one-to-many time/distance searches against a single
// GraphReader and Costing. An Engine is NOT safe for concurrent use - the
// many-to-many driver hands one Engine per worker goroutine, mirroring the
// teacher's one-solver-per-goroutine pattern in root matrix.go.
type Engine struct {
	reader  graph.GraphReader
	costing costing.Costing

	labels *LabelStore
	queue  *BucketQueue
	status *EdgeStatus

	destinations []*Destination
	destEdges    map[graph.GraphId][]int32

	settledCount          int
	currentCostThreshold  float32
}

func NewEngine(reader graph.GraphReader, c costing.Costing) *Engine {
	return &Engine{
		reader:    reader,
		costing:   c,
		labels:    NewLabelStore(kInitialEdgeLabelCount),
		queue:     NewBucketQueue(),
		status:    NewEdgeStatus(),
		destEdges: make(map[graph.GraphId][]int32, 64),
	}
}

func (e *Engine) clear() {
	e.labels.Reset()
	e.status.Reset()
	e.destinations = e.destinations[:0]
	for k := range e.destEdges {
		delete(e.destEdges, k)
	}
	e.settledCount = 0
}

// GetCostThreshold converts a maximum arc-length distance into a cost
// (seconds) threshold using the costing model's conservative average speed
// (spec.md §4.2).
func (e *Engine) GetCostThreshold(maxMatrixDistance float32) float32 {
	return maxMatrixDistance / e.costing.UnitSize()
}

// ComputeOneToMany runs a single label-setting search from origin against
// destinations, returning one TimeDistance per destination in the order
// given. forward selects which side of the pair is expanded outward from:
// true expands from origin toward destinations, false expands from
// destinations backward toward origin with roles swapped by the caller
// (spec.md §4.7 forward/reverse duality).
func (e *Engine) ComputeOneToMany(origin graph.Location, destinations []graph.Location, maxMatrixDistance float32, matrixLocations int, forward bool) []TimeDistance {
	e.clear()
	e.currentCostThreshold = e.GetCostThreshold(maxMatrixDistance)
	e.queue.Reuse(0, e.currentCostThreshold, e.costing.UnitSize(), e.labels)

	e.SetOrigin(origin, forward)
	e.SetDestinations(destinations, forward)

	if matrixLocations <= 0 || matrixLocations > len(destinations) {
		matrixLocations = len(destinations)
	}

	for {
		predIdx := e.queue.Pop()
		if predIdx == invalidLabel {
			return e.FormTimeDistanceMatrix()
		}
		pred := *e.labels.Get(predIdx)

		if !pred.Origin {
			e.status.MarkPermanent(pred.EdgeId)
		}

		if destIndices, ok := e.destEdges[pred.EdgeId]; ok {
			if tile, ok2 := e.reader.GetGraphTile(pred.EdgeId); ok2 {
				if edge := tile.Edge(pred.EdgeId); edge != nil {
					if e.UpdateDestinations(origin, destinations, destIndices, edge, &pred, matrixLocations) {
						return e.FormTimeDistanceMatrix()
					}
				}
			}
		}

		if pred.Cost.Seconds > e.currentCostThreshold {
			return e.FormTimeDistanceMatrix()
		}

		e.Expand(pred.EndNode, &pred, predIdx, false, forward)
	}
}

// Expand relaxes every outgoing (forward) or incoming-as-reversed (!forward)
// edge from node. Unlike the C++ original this never redeclares t2/opp_edge
// in a nested scope for the reverse branch - AllowedReverse always sees the
// same opposing edge that gets used for costing (spec.md §9, Open Question).
func (e *Engine) Expand(node graph.GraphId, pred *EdgeLabel, predIdx int32, fromTransition, forward bool) {
	tile, ok := e.reader.GetGraphTile(node)
	if !ok {
		return
	}
	nodeInfo := tile.Node(node)
	if nodeInfo == nil || !nodeInfo.Access {
		return
	}

	var predEdge *graph.DirectedEdge
	if predTile, ok := e.reader.GetGraphTile(pred.EdgeId); ok {
		predEdge = predTile.Edge(pred.EdgeId)
	}

	start := nodeInfo.EdgeIndex()
	count := nodeInfo.EdgeCount()

	// In reverse mode, locate the predecessor's opposing-predecessor edge by
	// local index - the edge TurnType needs to classify the turn pred made
	// onto the edge being expanded to (spec.md §4.5 step 2).
	var oppPredEdge *graph.DirectedEdge
	if !forward {
		for i := int32(0); i < count; i++ {
			cand := tile.Edge(node.WithIndex(start + i))
			if cand != nil && cand.LocalEdgeIdx() == pred.OppLocalIdx {
				oppPredEdge = cand
				break
			}
		}
	}

	for i := int32(0); i < count; i++ {
		edgeId := node.WithIndex(start + i)
		edge := tile.Edge(edgeId)
		if edge == nil || edge.IsShortcutEdge() {
			continue
		}
		if set, _ := e.status.Get(edgeId); set == EdgeSetPermanent {
			continue
		}

		oppEdge := e.reader.GetOpposingEdge(edgeId)
		if !forward && oppEdge == nil {
			continue
		}

		if forward {
			if !e.costing.Allowed(edge, predEdge) || e.costing.Restricted(edge) {
				continue
			}
		} else {
			if !e.costing.AllowedReverse(edge, predEdge, oppEdge) || e.costing.Restricted(edge) {
				continue
			}
		}

		var turn costing.TurnType
		if forward {
			turn = e.costing.TurnType(pred.OppLocalIdx, nodeInfo, edge, nil)
		} else {
			turn = e.costing.TurnType(edge.LocalEdgeIdx(), nodeInfo, oppEdge, oppPredEdge)
		}

		var newCost costing.Cost
		var transitionCost costing.Cost
		if forward {
			newCost = e.costing.EdgeCost(edge)
			transitionCost = e.costing.TransitionCost(edge, predEdge, turn)
		} else {
			newCost = e.costing.EdgeCost(oppEdge)
			transitionCost = e.costing.TransitionCostReverse(edge, predEdge, turn)
		}
		totalCost := pred.Cost.Add(newCost).Add(transitionCost)
		distance := pred.PathDistance + edge.LengthM

		set, idx := e.status.Get(edgeId)
		if set == EdgeSetTemporary {
			lab := e.labels.Get(idx)
			if totalCost.Seconds < lab.Cost.Seconds {
				newSortCost := lab.SortCost - (lab.Cost.Seconds - totalCost.Seconds)
				e.queue.Decrease(idx, newSortCost)
				e.labels.Update(idx, predIdx, totalCost, newSortCost, distance, turn)
			}
			continue
		}

		var oppLocalIdx uint32
		if oppEdge != nil {
			oppLocalIdx = oppEdge.LocalEdgeIdx()
		}

		newIdx := e.labels.Add(EdgeLabel{
			PredecessorIdx: predIdx,
			EdgeId:         edgeId,
			EndNode:        edge.EndNode,
			Cost:           totalCost,
			SortCost:       totalCost.Seconds,
			PathDistance:   distance,
			ClosurePruning: pred.ClosurePruning || !e.costing.IsClosed(edge),
			Turn:           turn,
			OppLocalIdx:    oppLocalIdx,
		})
		e.status.Set(edgeId, EdgeSetTemporary, newIdx)
		e.queue.Add(newIdx)
	}

	if !fromTransition && nodeInfo.TransitionCount() > 0 {
		tstart := nodeInfo.TransitionIndex()
		for i := int32(0); i < nodeInfo.TransitionCount(); i++ {
			trans := tile.Transition(node.WithIndex(tstart + i))
			if trans == nil {
				continue
			}
			e.Expand(trans.EndNode, pred, predIdx, true, forward)
		}
	}
}

// SetOrigin seeds the queue with the origin's candidate edges, scaled by
// the portion of each edge that remains to be traversed and penalized by
// the location's snap-imprecision distance treated as seconds at 1 m/s
// (spec.md §4.4).
func (e *Engine) SetOrigin(origin graph.Location, forward bool) {
	hasOtherEdges := false
	for _, pe := range origin.Edges {
		if forward {
			hasOtherEdges = hasOtherEdges || !pe.EndNode
		} else {
			hasOtherEdges = hasOtherEdges || !pe.BeginNode
		}
	}

	for _, pe := range origin.Edges {
		if forward && pe.EndNode && hasOtherEdges {
			continue
		}
		if !forward && pe.BeginNode && hasOtherEdges {
			continue
		}

		tile, ok := e.reader.GetGraphTile(pe.EdgeId)
		if !ok {
			continue
		}
		edge := tile.Edge(pe.EdgeId)
		if edge == nil {
			continue
		}
		if forward {
			if e.costing.AvoidAsOriginEdge(edge, pe.PercentAlong) {
				continue
			}
		} else {
			if e.costing.AvoidAsDestinationEdge(edge, pe.PercentAlong) {
				continue
			}
		}

		if _, ok := e.reader.GetGraphTile(edge.EndNode); !ok {
			continue
		}

		var cost costing.Cost
		var dist float32
		var labelEdgeId graph.GraphId
		var labelEdge *graph.DirectedEdge

		if forward {
			percentAlong := 1.0 - pe.PercentAlong
			cost = e.costing.EdgeCost(edge).Scale(percentAlong)
			dist = edge.LengthM * percentAlong
			labelEdgeId = pe.EdgeId
			labelEdge = edge
		} else {
			oppEdgeId := e.reader.GetOpposingEdgeId(pe.EdgeId)
			if !oppEdgeId.IsValid() {
				continue
			}
			oppEdge := e.reader.GetOpposingEdge(pe.EdgeId)
			cost = e.costing.EdgeCost(oppEdge).Scale(pe.PercentAlong)
			dist = edge.LengthM * pe.PercentAlong
			labelEdgeId = oppEdgeId
			labelEdge = oppEdge
		}
		cost.Seconds += pe.Distance

		var oppLocalIdx uint32
		if oppEdge := e.reader.GetOpposingEdge(labelEdgeId); oppEdge != nil {
			oppLocalIdx = oppEdge.LocalEdgeIdx()
		}

		idx := e.labels.Add(EdgeLabel{
			PredecessorIdx: invalidLabel,
			EdgeId:         labelEdgeId,
			EndNode:        labelEdge.EndNode,
			Cost:           cost,
			SortCost:       cost.Seconds,
			PathDistance:   dist,
			Origin:         true,
			ClosurePruning: !e.costing.IsClosed(edge),
			OppLocalIdx:    oppLocalIdx,
		})
		e.queue.Add(idx)
	}
}

// SetDestinations registers every candidate edge of every target location,
// building the reverse index (destEdges) the search loop uses to spot a
// settled destination edge without scanning the destination list on every
// pop (spec.md §4.5).
func (e *Engine) SetDestinations(destinations []graph.Location, forward bool) {
	for locIdx, loc := range destinations {
		hasOtherEdges := false
		for _, pe := range loc.Edges {
			if forward {
				hasOtherEdges = hasOtherEdges || !pe.BeginNode
			} else {
				hasOtherEdges = hasOtherEdges || !pe.EndNode
			}
		}

		var dest *Destination
		for _, pe := range loc.Edges {
			if forward && pe.BeginNode && hasOtherEdges {
				continue
			}
			if !forward && pe.EndNode && hasOtherEdges {
				continue
			}

			tile, ok := e.reader.GetGraphTile(pe.EdgeId)
			if !ok {
				continue
			}
			edge := tile.Edge(pe.EdgeId)
			if edge == nil {
				continue
			}
			if forward {
				if e.costing.AvoidAsOriginEdge(edge, pe.PercentAlong) {
					continue
				}
			} else {
				if e.costing.AvoidAsDestinationEdge(edge, pe.PercentAlong) {
					continue
				}
			}

			if dest == nil {
				dest = newDestination()
				e.destinations = append(e.destinations, dest)
			}

			c := e.costing.EdgeCost(edge).Seconds

			var edgeId graph.GraphId
			var percentAlong float32
			if forward {
				edgeId = pe.EdgeId
				percentAlong = 1.0 - pe.PercentAlong
			} else {
				edgeId = e.reader.GetOpposingEdgeId(pe.EdgeId)
				if !edgeId.IsValid() {
					continue
				}
				percentAlong = pe.PercentAlong
			}
			c += pe.Distance
			if c > dest.Threshold {
				dest.Threshold = c
			}
			dest.DestEdges[edgeId] = percentAlong
			e.destEdges[edgeId] = append(e.destEdges[edgeId], int32(locIdx))
		}
	}
}

// UpdateDestinations advances every destination reachable along a just-
// settled edge, tightens the shrinking cost threshold once at least one
// path has been found to every unsettled destination, and force-settles
// any destination whose best cost is already unbeatable by the current
// frontier. Returns true once every destination is settled or the
// requested matrixLocations count has been reached (spec.md §4.5, §4.6).
func (e *Engine) UpdateDestinations(origin graph.Location, destLocations []graph.Location, destIndices []int32, edge *graph.DirectedEdge, pred *EdgeLabel, matrixLocations int) bool {
	for _, di := range destIndices {
		dest := e.destinations[di]
		if dest.Settled {
			continue
		}

		remainder, ok := dest.DestEdges[pred.EdgeId]
		if !ok {
			if !isTrivial(pred.EdgeId, origin, destLocations[di]) {
				slog.Error("matrix: could not find destination edge along settled path")
			}
			continue
		}

		if pred.PredecessorIdx == invalidLabel && !isTrivial(pred.EdgeId, origin, destLocations[di]) {
			continue
		}

		partial := e.costing.EdgeCost(edge).Scale(remainder)
		newCost := costing.Cost{Seconds: pred.Cost.Seconds - partial.Seconds, Meters: pred.Cost.Meters - partial.Meters}
		if newCost.Seconds < dest.BestCost.Seconds {
			dest.BestCost = newCost
			dest.Distance = pred.PathDistance - edge.LengthM*remainder
		}

		delete(dest.DestEdges, pred.EdgeId)
		if len(dest.DestEdges) == 0 {
			dest.Settled = true
			e.settledCount++
		}
	}

	allFound := true
	var maxc float32
	for _, dest := range e.destinations {
		if dest.Settled {
			continue
		}
		if dest.BestCost.Seconds == maxCost {
			allFound = false
			continue
		}
		if dest.BestCost.Seconds+dest.Threshold < pred.Cost.Seconds {
			dest.Settled = true
			e.settledCount++
		}
		if dest.BestCost.Seconds+dest.Threshold > maxc {
			maxc = dest.BestCost.Seconds + dest.Threshold
		}
	}
	if allFound {
		e.currentCostThreshold = maxc
	}

	return e.settledCount == len(e.destinations) || e.settledCount >= matrixLocations
}

func (e *Engine) FormTimeDistanceMatrix() []TimeDistance {
	out := make([]TimeDistance, len(e.destinations))
	for i, dest := range e.destinations {
		if dest.BestCost.Seconds == maxCost {
			out[i] = Unreachable()
			continue
		}
		out[i] = TimeDistance{TimeSeconds: dest.BestCost.Seconds, DistanceMeters: dest.Distance}
	}
	return out
}

// isTrivial reports whether the origin and a destination share the same
// edge with the origin positioned at or before the destination along it -
// the one case where a destination can be settled with no predecessor at
// all (spec.md §4.3).
func isTrivial(edgeId graph.GraphId, origin graph.Location, destination graph.Location) bool {
	for _, de := range destination.Edges {
		if de.EdgeId != edgeId {
			continue
		}
		for _, oe := range origin.Edges {
			if oe.EdgeId == edgeId && oe.PercentAlong <= de.PercentAlong {
				return true
			}
		}
	}
	return false
}
