package matrix

import (
	"golang.org/x/exp/slog"

	"github.com/ttpr0/go-routing/costing"
	"github.com/ttpr0/go-routing/graph"
)

const (
	modePedestrian uint8 = 0
	modeBicycle    uint8 = 1
)

// BSSEngine is the bike-share variant of Engine (spec.md §5): a traveler
// walks, optionally picks up a bike at a BikeShareStation node, rides, and
// may drop it at another station before finishing on foot. It runs the
// same label-setting search as Engine but against two costings at once and
// keeps a separate EdgeStatus per mode, since an edge reached on foot and
// the same edge reached by bike are different states of the search.
type BSSEngine struct {
	reader     graph.GraphReader
	pedestrian costing.Costing
	bicycle    costing.Costing

	labels *LabelStore
	queue  *BucketQueue
	status [2]*EdgeStatus // indexed by mode

	destinations []*Destination
	destEdges    map[graph.GraphId][]int32

	settledCount         int
	currentCostThreshold float32
}

func NewBSSEngine(reader graph.GraphReader, pedestrian, bicycle costing.Costing) *BSSEngine {
	return &BSSEngine{
		reader:     reader,
		pedestrian: pedestrian,
		bicycle:    bicycle,
		labels:     NewLabelStore(kInitialEdgeLabelCount),
		queue:      NewBucketQueue(),
		status:     [2]*EdgeStatus{NewEdgeStatus(), NewEdgeStatus()},
		destEdges:  make(map[graph.GraphId][]int32, 64),
	}
}

func (e *BSSEngine) costingFor(mode uint8) costing.Costing {
	if mode == modeBicycle {
		return e.bicycle
	}
	return e.pedestrian
}

func (e *BSSEngine) clear() {
	e.labels.Reset()
	e.status[0].Reset()
	e.status[1].Reset()
	e.destinations = e.destinations[:0]
	for k := range e.destEdges {
		delete(e.destEdges, k)
	}
	e.settledCount = 0
}

// GetCostThreshold uses the pedestrian costing's UnitSize as the bucket
// scale - the slower of the two modes, matching the original
// TimeDistanceBSSMatrix's bucket sizing (the bicycle leg only ever makes
// the search cheaper, never the binding constraint on bucket width).
func (e *BSSEngine) GetCostThreshold(maxMatrixDistance float32) float32 {
	return maxMatrixDistance / e.pedestrian.UnitSize()
}

func (e *BSSEngine) ComputeOneToMany(origin graph.Location, destinations []graph.Location, maxMatrixDistance float32, matrixLocations int, forward bool) []TimeDistance {
	e.clear()
	e.currentCostThreshold = e.GetCostThreshold(maxMatrixDistance)
	e.queue.Reuse(0, e.currentCostThreshold, e.pedestrian.UnitSize(), e.labels)

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
			e.status[pred.Mode].MarkPermanent(pred.EdgeId)
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

// Expand is Engine.Expand plus one extra rule: at a BikeShareStation node,
// the traveler may continue in the current mode or switch to the other one
// (on foot -> mount a bike, on a bike -> dock it and walk) - both are
// explored as separate labels so the cheaper mode choice wins the search
// on its own merits rather than being decided up front.
func (e *BSSEngine) Expand(node graph.GraphId, pred *EdgeLabel, predIdx int32, fromTransition, forward bool) {
	tile, ok := e.reader.GetGraphTile(node)
	if !ok {
		return
	}
	nodeInfo := tile.Node(node)
	if nodeInfo == nil || !nodeInfo.Access {
		return
	}

	modes := []uint8{pred.Mode}
	if nodeInfo.BikeShareStation && !fromTransition {
		if pred.Mode == modePedestrian {
			modes = append(modes, modeBicycle)
		} else {
			modes = append(modes, modePedestrian)
		}
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

	for _, mode := range modes {
		switched := mode != pred.Mode
		c := e.costingFor(mode)

		for i := int32(0); i < count; i++ {
			edgeId := node.WithIndex(start + i)
			edge := tile.Edge(edgeId)
			if edge == nil || edge.IsShortcutEdge() {
				continue
			}
			if set, _ := e.status[mode].Get(edgeId); set == EdgeSetPermanent {
				continue
			}

			oppEdge := e.reader.GetOpposingEdge(edgeId)
			if !forward && oppEdge == nil {
				continue
			}

			if forward {
				if !c.Allowed(edge, predEdge) || c.Restricted(edge) {
					continue
				}
			} else {
				if !c.AllowedReverse(edge, predEdge, oppEdge) || c.Restricted(edge) {
					continue
				}
			}

			var turn costing.TurnType
			if forward {
				turn = c.TurnType(pred.OppLocalIdx, nodeInfo, edge, nil)
			} else {
				turn = c.TurnType(edge.LocalEdgeIdx(), nodeInfo, oppEdge, oppPredEdge)
			}

			var newCost costing.Cost
			var transitionCost costing.Cost
			if forward {
				newCost = c.EdgeCost(edge)
				transitionCost = c.TransitionCost(edge, predEdge, turn)
			} else {
				newCost = c.EdgeCost(oppEdge)
				transitionCost = c.TransitionCostReverse(edge, predEdge, turn)
			}
			totalCost := pred.Cost.Add(newCost).Add(transitionCost)
			distance := pred.PathDistance + edge.LengthM

			set, idx := e.status[mode].Get(edgeId)
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
				FromBSS:        switched,
				Mode:           mode,
				ClosurePruning: pred.ClosurePruning || !c.IsClosed(edge),
				Turn:           turn,
				OppLocalIdx:    oppLocalIdx,
			})
			e.status[mode].Set(edgeId, EdgeSetTemporary, newIdx)
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
}

// SetOrigin always starts on foot: every origin label is a pedestrian
// label. A destination may be reached in either mode.
func (e *BSSEngine) SetOrigin(origin graph.Location, forward bool) {
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
			if e.pedestrian.AvoidAsOriginEdge(edge, pe.PercentAlong) {
				continue
			}
		} else {
			if e.pedestrian.AvoidAsDestinationEdge(edge, pe.PercentAlong) {
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
			cost = e.pedestrian.EdgeCost(edge).Scale(percentAlong)
			dist = edge.LengthM * percentAlong
			labelEdgeId = pe.EdgeId
			labelEdge = edge
		} else {
			oppEdgeId := e.reader.GetOpposingEdgeId(pe.EdgeId)
			if !oppEdgeId.IsValid() {
				continue
			}
			oppEdge := e.reader.GetOpposingEdge(pe.EdgeId)
			cost = e.pedestrian.EdgeCost(oppEdge).Scale(pe.PercentAlong)
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
			Mode:           modePedestrian,
			ClosurePruning: !e.pedestrian.IsClosed(edge),
			OppLocalIdx:    oppLocalIdx,
		})
		e.queue.Add(idx)
	}
}

func (e *BSSEngine) SetDestinations(destinations []graph.Location, forward bool) {
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
				if e.pedestrian.AvoidAsOriginEdge(edge, pe.PercentAlong) {
					continue
				}
			} else {
				if e.pedestrian.AvoidAsDestinationEdge(edge, pe.PercentAlong) {
					continue
				}
			}

			if dest == nil {
				dest = newDestination()
				e.destinations = append(e.destinations, dest)
			}

			c := e.pedestrian.EdgeCost(edge).Seconds

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

func (e *BSSEngine) UpdateDestinations(origin graph.Location, destLocations []graph.Location, destIndices []int32, edge *graph.DirectedEdge, pred *EdgeLabel, matrixLocations int) bool {
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

		partial := e.costingFor(pred.Mode).EdgeCost(edge).Scale(remainder)
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

func (e *BSSEngine) FormTimeDistanceMatrix() []TimeDistance {
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
