// Package matrix implements the many-to-many time/distance search: a
// label-setting Dijkstra expansion over a graph.GraphReader, run once per
// origin and settled against a shared destination table, exactly the way
// the teacher's batched/onetomany package runs one solver per source node
// from a worker pool in root matrix.go - generalized here from a single
// scalar distance to Valhalla's (time, distance) cost pair with partial-edge
// snapping at both ends.
package matrix

import (
	"github.com/ttpr0/go-routing/costing"
	"github.com/ttpr0/go-routing/graph"
)

const invalidLabel = int32(-1)

// EdgeLabel is one node in the search tree: how we got to the end of a
// directed edge, and at what cost. Labels are appended to a LabelStore and
// referenced purely by index from then on - indices survive a slice
// growth/reallocation, pointers would not (spec.md §3).
type EdgeLabel struct {
	PredecessorIdx int32
	EdgeId         graph.GraphId
	EndNode        graph.GraphId
	Cost           costing.Cost
	SortCost       float32
	PathDistance   float32
	Origin         bool
	ClosurePruning bool
	FromBSS        bool  // BSS variant only: this label switched mode at a station
	Mode           uint8 // BSS variant only: 0 = pedestrian, 1 = bicycle
	Turn           costing.TurnType
	// OppLocalIdx is the local edge index, at EndNode, of this label's edge's
	// opposing direction - i.e. the local index of "the way back". The next
	// Expand from this label uses it as the "arrived from" side of its
	// TurnType classification (spec.md §4.5).
	OppLocalIdx uint32
}

func (l *EdgeLabel) IsOrigin() bool { return l.Origin }

// LabelStore is the append-only, index-addressed list of EdgeLabels for a
// single one-to-many search. Reset (via Reset) and reused across origins
// within one Engine to avoid reallocating between queries.
type LabelStore struct {
	labels []EdgeLabel
}

func NewLabelStore(capacityHint int) *LabelStore {
	return &LabelStore{labels: make([]EdgeLabel, 0, capacityHint)}
}

func (s *LabelStore) Add(l EdgeLabel) int32 {
	s.labels = append(s.labels, l)
	return int32(len(s.labels) - 1)
}

func (s *LabelStore) Get(idx int32) *EdgeLabel {
	return &s.labels[idx]
}

func (s *LabelStore) Len() int32 {
	return int32(len(s.labels))
}

// Update overwrites an existing (temporarily labeled) entry with a
// cheaper path, the way the C++ EdgeLabel::Update mutates in place rather
// than allocating a new label.
func (s *LabelStore) Update(idx int32, predecessorIdx int32, cost costing.Cost, sortCost, distance float32, turn costing.TurnType) {
	l := &s.labels[idx]
	l.PredecessorIdx = predecessorIdx
	l.Cost = cost
	l.SortCost = sortCost
	l.PathDistance = distance
	l.Turn = turn
}

func (s *LabelStore) Reset() {
	s.labels = s.labels[:0]
}
