package matrix

import "github.com/ttpr0/go-routing/graph"

// EdgeSet is the tri-state every edge passes through during a search:
// never seen, sitting in the bucket queue, or settled for good.
type EdgeSet int8

const (
	EdgeSetUnseen EdgeSet = iota
	EdgeSetTemporary
	EdgeSetPermanent
)

type edgeStatusInfo struct {
	set   EdgeSet
	index int32
}

// EdgeStatus is the sparse map from edge GraphId to its current status and,
// while temporary, its index into the LabelStore. Sparse (a map, not a
// dense slice) because edge ids span every tile a search might touch, while
// any single query only ever marks a small fraction of them (spec.md §3).
type EdgeStatus struct {
	status map[graph.GraphId]edgeStatusInfo
}

func NewEdgeStatus() *EdgeStatus {
	return &EdgeStatus{status: make(map[graph.GraphId]edgeStatusInfo, 4096)}
}

// Get returns the current state of id and, if Temporary or Permanent, the
// label index it points at.
func (s *EdgeStatus) Get(id graph.GraphId) (EdgeSet, int32) {
	info, ok := s.status[id]
	if !ok {
		return EdgeSetUnseen, invalidLabel
	}
	return info.set, info.index
}

func (s *EdgeStatus) Set(id graph.GraphId, set EdgeSet, index int32) {
	s.status[id] = edgeStatusInfo{set: set, index: index}
}

// MarkPermanent transitions an edge already in the label store to settled,
// without touching its index.
func (s *EdgeStatus) MarkPermanent(id graph.GraphId) {
	info := s.status[id]
	info.set = EdgeSetPermanent
	s.status[id] = info
}

func (s *EdgeStatus) Reset() {
	for k := range s.status {
		delete(s.status, k)
	}
}
