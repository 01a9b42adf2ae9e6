package graph

import (
	"github.com/ttpr0/go-routing/attr"
	"github.com/ttpr0/go-routing/geo"
)

//*******************************************
// directed edge
//*******************************************

// DirectedEdge is the read-only view of a single directed edge the costing
// model and the matrix engine are allowed to see (spec.md §3). Nothing in
// this package or matrix mutates a DirectedEdge once a tile is loaded.
type DirectedEdge struct {
	EndNode     GraphId
	LengthM     float32
	LeavesTile  bool
	IsShortcut  bool
	LocalIdx    uint32 // local edge index within the edge's origin node
	RoadType    attr.RoadType
	Maxspeed    byte // kph, 0 when unknown (AutoCosting then assumes 30 kph)
	Forward     bool // usable in the forward direction
	Reverse     bool // usable in the reverse direction (i.e. as an opposing edge)
	Closed      bool // access closed (e.g. live closure)
	Restriction bool // carries a complex turn restriction
}

func (e *DirectedEdge) Length() float32      { return e.LengthM }
func (e *DirectedEdge) IsShortcutEdge() bool { return e.IsShortcut }
func (e *DirectedEdge) LocalEdgeIdx() uint32 { return e.LocalIdx }
func (e *DirectedEdge) EndNodeId() GraphId   { return e.EndNode }

//*******************************************
// node info
//*******************************************

// NodeInfo is the read-only view of a graph node: where its outgoing edges
// and transitions live within the tile, and its own access predicate.
type NodeInfo struct {
	Loc              geo.Coord
	EdgeIndexStart   int32
	EdgeCnt          int32
	TransitionStart  int32
	TransitionCnt    int32
	Access           bool
	BikeShareStation bool // BSS variant only

	// LocalHeadings holds, indexed by local edge index, the compass bearing
	// each of this node's outgoing edges departs on. Populated once by
	// GraphBuilder.Build so TurnType can classify a turn from two local
	// indices without touching a tile at search time.
	LocalHeadings []float32
}

func (n *NodeInfo) EdgeIndex() int32       { return n.EdgeIndexStart }
func (n *NodeInfo) EdgeCount() int32       { return n.EdgeCnt }
func (n *NodeInfo) TransitionIndex() int32 { return n.TransitionStart }
func (n *NodeInfo) TransitionCount() int32 { return n.TransitionCnt }

// NodeTransition is a zero-length connector between representations of the
// same place at different graph levels; traversed implicitly during
// expansion, never materialized as a label (spec.md GLOSSARY).
type NodeTransition struct {
	EndNode GraphId
}

//*******************************************
// path edge correlation (input)
//*******************************************

// PathEdge is a single candidate edge an input location has been snapped
// to, as produced by an (out of scope) map-matching / edge-correlation
// step. See spec.md §3.
type PathEdge struct {
	EdgeId       GraphId
	PercentAlong float32 // position of the snap along the edge, begin=0 end=1
	BeginNode    bool
	EndNode      bool
	Distance     float32 // snap-imprecision penalty, in meters
}

// Location is one input source or target: a geographic point already
// correlated to one or more directed edges.
type Location struct {
	Edges []PathEdge
}
