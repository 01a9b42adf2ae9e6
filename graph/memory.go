package graph

import "github.com/ttpr0/go-routing/geo"

// MemGraphTile is an in-memory GraphTile backing a single (level, tile)
// pair; used by the loader's OSM build and by engine/costing tests as a
// graph fixture (the teacher's GraphBase plays the same "everything in one
// flat slice" role for a single-level graph, see graph_base.go).
type MemGraphTile struct {
	nodes       []NodeInfo
	edges       []DirectedEdge
	transitions []NodeTransition
}

// Contents exposes the tile's raw node/edge slices for serialization by a
// persistent cache (loader.TileCache); not part of the GraphTile interface.
func (t *MemGraphTile) Contents() ([]NodeInfo, []DirectedEdge) {
	return t.nodes, t.edges
}

func (t *MemGraphTile) Node(id GraphId) *NodeInfo {
	idx := id.Index()
	if int(idx) < 0 || int(idx) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[idx]
}

func (t *MemGraphTile) Edge(id GraphId) *DirectedEdge {
	idx := id.Index()
	if int(idx) < 0 || int(idx) >= len(t.edges) {
		return nil
	}
	return &t.edges[idx]
}

func (t *MemGraphTile) Transition(id GraphId) *NodeTransition {
	idx := id.Index()
	if int(idx) < 0 || int(idx) >= len(t.transitions) {
		return nil
	}
	return &t.transitions[idx]
}

// MemGraphReader is a GraphReader over a fixed set of in-memory tiles, with
// an opposing-edge index that starts empty and is filled through
// AddOpposingPair once the tile has been built.
type MemGraphReader struct {
	tiles    map[GraphId]*MemGraphTile
	opposing map[GraphId]GraphId
}

func NewMemGraphReader() *MemGraphReader {
	return &MemGraphReader{
		tiles:    make(map[GraphId]*MemGraphTile),
		opposing: make(map[GraphId]GraphId),
	}
}

func (r *MemGraphReader) GetGraphTile(id GraphId) (GraphTile, bool) {
	tile, ok := r.tiles[id.TileId()]
	return tile, ok
}

// TileIds lists every tile this reader holds - used by Locate, which has
// no spatial index to narrow the search and must scan every tile's nodes.
func (r *MemGraphReader) TileIds() []GraphId {
	ids := make([]GraphId, 0, len(r.tiles))
	for id := range r.tiles {
		ids = append(ids, id)
	}
	return ids
}

func (r *MemGraphReader) GetOpposingEdgeId(id GraphId) GraphId {
	opp, ok := r.opposing[id]
	if !ok {
		return InvalidGraphId
	}
	return opp
}

func (r *MemGraphReader) GetOpposingEdge(id GraphId) *DirectedEdge {
	opp := r.GetOpposingEdgeId(id)
	if !opp.IsValid() {
		return nil
	}
	tile, ok := r.GetGraphTile(opp)
	if !ok {
		return nil
	}
	return tile.Edge(opp)
}

//*******************************************
// builder
//*******************************************

// GraphBuilder assembles a single-level, single-tile MemGraphReader (the
// loader's OSM pass and tests both go through this rather than poking at
// MemGraphTile fields directly, the way the teacher's build_graph.go
// assembles a GraphBase through mutation helpers rather than literal struct
// construction). Nodes and edges may be added in any order - AddNode only
// reserves a GraphId, Build groups the recorded edges by their origin node
// and assigns each node's EdgeIndexStart/EdgeCnt over the now-contiguous
// range, since a loader walking ways rather than nodes cannot add a node's
// edges immediately after it the way a hand-built fixture can.
type GraphBuilder struct {
	level    int32
	tile     int32
	nodes    []NodeInfo
	pend     []pendingEdge
	resolved []GraphId // filled in by Build, indexed by EdgeRef
}

type pendingEdge struct {
	from GraphId
	edge DirectedEdge
}

// EdgeRef identifies an edge recorded via AddEdge before its final GraphId
// is known; pass it to ResolveEdge after Build to get that GraphId (needed
// e.g. to wire up AddOpposingPair once every edge has a real position).
type EdgeRef int

func NewGraphBuilder(level, tile int32) *GraphBuilder {
	return &GraphBuilder{level: level, tile: tile}
}

// AddNode appends a node and returns its GraphId. EdgeIndexStart/EdgeCnt on
// the returned node are placeholders until Build groups its edges.
func (b *GraphBuilder) AddNode(n NodeInfo) GraphId {
	b.nodes = append(b.nodes, n)
	return NewGraphId(b.level, b.tile, int32(len(b.nodes)-1))
}

// AddEdge records a directed edge originating at from and returns a
// reference to resolve into a real GraphId after Build - its position in
// the tile's edge slice isn't known until every node's edges are grouped.
func (b *GraphBuilder) AddEdge(from GraphId, e DirectedEdge) EdgeRef {
	b.pend = append(b.pend, pendingEdge{from: from, edge: e})
	return EdgeRef(len(b.pend) - 1)
}

// ResolveEdge returns the final GraphId of an edge added via AddEdge. Only
// valid after Build has run.
func (b *GraphBuilder) ResolveEdge(ref EdgeRef) GraphId {
	return b.resolved[ref]
}

// Build finalizes the tile: edges are grouped by their origin node so each
// node's edges are contiguous.
func (b *GraphBuilder) Build() *MemGraphReader {
	perNode := make([][]int, len(b.nodes)) // node index -> pending indices
	for i, p := range b.pend {
		idx := p.from.Index()
		perNode[idx] = append(perNode[idx], i)
	}

	edges := make([]DirectedEdge, 0, len(b.pend))
	b.resolved = make([]GraphId, len(b.pend))
	for i := range b.nodes {
		b.nodes[i].EdgeIndexStart = int32(len(edges))
		b.nodes[i].EdgeCnt = int32(len(perNode[i]))
		headings := make([]float32, len(perNode[i]))
		for j, pendIdx := range perNode[i] {
			e := b.pend[pendIdx].edge
			e.LocalIdx = uint32(j)
			edgeId := NewGraphId(b.level, b.tile, int32(len(edges)))
			b.resolved[pendIdx] = edgeId
			edges = append(edges, e)

			if end := e.EndNode.Index(); int(end) >= 0 && int(end) < len(b.nodes) {
				headings[j] = geo.Bearing(b.nodes[i].Loc, b.nodes[end].Loc)
			}
		}
		b.nodes[i].LocalHeadings = headings
	}

	tile := &MemGraphTile{nodes: b.nodes, edges: edges}
	r := NewMemGraphReader()
	tileId := NewGraphId(b.level, b.tile, 0)
	r.tiles[tileId] = tile
	return r
}

// AddOpposingPair records that edge a and edge b traverse the same
// physical segment in opposite directions.
func (r *MemGraphReader) AddOpposingPair(a, b GraphId) {
	r.opposing[a] = b
	r.opposing[b] = a
}
