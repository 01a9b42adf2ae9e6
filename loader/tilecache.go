package loader

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/ttpr0/go-routing/graph"
	"github.com/ttpr0/go-routing/structs"
	. "github.com/ttpr0/go-routing/util"
)

// TileCache is a pebble-backed GraphReader: tiles are serialized on first
// request and served from the on-disk store afterwards, the way a
// production deployment would avoid re-parsing an OSM extract on every
// restart. Opposing-edge resolution still goes through an in-memory index
// built once at load time, since it is small relative to tile payloads and
// looked up on every relaxed edge.
type TileCache struct {
	db      *pebble.DB
	source  *graph.MemGraphReader
	decoded map[graph.GraphId]*decodedTile
	mu      sync.Mutex // guards decoded across concurrent GetGraphTile calls
}

type decodedTile struct {
	nodes structs.Array[graph.NodeInfo]
	edges structs.Array[graph.DirectedEdge]
}

func (t *decodedTile) Node(id graph.GraphId) *graph.NodeInfo {
	idx := id.Index()
	if int(idx) < 0 || int(idx) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[idx]
}

func (t *decodedTile) Edge(id graph.GraphId) *graph.DirectedEdge {
	idx := id.Index()
	if int(idx) < 0 || int(idx) >= len(t.edges) {
		return nil
	}
	return &t.edges[idx]
}

func (t *decodedTile) Transition(id graph.GraphId) *graph.NodeTransition {
	return nil
}

// OpenTileCache opens (creating if needed) a pebble store at dir and wraps
// source, the fully-built in-memory graph, as the encode side of the cache.
func OpenTileCache(dir string, source *graph.MemGraphReader) (*TileCache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening tile cache at %s: %w", dir, err)
	}
	return &TileCache{db: db, source: source, decoded: make(map[graph.GraphId]*decodedTile)}, nil
}

func (c *TileCache) Close() error {
	return c.db.Close()
}

func tileKey(id graph.GraphId) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

func (c *TileCache) GetGraphTile(id graph.GraphId) (graph.GraphTile, bool) {
	tileId := id.TileId()
	c.mu.Lock()
	defer c.mu.Unlock()
	if tile, ok := c.decoded[tileId]; ok {
		return tile, true
	}

	if value, closer, err := c.db.Get(tileKey(tileId)); err == nil {
		tile := decodeTile(value)
		closer.Close()
		c.decoded[tileId] = tile
		return tile, true
	}

	src, ok := c.source.GetGraphTile(tileId)
	if !ok {
		return nil, false
	}
	memTile := src.(*graph.MemGraphTile)
	rawNodes, rawEdges := memTile.Contents()
	nodes := structs.Array[graph.NodeInfo](rawNodes)
	edges := structs.Array[graph.DirectedEdge](rawEdges)
	tile := &decodedTile{nodes: nodes, edges: edges}
	c.decoded[tileId] = tile

	if err := c.db.Set(tileKey(tileId), encodeTile(nodes, edges), pebble.Sync); err != nil {
		return tile, true
	}
	return tile, true
}

func (c *TileCache) GetOpposingEdgeId(id graph.GraphId) graph.GraphId {
	return c.source.GetOpposingEdgeId(id)
}

func (c *TileCache) GetOpposingEdge(id graph.GraphId) *graph.DirectedEdge {
	oppId := c.GetOpposingEdgeId(id)
	if !oppId.IsValid() {
		return nil
	}
	tile, ok := c.GetGraphTile(oppId)
	if !ok {
		return nil
	}
	return tile.Edge(oppId)
}

func encodeTile(nodes structs.Array[graph.NodeInfo], edges structs.Array[graph.DirectedEdge]) []byte {
	w := NewBufferWriter()
	WriteArray(w, nodes)
	WriteArray(w, edges)
	return w.Bytes()
}

func decodeTile(data []byte) *decodedTile {
	r := NewBufferReader(data)
	nodes := ReadArray[graph.NodeInfo](r)
	edges := ReadArray[graph.DirectedEdge](r)
	return &decodedTile{nodes: nodes, edges: edges}
}
