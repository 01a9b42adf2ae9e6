package graph

import "fmt"

//*******************************************
// graph id
//*******************************************

// GraphId is an opaque identifier for a directed edge or a node,
// decomposable into (level, tile, index). Edges and nodes share the same id
// space; which one an id names is determined by the context it is used in
// (mirrors the teacher's plain int32 node/edge ids, widened to also carry a
// tile and level the way a tiled graph needs).
type GraphId uint64

const (
	levelBits = 3
	tileBits  = 22
	indexBits = 21

	indexMask = (uint64(1) << indexBits) - 1
	tileMask  = (uint64(1) << tileBits) - 1
	levelMask = (uint64(1) << levelBits) - 1
)

// InvalidGraphId is the sentinel returned wherever an id could not be
// resolved (missing tile, missing opposing edge, ...).
const InvalidGraphId GraphId = GraphId(^uint64(0))

func NewGraphId(level, tile int32, index int32) GraphId {
	return GraphId(uint64(index)&indexMask |
		(uint64(tile)&tileMask)<<indexBits |
		(uint64(level)&levelMask)<<(indexBits+tileBits))
}

func (id GraphId) Level() int32 {
	return int32((uint64(id) >> (indexBits + tileBits)) & levelMask)
}

func (id GraphId) Tile() int32 {
	return int32((uint64(id) >> indexBits) & tileMask)
}

func (id GraphId) Index() int32 {
	return int32(uint64(id) & indexMask)
}

// TileId identifies the tile a GraphId belongs to, ignoring the index -
// used as the GraphReader's cache key.
func (id GraphId) TileId() GraphId {
	return NewGraphId(id.Level(), id.Tile(), 0)
}

// WithIndex returns a copy of id with a different index, keeping the same
// tile and level - used to walk sequential edges/nodes within a tile.
func (id GraphId) WithIndex(index int32) GraphId {
	return NewGraphId(id.Level(), id.Tile(), index)
}

func (id GraphId) IsValid() bool {
	return id != InvalidGraphId
}

func (id GraphId) String() string {
	if !id.IsValid() {
		return "GraphId(invalid)"
	}
	return fmt.Sprintf("GraphId(level=%d, tile=%d, index=%d)", id.Level(), id.Tile(), id.Index())
}
