// Package loader builds an in-memory routing graph (graph.MemGraphReader)
// from raw OSM extracts, the way the teacher's parser package turns a .osm.pbf
// into a GraphBase/GraphAttributes pair (parser.go), adapted to populate
// graph.DirectedEdge/NodeInfo directly instead of a separate flat attribute
// table.
package loader

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/ttpr0/go-routing/attr"
	"github.com/ttpr0/go-routing/geo"
	"github.com/ttpr0/go-routing/graph"
	"github.com/ttpr0/go-routing/structs"
	"golang.org/x/exp/slog"
)

// Decoder decides which ways are routable for a given travel mode and
// derives the edge/node attributes the costing models need. One
// implementation per travel mode, the way parser.IOSMDecoder had one per
// profile (driving_decoder.go and friends).
type Decoder interface {
	IsValidHighway(tags map[string]string) bool
	DecodeRoadType(tags map[string]string) attr.RoadType
	DecodeMaxspeed(tags map[string]string, typ attr.RoadType) byte
	IsOneway(tags map[string]string, typ attr.RoadType) bool
}

type tempNode struct {
	point geo.Coord
	count int32
}

type osmNode struct {
	point geo.Coord
}

type osmEdge struct {
	nodeA, nodeB int
	roadType     attr.RoadType
	maxspeed     byte
	oneway       bool
	lengthM      float32
}

// ParseGraph reads an OSM PBF extract and builds a MemGraphReader with one
// bidirectional node pair of directed edges per non-oneway OSM way segment,
// mirroring parser.ParseGraph's three-pass (ways, nodes, ways) scan so the
// intersection degree of every node is known before any edge is emitted.
func ParseGraph(pbfFile string, decoder Decoder) (*graph.MemGraphReader, error) {
	nodes := structs.NewList[osmNode](10000)
	edges := structs.NewList[osmEdge](10000)
	indexMapping := structs.NewDict[int64, int](10000)

	if err := parseOSM(pbfFile, decoder, &nodes, &edges, &indexMapping); err != nil {
		return nil, err
	}
	slog.Info(fmt.Sprintf("parsed osm extract: %d nodes, %d edges", nodes.Length(), edges.Length()))
	return buildGraph(&nodes, &edges), nil
}

func parseOSM(filename string, decoder Decoder, nodes *structs.List[osmNode], edges *structs.List[osmEdge], indexMapping *structs.Dict[int64, int]) error {
	osmNodes := structs.NewDict[int64, tempNode](1000)

	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := osmpbf.New(context.Background(), file, runtime.GOMAXPROCS(-1))
	initWayHandler(scanner, decoder, &osmNodes)
	scanner.Close()

	file.Seek(0, 0)
	scanner = osmpbf.New(context.Background(), file, runtime.GOMAXPROCS(-1))
	nodeHandler(scanner, &osmNodes, nodes, indexMapping)
	scanner.Close()

	file.Seek(0, 0)
	scanner = osmpbf.New(context.Background(), file, runtime.GOMAXPROCS(-1))
	wayHandler(scanner, decoder, edges, &osmNodes, indexMapping)
	return scanner.Close()
}

func initWayHandler(scanner *osmpbf.Scanner, decoder Decoder, osmNodes *structs.Dict[int64, tempNode]) {
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		tags := way.TagMap()
		if !decoder.IsValidHighway(tags) {
			continue
		}
		ids := way.Nodes.NodeIDs()
		for _, id := range ids {
			ref := id.FeatureID().Ref()
			n := (*osmNodes)[ref]
			n.count++
			(*osmNodes)[ref] = n
		}
		first := ids[0].FeatureID().Ref()
		last := ids[len(ids)-1].FeatureID().Ref()
		for _, ref := range [2]int64{first, last} {
			n := (*osmNodes)[ref]
			n.count++
			(*osmNodes)[ref] = n
		}
	}
}

func nodeHandler(scanner *osmpbf.Scanner, osmNodes *structs.Dict[int64, tempNode], nodes *structs.List[osmNode], indexMapping *structs.Dict[int64, int]) {
	i := 0
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		id := node.FeatureID().Ref()
		n, exists := (*osmNodes)[id]
		if !exists {
			continue
		}
		n.point = geo.Coord{float32(node.Lon), float32(node.Lat)}
		if n.count > 1 {
			nodes.Add(osmNode{point: n.point})
			(*indexMapping)[id] = i
			i++
		}
		(*osmNodes)[id] = n
	}
}

func wayHandler(scanner *osmpbf.Scanner, decoder Decoder, edges *structs.List[osmEdge], osmNodes *structs.Dict[int64, tempNode], indexMapping *structs.Dict[int64, int]) {
	scanner.SkipNodes = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}
		tags := way.TagMap()
		if !decoder.IsValidHighway(tags) {
			continue
		}
		typ := decoder.DecodeRoadType(tags)
		maxspeed := decoder.DecodeMaxspeed(tags, typ)
		oneway := decoder.IsOneway(tags, typ)

		ids := way.Nodes.NodeIDs()
		start := ids[0].FeatureID().Ref()
		length := float32(0)
		lastPoint := (*osmNodes)[start].point
		for i := 1; i < len(ids); i++ {
			ref := ids[i].FeatureID().Ref()
			n := (*osmNodes)[ref]
			length += geo.DistanceMeters(lastPoint, n.point)
			lastPoint = n.point
			if n.count > 1 && ref != start {
				startIdx, hasStart := (*indexMapping)[start]
				endIdx, hasEnd := (*indexMapping)[ref]
				if hasStart && hasEnd {
					edges.Add(osmEdge{
						nodeA:    startIdx,
						nodeB:    endIdx,
						roadType: typ,
						maxspeed: maxspeed,
						oneway:   oneway,
						lengthM:  length,
					})
				}
				start = ref
				length = 0
			}
		}
	}
}

func buildGraph(nodes *structs.List[osmNode], edges *structs.List[osmEdge]) *graph.MemGraphReader {
	b := graph.NewGraphBuilder(0, 0)
	ids := make([]graph.GraphId, nodes.Length())
	for i := 0; i < nodes.Length(); i++ {
		ids[i] = b.AddNode(graph.NodeInfo{Loc: nodes.Get(i).point, Access: true})
	}

	type pair struct{ a, b graph.EdgeRef }
	pairs := make([]pair, 0, edges.Length())

	for i := 0; i < edges.Length(); i++ {
		e := edges.Get(i)
		from, to := ids[e.nodeA], ids[e.nodeB]

		fwdId := b.AddEdge(from, graph.DirectedEdge{
			EndNode:  to,
			LengthM:  e.lengthM,
			RoadType: e.roadType,
			Maxspeed: e.maxspeed,
			Forward:  true,
			Reverse:  !e.oneway,
		})
		if !e.oneway {
			bwdId := b.AddEdge(to, graph.DirectedEdge{
				EndNode:  from,
				LengthM:  e.lengthM,
				RoadType: e.roadType,
				Maxspeed: e.maxspeed,
				Forward:  true,
				Reverse:  true,
			})
			pairs = append(pairs, pair{fwdId, bwdId})
		}
	}

	reader := b.Build()
	for _, p := range pairs {
		reader.AddOpposingPair(b.ResolveEdge(p.a), b.ResolveEdge(p.b))
	}
	return reader
}
