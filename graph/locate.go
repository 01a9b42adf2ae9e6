package graph

import "github.com/ttpr0/go-routing/geo"

// Locate finds the single closest directed edge to coord across every tile
// a MemGraphReader holds and returns a Location snapped onto it -
// PercentAlong is the fractional projection of coord onto the edge (0 at
// the edge's start node, 1 at its end node), BeginNode/EndNode flag
// whether the projection landed at (or past) either endpoint, and Distance
// is the perpendicular snap distance in meters, treated by the matrix
// engine as extra travel time at 1 m/s (spec.md §4.4).
//
// Brute force: this scans every node of every tile, fine for the tile
// counts a single matrix request touches in this implementation, unlike
// Valhalla's own S2-cell-covering candidate search which targets tens of
// thousands of tiles - a proper deployment would replace this with a
// spatial index (spec.md §6, "borrowed external contracts").
func Locate(reader *MemGraphReader, coord geo.Coord) (Location, bool) {
	var bestEdge GraphId
	var bestPercent float32
	bestDist := float32(-1)
	found := false

	for _, tileId := range reader.TileIds() {
		tileIface, ok := reader.GetGraphTile(tileId)
		if !ok {
			continue
		}
		tile := tileIface.(*MemGraphTile)
		nodes, edges := tile.Contents()

		for nodeIdx := range nodes {
			node := &nodes[nodeIdx]
			for e := int32(0); e < node.EdgeCnt; e++ {
				edgeIdx := node.EdgeIndexStart + e
				edge := &edges[edgeIdx]

				endTileIface, ok := reader.GetGraphTile(edge.EndNode)
				if !ok {
					continue
				}
				endNode := endTileIface.(*MemGraphTile).Node(edge.EndNode)
				if endNode == nil {
					continue
				}

				percent, dist := projectOntoSegment(node.Loc, endNode.Loc, coord)
				if !found || dist < bestDist {
					found = true
					bestDist = dist
					bestPercent = percent
					bestEdge = tileId.WithIndex(edgeIdx)
				}
			}
		}
	}

	if !found {
		return Location{}, false
	}
	return Location{Edges: []PathEdge{{
		EdgeId:       bestEdge,
		PercentAlong: bestPercent,
		BeginNode:    bestPercent <= 0,
		EndNode:      bestPercent >= 1,
		Distance:     bestDist,
	}}}, true
}

// projectOntoSegment returns the fractional distance [0,1] along a-b of the
// closest point to p, and that point's distance to p in meters. Uses an
// equirectangular approximation (good enough at the sub-kilometer edge
// lengths a routing graph deals with) rather than full great-circle
// projection.
func projectOntoSegment(a, b, p geo.Coord) (percent float32, distM float32) {
	ax, ay := float64(a.Lon()), float64(a.Lat())
	bx, by := float64(b.Lon()), float64(b.Lat())
	px, py := float64(p.Lon()), float64(p.Lat())

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = ((px-ax)*dx + (py-ay)*dy) / lenSq
	}
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	projLon := float32(ax + t*dx)
	projLat := float32(ay + t*dy)
	proj := geo.Coord{projLon, projLat}
	return float32(t), geo.DistanceMeters(proj, p)
}
