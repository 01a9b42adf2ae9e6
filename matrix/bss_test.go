package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttpr0/go-routing/graph"
)

// Two-hop chain with a bike-share station at the middle node: walking the
// whole distance costs 2000s at 1 s/m, but picking up a bike at the station
// for the second leg (0.1 s/m) should bring the total down to 1100s. If mode
// switching never explored the bicycle leg, the settled cost would stay at
// the all-pedestrian 2000s.
func TestBSSEngine_SwitchesModeAtStation(t *testing.T) {
	b := graph.NewGraphBuilder(0, 0)
	n0 := b.AddNode(graph.NodeInfo{Access: true})
	n1 := b.AddNode(graph.NodeInfo{Access: true, BikeShareStation: true})
	n2 := b.AddNode(graph.NodeInfo{Access: true})
	b.AddEdge(n0, graph.DirectedEdge{EndNode: n1, LengthM: 1000, Forward: true, Reverse: true})
	b.AddEdge(n1, graph.DirectedEdge{EndNode: n2, LengthM: 1000, Forward: true, Reverse: true})
	reader := b.Build()

	pedestrian := newIsoCosting(1.0)
	bicycle := newIsoCosting(0.1)
	e := NewBSSEngine(reader, pedestrian, bicycle)

	tile, ok := reader.GetGraphTile(n0)
	require.True(t, ok)
	nodeInfo := tile.Node(n0)
	require.NotNil(t, nodeInfo)
	originEdgeId := n0.WithIndex(nodeInfo.EdgeIndex())

	tile1, ok := reader.GetGraphTile(n1)
	require.True(t, ok)
	nodeInfo1 := tile1.Node(n1)
	require.NotNil(t, nodeInfo1)
	targetEdgeId := n1.WithIndex(nodeInfo1.EdgeIndex())

	origin := locAt(originEdgeId, 0.0)
	target := locAt(targetEdgeId, 1.0)

	result := e.ComputeOneToMany(origin, []graph.Location{target}, 1_000_000, 1, true)
	require.Len(t, result, 1)
	assert.InDelta(t, 1100.0, result[0].TimeSeconds, 1e-3)
	assert.InDelta(t, 2000.0, result[0].DistanceMeters, 1e-3)
}
