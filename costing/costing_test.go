package costing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ttpr0/go-routing/graph"
)

func TestAutoCosting_EdgeCostUsesMaxspeedOrDefault(t *testing.T) {
	c := NewAutoCosting()

	withSpeed := &graph.DirectedEdge{LengthM: 1000, Maxspeed: 60}
	cost := c.EdgeCost(withSpeed)
	assert.InDelta(t, 60.0, cost.Seconds, 1e-2) // 1000m at 60kph = 16.67m/s -> 60s
	assert.InDelta(t, 1000.0, cost.Meters, 1e-6)

	noSpeed := &graph.DirectedEdge{LengthM: 1000, Maxspeed: 0}
	cost = c.EdgeCost(noSpeed)
	assert.InDelta(t, 1000.0/(30.0/3.6), cost.Seconds, 1e-2)
}

func TestAutoCosting_ClosedEdgeDisallowedBothDirections(t *testing.T) {
	c := NewAutoCosting()
	closed := &graph.DirectedEdge{Forward: true, Closed: true}
	opposing := &graph.DirectedEdge{Forward: true}

	assert.False(t, c.Allowed(closed, nil))
	assert.False(t, c.AllowedReverse(closed, nil, opposing))
	assert.False(t, c.AllowedReverse(closed, nil, nil))
}

func TestAutoCosting_TurnPenaltyScalesWithSharpness(t *testing.T) {
	c := NewAutoCosting()
	straight := c.TransitionCost(nil, nil, TurnStraight)
	slight := c.TransitionCost(nil, nil, TurnSlightLeft)
	sharp := c.TransitionCost(nil, nil, TurnSharpLeft)
	reverse := c.TransitionCost(nil, nil, TurnReverse)

	assert.Equal(t, float32(0), straight.Seconds)
	assert.Less(t, slight.Seconds, sharp.Seconds)
	assert.Less(t, sharp.Seconds, reverse.Seconds)
}

func TestPedestrianCosting_ExcludesMotorways(t *testing.T) {
	c := NewPedestrianCosting()
	motorway := &graph.DirectedEdge{Forward: true, RoadType: 1}
	residential := &graph.DirectedEdge{Forward: true, RoadType: 11}

	assert.False(t, c.Allowed(motorway, nil))
	assert.True(t, c.Allowed(residential, nil))
	assert.Equal(t, Cost{}, c.TransitionCost(residential, nil, TurnSharpLeft))
}

func TestBicycleCosting_PrefersResidentialOverMotorway(t *testing.T) {
	c := NewBicycleCosting()
	motorway := &graph.DirectedEdge{LengthM: 1000, RoadType: 1}
	residential := &graph.DirectedEdge{LengthM: 1000, RoadType: 11}

	motorwayCost := c.EdgeCost(motorway)
	residentialCost := c.EdgeCost(residential)
	assert.Greater(t, motorwayCost.Seconds, residentialCost.Seconds)
}

func TestCost_AddScaleLess(t *testing.T) {
	a := Cost{Seconds: 10, Meters: 100}
	b := Cost{Seconds: 5, Meters: 50}
	assert.Equal(t, Cost{Seconds: 15, Meters: 150}, a.Add(b))
	assert.Equal(t, Cost{Seconds: 20, Meters: 200}, a.Scale(2))
	assert.True(t, b.Less(a))
	assert.False(t, a.Less(b))
}
