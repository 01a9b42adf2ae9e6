package matrix

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ttpr0/go-routing/graph"
)

// Many sources, one target: len(sources) > len(targets) forces the reverse
// selection (spec.md §4.7) - SourceToTarget must still transpose each
// worker's one-to-many result back into row/col form correctly.
func TestSourceToTarget_ReverseSelectionTransposesCorrectly(t *testing.T) {
	reader, _, edges := uniformChainGraph(4, 100)
	c := newIsoCosting(0.1)

	// Sources kept at least two hops from the target's own edge: a source
	// sharing an edge with the target hits the trivial same-edge path, which
	// only short-circuits cleanly in the direction that doesn't translate
	// through an opposing edge id (forward mode here, since forward is
	// picked per side - see TestEngine_SameEdgeOriginDifferentTargets for
	// that case in isolation).
	sources := []graph.Location{
		locAt(edges[0], 0.0), // node 0
		locAt(edges[1], 0.0), // node 1
		locAt(edges[2], 0.0), // node 2
	}
	targets := []graph.Location{
		locAt(edges[3], 1.0), // node 4
	}

	rows, err := SourceToTarget(context.Background(), reader, c, sources, targets, 1_000_000, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.InDelta(t, 40.0, rows[0][0].TimeSeconds, 1e-3)
	assert.InDelta(t, 400.0, rows[0][0].DistanceMeters, 1e-3)
	assert.InDelta(t, 30.0, rows[1][0].TimeSeconds, 1e-3)
	assert.InDelta(t, 300.0, rows[1][0].DistanceMeters, 1e-3)
	assert.InDelta(t, 20.0, rows[2][0].TimeSeconds, 1e-3)
	assert.InDelta(t, 200.0, rows[2][0].DistanceMeters, 1e-3)
}

// One source, many targets: len(sources) <= len(targets) keeps the forward
// selection, one worker expanding straight from the single source.
func TestSourceToTarget_ForwardSelection(t *testing.T) {
	reader, _, edges := uniformChainGraph(3, 100)
	c := newIsoCosting(0.1)

	sources := []graph.Location{
		locAt(edges[0], 0.0), // node 0
	}
	targets := []graph.Location{
		locAt(edges[0], 1.0), // node 1
		locAt(edges[1], 1.0), // node 2
		locAt(edges[2], 1.0), // node 3
	}

	rows, err := SourceToTarget(context.Background(), reader, c, sources, targets, 1_000_000, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 3)

	assert.InDelta(t, 10.0, rows[0][0].TimeSeconds, 1e-3)
	assert.InDelta(t, 20.0, rows[0][1].TimeSeconds, 1e-3)
	assert.InDelta(t, 30.0, rows[0][2].TimeSeconds, 1e-3)
}

// A matrixLocations cap smaller than the target count still yields a full
// sources x targets shaped result, with unsettled cells reporting
// Unreachable rather than a partially-found cost.
func TestSourceToTarget_MatrixLocationsCap(t *testing.T) {
	reader, _, edges := uniformChainGraph(5, 100)
	c := newIsoCosting(0.1)

	sources := []graph.Location{locAt(edges[0], 0.0)}
	targets := make([]graph.Location, 5)
	for i := range targets {
		targets[i] = locAt(edges[i], 1.0)
	}

	rows, err := SourceToTarget(context.Background(), reader, c, sources, targets, 100_000, 2)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 5)

	reached := 0
	for _, td := range rows[0] {
		if td != Unreachable() {
			reached++
		}
	}
	assert.Equal(t, 2, reached)
}
