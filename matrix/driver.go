package matrix

import (
	"context"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"github.com/ttpr0/go-routing/costing"
	"github.com/ttpr0/go-routing/graph"
	"github.com/ttpr0/go-routing/structs"
)

// workerCount bounds how many Engines run concurrently for a single
// many-to-many request - one goroutine per worker, mirroring the teacher's
// one-solver-per-goroutine pool in root matrix.go, generalized from a fixed
// pool of 1 to min(GOMAXPROCS-ish, rows).
const workerCount = 8

// Cell is one entry of a computed matrix together with its row/column
// position, so workers can report results out of order and the caller
// scatters them back into place.
type Cell struct {
	Row, Col int
	TimeDistance
}

// SourceToTarget computes the full sources x targets time/distance matrix.
// It picks the cheaper of the two directions - expanding outward from
// whichever side of the pair is smaller - per spec.md §4.7, then fans the
// one-to-many searches for that side out across a worker pool of
// independent Engines (no Engine is ever touched by more than one
// goroutine at a time).
func SourceToTarget(ctx context.Context, reader graph.GraphReader, c costing.Costing, sources, targets []graph.Location, maxMatrixDistance float32, matrixLocations uint32) (structs.Array[structs.Array[TimeDistance]], error) {
	forward := len(sources) <= len(targets)

	var outer, inner []graph.Location
	if forward {
		outer, inner = sources, targets
	} else {
		outer, inner = targets, sources
	}

	rows := make(structs.Array[structs.Array[TimeDistance]], len(sources))
	for i := range rows {
		rows[i] = make(structs.Array[TimeDistance], len(targets))
	}

	locations := uint32(len(inner))
	if matrixLocations > 0 && matrixLocations < locations {
		locations = matrixLocations
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount)

	for idx, origin := range outer {
		idx, origin := idx, origin
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			engine := NewEngine(reader, c)
			results := engine.ComputeOneToMany(origin, inner, maxMatrixDistance, int(locations), forward)

			for j, td := range results {
				if forward {
					rows[idx][j] = td
				} else {
					// A reverse-mode search computed from target[idx] back
					// toward every source: the engine's own internal
					// Expand already swapped forward/backward edge
					// traversal, so the result at position j here is the
					// cost from sources[j] to targets[idx] - transpose it
					// into row/col form for the caller.
					rows[j][idx] = td
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		slog.Error("matrix computation failed", "error", err)
		return nil, err
	}
	return rows, nil
}
