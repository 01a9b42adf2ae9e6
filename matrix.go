package main

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/exp/slog"

	"github.com/ttpr0/go-routing/costing"
	"github.com/ttpr0/go-routing/geo"
	"github.com/ttpr0/go-routing/graph"
	"github.com/ttpr0/go-routing/matrix"
)

var validate = validator.New()

//**********************************************************
// matrix request and response
//**********************************************************

type MatrixResponse struct {
	Sources    []LocatedPoint `json:"sources"`
	Targets    []LocatedPoint `json:"targets"`
	DurationsS [][]float32    `json:"durations"`
	DistancesM [][]float32    `json:"distances"`
}

type LocatedPoint struct {
	Lon float32 `json:"lon"`
	Lat float32 `json:"lat"`
}

//**********************************************************
// matrix handler
//**********************************************************

func HandleMatrixRequest(req MatrixRequest) Result {
	slog.Info("run matrix request", "profile", req.Profile, "sources", len(req.Sources), "targets", len(req.Targets))

	if err := validate.Struct(req); err != nil {
		return BadRequest(NewErrorResponse("/v1/matrix", err.Error()))
	}

	maxDistance := req.MaxDistanceM
	if maxDistance <= 0 {
		maxDistance = APP.Config.Server.MaxMatrixDistanceM
	}

	sources, ok := locateAll(req.Sources)
	if !ok {
		return BadRequest(NewErrorResponse("/v1/matrix", "one or more source coordinates could not be matched to the graph"))
	}
	targets, ok := locateAll(req.Targets)
	if !ok {
		return BadRequest(NewErrorResponse("/v1/matrix", "one or more target coordinates could not be matched to the graph"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var rows [][]matrix.TimeDistance
	if req.Profile == "bikeshare" {
		r, err := bikeshareMatrix(ctx, sources, targets, maxDistance, uint32(APP.Config.Server.MaxMatrixLocations))
		if err != nil {
			return BadRequest(NewErrorResponse("/v1/matrix", err.Error()))
		}
		rows = r
	} else {
		c, ok := CostingByProfile(req.Profile)
		if !ok {
			return BadRequest(NewErrorResponse("/v1/matrix", "unknown profile: "+req.Profile))
		}
		table, err := matrix.SourceToTarget(ctx, APP.Graph, c, sources, targets, maxDistance, uint32(APP.Config.Server.MaxMatrixLocations))
		if err != nil {
			return BadRequest(NewErrorResponse("/v1/matrix", err.Error()))
		}
		rows = make([][]matrix.TimeDistance, len(table))
		for i, row := range table {
			rows[i] = row
		}
	}

	durations := make([][]float32, len(rows))
	distances := make([][]float32, len(rows))
	for i, row := range rows {
		durations[i] = make([]float32, len(row))
		distances[i] = make([]float32, len(row))
		for j, td := range row {
			durations[i][j] = td.TimeSeconds
			distances[i][j] = td.DistanceMeters
		}
	}

	resp := MatrixResponse{
		Sources:    toLocatedPoints(req.Sources),
		Targets:    toLocatedPoints(req.Targets),
		DurationsS: durations,
		DistancesM: distances,
	}
	slog.Info("matrix response built")
	return OK(resp)
}

func bikeshareMatrix(ctx context.Context, sources, targets []graph.Location, maxDistance float32, matrixLocations uint32) ([][]matrix.TimeDistance, error) {
	rows := make([][]matrix.TimeDistance, len(sources))
	for i, origin := range sources {
		engine := matrix.NewBSSEngine(APP.Graph, costing.NewPedestrianCosting(), costing.NewBicycleCosting())
		rows[i] = engine.ComputeOneToMany(origin, targets, maxDistance, int(matrixLocations), true)
	}
	return rows, nil
}

func locateAll(coords []geo.Coord) ([]graph.Location, bool) {
	out := make([]graph.Location, len(coords))
	for i, c := range coords {
		loc, ok := graph.Locate(APP.Source, c)
		if !ok {
			return nil, false
		}
		out[i] = loc
	}
	return out, true
}

func toLocatedPoints(coords []geo.Coord) []LocatedPoint {
	out := make([]LocatedPoint, len(coords))
	for i, c := range coords {
		out[i] = LocatedPoint{Lon: c.Lon(), Lat: c.Lat()}
	}
	return out
}
