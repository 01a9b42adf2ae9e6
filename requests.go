package main

import (
	"github.com/ttpr0/go-routing/geo"
)

// MatrixRequest is the body of POST /v1/matrix. Validation tags are
// enforced by go-playground/validator before the handler ever runs a
// search (spec.md §7 "malformed input").
type MatrixRequest struct {
	Sources      []geo.Coord `json:"sources" validate:"required,min=1,dive"`
	Targets      []geo.Coord `json:"targets" validate:"required,min=1,dive"`
	Profile      string      `json:"profile" validate:"required,oneof=auto bicycle pedestrian bikeshare"`
	MaxDistanceM float32     `json:"max_distance_m" validate:"omitempty,gt=0"`
}
