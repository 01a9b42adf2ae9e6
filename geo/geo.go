// Package geo holds the small set of coordinate types shared across the
// graph, loader and matrix packages, together with the spherical distance
// helper used when building graph fixtures from raw longitude/latitude data.
package geo

import (
	"math"

	"github.com/golang/geo/s2"
)

// Coord is a (lon, lat) pair in degrees, matching the ordering GeoJSON and
// the teacher's own request payloads use.
type Coord [2]float32

func (c Coord) Lon() float32 { return c[0] }
func (c Coord) Lat() float32 { return c[1] }

type CoordArray []Coord

// DistanceMeters returns the great-circle distance between two coordinates,
// used by the loader when OSM ways don't carry an explicit length tag.
func DistanceMeters(a, b Coord) float32 {
	pa := s2.LatLngFromDegrees(float64(a.Lat()), float64(a.Lon()))
	pb := s2.LatLngFromDegrees(float64(b.Lat()), float64(b.Lon()))
	angle := pa.Distance(pb)
	return float32(float64(angle) * earthRadiusMeters)
}

const earthRadiusMeters = 6371000.0

// Bearing returns the initial compass bearing in degrees [0, 360) for the
// great-circle path from a to b, used at graph build time to precompute
// each node's local edge headings for turn classification.
func Bearing(a, b Coord) float32 {
	lat1 := float64(a.Lat()) * math.Pi / 180
	lat2 := float64(b.Lat()) * math.Pi / 180
	dLon := float64(b.Lon()-a.Lon()) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return float32(math.Mod(deg+360, 360))
}
