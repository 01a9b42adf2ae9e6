package loader

import (
	"strconv"

	"github.com/ttpr0/go-routing/attr"
)

// defaultDriveSpeedKph derives a speed in km/h for a driving edge from its
// road type, OSM maxspeed tag and surface, grounded on the teacher's
// parser/util.go _GetORSTravelSpeed table (OpenRouteService's defaults).
func defaultDriveSpeedKph(typ attr.RoadType, maxspeed, surface string) int32 {
	var speed int32
	switch {
	case maxspeed == "walk":
		speed = 10
	case maxspeed == "none":
		speed = 110
	case maxspeed != "":
		if v, err := strconv.Atoi(maxspeed); err == nil {
			speed = int32(float32(v) * 0.9)
		}
	}

	if speed == 0 {
		switch typ {
		case attr.MOTORWAY:
			speed = 100
		case attr.TRUNK:
			speed = 85
		case attr.MOTORWAY_LINK, attr.TRUNK_LINK:
			speed = 60
		case attr.PRIMARY:
			speed = 65
		case attr.SECONDARY:
			speed = 60
		case attr.TERTIARY:
			speed = 50
		case attr.PRIMARY_LINK, attr.SECONDARY_LINK:
			speed = 50
		case attr.TERTIARY_LINK:
			speed = 40
		case attr.UNCLASSIFIED:
			speed = 30
		case attr.RESIDENTIAL:
			speed = 30
		case attr.LIVING_STREET:
			speed = 10
		case attr.ROAD:
			speed = 20
		case attr.TRACK:
			speed = 15
		default:
			speed = 20
		}
	}

	switch surface {
	case "cement", "compacted":
		speed = min32(speed, 80)
	case "fine_gravel":
		speed = min32(speed, 60)
	case "paving_stones", "metal", "bricks":
		speed = min32(speed, 40)
	case "grass", "wood", "sett", "grass_paver", "gravel", "unpaved", "ground", "dirt", "pebblestone", "tartan":
		speed = min32(speed, 30)
	case "cobblestone", "clay":
		speed = min32(speed, 20)
	case "earth", "stone", "rocky", "sand":
		speed = min32(speed, 15)
	case "mud":
		speed = min32(speed, 10)
	}

	if speed <= 0 {
		speed = 10
	}
	return speed
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
