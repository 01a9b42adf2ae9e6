package loader

import "github.com/ttpr0/go-routing/attr"

var drivingHighways = map[string]bool{
	"motorway": true, "motorway_link": true, "trunk": true, "trunk_link": true,
	"primary": true, "primary_link": true, "secondary": true, "secondary_link": true,
	"tertiary": true, "tertiary_link": true, "residential": true, "living_street": true,
	"service": true, "unclassified": true, "road": true,
}

var cyclingHighways = map[string]bool{
	"cycleway": true, "primary": true, "secondary": true, "tertiary": true,
	"residential": true, "living_street": true, "unclassified": true, "service": true,
	"track": true, "path": true, "road": true,
}

var walkingHighways = map[string]bool{
	"footway": true, "pedestrian": true, "living_street": true, "residential": true,
	"unclassified": true, "service": true, "track": true, "path": true, "steps": true, "road": true,
}

func roadTypeFromHighway(highway string) attr.RoadType {
	typ := attr.RoadTypeFromString(highway)
	if typ == 0 {
		return attr.UNCLASSIFIED
	}
	return typ
}

// DrivingDecoder accepts motor vehicle ways, grounded on the teacher's
// driving_decoder.go and its default-speed table in parser/util.go.
type DrivingDecoder struct{}

func (DrivingDecoder) IsValidHighway(tags map[string]string) bool {
	return drivingHighways[tags["highway"]]
}

func (DrivingDecoder) DecodeRoadType(tags map[string]string) attr.RoadType {
	return roadTypeFromHighway(tags["highway"])
}

func (DrivingDecoder) DecodeMaxspeed(tags map[string]string, typ attr.RoadType) byte {
	return byte(defaultDriveSpeedKph(typ, tags["maxspeed"], tags["surface"]))
}

func (DrivingDecoder) IsOneway(tags map[string]string, typ attr.RoadType) bool {
	if typ == attr.MOTORWAY || typ == attr.MOTORWAY_LINK || typ == attr.TRUNK || typ == attr.TRUNK_LINK {
		return true
	}
	return tags["oneway"] == "yes"
}

// CyclingDecoder accepts bicycle-usable ways.
type CyclingDecoder struct{}

func (CyclingDecoder) IsValidHighway(tags map[string]string) bool {
	return cyclingHighways[tags["highway"]]
}

func (CyclingDecoder) DecodeRoadType(tags map[string]string) attr.RoadType {
	return roadTypeFromHighway(tags["highway"])
}

func (CyclingDecoder) DecodeMaxspeed(map[string]string, attr.RoadType) byte {
	return 0 // bicycle costing ignores the road's maxspeed and uses its own constant
}

func (CyclingDecoder) IsOneway(tags map[string]string, typ attr.RoadType) bool {
	return tags["oneway"] == "yes" && tags["oneway:bicycle"] != "no"
}

// WalkingDecoder accepts pedestrian-usable ways.
type WalkingDecoder struct{}

func (WalkingDecoder) IsValidHighway(tags map[string]string) bool {
	return walkingHighways[tags["highway"]]
}

func (WalkingDecoder) DecodeRoadType(tags map[string]string) attr.RoadType {
	return roadTypeFromHighway(tags["highway"])
}

func (WalkingDecoder) DecodeMaxspeed(map[string]string, attr.RoadType) byte {
	return 0
}

func (WalkingDecoder) IsOneway(tags map[string]string, typ attr.RoadType) bool {
	return tags["oneway:foot"] == "yes"
}
