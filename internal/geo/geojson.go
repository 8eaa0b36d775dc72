package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Geometry represents a GeoJSON geometry with coordinates left raw so each
// geometry type can be decoded into the right nesting depth.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// BoundingBox calculates the bounding box of a polygon or multipolygon
// geometry as (minLon, minLat, maxLon, maxLat).
func BoundingBox(geom *Geometry) (minLon, minLat, maxLon, maxLat float64, err error) {
	if geom == nil {
		return 0, 0, 0, 0, fmt.Errorf("nil geometry")
	}

	minLon, minLat = math.MaxFloat64, math.MaxFloat64
	maxLon, maxLat = -math.MaxFloat64, -math.MaxFloat64
	count := 0

	extend := func(pt []float64) {
		if len(pt) < 2 {
			return
		}
		minLon = math.Min(minLon, pt[0])
		maxLon = math.Max(maxLon, pt[0])
		minLat = math.Min(minLat, pt[1])
		maxLat = math.Max(maxLat, pt[1])
		count++
	}

	switch geom.Type {
	case "Polygon":
		// Polygon has [[[lon, lat], ...]] structure
		var coords [][][]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("parsing polygon coordinates: %w", err)
		}
		for _, ring := range coords {
			for _, pt := range ring {
				extend(pt)
			}
		}

	case "MultiPolygon":
		// MultiPolygon has [[[[lon, lat], ...]]] structure
		var coords [][][][]float64
		if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
			return 0, 0, 0, 0, fmt.Errorf("parsing multipolygon coordinates: %w", err)
		}
		for _, poly := range coords {
			for _, ring := range poly {
				for _, pt := range ring {
					extend(pt)
				}
			}
		}

	default:
		return 0, 0, 0, 0, fmt.Errorf("unsupported geometry type: %s", geom.Type)
	}

	if count == 0 {
		return 0, 0, 0, 0, fmt.Errorf("no valid coordinates found")
	}

	return minLon, minLat, maxLon, maxLat, nil
}
