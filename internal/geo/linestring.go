package geo

import (
	"encoding/json"
	"fmt"
	"math"
)

// Point is a geographic coordinate in WGS84 degrees
type Point struct {
	Lat float64
	Lon float64
}

// LineString is an ordered polyline of geographic coordinates, the geometry
// of one trail.
type LineString []Point

// ParseLineString decodes a polyline from its stored JSON form, an array of
// [lon, lat] pairs (GeoJSON coordinate order).
func ParseLineString(data []byte) (LineString, error) {
	var coords [][]float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return nil, fmt.Errorf("parsing linestring coordinates: %w", err)
	}

	line := make(LineString, 0, len(coords))
	for i, pt := range coords {
		if len(pt) < 2 {
			return nil, fmt.Errorf("coordinate %d has %d values, want 2", i, len(pt))
		}
		line = append(line, Point{Lat: pt[1], Lon: pt[0]})
	}
	return line, nil
}

// MarshalJSON encodes the polyline as an array of [lon, lat] pairs
func (ls LineString) MarshalJSON() ([]byte, error) {
	coords := make([][]float64, len(ls))
	for i, pt := range ls {
		coords[i] = []float64{pt.Lon, pt.Lat}
	}
	return json.Marshal(coords)
}

// Validate reports whether the polyline can be traversed. A traversable
// geometry has at least one finite coordinate.
func (ls LineString) Validate() error {
	if len(ls) == 0 {
		return fmt.Errorf("empty geometry")
	}
	for i, pt := range ls {
		if math.IsNaN(pt.Lat) || math.IsNaN(pt.Lon) ||
			math.IsInf(pt.Lat, 0) || math.IsInf(pt.Lon, 0) {
			return fmt.Errorf("non-finite coordinate at vertex %d", i)
		}
		if pt.Lat < -90 || pt.Lat > 90 || pt.Lon < -180 || pt.Lon > 180 {
			return fmt.Errorf("coordinate out of range at vertex %d: (%f, %f)", i, pt.Lat, pt.Lon)
		}
	}
	return nil
}

// Length returns the cumulative great-circle arc length in meters
func (ls LineString) Length() float64 {
	var total float64
	for i := 1; i < len(ls); i++ {
		total += Haversine(ls[i-1].Lat, ls[i-1].Lon, ls[i].Lat, ls[i].Lon)
	}
	return total
}

// Interpolate returns the point at the given distance in meters along the
// polyline. Distances at or beyond the ends clamp to the first or last
// vertex.
func (ls LineString) Interpolate(distance float64) Point {
	if len(ls) == 0 {
		return Point{}
	}
	if distance <= 0 || len(ls) == 1 {
		return ls[0]
	}

	var walked float64
	for i := 1; i < len(ls); i++ {
		seg := Haversine(ls[i-1].Lat, ls[i-1].Lon, ls[i].Lat, ls[i].Lon)
		if walked+seg >= distance {
			if seg == 0 {
				return ls[i]
			}
			frac := (distance - walked) / seg
			return Point{
				Lat: ls[i-1].Lat + frac*(ls[i].Lat-ls[i-1].Lat),
				Lon: ls[i-1].Lon + frac*(ls[i].Lon-ls[i-1].Lon),
			}
		}
		walked += seg
	}

	return ls[len(ls)-1]
}

// BBox returns the bounding box of the polyline as (minLon, minLat, maxLon, maxLat)
func (ls LineString) BBox() (minLon, minLat, maxLon, maxLat float64) {
	if len(ls) == 0 {
		return 0, 0, 0, 0
	}
	minLon, maxLon = ls[0].Lon, ls[0].Lon
	minLat, maxLat = ls[0].Lat, ls[0].Lat
	for _, pt := range ls[1:] {
		minLon = math.Min(minLon, pt.Lon)
		maxLon = math.Max(maxLon, pt.Lon)
		minLat = math.Min(minLat, pt.Lat)
		maxLat = math.Max(maxLat, pt.Lat)
	}
	return minLon, minLat, maxLon, maxLat
}
