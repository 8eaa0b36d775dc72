package geo

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBoundingBoxPolygon(t *testing.T) {
	geom := &Geometry{
		Type:        "Polygon",
		Coordinates: json.RawMessage(`[[[-68.5,44.0],[-68.0,44.0],[-68.0,44.5],[-68.5,44.5],[-68.5,44.0]]]`),
	}

	minLon, minLat, maxLon, maxLat, err := BoundingBox(geom)
	require.NoError(t, err)
	assert.Equal(t, -68.5, minLon)
	assert.Equal(t, 44.0, minLat)
	assert.Equal(t, -68.0, maxLon)
	assert.Equal(t, 44.5, maxLat)
}

func TestBoundingBoxMultiPolygon(t *testing.T) {
	geom := &Geometry{
		Type:        "MultiPolygon",
		Coordinates: json.RawMessage(`[[[[-68.5,44.0],[-68.3,44.1]]],[[[-68.2,44.4],[-68.0,44.5]]]]`),
	}

	minLon, minLat, maxLon, maxLat, err := BoundingBox(geom)
	require.NoError(t, err)
	assert.Equal(t, -68.5, minLon)
	assert.Equal(t, 44.0, minLat)
	assert.Equal(t, -68.0, maxLon)
	assert.Equal(t, 44.5, maxLat)
}

func TestBoundingBoxRejectsOtherTypes(t *testing.T) {
	geom := &Geometry{Type: "Point", Coordinates: json.RawMessage(`[-68.2,44.3]`)}
	_, _, _, _, err := BoundingBox(geom)
	assert.Error(t, err)

	_, _, _, _, err = BoundingBox(nil)
	assert.Error(t, err)
}
