package validate

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nps-hikes/internal/models"
)

func samplePoint(index int, distance, elevation float64) models.SamplePoint {
	return models.SamplePoint{
		PointIndex: index,
		DistanceM:  distance,
		Latitude:   44.3,
		Longitude:  -68.2,
		ElevationM: elevation,
	}
}

func validProfile() *models.ElevationProfile {
	return &models.ElevationProfile{
		TrailID:          1,
		TrailName:        "Ocean Path",
		ParkCode:         "acad",
		Source:           "osm",
		Points:           []models.SamplePoint{samplePoint(0, 0, 12), samplePoint(1, 50, 15)},
		CollectionStatus: models.StatusComplete,
		TotalPointsCount: 2,
	}
}

func TestResponseRange(t *testing.T) {
	assert.NoError(t, Response(0))
	assert.NoError(t, Response(-430))
	assert.NoError(t, Response(8849))
	assert.Error(t, Response(-501))
	assert.Error(t, Response(9001))
}

func TestPoint(t *testing.T) {
	assert.NoError(t, Point(samplePoint(0, 0, 500)))

	err := Point(samplePoint(0, 0, 12000))
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "ElevationM", verr.Field)

	assert.Error(t, Point(models.SamplePoint{PointIndex: 0, Latitude: 91, Longitude: 0, ElevationM: 10}))
	assert.Error(t, Point(models.SamplePoint{PointIndex: -1, Latitude: 44, Longitude: -68, ElevationM: 10}))
}

func TestProfileValid(t *testing.T) {
	assert.NoError(t, Profile(validProfile()))
}

func TestProfilePartial(t *testing.T) {
	p := validProfile()
	p.Points = []models.SamplePoint{samplePoint(0, 0, 12), samplePoint(1, 50, 15), samplePoint(2, 100, 18)}
	p.TotalPointsCount = 4
	p.FailedPointsCount = 1
	p.CollectionStatus = models.StatusPartial
	assert.NoError(t, Profile(p))
}

func TestProfileStatusConsistency(t *testing.T) {
	// A profile with failures cannot claim COMPLETE
	p := validProfile()
	p.TotalPointsCount = 4
	p.FailedPointsCount = 1
	p.Points = []models.SamplePoint{samplePoint(0, 0, 12), samplePoint(1, 50, 15), samplePoint(2, 100, 18)}
	p.CollectionStatus = models.StatusComplete

	err := Profile(p)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status_consistency", verr.Rule)

	// Half the points failed means FAILED, not PARTIAL
	p.TotalPointsCount = 4
	p.FailedPointsCount = 2
	p.Points = p.Points[:2]
	p.CollectionStatus = models.StatusPartial
	err = Profile(p)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status_consistency", verr.Rule)

	p.CollectionStatus = models.StatusFailed
	assert.NoError(t, Profile(p))
}

func TestProfileCountConsistency(t *testing.T) {
	p := validProfile()
	p.FailedPointsCount = 3
	p.TotalPointsCount = 2
	p.CollectionStatus = models.StatusFailed

	err := Profile(p)
	require.Error(t, err)

	p = validProfile()
	p.Points = p.Points[:1] // 1 point but counts say 2 successes
	err = Profile(p)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "count_consistency", verr.Rule)
}

func TestProfileRequiresAtLeastOneSample(t *testing.T) {
	p := validProfile()
	p.Points = nil
	p.TotalPointsCount = 0
	p.FailedPointsCount = 0

	err := Profile(p)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "TotalPointsCount", verr.Field)
}

func TestProfileDistanceMonotonic(t *testing.T) {
	p := validProfile()
	p.Points = []models.SamplePoint{samplePoint(0, 50, 12), samplePoint(1, 0, 15)}

	err := Profile(p)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "distance_monotonic", verr.Rule)
}

func TestProfileParkCode(t *testing.T) {
	p := validProfile()
	p.ParkCode = "ACAD"
	assert.Error(t, Profile(p))

	p.ParkCode = "aca"
	assert.Error(t, Profile(p))

	p.ParkCode = "acad"
	assert.NoError(t, Profile(p))
}

func TestPark(t *testing.T) {
	park := &models.Park{
		ParkCode:    "yell",
		FullName:    "Yellowstone National Park",
		Latitude:    sql.NullFloat64{Float64: 44.6, Valid: true},
		Longitude:   sql.NullFloat64{Float64: -110.5, Valid: true},
		CollectedAt: time.Now(),
		UpdatedAt:   time.Now(),
	}
	assert.NoError(t, Park(park))

	park.Latitude = sql.NullFloat64{Float64: 95, Valid: true}
	err := Park(park)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "coordinate_range", verr.Rule)

	// Null coordinates are fine, parks without a point location exist
	park.Latitude = sql.NullFloat64{}
	assert.NoError(t, Park(park))

	park.ParkCode = "YELL"
	assert.Error(t, Park(park))
}

func TestBoundary(t *testing.T) {
	b := &models.ParkBoundary{
		ParkCode:     "acad",
		GeometryType: "MultiPolygon",
		Geometry:     `{"type":"MultiPolygon","coordinates":[]}`,
		CollectedAt:  time.Now(),
	}
	assert.NoError(t, Boundary(b))

	b.GeometryType = "Point"
	err := Boundary(b)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "geometry_type", verr.Rule)
}

func TestTrail(t *testing.T) {
	trail := &models.Trail{
		OSMID:       12345,
		ParkCode:    "acad",
		Source:      "osm",
		Name:        "Ocean Path",
		Geometry:    `[[-68.2,44.3],[-68.21,44.31]]`,
		LengthM:     3200,
		CollectedAt: time.Now(),
	}
	assert.NoError(t, Trail(trail))

	trail.LengthM = 5 // below the shortest plausible trail
	assert.Error(t, Trail(trail))

	trail.LengthM = 400000 // longer than any real trail segment
	assert.Error(t, Trail(trail))

	trail.LengthM = 3200
	trail.Name = ""
	assert.Error(t, Trail(trail))
}
