package collector

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nps-hikes/internal/geo"
	"nps-hikes/internal/models"
	"nps-hikes/internal/overpass"
)

type fakeTrailStore struct {
	boundaries []models.ParkBoundary
	trails     []models.Trail
	failWrite  bool
}

func (s *fakeTrailStore) CompletedKeys(table, keyColumn string) map[string]struct{} {
	completed := make(map[string]struct{})
	for _, t := range s.trails {
		completed[t.ParkCode] = struct{}{}
	}
	return completed
}

func (s *fakeTrailStore) ListBoundaries() ([]models.ParkBoundary, error) {
	return s.boundaries, nil
}

func (s *fakeTrailStore) InsertTrails(trails []models.Trail) error {
	if s.failWrite {
		return fmt.Errorf("disk full")
	}
	s.trails = append(s.trails, trails...)
	return nil
}

type fakeTrailsAPI struct {
	ways []overpass.Way
	err  error
}

func (a *fakeTrailsAPI) TrailsInBBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]overpass.Way, error) {
	return a.ways, a.err
}

// longLine spans about 1.1km so trail length validation passes
func longLine() geo.LineString {
	return geo.LineString{{Lat: 44.0, Lon: -68.2}, {Lat: 44.01, Lon: -68.2}}
}

func acadBoundary() models.ParkBoundary {
	return models.ParkBoundary{
		ParkCode: "acad",
		MinLon:   -68.5, MinLat: 44.0, MaxLon: -68.0, MaxLat: 44.5,
	}
}

func TestTrailRun(t *testing.T) {
	store := &fakeTrailStore{boundaries: []models.ParkBoundary{acadBoundary()}}
	api := &fakeTrailsAPI{ways: []overpass.Way{
		{ID: 100, Name: "Ocean Path", Highway: "path", Geometry: longLine()},
		{ID: 200, Name: "Beehive Loop", Highway: "footway", Geometry: longLine()},
	}}

	c := NewTrailCollector(store, api, TrailOptions{}, zerolog.Nop())
	stats, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	require.Len(t, store.trails, 2)
	trail := store.trails[0]
	assert.Equal(t, int64(100), trail.OSMID)
	assert.Equal(t, "acad", trail.ParkCode)
	assert.Equal(t, "osm", trail.Source)
	assert.InDelta(t, 1112, trail.LengthM, 10)
	assert.JSONEq(t, `[[-68.2,44.0],[-68.2,44.01]]`, trail.Geometry)
}

func TestTrailRunDeduplicatesWays(t *testing.T) {
	store := &fakeTrailStore{boundaries: []models.ParkBoundary{acadBoundary()}}
	api := &fakeTrailsAPI{ways: []overpass.Way{
		{ID: 100, Name: "Ocean Path", Geometry: longLine()},
		{ID: 100, Name: "Ocean Path", Geometry: longLine()},
	}}

	c := NewTrailCollector(store, api, TrailOptions{}, zerolog.Nop())
	_, err := c.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, store.trails, 1)
}

func TestTrailRunRejectsImplausibleLengths(t *testing.T) {
	store := &fakeTrailStore{boundaries: []models.ParkBoundary{acadBoundary()}}
	// A two-meter stub, probably a mapping artifact
	stub := geo.LineString{{Lat: 44.0, Lon: -68.2}, {Lat: 44.00002, Lon: -68.2}}
	api := &fakeTrailsAPI{ways: []overpass.Way{
		{ID: 100, Name: "Stub", Geometry: stub},
		{ID: 200, Name: "Ocean Path", Geometry: longLine()},
	}}

	c := NewTrailCollector(store, api, TrailOptions{}, zerolog.Nop())
	_, err := c.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, store.trails, 1)
	assert.Equal(t, "Ocean Path", store.trails[0].Name)
}

func TestTrailRunResumes(t *testing.T) {
	store := &fakeTrailStore{
		boundaries: []models.ParkBoundary{acadBoundary()},
		trails:     []models.Trail{{ParkCode: "acad", OSMID: 1}},
	}
	api := &fakeTrailsAPI{ways: []overpass.Way{
		{ID: 100, Name: "Ocean Path", Geometry: longLine()},
	}}

	c := NewTrailCollector(store, api, TrailOptions{}, zerolog.Nop())
	stats, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Skipped)
	assert.Len(t, store.trails, 1)
}

func TestTrailRunUpstreamFailureContinues(t *testing.T) {
	store := &fakeTrailStore{boundaries: []models.ParkBoundary{acadBoundary()}}
	api := &fakeTrailsAPI{err: fmt.Errorf("overpass timeout")}

	c := NewTrailCollector(store, api, TrailOptions{}, zerolog.Nop())
	stats, err := c.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Failed)
	assert.Empty(t, store.trails)
}

func TestTrailRunNoBoundaries(t *testing.T) {
	store := &fakeTrailStore{}
	c := NewTrailCollector(store, &fakeTrailsAPI{}, TrailOptions{}, zerolog.Nop())
	_, err := c.Run(context.Background())
	assert.Error(t, err)
}

func TestTrailRunUnknownParkFilter(t *testing.T) {
	store := &fakeTrailStore{boundaries: []models.ParkBoundary{acadBoundary()}}
	c := NewTrailCollector(store, &fakeTrailsAPI{}, TrailOptions{Parks: []string{"zzzz"}}, zerolog.Nop())
	_, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zzzz")
}

func TestTrailRunStopsOnWriteFailure(t *testing.T) {
	store := &fakeTrailStore{boundaries: []models.ParkBoundary{acadBoundary()}, failWrite: true}
	api := &fakeTrailsAPI{ways: []overpass.Way{
		{ID: 100, Name: "Ocean Path", Geometry: longLine()},
	}}

	c := NewTrailCollector(store, api, TrailOptions{}, zerolog.Nop())
	_, err := c.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
