package collector

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/models"
	"nps-hikes/internal/overpass"
	"nps-hikes/internal/validate"
)

// trailSource tags rows collected from OpenStreetMap
const trailSource = "osm"

// TrailStore is what the trail collector needs from persistence
type TrailStore interface {
	CompletedKeys(table, keyColumn string) map[string]struct{}
	ListBoundaries() ([]models.ParkBoundary, error)
	InsertTrails(trails []models.Trail) error
}

// TrailsAPI is the upstream source of trail geometries
type TrailsAPI interface {
	TrailsInBBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]overpass.Way, error)
}

// TrailOptions configures one trail collection run
type TrailOptions struct {
	ForceRefresh  bool
	Parks         []string // subset filter; empty means every park with a boundary
	Delay         time.Duration
	ProgressEvery int
}

// TrailCollector queries Overpass for named hiking trails inside each
// park's boundary bounding box and appends them to the store.
type TrailCollector struct {
	store TrailStore
	api   TrailsAPI
	opts  TrailOptions
	log   zerolog.Logger
}

// NewTrailCollector creates the trail collector
func NewTrailCollector(store TrailStore, api TrailsAPI, opts TrailOptions, log zerolog.Logger) *TrailCollector {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 10
	}
	return &TrailCollector{
		store: store,
		api:   api,
		opts:  opts,
		log:   log,
	}
}

// Run collects trails for every candidate park. A park that already has
// trail rows is skipped unless force refresh is set; Overpass failures mark
// the park failed and the run continues; a store write failure stops the
// run.
func (c *TrailCollector) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	boundaries, err := c.store.ListBoundaries()
	if err != nil {
		return stats, fmt.Errorf("loading boundaries: %w", err)
	}
	if len(boundaries) == 0 {
		return stats, fmt.Errorf("no park boundaries collected yet")
	}

	candidates, err := filterBoundaries(boundaries, c.opts.Parks)
	if err != nil {
		return stats, err
	}

	completed := map[string]struct{}{}
	if !c.opts.ForceRefresh {
		completed = c.store.CompletedKeys("trails", "park_code")
	}

	for i, boundary := range candidates {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if _, done := completed[boundary.ParkCode]; done {
			stats.Skipped++
			continue
		}

		n, err := c.collectPark(ctx, boundary)
		if err != nil {
			return stats, err
		}
		if n < 0 {
			stats.Failed++
			continue
		}

		stats.Processed++
		stats.Complete++
		c.log.Info().Str("park_code", boundary.ParkCode).Int("trails", n).Msg("Collected trails")

		if (i+1)%c.opts.ProgressEvery == 0 {
			c.log.Info().Int("processed", i+1).Int("total", len(candidates)).Msg("Trail progress")
		}

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-time.After(c.opts.Delay):
		}
	}

	c.log.Info().
		Int("processed", stats.Processed).Int("failed", stats.Failed).Int("skipped", stats.Skipped).
		Msg("Trail collection complete")
	return stats, nil
}

// collectPark queries and stores trails for one park. Returns the number of
// trails stored, or -1 when the Overpass query failed. Only a store write
// failure returns an error.
func (c *TrailCollector) collectPark(ctx context.Context, boundary models.ParkBoundary) (int, error) {
	ways, err := c.api.TrailsInBBox(ctx, boundary.MinLon, boundary.MinLat, boundary.MaxLon, boundary.MaxLat)
	if err != nil {
		c.log.Error().Err(err).Str("park_code", boundary.ParkCode).Msg("Overpass query failed")
		return -1, nil
	}

	now := time.Now().UTC()
	seen := make(map[int64]struct{}, len(ways))
	trails := make([]models.Trail, 0, len(ways))
	for _, way := range ways {
		if _, dup := seen[way.ID]; dup {
			continue
		}
		seen[way.ID] = struct{}{}

		geomJSON, err := way.Geometry.MarshalJSON()
		if err != nil {
			c.log.Warn().Err(err).Int64("osm_id", way.ID).Msg("Skipping trail with bad geometry")
			continue
		}

		trail := models.Trail{
			OSMID:       way.ID,
			ParkCode:    boundary.ParkCode,
			Source:      trailSource,
			Name:        way.Name,
			Highway:     sql.NullString{String: way.Highway, Valid: way.Highway != ""},
			Geometry:    string(geomJSON),
			LengthM:     way.Geometry.Length(),
			CollectedAt: now,
		}

		if err := validate.Trail(&trail); err != nil {
			c.log.Warn().Err(err).Int64("osm_id", way.ID).Str("name", way.Name).Msg("Trail rejected")
			continue
		}
		trails = append(trails, trail)
	}

	if len(trails) == 0 {
		c.log.Warn().Str("park_code", boundary.ParkCode).Msg("No usable trails found")
		return 0, nil
	}

	if err := c.store.InsertTrails(trails); err != nil {
		return 0, fmt.Errorf("storing trails for %s: %w", boundary.ParkCode, err)
	}
	return len(trails), nil
}

// filterBoundaries applies the subset filter, failing fast on codes with no
// collected boundary.
func filterBoundaries(boundaries []models.ParkBoundary, subset []string) ([]models.ParkBoundary, error) {
	if len(subset) == 0 {
		return boundaries, nil
	}

	byCode := make(map[string]models.ParkBoundary, len(boundaries))
	for _, b := range boundaries {
		byCode[b.ParkCode] = b
	}

	filtered := make([]models.ParkBoundary, 0, len(subset))
	for _, code := range subset {
		b, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("no boundary collected for park code %q", code)
		}
		filtered = append(filtered, b)
	}
	return filtered, nil
}
