package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nps-hikes/internal/geo"
	"nps-hikes/internal/models"
	"nps-hikes/internal/usgs"
	"nps-hikes/internal/validate"
)

// ElevationStore is what the elevation collector needs from persistence
type ElevationStore interface {
	ParkCodes() ([]string, error)
	TrailsForPark(parkCode string) ([]models.Trail, error)
	CompletedTrailIDs(parkCode string) map[int64]struct{}
	UpsertElevationProfile(p *models.ElevationProfile) error
}

// ElevationOptions configures one elevation collection run
type ElevationOptions struct {
	SampleIntervalM float64
	ForceRefresh    bool     // re-collect trails that already have profiles
	Parks           []string // subset filter; empty means every collected park
	ProgressEvery   int
}

// ElevationCollector samples elevation profiles for every collected trail,
// one park at a time. Each trail is fully processed (sample, validate,
// persist) before the next begins; one trail's failure never halts the run.
type ElevationCollector struct {
	store  ElevationStore
	source PointSource
	opts   ElevationOptions
	log    zerolog.Logger
}

// NewElevationCollector creates the elevation collector. source is the raw
// point lookup client; each run wraps it in a fresh cache.
func NewElevationCollector(store ElevationStore, source PointSource, opts ElevationOptions, log zerolog.Logger) *ElevationCollector {
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 10
	}
	return &ElevationCollector{
		store:  store,
		source: source,
		opts:   opts,
		log:    log,
	}
}

// Run executes one full elevation collection pass
func (c *ElevationCollector) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	parks, err := c.resolveParks()
	if err != nil {
		return stats, err
	}

	// The cache is scoped to the run: coordinates shared across trails
	// are resolved over the network once.
	cache := usgs.NewCache(c.source)
	sampler := NewSampler(cache, c.opts.SampleIntervalM, c.log)

	for i, parkCode := range parks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		c.log.Info().Str("park_code", parkCode).Int("park", i+1).Int("parks", len(parks)).
			Msg("Collecting elevation data")

		parkStats, err := c.collectPark(ctx, sampler, parkCode)
		stats.Add(parkStats)
		if err != nil {
			return stats, err
		}
	}

	c.log.Info().
		Int("processed", stats.Processed).Int("complete", stats.Complete).
		Int("partial", stats.Partial).Int("failed", stats.Failed).Int("skipped", stats.Skipped).
		Msg("Elevation collection complete")
	return stats, nil
}

// resolveParks determines the candidate parks, failing fast if the subset
// filter names a park that was never collected.
func (c *ElevationCollector) resolveParks() ([]string, error) {
	known, err := c.store.ParkCodes()
	if err != nil {
		return nil, fmt.Errorf("listing parks: %w", err)
	}

	if len(c.opts.Parks) == 0 {
		return known, nil
	}

	knownSet := make(map[string]struct{}, len(known))
	for _, code := range known {
		knownSet[code] = struct{}{}
	}
	for _, code := range c.opts.Parks {
		if _, ok := knownSet[code]; !ok {
			return nil, fmt.Errorf("unknown park code in filter: %q", code)
		}
	}
	return c.opts.Parks, nil
}

func (c *ElevationCollector) collectPark(ctx context.Context, sampler *Sampler, parkCode string) (Stats, error) {
	var stats Stats

	trails, err := c.store.TrailsForPark(parkCode)
	if err != nil {
		return stats, fmt.Errorf("loading trails for %s: %w", parkCode, err)
	}
	if len(trails) == 0 {
		c.log.Warn().Str("park_code", parkCode).Msg("No trails collected for park")
		return stats, nil
	}

	// Completed-set loaded once per park; force-refresh clears resumability
	// for this run only, prior data stays until the upsert overwrites it.
	completed := map[int64]struct{}{}
	if !c.opts.ForceRefresh {
		completed = c.store.CompletedTrailIDs(parkCode)
	}

	for i, trail := range trails {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if _, done := completed[trail.ID]; done {
			stats.Skipped++
			c.log.Debug().Str("trail", trail.Name).Msg("Skipping trail, elevation data already exists")
			continue
		}

		if err := c.collectTrail(ctx, sampler, &trail, &stats); err != nil {
			return stats, err
		}

		if (i+1)%c.opts.ProgressEvery == 0 {
			c.log.Info().Str("park_code", parkCode).Int("processed", i+1).Int("total", len(trails)).
				Msg("Elevation progress")
		}
	}

	return stats, nil
}

// collectTrail runs the full sample-validate-persist pipeline for one
// trail. The only error it returns is a persistence failure, which stops
// the run; everything else is logged and tallied.
func (c *ElevationCollector) collectTrail(ctx context.Context, sampler *Sampler, trail *models.Trail, stats *Stats) error {
	line, err := geo.ParseLineString([]byte(trail.Geometry))
	if err != nil {
		stats.Failed++
		c.log.Error().Err(err).Str("trail", trail.Name).Str("park_code", trail.ParkCode).
			Msg("Invalid trail geometry")
		return nil
	}

	result, err := sampler.Sample(ctx, line, trail.Name)
	if err != nil {
		stats.Failed++
		c.log.Error().Err(err).Str("trail", trail.Name).Str("park_code", trail.ParkCode).
			Msg("Failed to sample trail")
		return nil
	}

	if result.Status == models.StatusFailed {
		stats.Failed++
		c.log.Error().Str("trail", trail.Name).Str("park_code", trail.ParkCode).
			Int("failed", result.FailedCount).Int("total", result.TotalCount).
			Msg("High failure rate, discarding elevation profile")
		return nil
	}

	profile := &models.ElevationProfile{
		TrailID:           trail.ID,
		TrailName:         trail.Name,
		ParkCode:          trail.ParkCode,
		Source:            trail.Source,
		Points:            result.Points,
		CollectionStatus:  result.Status,
		FailedPointsCount: result.FailedCount,
		TotalPointsCount:  result.TotalCount,
	}

	if err := validate.Profile(profile); err != nil {
		stats.Failed++
		c.log.Error().Err(err).Str("trail", trail.Name).Str("park_code", trail.ParkCode).
			Msg("Elevation profile rejected")
		return nil
	}

	// A write failure means the store is unusable; losing it silently
	// would break the next run's resumability.
	if err := c.store.UpsertElevationProfile(profile); err != nil {
		return fmt.Errorf("storing elevation profile for %q: %w", trail.Name, err)
	}

	stats.Processed++
	switch result.Status {
	case models.StatusComplete:
		stats.Complete++
	case models.StatusPartial:
		stats.Partial++
	}

	c.log.Info().Str("trail", trail.Name).Str("status", string(result.Status)).
		Int("points", len(result.Points)).Msg("Stored elevation profile")
	return nil
}
