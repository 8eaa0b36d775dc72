package collector

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/geo"
	"nps-hikes/internal/models"
	"nps-hikes/internal/nps"
	"nps-hikes/internal/validate"
)

// defaultDesignations are the NPS designations that count as national parks
var defaultDesignations = []string{
	"National Park",
	"National Park & Preserve",
	"National Parks",
	"National and State Parks",
}

// defaultAdditionalCodes are parks whose designation is empty in the NPS
// API but that belong in the dataset anyway.
var defaultAdditionalCodes = []string{
	"npsa", // National Park of American Samoa
}

// ParkStore is what the park collector needs from persistence
type ParkStore interface {
	CompletedKeys(table, keyColumn string) map[string]struct{}
	UpsertPark(p *models.Park) error
	UpsertParkBoundary(b *models.ParkBoundary) error
}

// ParksAPI is the upstream source of park metadata and boundaries
type ParksAPI interface {
	FetchAllParks(ctx context.Context) ([]nps.ParkRecord, error)
	FetchBoundary(ctx context.Context, parkCode string) (*geo.Geometry, error)
}

// ParkOptions configures one park collection run
type ParkOptions struct {
	ForceRefresh    bool
	Parks           []string // subset filter; empty means all national parks
	Designations    []string
	AdditionalCodes []string
	VisitLogPath    string
	Delay           time.Duration // between boundary requests
	ProgressEvery   int
}

// ParkCollector fetches national park metadata and boundaries from the NPS
// API and upserts them into the store.
type ParkCollector struct {
	store ParkStore
	api   ParksAPI
	opts  ParkOptions
	log   zerolog.Logger
}

// NewParkCollector creates the park collector
func NewParkCollector(store ParkStore, api ParksAPI, opts ParkOptions, log zerolog.Logger) *ParkCollector {
	if len(opts.Designations) == 0 {
		opts.Designations = defaultDesignations
	}
	if len(opts.AdditionalCodes) == 0 {
		opts.AdditionalCodes = defaultAdditionalCodes
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = 10
	}
	return &ParkCollector{
		store: store,
		api:   api,
		opts:  opts,
		log:   log,
	}
}

// Run executes one full park collection pass: bulk fetch, designation
// filtering, visit-date merge, then per-park upsert with boundary fetch.
func (c *ParkCollector) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	records, err := c.api.FetchAllParks(ctx)
	if err != nil {
		return stats, fmt.Errorf("fetching parks: %w", err)
	}

	parks := c.filterAndConvert(records)
	c.log.Info().Int("count", len(parks)).Msg("Filtered to national parks")

	if len(c.opts.Parks) > 0 {
		parks, err = filterParksBySubset(parks, c.opts.Parks)
		if err != nil {
			return stats, err
		}
	}

	if c.opts.VisitLogPath != "" {
		c.mergeVisitDates(parks)
	}

	completedParks := map[string]struct{}{}
	completedBoundaries := map[string]struct{}{}
	if !c.opts.ForceRefresh {
		completedParks = c.store.CompletedKeys("parks", "park_code")
		completedBoundaries = c.store.CompletedKeys("park_boundaries", "park_code")
	}

	for i, park := range parks {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		_, parkDone := completedParks[park.ParkCode]
		_, boundaryDone := completedBoundaries[park.ParkCode]
		if parkDone && boundaryDone {
			stats.Skipped++
			continue
		}

		if err := validate.Park(park); err != nil {
			stats.Failed++
			c.log.Error().Err(err).Str("park_code", park.ParkCode).Msg("Park rejected")
			continue
		}

		if err := c.store.UpsertPark(park); err != nil {
			return stats, fmt.Errorf("storing park %s: %w", park.ParkCode, err)
		}

		hasBoundary, err := c.collectBoundary(ctx, park.ParkCode, boundaryDone)
		if err != nil {
			return stats, err
		}

		stats.Processed++
		if hasBoundary {
			stats.Complete++
		} else {
			stats.Partial++
		}

		if (i+1)%c.opts.ProgressEvery == 0 {
			c.log.Info().Int("processed", i+1).Int("total", len(parks)).Msg("Park progress")
		}

		// Respect the NPS request budget between boundary fetches
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		case <-time.After(c.opts.Delay):
		}
	}

	c.log.Info().
		Int("processed", stats.Processed).Int("complete", stats.Complete).
		Int("partial", stats.Partial).Int("failed", stats.Failed).Int("skipped", stats.Skipped).
		Msg("Park collection complete")
	return stats, nil
}

// collectBoundary fetches, validates and stores one park's boundary.
// Returns whether a boundary was stored (now or in a prior run). Upstream
// and validation failures degrade the park to partial; only a store write
// failure propagates.
func (c *ParkCollector) collectBoundary(ctx context.Context, parkCode string, alreadyDone bool) (bool, error) {
	if alreadyDone {
		return true, nil
	}

	geom, err := c.api.FetchBoundary(ctx, parkCode)
	if err != nil {
		c.log.Error().Err(err).Str("park_code", parkCode).Msg("Failed to fetch boundary")
		return false, nil
	}
	if geom == nil {
		c.log.Warn().Str("park_code", parkCode).Msg("No boundary available")
		return false, nil
	}

	minLon, minLat, maxLon, maxLat, err := geo.BoundingBox(geom)
	if err != nil {
		c.log.Error().Err(err).Str("park_code", parkCode).Msg("Failed to compute bounding box")
		return false, nil
	}

	boundary := &models.ParkBoundary{
		ParkCode:     parkCode,
		GeometryType: geom.Type,
		Geometry:     fmt.Sprintf(`{"type":%q,"coordinates":%s}`, geom.Type, string(geom.Coordinates)),
		MinLon:       minLon,
		MinLat:       minLat,
		MaxLon:       maxLon,
		MaxLat:       maxLat,
		CollectedAt:  time.Now().UTC(),
	}

	if err := validate.Boundary(boundary); err != nil {
		c.log.Error().Err(err).Str("park_code", parkCode).Msg("Boundary rejected")
		return false, nil
	}

	if err := c.store.UpsertParkBoundary(boundary); err != nil {
		return false, fmt.Errorf("storing boundary for %s: %w", parkCode, err)
	}
	return true, nil
}

// filterAndConvert keeps records whose designation matches or whose code is
// explicitly allowlisted, converting them to park models.
func (c *ParkCollector) filterAndConvert(records []nps.ParkRecord) []*models.Park {
	designations := make(map[string]struct{}, len(c.opts.Designations))
	for _, d := range c.opts.Designations {
		designations[d] = struct{}{}
	}
	additional := make(map[string]struct{}, len(c.opts.AdditionalCodes))
	for _, code := range c.opts.AdditionalCodes {
		additional[code] = struct{}{}
	}

	now := time.Now().UTC()
	var parks []*models.Park
	for _, rec := range records {
		code := strings.ToLower(strings.TrimSpace(rec.ParkCode))

		_, matchDesignation := designations[rec.Designation]
		_, matchCode := additional[code]
		if !matchDesignation && !matchCode {
			continue
		}

		park := &models.Park{
			ParkCode:    code,
			FullName:    rec.FullName,
			Name:        nullString(rec.Name),
			States:      nullString(rec.States),
			URL:         nullString(rec.URL),
			Description: nullString(rec.Description),
			Latitude:    nullCoord(rec.Latitude),
			Longitude:   nullCoord(rec.Longitude),
			CollectedAt: now,
			UpdatedAt:   now,
		}
		parks = append(parks, park)
	}
	return parks
}

// filterParksBySubset applies the subset filter, failing fast on codes that
// match no fetched park.
func filterParksBySubset(parks []*models.Park, subset []string) ([]*models.Park, error) {
	byCode := make(map[string]*models.Park, len(parks))
	for _, p := range parks {
		byCode[p.ParkCode] = p
	}

	filtered := make([]*models.Park, 0, len(subset))
	for _, code := range subset {
		p, ok := byCode[code]
		if !ok {
			return nil, fmt.Errorf("unknown park code in filter: %q", code)
		}
		filtered = append(filtered, p)
	}
	return filtered, nil
}

// mergeVisitDates matches visit log entries to parks by name and fills in
// visit dates. Parks without a matching entry stay unvisited.
func (c *ParkCollector) mergeVisitDates(parks []*models.Park) {
	visits, err := LoadVisitLog(c.opts.VisitLogPath)
	if err != nil {
		c.log.Warn().Err(err).Str("path", c.opts.VisitLogPath).Msg("Could not load visit log")
		return
	}

	matched := 0
	for _, visit := range visits {
		park := matchParkByName(parks, visit.ParkName)
		if park == nil {
			c.log.Warn().Str("park_name", visit.ParkName).Msg("Could not match visit record to any park")
			continue
		}
		park.VisitDate = nullString(visit.VisitDate)
		matched++
	}
	c.log.Info().Int("visited", matched).Int("unvisited", len(parks)-matched).Msg("Visit merge complete")
}

// matchParkByName finds the park whose full name matches the visit log
// name, first as "<name> National Park", then by substring.
func matchParkByName(parks []*models.Park, name string) *models.Park {
	lower := strings.ToLower(strings.TrimSpace(name))

	for _, p := range parks {
		if strings.ToLower(p.FullName) == lower+" national park" {
			return p
		}
	}
	for _, p := range parks {
		if strings.Contains(strings.ToLower(p.FullName), lower) {
			return p
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

func nullCoord(s string) sql.NullFloat64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullFloat64{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}
