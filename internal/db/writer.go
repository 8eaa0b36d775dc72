package db

import (
	"encoding/json"
	"fmt"
	"time"

	"nps-hikes/internal/models"
)

// completedKeyColumns is the allowlist for resumability queries; table and
// column names are interpolated into SQL and must never come from input.
var completedKeyColumns = map[string]string{
	"parks":            "park_code",
	"park_boundaries":  "park_code",
	"trails":           "park_code",
	"trail_elevations": "park_code",
}

// CompletedKeys returns the set of keys already durably recorded in the
// given table, enabling a new run to skip work a prior run finished. On any
// query failure it logs a warning and returns an empty set; resumability is
// an optimization, not a correctness gate.
func (db *DB) CompletedKeys(table, keyColumn string) map[string]struct{} {
	completed := make(map[string]struct{})

	allowed, ok := completedKeyColumns[table]
	if !ok || allowed != keyColumn {
		db.log.Warn().Str("table", table).Str("column", keyColumn).
			Msg("Refusing completed-keys query for unknown table/column")
		return completed
	}

	var keys []string
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s", keyColumn, table)
	if err := db.Select(&keys, query); err != nil {
		db.log.Warn().Err(err).Str("table", table).Msg("Could not check completed records")
		return completed
	}

	for _, k := range keys {
		completed[k] = struct{}{}
	}
	if len(completed) > 0 {
		db.log.Info().Int("count", len(completed)).Str("table", table).Msg("Found existing records")
	}
	return completed
}

// CompletedTrailIDs returns the trail ids that already have an elevation
// profile for the given park. Same warn-and-empty contract as CompletedKeys.
func (db *DB) CompletedTrailIDs(parkCode string) map[int64]struct{} {
	completed := make(map[int64]struct{})

	var ids []int64
	query := "SELECT DISTINCT trail_id FROM trail_elevations WHERE park_code = ?"
	if err := db.Select(&ids, query, parkCode); err != nil {
		db.log.Warn().Err(err).Str("park_code", parkCode).Msg("Could not check completed elevation profiles")
		return completed
	}

	for _, id := range ids {
		completed[id] = struct{}{}
	}
	return completed
}

// UpsertPark inserts or updates a park based on park_code. Re-collected
// metadata overwrites prior values; a missing value never clobbers an
// existing one.
func (db *DB) UpsertPark(p *models.Park) error {
	query := `
		INSERT INTO parks (
			park_code, full_name, name, states, url, description,
			latitude, longitude, visit_date, collected_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(park_code) DO UPDATE SET
			full_name = excluded.full_name,
			name = COALESCE(excluded.name, parks.name),
			states = COALESCE(excluded.states, parks.states),
			url = COALESCE(excluded.url, parks.url),
			description = COALESCE(excluded.description, parks.description),
			latitude = COALESCE(excluded.latitude, parks.latitude),
			longitude = COALESCE(excluded.longitude, parks.longitude),
			visit_date = COALESCE(excluded.visit_date, parks.visit_date),
			updated_at = excluded.updated_at
	`

	_, err := db.Exec(query,
		p.ParkCode, p.FullName, p.Name, p.States, p.URL, p.Description,
		p.Latitude, p.Longitude, p.VisitDate, p.CollectedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting park %s: %w", p.ParkCode, err)
	}
	return nil
}

// UpsertParkBoundary inserts or updates a park boundary based on park_code
func (db *DB) UpsertParkBoundary(b *models.ParkBoundary) error {
	query := `
		INSERT INTO park_boundaries (
			park_code, geometry_type, geometry,
			min_lon, min_lat, max_lon, max_lat, collected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(park_code) DO UPDATE SET
			geometry_type = excluded.geometry_type,
			geometry = excluded.geometry,
			min_lon = excluded.min_lon,
			min_lat = excluded.min_lat,
			max_lon = excluded.max_lon,
			max_lat = excluded.max_lat,
			collected_at = excluded.collected_at
	`

	_, err := db.Exec(query,
		b.ParkCode, b.GeometryType, b.Geometry,
		b.MinLon, b.MinLat, b.MaxLon, b.MaxLat, b.CollectedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting boundary for %s: %w", b.ParkCode, err)
	}
	return nil
}

// InsertTrails appends trail records in one transaction. Append mode
// assumes natural-key uniqueness was already guaranteed by resumability
// filtering; the UNIQUE(park_code, source, osm_id) constraint backstops it.
func (db *DB) InsertTrails(trails []models.Trail) error {
	if len(trails) == 0 {
		return nil
	}

	tx, err := db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO trails (osm_id, park_code, source, name, highway, geometry, length_m, collected_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	for _, t := range trails {
		if _, err := tx.Exec(query,
			t.OSMID, t.ParkCode, t.Source, t.Name, t.Highway, t.Geometry, t.LengthM, t.CollectedAt,
		); err != nil {
			return fmt.Errorf("inserting trail %d for %s: %w", t.OSMID, t.ParkCode, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing trails: %w", err)
	}
	return nil
}

// UpsertElevationProfile inserts or updates the elevation profile for one
// trail. The sample points are stored as a JSON list alongside the
// profile-level tallies.
func (db *DB) UpsertElevationProfile(p *models.ElevationProfile) error {
	points, err := json.Marshal(p.Points)
	if err != nil {
		return fmt.Errorf("encoding elevation points for trail %d: %w", p.TrailID, err)
	}

	query := `
		INSERT INTO trail_elevations (
			trail_id, trail_name, park_code, source, elevation_points,
			collection_status, failed_points_count, total_points_count, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(trail_id) DO UPDATE SET
			elevation_points = excluded.elevation_points,
			collection_status = excluded.collection_status,
			failed_points_count = excluded.failed_points_count,
			total_points_count = excluded.total_points_count,
			created_at = excluded.created_at
	`

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = db.Exec(query,
		p.TrailID, p.TrailName, p.ParkCode, p.Source, string(points),
		string(p.CollectionStatus), p.FailedPointsCount, p.TotalPointsCount, createdAt,
	)
	if err != nil {
		return fmt.Errorf("upserting elevation profile for trail %d: %w", p.TrailID, err)
	}
	return nil
}
