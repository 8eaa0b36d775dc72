package db

import (
	"encoding/json"
	"fmt"

	"nps-hikes/internal/models"
)

func unmarshalPoints(data string, profile *models.ElevationProfile) error {
	if err := json.Unmarshal([]byte(data), &profile.Points); err != nil {
		return fmt.Errorf("decoding elevation points for trail %d: %w", profile.TrailID, err)
	}
	return nil
}

// ParkCodes returns every park code present in the parks table
func (db *DB) ParkCodes() ([]string, error) {
	var codes []string
	err := db.Select(&codes, "SELECT park_code FROM parks ORDER BY park_code")
	if err != nil {
		return nil, fmt.Errorf("listing park codes: %w", err)
	}
	return codes, nil
}

// ListParks returns all collected parks
func (db *DB) ListParks() ([]models.Park, error) {
	var parks []models.Park
	err := db.Select(&parks, `
		SELECT park_code, full_name, name, states, url, description,
		       latitude, longitude, visit_date, collected_at, updated_at
		FROM parks ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("listing parks: %w", err)
	}
	return parks, nil
}

// GetPark returns a single park by code
func (db *DB) GetPark(parkCode string) (*models.Park, error) {
	var p models.Park
	err := db.Get(&p, `
		SELECT park_code, full_name, name, states, url, description,
		       latitude, longitude, visit_date, collected_at, updated_at
		FROM parks WHERE park_code = ?
	`, parkCode)
	if err != nil {
		return nil, fmt.Errorf("getting park %s: %w", parkCode, err)
	}
	return &p, nil
}

// GetParkBoundary returns the boundary for a park, or nil if none was collected
func (db *DB) GetParkBoundary(parkCode string) (*models.ParkBoundary, error) {
	var b models.ParkBoundary
	err := db.Get(&b, `
		SELECT park_code, geometry_type, geometry,
		       min_lon, min_lat, max_lon, max_lat, collected_at
		FROM park_boundaries WHERE park_code = ?
	`, parkCode)
	if err != nil {
		return nil, fmt.Errorf("getting boundary for %s: %w", parkCode, err)
	}
	return &b, nil
}

// ListBoundaries returns every collected park boundary
func (db *DB) ListBoundaries() ([]models.ParkBoundary, error) {
	var boundaries []models.ParkBoundary
	err := db.Select(&boundaries, `
		SELECT park_code, geometry_type, geometry,
		       min_lon, min_lat, max_lon, max_lat, collected_at
		FROM park_boundaries ORDER BY park_code
	`)
	if err != nil {
		return nil, fmt.Errorf("listing boundaries: %w", err)
	}
	return boundaries, nil
}

// TrailsForPark returns every collected trail for a park
func (db *DB) TrailsForPark(parkCode string) ([]models.Trail, error) {
	var trails []models.Trail
	err := db.Select(&trails, `
		SELECT id, osm_id, park_code, source, name, highway, geometry, length_m, collected_at
		FROM trails WHERE park_code = ? ORDER BY name
	`, parkCode)
	if err != nil {
		return nil, fmt.Errorf("listing trails for %s: %w", parkCode, err)
	}
	return trails, nil
}

// elevationRow is the storage shape of trail_elevations
type elevationRow struct {
	TrailID           int64  `db:"trail_id"`
	TrailName         string `db:"trail_name"`
	ParkCode          string `db:"park_code"`
	Source            string `db:"source"`
	ElevationPoints   string `db:"elevation_points"`
	CollectionStatus  string `db:"collection_status"`
	FailedPointsCount int    `db:"failed_points_count"`
	TotalPointsCount  int    `db:"total_points_count"`
}

// GetElevationProfile returns the stored elevation profile for one trail
func (db *DB) GetElevationProfile(trailID int64) (*models.ElevationProfile, error) {
	var row elevationRow
	err := db.Get(&row, `
		SELECT trail_id, trail_name, park_code, source, elevation_points,
		       collection_status, failed_points_count, total_points_count
		FROM trail_elevations WHERE trail_id = ?
	`, trailID)
	if err != nil {
		return nil, fmt.Errorf("getting elevation profile for trail %d: %w", trailID, err)
	}

	profile := models.ElevationProfile{
		TrailID:           row.TrailID,
		TrailName:         row.TrailName,
		ParkCode:          row.ParkCode,
		Source:            row.Source,
		CollectionStatus:  models.CollectionStatus(row.CollectionStatus),
		FailedPointsCount: row.FailedPointsCount,
		TotalPointsCount:  row.TotalPointsCount,
	}
	if err := unmarshalPoints(row.ElevationPoints, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// TableCounts returns row counts per application table, for the tools CLI
func (db *DB) TableCounts() (map[string]int, error) {
	counts := make(map[string]int)
	for _, table := range []string{"parks", "park_boundaries", "trails", "trail_elevations"} {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			return nil, fmt.Errorf("counting %s: %w", table, err)
		}
		counts[table] = n
	}
	return counts, nil
}
