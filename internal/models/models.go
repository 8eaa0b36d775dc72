package models

import (
	"database/sql"
	"time"
)

// CollectionStatus classifies how an elevation collection pass went for a
// single trail.
type CollectionStatus string

const (
	StatusComplete CollectionStatus = "COMPLETE"
	StatusPartial  CollectionStatus = "PARTIAL"
	StatusFailed   CollectionStatus = "FAILED"
)

// StatusFor derives the collection status from point tallies. A run with no
// failures is COMPLETE; half or more failures is FAILED; anything in between
// is PARTIAL.
func StatusFor(failed, total int) CollectionStatus {
	if failed == 0 {
		return StatusComplete
	}
	if total > 0 && float64(failed)/float64(total) >= 0.5 {
		return StatusFailed
	}
	return StatusPartial
}

// Park represents one national park fetched from the NPS API
type Park struct {
	ParkCode    string          `db:"park_code" json:"park_code" validate:"required,len=4,lowercase"`
	FullName    string          `db:"full_name" json:"full_name" validate:"required"`
	Name        sql.NullString  `db:"name" json:"name"`
	States      sql.NullString  `db:"states" json:"states"`
	URL         sql.NullString  `db:"url" json:"url"`
	Description sql.NullString  `db:"description" json:"description"`
	Latitude    sql.NullFloat64 `db:"latitude" json:"latitude"`
	Longitude   sql.NullFloat64 `db:"longitude" json:"longitude"`
	VisitDate   sql.NullString  `db:"visit_date" json:"visit_date"`
	CollectedAt time.Time       `db:"collected_at" json:"collected_at"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updated_at"`
}

// ParkBoundary holds a park's boundary geometry as GeoJSON plus its
// bounding box in WGS84 degrees
type ParkBoundary struct {
	ParkCode     string    `db:"park_code" json:"park_code" validate:"required,len=4,lowercase"`
	GeometryType string    `db:"geometry_type" json:"geometry_type" validate:"required"`
	Geometry     string    `db:"geometry" json:"geometry" validate:"required"` // GeoJSON geometry
	MinLon       float64   `db:"min_lon" json:"min_lon"`
	MinLat       float64   `db:"min_lat" json:"min_lat"`
	MaxLon       float64   `db:"max_lon" json:"max_lon"`
	MaxLat       float64   `db:"max_lat" json:"max_lat"`
	CollectedAt  time.Time `db:"collected_at" json:"collected_at"`
}

// Trail represents one named hiking trail collected for a park. The natural
// key is (park_code, source, osm_id).
type Trail struct {
	ID          int64          `db:"id" json:"id"`
	OSMID       int64          `db:"osm_id" json:"osm_id" validate:"required,gt=0"`
	ParkCode    string         `db:"park_code" json:"park_code" validate:"required,len=4,lowercase"`
	Source      string         `db:"source" json:"source" validate:"required"`
	Name        string         `db:"name" json:"name" validate:"required"`
	Highway     sql.NullString `db:"highway" json:"highway"`
	Geometry    string         `db:"geometry" json:"geometry" validate:"required"` // JSON [[lon,lat],...]
	LengthM     float64        `db:"length_m" json:"length_m" validate:"gt=0"`
	CollectedAt time.Time      `db:"collected_at" json:"collected_at"`
}

// SamplePoint is one successful elevation measurement along a trail.
// PointIndex is the 0-based emission order over successes only; failed
// lookups never fragment the sequence.
type SamplePoint struct {
	PointIndex int     `json:"point_index" validate:"gte=0"`
	DistanceM  float64 `json:"distance_m" validate:"gte=0"`
	Latitude   float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude  float64 `json:"longitude" validate:"gte=-180,lte=180"`
	ElevationM float64 `json:"elevation_m" validate:"gte=-500,lte=9000"`
}

// ElevationProfile aggregates the sampled points for one trail together
// with the tallies that describe how the collection went.
//
// Invariants enforced before persistence:
//   - failed_points_count <= total_points_count
//   - len(Points) == total_points_count - failed_points_count
//   - COMPLETE iff no failures, FAILED iff failure rate >= 0.5
type ElevationProfile struct {
	TrailID           int64            `db:"trail_id" json:"trail_id" validate:"required,gt=0"`
	TrailName         string           `db:"trail_name" json:"trail_name" validate:"required"`
	ParkCode          string           `db:"park_code" json:"park_code" validate:"required,len=4,lowercase"`
	Source            string           `db:"source" json:"source" validate:"required"`
	Points            []SamplePoint    `db:"-" json:"elevation_points" validate:"dive"`
	CollectionStatus  CollectionStatus `db:"collection_status" json:"collection_status" validate:"required,oneof=COMPLETE PARTIAL FAILED"`
	FailedPointsCount int              `db:"failed_points_count" json:"failed_points_count" validate:"gte=0"`
	TotalPointsCount  int              `db:"total_points_count" json:"total_points_count" validate:"gte=1"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}
