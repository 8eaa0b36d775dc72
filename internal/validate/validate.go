// Package validate enforces the domain rules that gate what is allowed into
// the store. Validation runs in three tiers: raw upstream payload values,
// individual sample points, and the aggregate elevation profile. Each tier
// returns a structured ValidationError naming the field and rule that
// failed; nothing here is ever repaired or clamped.
package validate

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"nps-hikes/internal/models"
)

const (
	// Plausible range for Earth's land surface: Dead Sea -430m up to
	// Everest 8849m, with buffer. Values outside this indicate an
	// upstream fault, not a real measurement.
	MinElevationM = -500.0
	MaxElevationM = 9000.0

	// Trail length sanity bounds in meters (0.01 to 200 miles)
	MinTrailLengthM = 16.0
	MaxTrailLengthM = 321869.0
)

// ValidationError identifies which field and rule a value violated
type ValidationError struct {
	Field   string
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s (%s): %s", e.Field, e.Rule, e.Message)
}

var check = validator.New()

// tagError converts the first validator.v10 failure into a ValidationError
func tagError(err error) error {
	if err == nil {
		return nil
	}
	var ferrs validator.ValidationErrors
	if errors.As(err, &ferrs) && len(ferrs) > 0 {
		fe := ferrs[0]
		return &ValidationError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fe.Error(),
		}
	}
	return &ValidationError{Field: "struct", Rule: "invalid", Message: err.Error()}
}

// Response validates a single raw elevation value from the point lookup
// service (tier 1). Sentinel and null handling happens at the client
// boundary before this runs; by the time a value gets here it claims to be
// a real measurement.
func Response(elevationM float64) error {
	if elevationM < MinElevationM || elevationM > MaxElevationM {
		return &ValidationError{
			Field: "value",
			Rule:  "elevation_range",
			Message: fmt.Sprintf("elevation %.1fm outside valid range [%.0f, %.0f], likely an upstream fault",
				elevationM, MinElevationM, MaxElevationM),
		}
	}
	return nil
}

// Point validates a fully-formed sample point (tier 2): geographic bounds,
// elevation range, non-negative index and distance.
func Point(p models.SamplePoint) error {
	return tagError(check.Struct(p))
}

// Profile validates the aggregate elevation profile immediately before
// persistence (tier 3). A failure here discards the whole profile; there
// is no partial commit of points without their parent.
func Profile(p *models.ElevationProfile) error {
	if err := tagError(check.Struct(p)); err != nil {
		return err
	}

	if p.FailedPointsCount > p.TotalPointsCount {
		return &ValidationError{
			Field: "failed_points_count",
			Rule:  "count_consistency",
			Message: fmt.Sprintf("failed_points_count (%d) cannot exceed total_points_count (%d)",
				p.FailedPointsCount, p.TotalPointsCount),
		}
	}

	expected := p.TotalPointsCount - p.FailedPointsCount
	if len(p.Points) != expected {
		return &ValidationError{
			Field: "elevation_points",
			Rule:  "count_consistency",
			Message: fmt.Sprintf("elevation points list length (%d) doesn't match expected successful points (%d = %d total - %d failed)",
				len(p.Points), expected, p.TotalPointsCount, p.FailedPointsCount),
		}
	}

	if want := models.StatusFor(p.FailedPointsCount, p.TotalPointsCount); p.CollectionStatus != want {
		return &ValidationError{
			Field: "collection_status",
			Rule:  "status_consistency",
			Message: fmt.Sprintf("collection_status %q inconsistent with %d/%d failed points, want %q",
				p.CollectionStatus, p.FailedPointsCount, p.TotalPointsCount, want),
		}
	}

	var prev float64
	for i, pt := range p.Points {
		if pt.DistanceM < prev {
			return &ValidationError{
				Field: "elevation_points",
				Rule:  "distance_monotonic",
				Message: fmt.Sprintf("distance_m decreases at point %d: %.1f after %.1f",
					i, pt.DistanceM, prev),
			}
		}
		prev = pt.DistanceM
	}

	return nil
}

// Park validates park metadata fetched from the NPS API before it is
// written to the store.
func Park(p *models.Park) error {
	if err := tagError(check.Struct(p)); err != nil {
		return err
	}
	if p.Latitude.Valid && (p.Latitude.Float64 < -90 || p.Latitude.Float64 > 90) {
		return &ValidationError{
			Field:   "latitude",
			Rule:    "coordinate_range",
			Message: fmt.Sprintf("latitude %f outside valid range [-90, 90]", p.Latitude.Float64),
		}
	}
	if p.Longitude.Valid && (p.Longitude.Float64 < -180 || p.Longitude.Float64 > 180) {
		return &ValidationError{
			Field:   "longitude",
			Rule:    "coordinate_range",
			Message: fmt.Sprintf("longitude %f outside valid range [-180, 180]", p.Longitude.Float64),
		}
	}
	return nil
}

// Boundary validates a park boundary record before persistence
func Boundary(b *models.ParkBoundary) error {
	if err := tagError(check.Struct(b)); err != nil {
		return err
	}
	if b.GeometryType != "Polygon" && b.GeometryType != "MultiPolygon" {
		return &ValidationError{
			Field:   "geometry_type",
			Rule:    "geometry_type",
			Message: fmt.Sprintf("geometry type %q not usable as a park boundary", b.GeometryType),
		}
	}
	return nil
}

// Trail validates a collected trail record before persistence
func Trail(t *models.Trail) error {
	if err := tagError(check.Struct(t)); err != nil {
		return err
	}
	if t.LengthM < MinTrailLengthM || t.LengthM > MaxTrailLengthM {
		return &ValidationError{
			Field: "length_m",
			Rule:  "length_range",
			Message: fmt.Sprintf("trail length %.1fm outside valid range [%.0f, %.0f]",
				t.LengthM, MinTrailLengthM, MaxTrailLengthM),
		}
	}
	return nil
}
