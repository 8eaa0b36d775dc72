package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"nps-hikes/internal/geo"
	"nps-hikes/internal/models"
	"nps-hikes/internal/validate"
)

// PointSource resolves a coordinate to an elevation, or reports no data.
// Lookups never error: any failure is a no-data outcome for that point.
type PointSource interface {
	Lookup(ctx context.Context, lat, lon float64) (float64, bool)
}

// Sampler walks a trail geometry and probes the elevation at fixed linear
// intervals.
type Sampler struct {
	source   PointSource
	interval float64 // meters between samples
	log      zerolog.Logger
}

// NewSampler creates a sampler probing every intervalM meters
func NewSampler(source PointSource, intervalM float64, log zerolog.Logger) *Sampler {
	return &Sampler{
		source:   source,
		interval: intervalM,
		log:      log,
	}
}

// SampleResult is the outcome of sampling one trail
type SampleResult struct {
	Points      []models.SamplePoint
	FailedCount int
	TotalCount  int
	Status      models.CollectionStatus
}

// Sample probes the elevation along the trail at distance 0, then at every
// multiple of the interval, then exactly at the trail's end if the last
// regular sample did not land there. Individual lookup failures degrade
// the status; only an untraversable geometry fails the trail outright.
//
// Successful points receive point_index in emission order, so a failed
// lookup never leaves a gap in the index sequence.
func (s *Sampler) Sample(ctx context.Context, line geo.LineString, trailName string) (*SampleResult, error) {
	if err := line.Validate(); err != nil {
		return nil, fmt.Errorf("untraversable geometry for %q: %w", trailName, err)
	}

	length := line.Length()

	// Sample distances: 0, I, 2I, ..., plus the forced endpoint. A
	// zero-length geometry yields the single sample at distance 0.
	distances := []float64{0}
	for d := s.interval; d < length; d += s.interval {
		distances = append(distances, d)
	}
	if length > 0 {
		distances = append(distances, length)
	}

	var points []models.SamplePoint
	failed := 0

	for _, distance := range distances {
		pt := line.Interpolate(distance)

		elevation, ok := s.source.Lookup(ctx, pt.Lat, pt.Lon)
		if !ok {
			failed++
			s.log.Warn().Str("trail", trailName).Float64("distance_m", distance).
				Float64("lat", pt.Lat).Float64("lon", pt.Lon).
				Msg("No elevation data for sample point")
			continue
		}

		sample := models.SamplePoint{
			PointIndex: len(points),
			DistanceM:  distance,
			Latitude:   pt.Lat,
			Longitude:  pt.Lon,
			ElevationM: elevation,
		}
		if err := validate.Point(sample); err != nil {
			failed++
			s.log.Warn().Err(err).Str("trail", trailName).Float64("distance_m", distance).
				Msg("Sample point rejected")
			continue
		}

		points = append(points, sample)
	}

	total := len(distances)
	return &SampleResult{
		Points:      points,
		FailedCount: failed,
		TotalCount:  total,
		Status:      models.StatusFor(failed, total),
	}, nil
}
