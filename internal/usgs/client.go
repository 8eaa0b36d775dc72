// Package usgs holds the point lookup client for the USGS Elevation Point
// Query Service (EPQS) and the per-run cache in front of it.
package usgs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/validate"
)

const (
	defaultBaseURL = "https://epqs.nationalmap.gov/v1/json"

	// EPQS returns this value to mean "no data for this location". It is
	// translated to a no-data outcome at this boundary, never surfaced as
	// a measurement.
	noDataSentinel = -1000000.0
)

// Client queries the USGS EPQS for the elevation at a coordinate.
//
// Lookup never returns an error: transport failures, malformed payloads,
// the no-data sentinel and out-of-range values all normalize to ok=false
// so a single bad point degrades a profile instead of aborting it.
type Client struct {
	httpClient *http.Client
	baseURL    string
	delay      time.Duration
	log        zerolog.Logger
}

// NewClient creates an EPQS client. delay is the fixed pause applied before
// every network call to respect the service's request budget.
func NewClient(baseURL string, timeout, delay time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		delay:      delay,
		log:        log,
	}
}

// Lookup returns the elevation in meters at (lat, lon), or ok=false when
// the service has no data for the location or the request failed.
func (c *Client) Lookup(ctx context.Context, lat, lon float64) (float64, bool) {
	// Fixed inter-call delay; cache hits never reach this point
	if c.delay > 0 {
		select {
		case <-ctx.Done():
			return 0, false
		case <-time.After(c.delay):
		}
	}

	reqURL := fmt.Sprintf("%s?x=%f&y=%f&units=Meters&includeDate=false", c.baseURL, lon, lat)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		c.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Failed to create elevation request")
		return 0, false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Elevation request failed")
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().Int("status", resp.StatusCode).Float64("lat", lat).Float64("lon", lon).
			Msg("Elevation request returned non-200")
		return 0, false
	}

	var payload struct {
		Value any `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Failed to decode elevation response")
		return 0, false
	}

	elevation, ok := normalizeValue(payload.Value)
	if !ok {
		return 0, false
	}

	if err := validate.Response(elevation); err != nil {
		c.log.Warn().Err(err).Float64("lat", lat).Float64("lon", lon).Msg("Elevation value rejected")
		return 0, false
	}

	return elevation, true
}

// normalizeValue coerces the EPQS value field to a float64. The field may
// be a JSON number, a numeric string, or null; null and the no-data
// sentinel both mean "no data here".
func normalizeValue(raw any) (float64, bool) {
	var v float64
	switch val := raw.(type) {
	case nil:
		return 0, false
	case float64:
		v = val
	case string:
		parsed, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, false
		}
		v = parsed
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		v = parsed
	default:
		return 0, false
	}

	if v == noDataSentinel {
		return 0, false
	}
	return v, true
}
