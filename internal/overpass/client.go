// Package overpass queries the OpenStreetMap Overpass API for hiking
// trails inside a bounding box.
package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/geo"
)

const defaultBaseURL = "https://overpass-api.de/api/interpreter"

// Client queries the Overpass API
type Client struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// NewClient creates an Overpass client
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		log:        log,
	}
}

// Way is one OSM way with its tags and resolved geometry
type Way struct {
	ID       int64
	Name     string
	Highway  string
	Geometry geo.LineString
}

type overpassResponse struct {
	Elements []struct {
		Type     string            `json:"type"`
		ID       int64             `json:"id"`
		Tags     map[string]string `json:"tags"`
		Geometry []struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		} `json:"geometry"`
	} `json:"elements"`
}

// TrailsInBBox queries named ways tagged highway=path or highway=footway
// within the bounding box. Unnamed ways are excluded in the query itself.
func (c *Client) TrailsInBBox(ctx context.Context, minLon, minLat, maxLon, maxLat float64) ([]Way, error) {
	bbox := fmt.Sprintf("%f,%f,%f,%f", minLat, minLon, maxLat, maxLon)

	query := fmt.Sprintf(`[out:json][timeout:90];
(
  way["highway"="path"]["name"](%s);
  way["highway"="footway"]["name"](%s);
);
out geom;`, bbox, bbox)

	form := url.Values{}
	form.Set("data", query)

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("querying overpass: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("overpass returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed overpassResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding overpass response: %w", err)
	}

	ways := make([]Way, 0, len(parsed.Elements))
	for _, el := range parsed.Elements {
		if el.Type != "way" || len(el.Geometry) == 0 {
			continue
		}

		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			continue
		}

		line := make(geo.LineString, 0, len(el.Geometry))
		for _, pt := range el.Geometry {
			line = append(line, geo.Point{Lat: pt.Lat, Lon: pt.Lon})
		}

		ways = append(ways, Way{
			ID:       el.ID,
			Name:     name,
			Highway:  el.Tags["highway"],
			Geometry: line,
		})
	}

	return ways, nil
}
