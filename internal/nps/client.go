// Package nps is the client for the National Park Service API: paginated
// park metadata fetch plus per-park boundary geometry.
package nps

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"nps-hikes/internal/geo"
)

const defaultBaseURL = "https://developer.nps.gov/api/v1"

// parkFields is the field list requested from the /parks endpoint
const parkFields = "description,latitude,longitude,name,parkCode,states,url,fullName,designation"

// Client queries the NPS API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pageLimit  int
	delay      time.Duration
	log        zerolog.Logger
}

// NewClient creates an NPS API client. The API key is required by the
// service on every request.
func NewClient(baseURL, apiKey string, timeout, delay time.Duration, log zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		pageLimit:  50,
		delay:      delay,
		log:        log,
	}
}

// ParkRecord is one site as returned by the /parks endpoint. The NPS API
// returns coordinates as strings.
type ParkRecord struct {
	ParkCode    string `json:"parkCode"`
	FullName    string `json:"fullName"`
	Name        string `json:"name"`
	States      string `json:"states"`
	URL         string `json:"url"`
	Description string `json:"description"`
	Designation string `json:"designation"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
}

type parksResponse struct {
	Total string       `json:"total"`
	Data  []ParkRecord `json:"data"`
}

// FetchAllParks pages through every NPS site. Designation filtering is the
// caller's concern; this returns the full list.
func (c *Client) FetchAllParks(ctx context.Context) ([]ParkRecord, error) {
	var all []ParkRecord
	start := 0
	total := -1

	for {
		params := url.Values{}
		params.Set("limit", fmt.Sprintf("%d", c.pageLimit))
		params.Set("start", fmt.Sprintf("%d", start))
		params.Set("fields", parkFields)

		reqURL := fmt.Sprintf("%s/parks?%s", c.baseURL, params.Encode())

		page, pageTotal, err := c.fetchParksPage(ctx, reqURL)
		if err != nil {
			return nil, fmt.Errorf("fetching parks page (start=%d): %w", start, err)
		}

		if total < 0 {
			total = pageTotal
			c.log.Info().Int("total", total).Msg("Total NPS sites in API")
		}

		if len(page) == 0 {
			break
		}
		all = append(all, page...)

		start += c.pageLimit
		if start >= total {
			break
		}

		// Rate limiting between pages
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.delay):
		}
	}

	c.log.Info().Int("count", len(all)).Msg("Fetched all NPS sites")
	return all, nil
}

func (c *Client) fetchParksPage(ctx context.Context, reqURL string) ([]ParkRecord, int, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, 0, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed parksResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("decoding response: %w", err)
	}

	total := 0
	fmt.Sscanf(parsed.Total, "%d", &total)

	return parsed.Data, total, nil
}

// boundaryResponse covers the shapes the boundary endpoint returns: a
// FeatureCollection, a single Feature, or a bare geometry object.
type boundaryResponse struct {
	Type     string          `json:"type"`
	Features []boundaryFeature `json:"features"`
	Geometry *geo.Geometry   `json:"geometry"`
}

type boundaryFeature struct {
	Type     string        `json:"type"`
	Geometry *geo.Geometry `json:"geometry"`
}

// FetchBoundary retrieves the boundary geometry for one park code. Returns
// nil geometry (no error) when the park has no boundary in the API.
func (c *Client) FetchBoundary(ctx context.Context, parkCode string) (*geo.Geometry, error) {
	reqURL := fmt.Sprintf("%s/mapdata/parkboundaries/%s", c.baseURL, url.PathEscape(parkCode))

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching boundary for %s: %w", parkCode, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API returned %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading boundary response: %w", err)
	}

	var parsed boundaryResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decoding boundary response: %w", err)
	}

	switch parsed.Type {
	case "FeatureCollection":
		// Most parks have one main boundary feature; take the first
		for _, f := range parsed.Features {
			if f.Geometry != nil {
				return f.Geometry, nil
			}
		}
		return nil, nil
	case "Feature":
		return parsed.Geometry, nil
	case "Polygon", "MultiPolygon":
		// Bare geometry object, coordinates at the top level
		var geom geo.Geometry
		if err := json.Unmarshal(body, &geom); err != nil {
			return nil, fmt.Errorf("decoding boundary geometry: %w", err)
		}
		return &geom, nil
	default:
		return nil, fmt.Errorf("unrecognized boundary structure for %s (type %q)", parkCode, parsed.Type)
	}
}
