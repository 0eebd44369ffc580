package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"travel-system/internal/services/geo"
)

const nominatimUserAgent = "travel-system/1.0"

// NominatimClient implements geo.Geocoder against a Nominatim-compatible
// search endpoint.
type NominatimClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewNominatimClient(baseURL string, timeout time.Duration) *NominatimClient {
	return &NominatimClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Geocode looks up a free-text place name. Returns nil when the provider
// has no match.
func (c *NominatimClient) Geocode(ctx context.Context, query string) (*geo.Result, error) {
	params := url.Values{
		"q":      {query},
		"format": {"json"},
		"limit":  {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	// Nominatim's usage policy requires an identifying agent.
	req.Header.Set("User-Agent", nominatimUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder API error: status %d", resp.StatusCode)
	}

	// Nominatim returns coordinates as strings.
	var hits []struct {
		Lat         string  `json:"lat"`
		Lon         string  `json:"lon"`
		DisplayName string  `json:"display_name"`
		Importance  float64 `json:"importance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(hits) == 0 {
		return nil, nil
	}

	h := hits[0]
	lat, err := strconv.ParseFloat(h.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", h.Lat, err)
	}
	lon, err := strconv.ParseFloat(h.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", h.Lon, err)
	}

	return &geo.Result{
		Lat:         lat,
		Lon:         lon,
		DisplayName: h.DisplayName,
		Importance:  h.Importance,
	}, nil
}
