package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
)

// Place is one point of interest near the resolved location.
type Place struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Places is the points-of-interest collaborator. Results are capped at the
// requested limit and may be empty.
type Places interface {
	Nearby(ctx context.Context, lat, lon float64, limit int) ([]Place, error)
}

// GeoapifyClient implements Places against the Geoapify Places API.
type GeoapifyClient struct {
	baseURL    string
	apiKey     string
	radiusM    int
	httpClient *http.Client
	backoff    backoffConfig
	circuit    *gobreaker.CircuitBreaker
}

func NewGeoapifyClient(baseURL, apiKey string, radiusM int, timeout time.Duration) *GeoapifyClient {
	if radiusM <= 0 {
		radiusM = 10000
	}
	return &GeoapifyClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		radiusM: radiusM,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		backoff: defaultBackoff(),
		circuit: newBreaker("geoapify"),
	}
}

func (c *GeoapifyClient) Nearby(ctx context.Context, lat, lon float64, limit int) ([]Place, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("categories", "tourism.attraction,tourism.sights")
		// Geoapify filters use lon,lat order.
		values.Set("filter", fmt.Sprintf("circle:%.6f,%.6f,%d", lon, lat, c.radiusM))
		values.Set("limit", fmt.Sprintf("%d", limit))
		values.Set("apiKey", c.apiKey)

		return http.NewRequest(http.MethodGet, c.baseURL+"/v2/places?"+values.Encode(), nil)
	}

	resp, err := doWithResilience(ctx, c.httpClient, c.circuit, c.backoff, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("places request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Features []struct {
			Properties struct {
				Name       string   `json:"name"`
				Categories []string `json:"categories"`
			} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode places response: %w", err)
	}

	places := make([]Place, 0, len(payload.Features))
	for _, f := range payload.Features {
		if f.Properties.Name == "" {
			continue
		}
		places = append(places, Place{
			Name:     f.Properties.Name,
			Category: primaryCategory(f.Properties.Categories),
		})
		if len(places) >= limit {
			break
		}
	}
	return places, nil
}

// primaryCategory picks the most specific tourism category, e.g.
// "tourism.sights.castle" becomes "castle".
func primaryCategory(categories []string) string {
	if len(categories) == 0 {
		return "attraction"
	}
	best := categories[0]
	for _, c := range categories[1:] {
		if strings.Count(c, ".") > strings.Count(best, ".") {
			best = c
		}
	}
	if i := strings.LastIndex(best, "."); i >= 0 {
		best = best[i+1:]
	}
	return best
}
