package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// WeatherReport is the current-conditions summary the trip service works
// with.
type WeatherReport struct {
	TemperatureC        int `json:"temperature_c"`
	PrecipitationChance int `json:"precipitation_chance"`
}

// Weather is the weather collaborator.
type Weather interface {
	Current(ctx context.Context, lat, lon float64) (WeatherReport, error)
}

// OpenMeteoClient implements Weather against the Open-Meteo forecast API.
type OpenMeteoClient struct {
	baseURL    string
	httpClient *http.Client
	backoff    backoffConfig
	circuit    *gobreaker.CircuitBreaker
}

func NewOpenMeteoClient(baseURL string, timeout time.Duration) *OpenMeteoClient {
	return &OpenMeteoClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		backoff: defaultBackoff(),
		circuit: newBreaker("openmeteo"),
	}
}

func (c *OpenMeteoClient) Current(ctx context.Context, lat, lon float64) (WeatherReport, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", fmt.Sprintf("%.4f", lat))
		values.Set("longitude", fmt.Sprintf("%.4f", lon))
		values.Set("current", "temperature_2m")
		values.Set("daily", "precipitation_probability_max")
		values.Set("forecast_days", "1")
		values.Set("timezone", "auto")

		return http.NewRequest(http.MethodGet, c.baseURL+"/v1/forecast?"+values.Encode(), nil)
	}

	resp, err := doWithResilience(ctx, c.httpClient, c.circuit, c.backoff, buildRequest)
	if err != nil {
		return WeatherReport{}, fmt.Errorf("weather request: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
		} `json:"current"`
		Daily struct {
			PrecipitationProbabilityMax []int `json:"precipitation_probability_max"`
		} `json:"daily"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return WeatherReport{}, fmt.Errorf("decode weather response: %w", err)
	}

	report := WeatherReport{
		TemperatureC: int(math.Round(payload.Current.Temperature)),
	}
	if len(payload.Daily.PrecipitationProbabilityMax) > 0 {
		report.PrecipitationChance = payload.Daily.PrecipitationProbabilityMax[0]
	}
	return report, nil
}
