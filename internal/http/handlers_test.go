package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httphandler "travel-system/internal/http"
	"travel-system/internal/providers"
	"travel-system/internal/services/geo"
	"travel-system/internal/services/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGeocoder struct{}

func (mockGeocoder) Geocode(_ context.Context, query string) (*geo.Result, error) {
	if query != "Paris" {
		return nil, nil
	}
	return &geo.Result{Lat: 48.86, Lon: 2.35, DisplayName: "Paris, Île-de-France, France", Importance: 0.88}, nil
}

type mockWeather struct{}

func (mockWeather) Current(_ context.Context, _, _ float64) (providers.WeatherReport, error) {
	return providers.WeatherReport{TemperatureC: 25, PrecipitationChance: 10}, nil
}

type mockPlaces struct{}

func (mockPlaces) Nearby(_ context.Context, _, _ float64, _ int) ([]providers.Place, error) {
	return []providers.Place{{Name: "Louvre Museum", Category: "museum"}}, nil
}

func newTestRouter() *httphandler.Router {
	svc := trip.NewService(geo.NewResolver(mockGeocoder{}, nil), mockWeather{}, mockPlaces{}, nil, nil, nil, nil)

	router := httphandler.NewRouter()
	router.RegisterTripRoutes(httphandler.NewTripHandler(svc, nil, nil))
	router.RegisterHealthRoutes()
	return router
}

// --- tests ---

func TestQueryEndpoint_Post(t *testing.T) {
	router := newTestRouter()

	body := strings.NewReader(`{"query": "What's the weather in Paris?"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/trip/query", body)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result trip.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, "Paris", result.Location)
}

func TestQueryEndpoint_Get(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trip/query?query=weather+in+Paris", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result trip.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Success)
}

func TestQueryEndpoint_MissingQuery(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/trip/query", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// Orchestration-level failures are still HTTP 200: the request itself was
// well-formed and processed.
func TestQueryEndpoint_UnknownLocationIsStill200(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trip/query?query=weather+in+Xyz12345", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result trip.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestPopularEndpoint_Unavailable(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trip/popular", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHistoryEndpoint_Unavailable(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/trip/history", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}
