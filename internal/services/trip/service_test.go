package trip_test

import (
	"context"
	"errors"
	"testing"

	"travel-system/internal/providers"
	"travel-system/internal/repo"
	"travel-system/internal/services/geo"
	"travel-system/internal/services/llm"
	"travel-system/internal/services/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockGeocoder struct {
	results map[string]*geo.Result
}

func (m *mockGeocoder) Geocode(_ context.Context, query string) (*geo.Result, error) {
	return m.results[query], nil
}

type mockWeather struct {
	report providers.WeatherReport
	err    error
	calls  int
}

func (m *mockWeather) Current(_ context.Context, _, _ float64) (providers.WeatherReport, error) {
	m.calls++
	if m.err != nil {
		return providers.WeatherReport{}, m.err
	}
	return m.report, nil
}

type mockPlaces struct {
	places []providers.Place
	err    error
	calls  int
}

func (m *mockPlaces) Nearby(_ context.Context, _, _ float64, _ int) ([]providers.Place, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.places, nil
}

type mockAnalyzer struct {
	analysis *llm.Analysis
	err      error
}

func (m *mockAnalyzer) Analyze(_ context.Context, _ string) (*llm.Analysis, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.analysis, nil
}

type mockHistory struct {
	records []repo.RecordQueryParams
}

func (m *mockHistory) RecordQuery(_ context.Context, arg repo.RecordQueryParams) (repo.QueryRecord, error) {
	m.records = append(m.records, arg)
	return repo.QueryRecord{ID: int64(len(m.records))}, nil
}

func (m *mockHistory) RecentQueries(_ context.Context, _ int32) ([]repo.QueryRecord, error) {
	return nil, nil
}

func parisGeocoder() *mockGeocoder {
	return &mockGeocoder{
		results: map[string]*geo.Result{
			"Paris": {Lat: 48.86, Lon: 2.35, DisplayName: "Paris, Île-de-France, France", Importance: 0.88},
		},
	}
}

func newService(gc geo.Geocoder, weather providers.Weather, places providers.Places, analyzer llm.Analyzer, history repo.Repository) *trip.Service {
	return trip.NewService(geo.NewResolver(gc, nil), weather, places, analyzer, nil, history, nil)
}

// --- tests ---

func TestRunQuery_WeatherAndPlaces(t *testing.T) {
	weather := &mockWeather{report: providers.WeatherReport{TemperatureC: 25, PrecipitationChance: 10}}
	places := &mockPlaces{places: []providers.Place{
		{Name: "Louvre Museum", Category: "museum"},
		{Name: "Eiffel Tower", Category: "attraction"},
	}}
	svc := newService(parisGeocoder(), weather, places, nil, nil)

	result := svc.RunQuery(context.Background(), "What's the weather in Paris and what places should I visit?", "")

	assert.True(t, result.Success)
	assert.Equal(t, "Paris", result.Location)
	require.NotNil(t, result.Results)
	require.NotNil(t, result.Results.Weather)
	require.NotNil(t, result.Results.Places)
	assert.True(t, result.Results.Weather.Success)
	assert.True(t, result.Results.Places.Success)
	assert.Contains(t, result.Message, "25°C")
	assert.Contains(t, result.Message, "Louvre Museum")
}

func TestRunQuery_WeatherOnly(t *testing.T) {
	weather := &mockWeather{report: providers.WeatherReport{TemperatureC: 18, PrecipitationChance: 60}}
	places := &mockPlaces{}
	svc := newService(parisGeocoder(), weather, places, nil, nil)

	result := svc.RunQuery(context.Background(), "What's the forecast in Paris?", "")

	assert.True(t, result.Success)
	require.NotNil(t, result.Results)
	assert.NotNil(t, result.Results.Weather)
	assert.Nil(t, result.Results.Places)
	assert.Equal(t, 0, places.calls)
}

func TestRunQuery_DefaultsToPlaces(t *testing.T) {
	// No weather or places keywords at all: the query still gets one action.
	weather := &mockWeather{}
	places := &mockPlaces{places: []providers.Place{{Name: "Notre-Dame", Category: "sights"}}}
	svc := newService(parisGeocoder(), weather, places, nil, nil)

	result := svc.RunQuery(context.Background(), "I'm going to Paris", "")

	assert.True(t, result.Success)
	require.NotNil(t, result.Results)
	assert.Nil(t, result.Results.Weather)
	require.NotNil(t, result.Results.Places)
	assert.True(t, result.Results.Places.Success)
	assert.Equal(t, 0, weather.calls)
	assert.Equal(t, 1, places.calls)
}

func TestRunQuery_UnknownLocation(t *testing.T) {
	svc := newService(&mockGeocoder{}, &mockWeather{}, &mockPlaces{}, nil, nil)

	result := svc.RunQuery(context.Background(), "Tell me about Xyz12345", "")

	assert.False(t, result.Success)
	assert.Equal(t, "Xyz12345", result.Location)
	assert.NotEmpty(t, result.Error)
	assert.Nil(t, result.Results)
}

func TestRunQuery_NoLocationInQuery(t *testing.T) {
	svc := newService(&mockGeocoder{}, &mockWeather{}, &mockPlaces{}, nil, nil)

	result := svc.RunQuery(context.Background(), "a", "")

	assert.False(t, result.Success)
	assert.Empty(t, result.Location)
	assert.NotEmpty(t, result.Error)
}

func TestRunQuery_PartialFailureStillSucceeds(t *testing.T) {
	weather := &mockWeather{err: errors.New("upstream down")}
	places := &mockPlaces{places: []providers.Place{{Name: "Louvre Museum", Category: "museum"}}}
	svc := newService(parisGeocoder(), weather, places, nil, nil)

	result := svc.RunQuery(context.Background(), "Weather in Paris and places to visit", "")

	assert.True(t, result.Success)
	require.NotNil(t, result.Results)
	require.NotNil(t, result.Results.Weather)
	require.NotNil(t, result.Results.Places)
	assert.False(t, result.Results.Weather.Success)
	assert.NotEmpty(t, result.Results.Weather.Error)
	assert.True(t, result.Results.Places.Success)
}

func TestRunQuery_LLMFailureFallsBackToHeuristics(t *testing.T) {
	analyzer := &mockAnalyzer{err: errors.New("model unavailable")}
	weather := &mockWeather{report: providers.WeatherReport{TemperatureC: 25}}
	svc := newService(parisGeocoder(), weather, &mockPlaces{}, analyzer, nil)

	result := svc.RunQuery(context.Background(), "What's the weather in Paris?", "")

	assert.True(t, result.Success)
	assert.Equal(t, "Paris", result.Location)
	require.NotNil(t, result.Results)
	assert.NotNil(t, result.Results.Weather)
}

func TestRunQuery_LLMLocationAndFlagsUsed(t *testing.T) {
	analyzer := &mockAnalyzer{analysis: &llm.Analysis{
		NeedsWeather: true,
		NeedsPlaces:  false,
		Location:     "Paris",
	}}
	weather := &mockWeather{report: providers.WeatherReport{TemperatureC: 25}}
	places := &mockPlaces{}
	// The heuristic extractor would never find "Paris" in this query.
	svc := newService(parisGeocoder(), weather, places, analyzer, nil)

	result := svc.RunQuery(context.Background(), "same city as last time please", "")

	assert.True(t, result.Success)
	assert.Equal(t, "Paris", result.Location)
	assert.Equal(t, 1, weather.calls)
	assert.Equal(t, 0, places.calls)
}

func TestRunQuery_UnresolvableLLMLocationFallsThrough(t *testing.T) {
	analyzer := &mockAnalyzer{analysis: &llm.Analysis{
		NeedsWeather: true,
		Location:     "Nowhereville",
	}}
	weather := &mockWeather{report: providers.WeatherReport{TemperatureC: 25}}
	svc := newService(parisGeocoder(), weather, &mockPlaces{}, analyzer, nil)

	result := svc.RunQuery(context.Background(), "What's the weather in Paris?", "")

	assert.True(t, result.Success)
	assert.Equal(t, "Paris", result.Location)
}

func TestRunQuery_RepeatQueryIsConsistent(t *testing.T) {
	weather := &mockWeather{report: providers.WeatherReport{TemperatureC: 25, PrecipitationChance: 10}}
	places := &mockPlaces{}
	svc := newService(parisGeocoder(), weather, places, nil, nil)

	first := svc.RunQuery(context.Background(), "What's the weather in Paris?", "")
	second := svc.RunQuery(context.Background(), "What's the weather in Paris?", "")

	// Same query, no credential: same resolution and the same actions.
	assert.True(t, first.Success)
	assert.Equal(t, first.Success, second.Success)
	assert.Equal(t, first.Location, second.Location)
	assert.Equal(t, first.Message, second.Message)
	require.NotNil(t, first.Results)
	require.NotNil(t, second.Results)
	assert.NotNil(t, first.Results.Weather)
	assert.NotNil(t, second.Results.Weather)
	assert.Nil(t, first.Results.Places)
	assert.Nil(t, second.Results.Places)
}

func TestRunQuery_RecordsHistory(t *testing.T) {
	history := &mockHistory{}
	weather := &mockWeather{report: providers.WeatherReport{TemperatureC: 25}}
	svc := trip.NewService(geo.NewResolver(parisGeocoder(), nil), weather, &mockPlaces{}, nil, nil, history, nil)

	svc.RunQuery(context.Background(), "Weather in Paris", "")
	svc.RunQuery(context.Background(), "Weather in Qwerty99", "")

	require.Len(t, history.records, 2)
	assert.True(t, history.records[0].Success)
	assert.Equal(t, "Paris", history.records[0].Location)
	assert.True(t, history.records[0].NeedsWeather)
	assert.False(t, history.records[1].Success)
}
