package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"travel-system/internal/providers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeoapifyClient_Nearby(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/places", r.URL.Path)
		assert.Equal(t, "tourism.attraction,tourism.sights", r.URL.Query().Get("categories"))
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Contains(t, r.URL.Query().Get("filter"), "circle:")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features": [
			{"properties": {"name": "Louvre Museum", "categories": ["tourism", "tourism.sights", "tourism.sights.museum"]}},
			{"properties": {"name": "", "categories": ["tourism.attraction"]}},
			{"properties": {"name": "Eiffel Tower", "categories": []}}
		]}`))
	}))
	defer srv.Close()

	client := providers.NewGeoapifyClient(srv.URL, "test-key", 10000, 5*time.Second)

	places, err := client.Nearby(context.Background(), 48.86, 2.35, 5)

	require.NoError(t, err)
	// Unnamed features are dropped; the most specific category wins.
	require.Len(t, places, 2)
	assert.Equal(t, providers.Place{Name: "Louvre Museum", Category: "museum"}, places[0])
	assert.Equal(t, providers.Place{Name: "Eiffel Tower", Category: "attraction"}, places[1])
}

func TestGeoapifyClient_LimitEnforced(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"features": [
			{"properties": {"name": "One", "categories": ["tourism.attraction"]}},
			{"properties": {"name": "Two", "categories": ["tourism.attraction"]}},
			{"properties": {"name": "Three", "categories": ["tourism.attraction"]}}
		]}`))
	}))
	defer srv.Close()

	client := providers.NewGeoapifyClient(srv.URL, "test-key", 10000, 5*time.Second)

	places, err := client.Nearby(context.Background(), 48.86, 2.35, 2)

	require.NoError(t, err)
	assert.Len(t, places, 2)
}
