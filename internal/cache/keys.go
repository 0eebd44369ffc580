package cache

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

const (
	// Geocode results are stable; cache accepted resolutions for a day.
	GeocodeTTL = 24 * time.Hour
	// Weather changes quickly.
	WeatherTTL = 10 * time.Minute
	// Points of interest around a coordinate barely move.
	PlacesTTL = 6 * time.Hour
)

// PopularDestinationsKey is the sorted set holding per-destination query
// scores. No TTL; the scorer decays it instead.
const PopularDestinationsKey = "trip:popular:destinations"

// GeocodeKey generates the Redis key for a cached geocode resolution.
func GeocodeKey(candidate string) string {
	hash := sha1.Sum([]byte(strings.ToLower(strings.TrimSpace(candidate))))
	return fmt.Sprintf("cache:v1:geocode:%x", hash)
}

// WeatherKey generates the Redis key for a cached weather report. Coordinates
// are rounded so nearby lookups share an entry.
func WeatherKey(lat, lon float64) string {
	return fmt.Sprintf("cache:v1:weather:%.3f:%.3f", lat, lon)
}

// PlacesKey generates the Redis key for cached points of interest.
func PlacesKey(lat, lon float64, limit int) string {
	return fmt.Sprintf("cache:v1:places:%.3f:%.3f:%d", lat, lon, limit)
}
