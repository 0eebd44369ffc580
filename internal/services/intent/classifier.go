package intent

import "strings"

// Flags captures what a query is asking for. Both flags may be set, and
// both may be unset; the orchestrator resolves the latter case by
// defaulting to places.
type Flags struct {
	NeedsWeather bool `json:"needs_weather"`
	NeedsPlaces  bool `json:"needs_places"`
}

// Plain substring containment, no stemming. Keyword sets are fixed.
var weatherTerms = []string{
	"weather", "temperature", "rain", "forecast", "climate",
	"sunny", "humidity", "snow", "wind", "degrees",
}

var placesTerms = []string{
	"place", "visit", "attraction", "tourist", "trip", "landmark",
	"sightseeing", "museum", "monument", "explore", "things to do",
}

// Classify derives intent flags from raw query text via case-insensitive
// keyword containment.
func Classify(query string) Flags {
	lower := strings.ToLower(query)
	return Flags{
		NeedsWeather: containsAny(lower, weatherTerms),
		NeedsPlaces:  containsAny(lower, placesTerms),
	}
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
