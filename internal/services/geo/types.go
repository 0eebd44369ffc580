package geo

import (
	"context"
	"strings"
)

// Result is a raw hit from the geocoding collaborator.
type Result struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

// Geocoder is the geocoding collaborator. A nil Result with a nil error
// means the provider had no match for the query.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (*Result, error)
}

// ResolvedLocation is produced by accepting exactly one geocoding result.
// Once resolved it is the single source of truth: weather and places both
// operate on these coordinates, never on a second geocoding pass.
type ResolvedLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
}

// CanonicalName reduces a provider display name ("Bengaluru, Karnataka,
// India") to its first comma-delimited segment.
func CanonicalName(displayName string) string {
	if i := strings.Index(displayName, ","); i >= 0 {
		displayName = displayName[:i]
	}
	return strings.TrimSpace(displayName)
}
