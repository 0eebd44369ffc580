package geo

import (
	"context"
	"encoding/json"
	"strings"

	"travel-system/internal/cache"

	"github.com/rs/zerolog/log"
)

// Resolver runs the candidate cascade against the geocoding collaborator.
// Candidates are tried strictly in order and resolution stops at the first
// accepted hit; later candidates exist only as fallbacks, so speculative
// parallel lookups would just burn provider quota.
type Resolver struct {
	geocoder Geocoder
	cache    *cache.RedisCache // optional; nil disables caching
}

// NewResolver creates a Resolver. cache may be nil.
func NewResolver(geocoder Geocoder, c *cache.RedisCache) *Resolver {
	return &Resolver{geocoder: geocoder, cache: c}
}

// Resolve tries each candidate in order until one geocodes to a hit the
// matcher accepts. A provider error on one candidate is logged and skipped,
// not fatal. Returns nil when every candidate is exhausted.
func (r *Resolver) Resolve(ctx context.Context, candidates []string) *ResolvedLocation {
	for _, cand := range candidates {
		cand = strings.TrimSpace(cand)
		if cand == "" {
			continue
		}

		if loc := r.cached(ctx, cand); loc != nil {
			return loc
		}

		result, err := r.geocoder.Geocode(ctx, cand)
		if err != nil {
			log.Warn().Err(err).Str("candidate", cand).Msg("Geocoding failed, trying next candidate")
			continue
		}
		if result == nil {
			log.Debug().Str("candidate", cand).Msg("No geocoding match")
			continue
		}
		if !Matches(cand, result.DisplayName, result.Importance) {
			log.Debug().
				Str("candidate", cand).
				Str("display_name", result.DisplayName).
				Float64("importance", result.Importance).
				Msg("Geocoding hit rejected by matcher")
			continue
		}

		loc := &ResolvedLocation{
			Latitude:  result.Lat,
			Longitude: result.Lon,
			Name:      CanonicalName(result.DisplayName),
		}
		r.store(ctx, cand, loc)
		return loc
	}
	return nil
}

func (r *Resolver) cached(ctx context.Context, candidate string) *ResolvedLocation {
	if r.cache == nil {
		return nil
	}
	data, err := r.cache.Get(ctx, cache.GeocodeKey(candidate))
	if err != nil {
		return nil
	}
	var loc ResolvedLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return nil
	}
	return &loc
}

// Only accepted resolutions are cached; rejections and provider errors stay
// retryable.
func (r *Resolver) store(ctx context.Context, candidate string, loc *ResolvedLocation) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, cache.GeocodeKey(candidate), loc, cache.GeocodeTTL); err != nil {
		log.Warn().Err(err).Str("candidate", candidate).Msg("Failed to cache geocode result")
	}
}
