package trip

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"travel-system/internal/cache"
	"travel-system/internal/providers"
	"travel-system/internal/repo"
	"travel-system/internal/services/geo"
	"travel-system/internal/services/intent"
	"travel-system/internal/services/llm"
	"travel-system/internal/services/popular"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	// Bound on each external collaborator call; a timeout is handled like
	// any other provider failure.
	collaboratorTimeout = 10 * time.Second
	llmTimeout          = 15 * time.Second

	maxPlaces = 5
)

// Service is the query orchestrator: LLM-or-heuristic intent and location,
// one geocode resolution per query, then fan-out to the weather and places
// subroutines on the same resolved coordinates.
type Service struct {
	resolver *geo.Resolver
	weather  providers.Weather
	places   providers.Places

	analyzer llm.Analyzer // default analyzer; nil when no key is configured
	cache    *cache.RedisCache
	history  repo.Repository
	popular  *popular.Scorer

	// analyzerFactory builds an analyzer for a per-request credential.
	analyzerFactory func(apiKey string) (llm.Analyzer, error)
}

// NewService creates the orchestrator. analyzer, cache, history and scorer
// may each be nil; the corresponding feature is skipped.
func NewService(
	resolver *geo.Resolver,
	weather providers.Weather,
	places providers.Places,
	analyzer llm.Analyzer,
	c *cache.RedisCache,
	history repo.Repository,
	scorer *popular.Scorer,
) *Service {
	return &Service{
		resolver: resolver,
		weather:  weather,
		places:   places,
		analyzer: analyzer,
		cache:    c,
		history:  history,
		popular:  scorer,
		analyzerFactory: func(apiKey string) (llm.Analyzer, error) {
			return llm.NewOpenAIAnalyzer(apiKey, "")
		},
	}
}

// RunQuery processes one tourism query end to end. It never panics out:
// any unexpected fault is converted into a failure Result.
func (s *Service) RunQuery(ctx context.Context, query, llmAPIKey string) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Str("query", query).Msg("Recovered panic while processing query")
			result = Result{
				Success: false,
				Error:   "Something went wrong while processing your query. Please try again.",
			}
		}
	}()

	query = strings.TrimSpace(query)

	var (
		flags    intent.Flags
		flagsSet bool
		loc      *geo.ResolvedLocation
	)

	// Best-effort LLM path: a failure of any kind just means the heuristic
	// path below does the work.
	if analyzer := s.pickAnalyzer(llmAPIKey); analyzer != nil {
		analysis := s.analyze(ctx, analyzer, query)
		if analysis != nil && analysis.Location != "" {
			if resolved := s.resolver.Resolve(ctx, []string{analysis.Location}); resolved != nil {
				loc = resolved
				flags = intent.Flags{
					NeedsWeather: analysis.NeedsWeather,
					NeedsPlaces:  analysis.NeedsPlaces,
				}
				flagsSet = true
			}
			// A rejected LLM location falls through to the extractor.
		}
	}

	if loc == nil {
		candidates := intent.Extract(query)
		primary := candidates[0]

		if utf8.RuneCountInString(strings.TrimSpace(primary)) < 2 {
			s.record(ctx, query, "", flags, false)
			return Result{
				Success: false,
				Error:   "No location found in your query. Please mention a place, e.g. \"weather in Paris\".",
			}
		}

		loc = s.resolver.Resolve(ctx, candidateVariants(candidates))
		if loc == nil {
			s.record(ctx, query, primary, flags, false)
			return Result{
				Success:  false,
				Location: primary,
				Error:    fmt.Sprintf("Could not recognize %q as a location. Try a different spelling.", primary),
			}
		}
	}

	if !flagsSet {
		flags = intent.Classify(query)
	}
	// A query never ends with zero actions.
	if !flags.NeedsWeather && !flags.NeedsPlaces {
		flags.NeedsPlaces = true
	}

	// The subroutines are independent: one failing must not abort the
	// other, so each branch records its own SubroutineResult and the
	// group never returns an error.
	var (
		g          errgroup.Group
		weatherRes *SubroutineResult
		placesRes  *SubroutineResult
	)
	if flags.NeedsWeather {
		g.Go(func() error {
			weatherRes = s.fetchWeather(ctx, *loc)
			return nil
		})
	}
	if flags.NeedsPlaces {
		g.Go(func() error {
			placesRes = s.fetchPlaces(ctx, *loc)
			return nil
		})
	}
	_ = g.Wait()

	var parts []string
	if weatherRes != nil {
		parts = append(parts, weatherRes.Message)
	}
	if placesRes != nil {
		parts = append(parts, placesRes.Message)
	}

	s.record(ctx, query, loc.Name, flags, true)

	return Result{
		Success:  true,
		Location: loc.Name,
		Message:  strings.Join(parts, " "),
		Results: &SubResults{
			Weather: weatherRes,
			Places:  placesRes,
		},
	}
}

// pickAnalyzer prefers a per-request credential over the configured default.
func (s *Service) pickAnalyzer(apiKey string) llm.Analyzer {
	if apiKey == "" {
		return s.analyzer
	}
	analyzer, err := s.analyzerFactory(apiKey)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build LLM analyzer from request credential")
		return s.analyzer
	}
	return analyzer
}

func (s *Service) analyze(ctx context.Context, analyzer llm.Analyzer, query string) *llm.Analysis {
	llmCtx, cancel := context.WithTimeout(ctx, llmTimeout)
	defer cancel()

	analysis, err := analyzer.Analyze(llmCtx, query)
	if err != nil {
		log.Warn().Err(err).Msg("LLM analysis failed, falling back to heuristics")
		return nil
	}
	return analysis
}

// candidateVariants expands extracted candidates into the geocoding attempt
// list: the full string, the part before the first comma, and the first
// three tokens. Order preserves extraction-rule priority.
func candidateVariants(candidates []string) []string {
	var variants []string
	seen := map[string]struct{}{}
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v == "" {
			return
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		variants = append(variants, v)
	}

	for _, cand := range candidates {
		add(cand)
		if i := strings.Index(cand, ","); i > 0 {
			add(cand[:i])
		}
		if tokens := strings.Fields(cand); len(tokens) > 3 {
			add(strings.Join(tokens[:3], " "))
		}
	}
	return variants
}

func (s *Service) fetchWeather(ctx context.Context, loc geo.ResolvedLocation) *SubroutineResult {
	callCtx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
	defer cancel()

	report, err := s.currentWeather(callCtx, loc)
	if err != nil {
		log.Warn().Err(err).Str("location", loc.Name).Msg("Weather subroutine failed")
		return &SubroutineResult{
			Success: false,
			Message: fmt.Sprintf("Weather for %s is unavailable right now.", loc.Name),
			Error:   "weather provider unavailable",
		}
	}

	return &SubroutineResult{
		Success: true,
		Message: fmt.Sprintf("Current weather in %s: %d°C with a %d%% chance of rain.",
			loc.Name, report.TemperatureC, report.PrecipitationChance),
		Data: report,
	}
}

func (s *Service) currentWeather(ctx context.Context, loc geo.ResolvedLocation) (providers.WeatherReport, error) {
	if s.cache == nil {
		return s.weather.Current(ctx, loc.Latitude, loc.Longitude)
	}

	data, err := s.cache.GetOrSet(ctx, cache.WeatherKey(loc.Latitude, loc.Longitude), cache.WeatherTTL,
		func() (interface{}, error) {
			return s.weather.Current(ctx, loc.Latitude, loc.Longitude)
		})
	if err != nil {
		return providers.WeatherReport{}, err
	}

	var report providers.WeatherReport
	if err := json.Unmarshal(data, &report); err != nil {
		return providers.WeatherReport{}, fmt.Errorf("decode cached weather: %w", err)
	}
	return report, nil
}

func (s *Service) fetchPlaces(ctx context.Context, loc geo.ResolvedLocation) *SubroutineResult {
	callCtx, cancel := context.WithTimeout(ctx, collaboratorTimeout)
	defer cancel()

	places, err := s.nearbyPlaces(callCtx, loc)
	if err != nil {
		log.Warn().Err(err).Str("location", loc.Name).Msg("Places subroutine failed")
		return &SubroutineResult{
			Success: false,
			Message: fmt.Sprintf("Attractions near %s are unavailable right now.", loc.Name),
			Error:   "places provider unavailable",
		}
	}

	if len(places) == 0 {
		return &SubroutineResult{
			Success: true,
			Message: fmt.Sprintf("No notable attractions found near %s.", loc.Name),
			Data:    []providers.Place{},
		}
	}

	names := make([]string, 0, len(places))
	for _, p := range places {
		names = append(names, fmt.Sprintf("%s (%s)", p.Name, p.Category))
	}
	return &SubroutineResult{
		Success: true,
		Message: fmt.Sprintf("Places to visit in %s: %s.", loc.Name, strings.Join(names, ", ")),
		Data:    places,
	}
}

func (s *Service) nearbyPlaces(ctx context.Context, loc geo.ResolvedLocation) ([]providers.Place, error) {
	if s.cache == nil {
		return s.places.Nearby(ctx, loc.Latitude, loc.Longitude, maxPlaces)
	}

	data, err := s.cache.GetOrSet(ctx, cache.PlacesKey(loc.Latitude, loc.Longitude, maxPlaces), cache.PlacesTTL,
		func() (interface{}, error) {
			return s.places.Nearby(ctx, loc.Latitude, loc.Longitude, maxPlaces)
		})
	if err != nil {
		return nil, err
	}

	var places []providers.Place
	if err := json.Unmarshal(data, &places); err != nil {
		return nil, fmt.Errorf("decode cached places: %w", err)
	}
	return places, nil
}

// record persists the query outcome and bumps the popularity score.
// Both are best-effort.
func (s *Service) record(ctx context.Context, query, location string, flags intent.Flags, success bool) {
	if s.history != nil {
		_, err := s.history.RecordQuery(ctx, repo.RecordQueryParams{
			Query:        query,
			Location:     location,
			NeedsWeather: flags.NeedsWeather,
			NeedsPlaces:  flags.NeedsPlaces,
			Success:      success,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to record query history")
		}
	}
	if success && location != "" && s.popular != nil {
		s.popular.Record(ctx, location)
	}
}
