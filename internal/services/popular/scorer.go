package popular

import (
	"context"
	"time"

	"travel-system/internal/cache"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog/log"
)

// Scorer tracks which destinations people ask about. Every successful
// resolution bumps the destination's score in a Redis sorted set; a
// background loop decays all scores so the ranking favours recent interest.
type Scorer struct {
	cache  *cache.RedisCache
	ticker *time.Ticker
	done   chan bool

	decayFactor float64
}

// Destination is one ranked entry.
type Destination struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func NewScorer(c *cache.RedisCache) *Scorer {
	return &Scorer{
		cache:       c,
		done:        make(chan bool),
		decayFactor: 0.5,
	}
}

// Start begins the background decay loop.
func (s *Scorer) Start(ctx context.Context, interval time.Duration) {
	s.ticker = time.NewTicker(interval)

	go func() {
		for {
			select {
			case <-s.ticker.C:
				if err := s.decay(ctx); err != nil {
					log.Error().Err(err).Msg("Failed to decay destination scores")
				}
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	log.Info().Dur("interval", interval).Msg("Popular destinations scorer started")
}

// Stop stops the background decay loop.
func (s *Scorer) Stop() {
	if s.ticker != nil {
		s.ticker.Stop()
	}
	close(s.done)
	log.Info().Msg("Popular destinations scorer stopped")
}

// Record bumps a destination's score by one. Best-effort.
func (s *Scorer) Record(ctx context.Context, destination string) {
	if err := s.cache.ZIncrBy(ctx, cache.PopularDestinationsKey, 1, destination); err != nil {
		log.Warn().Err(err).Str("destination", destination).Msg("Failed to bump destination score")
	}
}

// Top returns the highest-scored destinations, best first.
func (s *Scorer) Top(ctx context.Context, limit int) ([]Destination, error) {
	if limit <= 0 {
		limit = 10
	}

	members, err := s.cache.ZRevRangeWithScores(ctx, cache.PopularDestinationsKey, 0, int64(limit-1))
	if err != nil {
		return nil, err
	}

	destinations := make([]Destination, 0, len(members))
	for _, m := range members {
		name, ok := m.Member.(string)
		if !ok {
			continue
		}
		destinations = append(destinations, Destination{Name: name, Score: m.Score})
	}
	return destinations, nil
}

// decay halves every score and prunes entries that have faded out, so a
// burst of queries for one city does not dominate the ranking forever.
func (s *Scorer) decay(ctx context.Context) error {
	start := time.Now()

	members, err := s.cache.ZRangeWithScores(ctx, cache.PopularDestinationsKey, 0, -1)
	if err != nil {
		return err
	}
	if len(members) == 0 {
		return nil
	}

	decayed := make([]redis.Z, 0, len(members))
	for _, m := range members {
		decayed = append(decayed, redis.Z{
			Score:  m.Score * s.decayFactor,
			Member: m.Member,
		})
	}
	if err := s.cache.ZAdd(ctx, cache.PopularDestinationsKey, decayed...); err != nil {
		return err
	}
	if err := s.cache.ZRemRangeByScore(ctx, cache.PopularDestinationsKey, "-inf", "0.05"); err != nil {
		return err
	}

	log.Info().
		Dur("duration", time.Since(start)).
		Int("destinations", len(members)).
		Msg("Destination scores decayed")
	return nil
}
