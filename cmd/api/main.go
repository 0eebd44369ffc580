package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travel-system/internal/cache"
	"travel-system/internal/config"
	httphandler "travel-system/internal/http"
	"travel-system/internal/providers"
	"travel-system/internal/repo"
	"travel-system/internal/services/geo"
	"travel-system/internal/services/llm"
	"travel-system/internal/services/popular"
	"travel-system/internal/services/trip"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	port := flag.String("port", "", "Port to run the server on (overrides PORT)")
	flag.Parse()

	// Optional .env file for local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := repo.NewDB(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	repository := repo.NewRepository(db)

	redisCache, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// LLM analysis is optional: without a key the service runs on the
	// keyword and extraction heuristics alone.
	var analyzer llm.Analyzer
	if cfg.OpenAI.APIKey != "" {
		analyzer, err = llm.NewOpenAIAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create LLM analyzer")
		}
	} else {
		log.Info().Msg("No OpenAI API key configured, using heuristic analysis only")
	}

	geocoder := providers.NewNominatimClient(cfg.Geocoder.BaseURL, cfg.Geocoder.Timeout)
	weather := providers.NewOpenMeteoClient(cfg.Weather.BaseURL, cfg.Weather.Timeout)
	places := providers.NewGeoapifyClient(cfg.Places.BaseURL, cfg.Places.APIKey, cfg.Places.RadiusM, cfg.Places.Timeout)

	resolver := geo.NewResolver(geocoder, redisCache)

	scorer := popular.NewScorer(redisCache)
	scorer.Start(ctx, cfg.Popular.DecayInterval)
	defer scorer.Stop()

	tripService := trip.NewService(resolver, weather, places, analyzer, redisCache, repository, scorer)

	router := httphandler.NewRouter()
	tripHandler := httphandler.NewTripHandler(tripService, repository, scorer)
	router.RegisterTripRoutes(tripHandler)
	router.RegisterHealthRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}
