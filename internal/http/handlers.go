package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"travel-system/internal/repo"
	"travel-system/internal/services/popular"
	"travel-system/internal/services/trip"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// TripHandler handles trip-related HTTP requests
type TripHandler struct {
	tripService *trip.Service
	history     repo.Repository
	popular     *popular.Scorer
}

// NewTripHandler creates a new TripHandler. history and scorer may be nil;
// the corresponding endpoints then report the feature as unavailable.
func NewTripHandler(tripService *trip.Service, history repo.Repository, scorer *popular.Scorer) *TripHandler {
	return &TripHandler{
		tripService: tripService,
		history:     history,
		popular:     scorer,
	}
}

// RegisterRoutes registers all trip routes
func (h *TripHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/trip", func(r chi.Router) {
		r.Post("/query", h.Query)
		r.Get("/query", h.Query)
		r.Get("/popular", h.Popular)
		r.Get("/history", h.History)
	})
}

// Query handles tourism queries. Orchestration failures (unknown location,
// provider outages) are part of the response body, not HTTP errors: the
// request itself succeeded.
func (h *TripHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req trip.QueryRequest

	if r.Method == http.MethodGet {
		req.Query = r.URL.Query().Get("query")
		// The per-request LLM key is accepted in the POST body only:
		// credentials do not belong in URLs or access logs.
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
			return
		}
	}

	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "query is required")
		return
	}
	if len(req.Query) > 500 {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "query must be at most 500 characters")
		return
	}

	result := h.tripService.RunQuery(r.Context(), req.Query, req.LLMAPIKey)

	writeJSON(w, http.StatusOK, result)
}

// Popular returns the current most-asked-about destinations.
func (h *TripHandler) Popular(w http.ResponseWriter, r *http.Request) {
	if h.popular == nil {
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "popular destinations are not enabled")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 50 {
			limit = l
		} else {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid limit value (must be 1-50)")
			return
		}
	}

	destinations, err := h.popular.Top(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list popular destinations")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list popular destinations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"destinations": destinations,
	})
}

// History returns the most recent queries, newest first.
func (h *TripHandler) History(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusServiceUnavailable, "UNAVAILABLE", "query history is not enabled")
		return
	}

	limit := 10
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		} else {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid limit value (must be 1-100)")
			return
		}
	}

	records, err := h.history.RecentQueries(r.Context(), int32(limit))
	if err != nil {
		log.Error().Err(err).Msg("Failed to list query history")
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list query history")
		return
	}
	if records == nil {
		records = []repo.QueryRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"queries": records,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}
