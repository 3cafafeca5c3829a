// Package ops serves health and cache statistics on a separate listener.
package ops

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"partnerbackend/internal/cache"
)

// Pinger reports whether the credential store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// CacheAdmin exposes memo cache counters and purging
type CacheAdmin interface {
	CacheStats() []cache.Stats
	PurgeCaches()
}

// NewRouter builds the ops router
func NewRouter(db Pinger, caches CacheAdmin, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handleHealth(db, logger))
	r.Get("/cache/stats", handleCacheStats(caches, logger))
	r.Post("/cache/purge", handleCachePurge(caches, logger))

	return r
}

func handleHealth(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		dbStatus := "healthy"
		if err := db.Ping(ctx); err != nil {
			logger.Warn("database ping failed", "error", err)
			status = http.StatusServiceUnavailable
			dbStatus = "unhealthy"
		}

		writeJSON(w, status, map[string]string{
			"status":    dbStatus,
			"service":   "partner-backend",
			"database":  dbStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		}, logger)
	}
}

func handleCacheStats(caches CacheAdmin, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]cache.Stats{"caches": caches.CacheStats()}, logger)
	}
}

func handleCachePurge(caches CacheAdmin, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caches.PurgeCaches()
		writeJSON(w, http.StatusOK, map[string][]cache.Stats{"caches": caches.CacheStats()}, logger)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
