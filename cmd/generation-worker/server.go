package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"coach-generation/internal/common/logger"
	"coach-generation/internal/store"
	"coach-generation/internal/workers/generation"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const readinessTimeout = 5 * time.Second

func newHealthServer(addr string, handlers []generation.Handler, checkers map[string]store.HealthChecker, log logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		if err := checkReady(ctx, handlers, checkers); err != nil {
			log.Warn("readiness check failed", map[string]interface{}{"error": err.Error()})
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{"status": "not_ready", "error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ready"})
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// checkReady runs every store and worker health check concurrently and
// returns the first failure.
func checkReady(ctx context.Context, handlers []generation.Handler, checkers map[string]store.HealthChecker) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range checkers {
		g.Go(func() error { return c.HealthCheck(ctx) })
	}
	for _, h := range handlers {
		if !h.IsEnabled() {
			continue
		}
		g.Go(func() error { return h.HealthCheck(ctx) })
	}
	return g.Wait()
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
