package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hubgate/internal/config"
	"hubgate/internal/githubclient"
)

// HealthResponse is the liveness probe payload.
type HealthResponse struct {
	Status string `json:"status"`
}

// RateLimitResponse is the payload for the rate limit inspection endpoint.
type RateLimitResponse struct {
	CoreLimit     int   `json:"core_limit"`
	CoreRemaining int   `json:"core_remaining"`
	CoreReset     int64 `json:"core_reset"`
}

// startMetricsServer serves /metrics, /healthz and /ratelimit on the
// operational listener. It runs in a background goroutine and shuts down
// gracefully when ctx is canceled; the returned channel closes once the
// shutdown has finished.
func startMetricsServer(ctx context.Context, logger *slog.Logger, cfg config.ServerConfig, svc githubclient.Service) <-chan struct{} {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", healthHandler)
	mux.HandleFunc("/ratelimit", rateLimitHandler(svc))

	server := &http.Server{
		Addr:         cfg.MetricsAddr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.String("addr", cfg.MetricsAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	done := make(chan struct{})
	go func() {
		defer close(done)
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return done
}

// healthHandler handles GET /healthz (liveness probe).
func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

// rateLimitHandler handles GET /ratelimit, reporting the current upstream
// quota. Degrades to 503 when the snapshot cannot be produced.
func rateLimitHandler(svc githubclient.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.RateLimit(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": "rate limit status unavailable",
			})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(RateLimitResponse{
			CoreLimit:     status.Resources.Core.Limit,
			CoreRemaining: status.Resources.Core.Remaining,
			CoreReset:     status.Resources.Core.Reset,
		})
	}
}
