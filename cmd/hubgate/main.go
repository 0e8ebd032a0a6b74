package main

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"golang.org/x/oauth2"

	"hubgate/internal/cache"
	"hubgate/internal/config"
	"hubgate/internal/githubclient"
	"hubgate/internal/observability/logging"
	"hubgate/internal/ratelimit"
	"hubgate/internal/resilience/circuitbreaker"
	"hubgate/internal/resilience/retry"
	"hubgate/internal/scheduler"
)

func main() {
	logger := logging.NewLogger()
	if os.Getenv("LOG_FORMAT") == "text" {
		logger = logging.NewTextLogger()
	}
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded",
		slog.String("mode", cfg.GitHub.Mode),
		slog.String("base_url", cfg.GitHub.BaseURL),
		slog.String("redis_addr", cfg.Cache.RedisAddr),
		slog.String("metrics_addr", cfg.Server.MetricsAddr))

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, cleanup, err := buildService(logger, cfg)
	if err != nil {
		logger.Error("failed to build github client", slog.Any("error", err))
		os.Exit(1)
	}
	defer cleanup()

	serverDone := startMetricsServer(ctx, logger, cfg.Server, svc)
	startRateSnapshotCron(ctx, logger, svc, cfg.GitHub.RateSnapshotSchedule)

	logger.Info("hubgate started")
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Wait for the metrics server to drain, but no longer than the
	// configured timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	select {
	case <-serverDone:
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout elapsed before the metrics server drained")
	}
	logger.Info("hubgate stopped")
}

// buildService wires the full request pipeline for the configured mode.
// The cleanup function closes the Redis connection on shutdown.
func buildService(logger *slog.Logger, cfg *config.Config) (githubclient.Service, func(), error) {
	if cfg.GitHub.Mode == githubclient.ModeMock {
		svc, err := githubclient.New(githubclient.ModeMock, githubclient.Options{})
		return svc, func() {}, err
	}

	memory, err := cache.NewMemoryStore(cfg.Cache.MemoryCapacity)
	if err != nil {
		return nil, nil, err
	}

	var persistent cache.Store = cache.NoopStore{}
	cleanup := func() {}
	if cfg.Cache.RedisAddr != "" {
		redisOpts := &redis.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}
		if cfg.Cache.RedisTLS {
			redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rdb := redis.NewClient(redisOpts)
		persistent = cache.NewRedisStore(rdb)
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				logger.Error("failed to close redis client", slog.Any("error", err))
			}
		}
	} else {
		logger.Warn("redis not configured, persistent cache tier disabled")
	}

	tiered := cache.NewMultiLevel(memory, persistent, cache.MultiLevelConfig{
		Memory: cache.Options{
			TTL:        cfg.Cache.MemoryTTL,
			StaleAfter: cfg.Cache.MemoryStaleAfter,
		},
		Persistent: cache.Options{
			TTL:        cfg.Cache.PersistentTTL,
			StaleAfter: cfg.Cache.PersistentStaleAfter,
		},
		Logger: logger,
	})

	var tokens oauth2.TokenSource
	if cfg.GitHub.Token != "" {
		tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.GitHub.Token})
	}

	breakerDefaults := circuitbreaker.DefaultConfig("")
	breakerDefaults.FailureThreshold = cfg.Breaker.FailureThreshold
	breakerDefaults.CoolDown = cfg.Breaker.CoolDown
	breakerDefaults.MaxRequests = cfg.Breaker.MaxRequests

	breakers := circuitbreaker.NewRegistry(breakerDefaults)
	// Registering known services up front makes their state gauges visible
	// before the first request reaches them.
	for _, serviceKey := range cfg.Breaker.PrewarmServices {
		breakers.Get(serviceKey)
	}

	svc, err := githubclient.New(githubclient.ModeProduction, githubclient.Options{
		BaseURL:    cfg.GitHub.BaseURL,
		HTTPClient: newHTTPClient(cfg.GitHub.RequestTimeout),
		Tokens:     tokens,
		Scheduler:  scheduler.New(logger),
		Breakers:   breakers,
		Cache:      tiered,
		Tracker:    ratelimit.NewTracker(&ratelimit.SystemClock{}),
		Pacer:      ratelimit.NewPacer(cfg.Pacer.RequestsPerSecond, cfg.Pacer.Burst),
		Retry:      retry.DefaultConfig(),
		Logger:     logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}

// newHTTPClient builds the upstream HTTP client with connection pooling.
// TLS 1.2+ is enforced.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
}

// startRateSnapshotCron periodically polls the rate limit endpoint so the
// remaining-quota gauge stays current even when no caller traffic flows.
func startRateSnapshotCron(ctx context.Context, logger *slog.Logger, svc githubclient.Service, schedule string) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		snapCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		status, err := svc.RateLimit(snapCtx)
		if err != nil {
			logger.Warn("rate limit snapshot failed", slog.Any("error", err))
			return
		}
		logger.Debug("rate limit snapshot",
			slog.Int("core_remaining", status.Resources.Core.Remaining),
			slog.Int("search_remaining", status.Resources.Search.Remaining),
			slog.Int64("core_reset", status.Resources.Core.Reset))
	})
	if err != nil {
		logger.Error("failed to schedule rate limit snapshot", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()
	logger.Info("rate limit snapshot scheduled", slog.String("schedule", schedule))

	go func() {
		<-ctx.Done()
		c.Stop()
	}()
}
