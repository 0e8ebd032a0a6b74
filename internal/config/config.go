// Package config loads the gateway configuration from environment variables,
// with an optional YAML override file for deploy-time tuning.
package config

import (
	"fmt"
	"time"

	pkgconfig "hubgate/pkg/config"
)

// Config is the full gateway configuration.
type Config struct {
	// GitHub configures the upstream API client.
	GitHub GitHubConfig

	// Cache configures the two-tier response cache.
	Cache CacheConfig

	// Breaker configures the per-service circuit breakers.
	Breaker BreakerConfig

	// Pacer configures the client-side request pacer.
	Pacer PacerConfig

	// Server configures the HTTP listener for metrics and health.
	Server ServerConfig
}

// GitHubConfig holds upstream API settings.
type GitHubConfig struct {
	// BaseURL is the API root. Default: "https://api.github.com"
	BaseURL string

	// Token is the personal access token. May be empty when Mode is "mock".
	Token string

	// Mode selects the client implementation: "production" or "mock".
	// Default: "production"
	Mode string

	// RequestTimeout is the per-request HTTP timeout, between 1s and 10m.
	// Default: 30s
	RequestTimeout time.Duration

	// RateSnapshotSchedule is the cron spec for the periodic rate limit
	// snapshot. Default: every minute.
	RateSnapshotSchedule string
}

// CacheConfig holds settings for both cache tiers.
type CacheConfig struct {
	// RedisAddr is the persistent tier address. Empty disables the tier.
	RedisAddr string

	// RedisPassword for the persistent tier. Default: empty
	RedisPassword string

	// RedisDB index. Default: 0
	RedisDB int

	// RedisTLS enables TLS on the persistent tier connection. Default: false
	RedisTLS bool

	// MemoryCapacity is the LRU entry cap. Default: 1000
	MemoryCapacity int

	// MemoryTTL is the memory tier lifetime. Default: 5m
	MemoryTTL time.Duration

	// MemoryStaleAfter is the memory tier freshness window. Default: 2m
	MemoryStaleAfter time.Duration

	// PersistentTTL is the Redis tier lifetime. Default: 15m
	PersistentTTL time.Duration

	// PersistentStaleAfter is the Redis tier freshness window. Default: 5m
	PersistentStaleAfter time.Duration
}

// BreakerConfig holds circuit breaker tuning.
type BreakerConfig struct {
	// FailureThreshold is the consecutive failure count that opens the
	// circuit. Default: 5
	FailureThreshold uint32

	// CoolDown is how long the circuit stays open. Default: 30s
	CoolDown time.Duration

	// MaxRequests allowed through in half-open state. Default: 1
	MaxRequests uint32

	// PrewarmServices lists service keys whose breakers are registered at
	// startup, so their state gauges exist before the first request.
	// Default: none
	PrewarmServices []string
}

// PacerConfig holds client-side pacing limits.
type PacerConfig struct {
	// RequestsPerSecond is the sustained upstream request rate. Default: 10
	RequestsPerSecond float64

	// Burst is the pacer bucket size. Default: 5
	Burst int
}

// ServerConfig holds the operational HTTP listener settings.
type ServerConfig struct {
	// MetricsAddr is the listen address for /metrics and /healthz.
	// Default: ":9090"
	MetricsAddr string

	// ShutdownTimeout bounds graceful shutdown. Default: 10s
	ShutdownTimeout time.Duration
}

// Load reads the configuration from environment variables. When
// HUBGATE_CONFIG_FILE is set, the named YAML file is applied on top of the
// environment values before validation.
func Load() (*Config, error) {
	cfg := &Config{
		GitHub: GitHubConfig{
			BaseURL:              pkgconfig.GetEnvString("GITHUB_API_BASE_URL", "https://api.github.com"),
			Token:                pkgconfig.GetEnvString("GITHUB_TOKEN", ""),
			Mode:                 pkgconfig.GetEnvString("GITHUB_CLIENT_MODE", "production"),
			RequestTimeout:       pkgconfig.GetEnvDuration("GITHUB_REQUEST_TIMEOUT", 30*time.Second),
			RateSnapshotSchedule: pkgconfig.GetEnvString("RATE_SNAPSHOT_SCHEDULE", "* * * * *"),
		},
		Cache: CacheConfig{
			RedisAddr:            pkgconfig.GetEnvString("REDIS_ADDR", "localhost:6379"),
			RedisPassword:        pkgconfig.GetEnvString("REDIS_PASSWORD", ""),
			RedisDB:              pkgconfig.GetEnvInt("REDIS_DB", 0),
			RedisTLS:             pkgconfig.GetEnvBool("REDIS_TLS", false),
			MemoryCapacity:       pkgconfig.GetEnvInt("CACHE_MEMORY_CAPACITY", 1000),
			MemoryTTL:            pkgconfig.GetEnvDuration("CACHE_MEMORY_TTL", 5*time.Minute),
			MemoryStaleAfter:     pkgconfig.GetEnvDuration("CACHE_MEMORY_STALE_AFTER", 2*time.Minute),
			PersistentTTL:        pkgconfig.GetEnvDuration("CACHE_PERSISTENT_TTL", 15*time.Minute),
			PersistentStaleAfter: pkgconfig.GetEnvDuration("CACHE_PERSISTENT_STALE_AFTER", 5*time.Minute),
		},
		Breaker: BreakerConfig{
			FailureThreshold: uint32(pkgconfig.GetEnvInt("BREAKER_FAILURE_THRESHOLD", 5)),
			CoolDown:         pkgconfig.GetEnvDuration("BREAKER_COOLDOWN", 30*time.Second),
			MaxRequests:      uint32(pkgconfig.GetEnvInt("BREAKER_MAX_REQUESTS", 1)),
			PrewarmServices:  pkgconfig.GetEnvStringList("BREAKER_PREWARM_SERVICES", nil),
		},
		Pacer: PacerConfig{
			RequestsPerSecond: pkgconfig.GetEnvFloat("PACER_REQUESTS_PER_SECOND", 10),
			Burst:             pkgconfig.GetEnvInt("PACER_BURST", 5),
		},
		Server: ServerConfig{
			MetricsAddr:     pkgconfig.GetEnvString("METRICS_ADDR", ":9090"),
			ShutdownTimeout: pkgconfig.GetEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
	}

	if path := pkgconfig.GetEnvString("HUBGATE_CONFIG_FILE", ""); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, fmt.Errorf("applying config file %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration correctness.
func (c *Config) Validate() error {
	if c.GitHub.BaseURL == "" {
		return fmt.Errorf("GITHUB_API_BASE_URL cannot be empty")
	}

	switch c.GitHub.Mode {
	case "production", "mock":
	default:
		return fmt.Errorf("GITHUB_CLIENT_MODE must be \"production\" or \"mock\", got %q", c.GitHub.Mode)
	}

	if err := pkgconfig.ValidateDurationRange(c.GitHub.RequestTimeout, time.Second, 10*time.Minute); err != nil {
		return fmt.Errorf("GITHUB_REQUEST_TIMEOUT: %w", err)
	}

	if c.Cache.MemoryCapacity <= 0 {
		return fmt.Errorf("CACHE_MEMORY_CAPACITY must be positive")
	}

	if err := pkgconfig.ValidatePositiveDuration(c.Cache.MemoryTTL); err != nil {
		return fmt.Errorf("CACHE_MEMORY_TTL: %w", err)
	}

	if err := pkgconfig.ValidatePositiveDuration(c.Cache.PersistentTTL); err != nil {
		return fmt.Errorf("CACHE_PERSISTENT_TTL: %w", err)
	}

	if c.Cache.MemoryStaleAfter > c.Cache.MemoryTTL {
		return fmt.Errorf("CACHE_MEMORY_STALE_AFTER must not exceed CACHE_MEMORY_TTL")
	}

	if c.Cache.PersistentStaleAfter > c.Cache.PersistentTTL {
		return fmt.Errorf("CACHE_PERSISTENT_STALE_AFTER must not exceed CACHE_PERSISTENT_TTL")
	}

	if c.Breaker.FailureThreshold == 0 {
		return fmt.Errorf("BREAKER_FAILURE_THRESHOLD must be positive")
	}

	if err := pkgconfig.ValidatePositiveDuration(c.Breaker.CoolDown); err != nil {
		return fmt.Errorf("BREAKER_COOLDOWN: %w", err)
	}

	if c.Pacer.RequestsPerSecond <= 0 {
		return fmt.Errorf("PACER_REQUESTS_PER_SECOND must be positive")
	}

	if c.Pacer.Burst <= 0 {
		return fmt.Errorf("PACER_BURST must be positive")
	}

	if c.Server.MetricsAddr == "" {
		return fmt.Errorf("METRICS_ADDR cannot be empty")
	}

	return nil
}
