package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML override schema. Every field is optional; only set
// fields replace the environment-derived values. Durations use Go syntax
// ("30s", "5m").
type fileConfig struct {
	GitHub struct {
		BaseURL              string `yaml:"base_url"`
		Mode                 string `yaml:"mode"`
		RequestTimeout       string `yaml:"request_timeout"`
		RateSnapshotSchedule string `yaml:"rate_snapshot_schedule"`
	} `yaml:"github"`
	Cache struct {
		RedisAddr            string `yaml:"redis_addr"`
		MemoryCapacity       *int   `yaml:"memory_capacity"`
		MemoryTTL            string `yaml:"memory_ttl"`
		MemoryStaleAfter     string `yaml:"memory_stale_after"`
		PersistentTTL        string `yaml:"persistent_ttl"`
		PersistentStaleAfter string `yaml:"persistent_stale_after"`
	} `yaml:"cache"`
	Breaker struct {
		FailureThreshold *uint32 `yaml:"failure_threshold"`
		CoolDown         string  `yaml:"cooldown"`
		MaxRequests      *uint32 `yaml:"max_requests"`
	} `yaml:"breaker"`
	Pacer struct {
		RequestsPerSecond *float64 `yaml:"requests_per_second"`
		Burst             *int     `yaml:"burst"`
	} `yaml:"pacer"`
	Server struct {
		MetricsAddr     string `yaml:"metrics_addr"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
	} `yaml:"server"`
}

// applyFile overlays the YAML file at path onto cfg.
func applyFile(cfg *Config, path string) error {
	// #nosec G304 -- path comes from the operator's environment, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	setString(&cfg.GitHub.BaseURL, fc.GitHub.BaseURL)
	setString(&cfg.GitHub.Mode, fc.GitHub.Mode)
	setString(&cfg.GitHub.RateSnapshotSchedule, fc.GitHub.RateSnapshotSchedule)
	if err := setDuration(&cfg.GitHub.RequestTimeout, fc.GitHub.RequestTimeout, "github.request_timeout"); err != nil {
		return err
	}

	setString(&cfg.Cache.RedisAddr, fc.Cache.RedisAddr)
	if fc.Cache.MemoryCapacity != nil {
		cfg.Cache.MemoryCapacity = *fc.Cache.MemoryCapacity
	}
	if err := setDuration(&cfg.Cache.MemoryTTL, fc.Cache.MemoryTTL, "cache.memory_ttl"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Cache.MemoryStaleAfter, fc.Cache.MemoryStaleAfter, "cache.memory_stale_after"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Cache.PersistentTTL, fc.Cache.PersistentTTL, "cache.persistent_ttl"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Cache.PersistentStaleAfter, fc.Cache.PersistentStaleAfter, "cache.persistent_stale_after"); err != nil {
		return err
	}

	if fc.Breaker.FailureThreshold != nil {
		cfg.Breaker.FailureThreshold = *fc.Breaker.FailureThreshold
	}
	if fc.Breaker.MaxRequests != nil {
		cfg.Breaker.MaxRequests = *fc.Breaker.MaxRequests
	}
	if err := setDuration(&cfg.Breaker.CoolDown, fc.Breaker.CoolDown, "breaker.cooldown"); err != nil {
		return err
	}

	if fc.Pacer.RequestsPerSecond != nil {
		cfg.Pacer.RequestsPerSecond = *fc.Pacer.RequestsPerSecond
	}
	if fc.Pacer.Burst != nil {
		cfg.Pacer.Burst = *fc.Pacer.Burst
	}

	setString(&cfg.Server.MetricsAddr, fc.Server.MetricsAddr)
	if err := setDuration(&cfg.Server.ShutdownTimeout, fc.Server.ShutdownTimeout, "server.shutdown_timeout"); err != nil {
		return err
	}

	return nil
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, value, field string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*dst = d
	return nil
}
