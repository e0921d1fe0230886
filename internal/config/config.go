// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/wpml2pll/internal/store"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver    string `env:"W2P_DB_DRIVER" envDefault:"mysql"`
	DBDSN       string `env:"W2P_DB_DSN,required"`
	TablePrefix string `env:"W2P_TABLE_PREFIX" envDefault:"wp_"`

	BatchSize             int           `env:"W2P_BATCH_SIZE" envDefault:"25000"`
	ExcludedStringDomains []string      `env:"W2P_EXCLUDED_STRING_DOMAINS" envSeparator:","`
	StepInterval          time.Duration `env:"W2P_STEP_INTERVAL" envDefault:"0s"`

	Env      string `env:"W2P_ENV" envDefault:"development"`
	LogLevel string `env:"W2P_LOG_LEVEL" envDefault:"info"`
	Lang     string `env:"W2P_LANG" envDefault:"en"`

	ServerHost string `env:"W2P_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"W2P_SERVER_PORT" envDefault:"8080"`

	// APIToken guards the serve mode endpoints; empty disables auth.
	APIToken     string  `env:"W2P_API_TOKEN"`
	MigrateRPS   float64 `env:"W2P_MIGRATE_RPS" envDefault:"2"`
	MigrateBurst int     `env:"W2P_MIGRATE_BURST" envDefault:"4"`

	// Schedule is a cron spec for the schedule mode.
	Schedule string `env:"W2P_SCHEDULE" envDefault:"@every 1h"`

	// Language cache. Without RedisURL the cache is in memory.
	RedisURL    string `env:"W2P_REDIS_URL"`
	CachePrefix string `env:"W2P_CACHE_PREFIX" envDefault:"wpml2pll:"`
	CacheTTL    int    `env:"W2P_CACHE_TTL" envDefault:"300"` // seconds
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// CacheTTLDuration returns the cache TTL as a duration.
func (c Config) CacheTTLDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// SlogLevel maps LogLevel to a slog level; unknown values mean info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	switch cfg.DBDriver {
	case store.DriverMySQL, store.DriverSQLite:
	default:
		return nil, fmt.Errorf("W2P_DB_DRIVER must be %q or %q, got %q", store.DriverMySQL, store.DriverSQLite, cfg.DBDriver)
	}

	if _, err := store.NewTables(cfg.TablePrefix); err != nil {
		return nil, fmt.Errorf("W2P_TABLE_PREFIX: %w", err)
	}

	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("W2P_BATCH_SIZE must be positive, got %d", cfg.BatchSize)
	}
	if cfg.StepInterval < 0 {
		return nil, fmt.Errorf("W2P_STEP_INTERVAL must not be negative, got %s", cfg.StepInterval)
	}

	if cfg.MigrateRPS < 0 {
		return nil, fmt.Errorf("W2P_MIGRATE_RPS must not be negative, got %v", cfg.MigrateRPS)
	}

	domains := cfg.ExcludedStringDomains[:0]
	for _, d := range cfg.ExcludedStringDomains {
		if d = strings.TrimSpace(d); d != "" {
			domains = append(domains, d)
		}
	}
	cfg.ExcludedStringDomains = domains

	return cfg, nil
}
