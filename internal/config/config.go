package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jwebster45206/story-crafter/pkg/actor"
)

type Config struct {
	Port        string `env:"PORT"        envDefault:"8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevelRaw string `env:"LOG_LEVEL"   envDefault:"info"`
	LogLevel    slog.Level

	RedisURL     string        `env:"REDIS_URL"     envDefault:"redis://localhost:6379"`
	StorageTTL   time.Duration `env:"STORAGE_TTL"   envDefault:"168h"`
	CatalogueDir string        `env:"CATALOGUE_DIR"` // empty uses the embedded catalogue

	// Seed fixes the random source; 0 draws a fresh seed per run.
	Seed        int64  `env:"SEED"          envDefault:"0"`
	HQSlotCount int    `env:"HQ_SLOT_COUNT" envDefault:"3"`
	PowerFactor int    `env:"POWER_FACTOR"  envDefault:"3"`
	DefaultSide string `env:"DEFAULT_SIDE"  envDefault:"order"`

	WorkerID          string `env:"WORKER_ID"` // empty generates one
	WorkerConcurrency int    `env:"WORKER_CONCURRENCY" envDefault:"2"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = parseLogLevel(cfg.LogLevelRaw)

	if cfg.HQSlotCount < 1 {
		return nil, fmt.Errorf("HQ_SLOT_COUNT must be positive, got %d", cfg.HQSlotCount)
	}
	if cfg.PowerFactor < 1 {
		return nil, fmt.Errorf("POWER_FACTOR must be positive, got %d", cfg.PowerFactor)
	}
	if cfg.WorkerConcurrency < 1 {
		return nil, fmt.Errorf("WORKER_CONCURRENCY must be positive, got %d", cfg.WorkerConcurrency)
	}
	return &cfg, nil
}

// PoolConfig returns the actor pool tuning.
func (c *Config) PoolConfig() actor.PoolConfig {
	return actor.PoolConfig{HQSlotCount: c.HQSlotCount, PowerFactor: c.PowerFactor}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
