package config

import (
	"fmt"
	"log/slog"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/arhunt.db"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// RedisURL enables the leaderboard mirror when set. Empty runs the
	// backend on sqlite alone.
	RedisURL string `env:"REDIS_URL"`

	// WinTarget is the collected count that wins. Zero means every item
	// in the catalog.
	WinTarget int `env:"WIN_TARGET" envDefault:"0"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
