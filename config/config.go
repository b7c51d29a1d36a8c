// Package config loads SDK configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config is the embedder-facing SDK configuration.
type Config struct {
	API   API   `envPrefix:"CHECKOUT_API_"`
	Redis Redis `envPrefix:"CHECKOUT_REDIS_"`
	Log   Log   `envPrefix:"CHECKOUT_LOG_"`

	// OrderTTL overrides how long a loaded order stays fresh.
	OrderTTL time.Duration `env:"CHECKOUT_ORDER_TTL" envDefault:"15m"`
}

type API struct {
	BaseURL string        `env:"BASE_URL"`
	Key     string        `env:"KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"30s"`
}

type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Log struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
}

// Load parses the configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
