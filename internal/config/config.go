// Package config loads process-level settings from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by the CLI commands. Commands layer
// their flag values on top, so flags win over the environment.
type Config struct {
	// RemoteURL is the base URL of the reusable-block collection API.
	// When set, commands talk HTTP; otherwise they fall back to DBPath.
	RemoteURL string `env:"GUTENBERG_REMOTE_URL"`

	// RemoteToken is the bearer token sent with every collection request.
	RemoteToken string `env:"GUTENBERG_REMOTE_TOKEN"`

	// DBPath is the SQLite database backing a local collection.
	DBPath string `env:"GUTENBERG_DB_PATH"`

	// HTTPTimeout bounds each remote request.
	HTTPTimeout time.Duration `env:"GUTENBERG_HTTP_TIMEOUT" envDefault:"10s"`
}

// FromEnv loads configuration from GUTENBERG_* environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
