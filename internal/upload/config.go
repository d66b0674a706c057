package upload

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from SHIFTSYNC_* environment variables; the CLIs layer
// flag overrides on top.
type Config struct {
	WatchDir string        `env:"SHIFTSYNC_WATCH_DIR"`
	Endpoint string        `env:"SHIFTSYNC_ENDPOINT"`
	Token    string        `env:"SHIFTSYNC_TOKEN"`
	Prefix   string        `env:"SHIFTSYNC_PREFIX" envDefault:"shift_manager_imports"`
	Interval time.Duration `env:"SHIFTSYNC_INTERVAL" envDefault:"15m"` // tray scan cadence
	Verbose  bool          `env:"SHIFTSYNC_VERBOSE"`
}

// LoadConfig parses the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the fields every uploader needs.
func (c Config) Validate() error {
	if c.WatchDir == "" {
		return fmt.Errorf("watch dir not set (SHIFTSYNC_WATCH_DIR or -dir)")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("storage endpoint not set (SHIFTSYNC_ENDPOINT or -endpoint)")
	}
	return nil
}
