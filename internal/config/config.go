package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Run     RunConfig
	Output  OutputConfig
	Logging LogConfig
}

// RunConfig holds scheduler configuration.
type RunConfig struct {
	// TimeoutSeconds of zero selects exhaustive mode. A negative
	// PollInterval disables the idle wait between polls.
	TimeoutSeconds int           `envconfig:"MAVG_TIMEOUT" default:"0"`
	PollInterval   time.Duration `envconfig:"MAVG_POLL_INTERVAL" default:"5ms"`
	Manifest       string        `envconfig:"MAVG_MANIFEST"`
}

// OutputConfig holds side outputs of a run.
type OutputConfig struct {
	MetricsFile string `envconfig:"MAVG_METRICS_FILE"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Verbose     bool   `envconfig:"MAVG_VERBOSE" default:"false"`
	Level       string `envconfig:"LOG_LEVEL" default:"warn"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
	// Outputs are zap output paths; "stderr" is the process side channel.
	Outputs []string `envconfig:"LOG_OUTPUT" default:"stderr"`
}

// Timeout returns the run timeout as a duration.
func (c RunConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the scheduler cannot run with.
func (c *Config) Validate() error {
	if c.Run.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout must not be negative: %d", c.Run.TimeoutSeconds)
	}
	return nil
}
