package config

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LoggingConfig defines the minimum level of emitted log lines.
type LoggingConfig struct {
	// Level is one of trace, debug, info, warn, error or disabled.
	Level string `json:"level"`
}

// SetDefaults applies sane defaults.
func (c *LoggingConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

// Validate checks the level name.
func (c LoggingConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}
	return nil
}
