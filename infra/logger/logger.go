package logger

import (
	"fmt"

	"github.com/rs/zerolog"

	corelogger "github.com/kilianp07/haulage/core/logger"
)

// Logger mirrors the core logger interface.
type Logger = corelogger.Logger

// NopLogger implements Logger with no-op methods.
type NopLogger = corelogger.Nop

// New returns a Logger for the given component. The environment is detected via
// the APP_ENV variable.
func New(component string) Logger {
	return NewZerologLogger(component)
}

// SetLevel sets the minimum level of every logger. An empty level keeps info.
func SetLevel(level string) error {
	if level == "" {
		level = "info"
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logging level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}
