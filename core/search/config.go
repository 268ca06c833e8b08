package search

import (
	"fmt"
	"time"
)

// Config tunes the local search.
type Config struct {
	// P is the probability of taking the exploitation branch. Zero is kept
	// as pure exploration; DefaultConfig supplies the usual value.
	P             float64 `json:"p"`
	MaxIterations int     `json:"max_iterations"`
	// TimeBudgetMS is the default planning budget used by callers that do not
	// supply their own deadline.
	TimeBudgetMS int `json:"time_budget_ms"`
	// Seed seeds the search random source; 0 selects a time-based seed.
	Seed int64 `json:"seed"`
	// RecordHistory keeps the best cost after every iteration in Result.History.
	RecordHistory bool `json:"record_history"`
}

// DefaultConfig returns the default search settings.
func DefaultConfig() Config {
	c := Config{P: 0.3}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values whose zero is meaningless. P keeps its zero
// value.
func (c *Config) SetDefaults() {
	if c.MaxIterations == 0 {
		c.MaxIterations = 10000
	}
	if c.TimeBudgetMS == 0 {
		c.TimeBudgetMS = 30000
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.P < 0 || c.P > 1 {
		return fmt.Errorf("search.p must be within [0,1], got %v", c.P)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("search.max_iterations must be positive, got %d", c.MaxIterations)
	}
	if c.TimeBudgetMS <= 0 {
		return fmt.Errorf("search.time_budget_ms must be positive, got %d", c.TimeBudgetMS)
	}
	return nil
}

// TimeBudget returns TimeBudgetMS as a duration.
func (c Config) TimeBudget() time.Duration {
	return time.Duration(c.TimeBudgetMS) * time.Millisecond
}
