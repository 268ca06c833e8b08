package auction

import (
	"fmt"
	"time"
)

// Config tunes bidding.
type Config struct {
	// SpeculativeRounds is the number of future-task scenarios evaluated per
	// offer; 0 disables speculation.
	SpeculativeRounds int `json:"speculative_rounds"`
	// FutureTasks is the number of synthetic tasks sampled per round.
	FutureTasks int `json:"future_tasks"`
	// ImmediateShare is the fraction of the bid budget spent on the immediate
	// re-solve when speculation is enabled.
	ImmediateShare float64 `json:"immediate_share"`
	BidBudgetMS    int     `json:"bid_budget_ms"`
	// Margin moves the bid towards the cheapest competitor price when that
	// price exceeds the marginal cost: 0 bids the cost, 1 matches the competitor.
	Margin      float64 `json:"margin"`
	Workers     int     `json:"workers"`
	HistoryPath string  `json:"history_path"`
}

// DefaultConfig returns the default bidding settings.
func DefaultConfig() Config {
	c := Config{SpeculativeRounds: 10, Margin: 0.5}
	c.SetDefaults()
	return c
}

// SetDefaults fills zero values whose zero is meaningless. SpeculativeRounds
// and Margin keep their zero value so both can be switched off.
func (c *Config) SetDefaults() {
	if c.FutureTasks == 0 {
		c.FutureTasks = 3
	}
	if c.ImmediateShare == 0 {
		c.ImmediateShare = 0.3
	}
	if c.BidBudgetMS == 0 {
		c.BidBudgetMS = 5000
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
}

// Validate checks parameter ranges.
func (c Config) Validate() error {
	if c.SpeculativeRounds < 0 {
		return fmt.Errorf("auction.speculative_rounds must be non-negative, got %d", c.SpeculativeRounds)
	}
	if c.FutureTasks <= 0 {
		return fmt.Errorf("auction.future_tasks must be positive, got %d", c.FutureTasks)
	}
	if c.ImmediateShare <= 0 || c.ImmediateShare >= 1 {
		return fmt.Errorf("auction.immediate_share must be within (0,1), got %v", c.ImmediateShare)
	}
	if c.BidBudgetMS <= 0 {
		return fmt.Errorf("auction.bid_budget_ms must be positive, got %d", c.BidBudgetMS)
	}
	if c.Margin < 0 {
		return fmt.Errorf("auction.margin must be non-negative, got %v", c.Margin)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("auction.workers must be positive, got %d", c.Workers)
	}
	return nil
}

// BidBudget returns BidBudgetMS as a duration.
func (c Config) BidBudget() time.Duration {
	return time.Duration(c.BidBudgetMS) * time.Millisecond
}
