package auction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	c := DefaultConfig()
	assert.NoError(t, c.Validate())
	assert.Equal(t, 10, c.SpeculativeRounds)
	assert.Equal(t, 3, c.FutureTasks)
	assert.Equal(t, 5*time.Second, c.BidBudget())

	var zero Config
	zero.SetDefaults()
	assert.NoError(t, zero.Validate())
	assert.Zero(t, zero.SpeculativeRounds)
	assert.Zero(t, zero.Margin)
}

func TestConfigValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"rounds":  func(c *Config) { c.SpeculativeRounds = -1 },
		"share":   func(c *Config) { c.ImmediateShare = 1 },
		"margin":  func(c *Config) { c.Margin = -0.1 },
		"workers": func(c *Config) { c.Workers = -2 },
		"budget":  func(c *Config) { c.BidBudgetMS = -1 },
		"future":  func(c *Config) { c.FutureTasks = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := DefaultConfig()
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
