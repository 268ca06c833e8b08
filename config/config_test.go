package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := write(t, "config.yaml", `search:
  p: 0.5
  max_iterations: 2000
  seed: 42
auction:
  speculative_rounds: 0
  margin: 0.25
  workers: 4
  history_path: "auctions.jsonl"
metrics:
  prometheus_addr: ":9100"
  sinks:
    - type: "prometheus"
    - type: "influx"
      conf:
        url: "http://localhost:8086"
        bucket: "haulage"
logging:
  level: debug
mqtt:
  broker: "tcp://localhost:1883"
  qos: 1
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.5, cfg.Search.P)
	assert.Equal(t, 2000, cfg.Search.MaxIterations)
	assert.Equal(t, 30000, cfg.Search.TimeBudgetMS)
	assert.Equal(t, int64(42), cfg.Search.Seed)

	assert.Zero(t, cfg.Auction.SpeculativeRounds)
	assert.Equal(t, 0.25, cfg.Auction.Margin)
	assert.Equal(t, 4, cfg.Auction.Workers)
	assert.Equal(t, 3, cfg.Auction.FutureTasks)
	assert.Equal(t, "auctions.jsonl", cfg.Auction.HistoryPath)

	require.Len(t, cfg.Metrics.Sinks, 2)
	assert.Equal(t, "influx", cfg.Metrics.Sinks[1].Type)
	assert.Equal(t, "haulage", cfg.Metrics.Sinks[1].Conf["bucket"])
	assert.Equal(t, ":9100", cfg.Metrics.PrometheusAddr)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	assert.Equal(t, byte(1), cfg.MQTT.QoS)
	assert.Equal(t, "haulage", cfg.MQTT.ClientID)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Search.P)
	assert.Equal(t, 10000, cfg.Search.MaxIterations)
	assert.Equal(t, 10, cfg.Auction.SpeculativeRounds)
	assert.Equal(t, 0.5, cfg.Auction.Margin)
	assert.Equal(t, 5000, cfg.Auction.BidBudgetMS)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.MQTT.Enabled())
}

func TestLoadKeepsPureExploration(t *testing.T) {
	cfg, err := Load(write(t, "explore.yaml", "search:\n  p: 0\n"))
	require.NoError(t, err)
	assert.Zero(t, cfg.Search.P)
	assert.Equal(t, 10000, cfg.Search.MaxIterations)
}

func TestLoadJSONWithEnvOverride(t *testing.T) {
	path := write(t, "config.json", `{"search": {"max_iterations": 10}, "auction": {"margin": 0.1}}`)
	t.Setenv("H_SEARCH__MAX_ITERATIONS", "77")
	t.Setenv("H_AUCTION__BID_BUDGET_MS", "250")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 77, cfg.Search.MaxIterations)
	assert.Equal(t, 250, cfg.Auction.BidBudgetMS)
	assert.Equal(t, 0.1, cfg.Auction.Margin)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(write(t, "config.toml", ""))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(write(t, "bad.yaml", "search:\n  p: 1.5\nlogging:\n  level: loud\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search.p")
	assert.Contains(t, err.Error(), "logging.level")
}
