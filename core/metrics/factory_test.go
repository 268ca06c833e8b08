package metrics_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kilianp07/haulage/core/factory"
	metrics "github.com/kilianp07/haulage/core/metrics"
	inframetrics "github.com/kilianp07/haulage/infra/metrics"
)

type closingSink struct {
	metrics.NopSink
	closed bool
}

func (s *closingSink) Close() { s.closed = true }

func TestOpenSinks(t *testing.T) {
	s, err := metrics.OpenSinks(metrics.Config{})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.OpenSinks(metrics.Config{Sinks: []factory.ModuleConfig{{Type: "nop"}}})
	require.NoError(t, err)
	assert.IsType(t, metrics.NopSink{}, s)

	s, err = metrics.OpenSinks(metrics.Config{Sinks: []factory.ModuleConfig{{Type: "nop"}, {Type: "prometheus"}}})
	require.NoError(t, err)
	assert.IsType(t, &inframetrics.PromSink{}, s)

	_, err = metrics.OpenSinks(metrics.Config{Sinks: []factory.ModuleConfig{{Type: "statsd"}}})
	assert.ErrorContains(t, err, "statsd")

	assert.Subset(t, metrics.SinkTypes(), []string{"influx", "nop", "prometheus"})
}

func TestOpenSinks_ClosesOpenedOnFailure(t *testing.T) {
	opened := &closingSink{}
	require.NoError(t, metrics.RegisterSink("test-closing", func(map[string]any) (metrics.MetricsSink, error) {
		return opened, nil
	}))
	require.NoError(t, metrics.RegisterSink("test-broken", func(map[string]any) (metrics.MetricsSink, error) {
		return nil, errors.New("unreachable")
	}))
	assert.Error(t, metrics.RegisterSink("test-broken", func(map[string]any) (metrics.MetricsSink, error) { return nil, nil }))

	_, err := metrics.OpenSinks(metrics.Config{Sinks: []factory.ModuleConfig{{Type: "test-closing"}, {Type: "test-broken"}}})
	assert.ErrorContains(t, err, "sink 1 (test-broken)")
	assert.True(t, opened.closed)
}

func TestOpenSinks_FromYAML(t *testing.T) {
	data := `prometheus_addr: ":9100"
sinks:
  - type: prometheus
  - type: prometheus
`
	var cfg metrics.Config
	require.NoError(t, yaml.Unmarshal([]byte(data), &cfg))
	s, err := metrics.OpenSinks(cfg)
	require.NoError(t, err)
	multi, ok := s.(*metrics.MultiSink)
	require.True(t, ok, "expected MultiSink, got %T", s)
	assert.Len(t, multi.Sinks, 2)

	require.NoError(t, multi.RecordSearchRun(metrics.SearchRun{Component: "planner", Outcome: "iterations", BestCost: 12}))
	require.NoError(t, multi.RecordBid(metrics.BidEvent{AgentID: 1, TaskID: 2, Amount: 30}))
	multi.Close()
}
