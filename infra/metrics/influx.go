package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/haulage/core/metrics"
	"github.com/kilianp07/haulage/infra/logger"
)

// InfluxSink writes planning and auction events to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

// RecordSearchRun writes one search_run point.
func (s *InfluxSink) RecordSearchRun(run coremetrics.SearchRun) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("search_run").
		AddTag("component", run.Component).
		AddTag("outcome", run.Outcome).
		AddTag("run_id", run.RunID).
		AddField("vehicles", run.Vehicles).
		AddField("tasks", run.Tasks).
		AddField("iterations", run.Iterations).
		AddField("improvements", run.Improvements).
		AddField("initial_cost", round3(run.InitialCost)).
		AddField("best_cost", round3(run.BestCost)).
		AddField("duration_ms", run.Duration.Milliseconds()).
		SetTime(run.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordBid writes one bid point.
func (s *InfluxSink) RecordBid(ev coremetrics.BidEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("bid").
		AddTag("agent_id", strconv.Itoa(ev.AgentID)).
		AddTag("task_id", strconv.Itoa(ev.TaskID)).
		AddTag("ineligible", strconv.FormatBool(ev.Ineligible))
	if ev.RunID != "" {
		p = p.AddTag("run_id", ev.RunID)
	}
	p = p.AddField("amount", ev.Amount).
		AddField("marginal", round3(ev.Marginal)).
		AddField("immediate", round3(ev.Immediate)).
		AddField("speculative_rounds", ev.Speculative).
		AddField("speculative_mean", round3(ev.SpeculativeMean)).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAuctionResult writes one auction_result point.
func (s *InfluxSink) RecordAuctionResult(ev coremetrics.AuctionEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("auction_result").
		AddTag("agent_id", strconv.Itoa(ev.AgentID)).
		AddTag("task_id", strconv.Itoa(ev.TaskID)).
		AddTag("won", strconv.FormatBool(ev.Won)).
		AddField("winner", ev.Winner).
		AddField("price", ev.Price).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
