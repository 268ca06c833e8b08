package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/haulage/core/metrics"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(data)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordSearchRun(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	run := coremetrics.SearchRun{
		RunID:        "r1",
		Component:    "planner",
		Outcome:      "deadline",
		Vehicles:     2,
		Tasks:        5,
		Iterations:   100,
		Improvements: 7,
		InitialCost:  200.12345,
		BestCost:     150.5,
		Duration:     1500 * time.Millisecond,
		Time:         now,
	}
	if err := sink.RecordSearchRun(run); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("search_run").
		AddTag("component", "planner").
		AddTag("outcome", "deadline").
		AddTag("run_id", "r1").
		AddField("vehicles", 2).
		AddField("tasks", 5).
		AddField("iterations", 100).
		AddField("improvements", 7).
		AddField("initial_cost", 200.123).
		AddField("best_cost", 150.5).
		AddField("duration_ms", int64(1500)).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != expected {
		t.Errorf("unexpected body: %v\nwant %s", got, expected)
	}
}

func TestInfluxSink_RecordBidAndAuction(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	if err := sink.RecordBid(coremetrics.BidEvent{AgentID: 1, TaskID: 3, Amount: 250, Marginal: 240.4, Time: now}); err != nil {
		t.Fatalf("record bid: %v", err)
	}
	if err := sink.RecordAuctionResult(coremetrics.AuctionEvent{AgentID: 1, TaskID: 3, Winner: 1, Won: true, Price: 250, Time: now}); err != nil {
		t.Fatalf("record auction: %v", err)
	}
	got := bodies()
	if len(got) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(got))
	}
	if !strings.HasPrefix(got[0], "bid,agent_id=1,task_id=3,ineligible=false ") {
		t.Errorf("unexpected bid line: %s", got[0])
	}
	if !strings.Contains(got[1], "price=250i") || !strings.HasPrefix(got[1], "auction_result,") {
		t.Errorf("unexpected auction line: %s", got[1])
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
