package metrics

import "time"

// SearchRun summarizes one planning run.
type SearchRun struct {
	RunID        string
	Component    string
	Vehicles     int
	Tasks        int
	Iterations   int
	Improvements int
	InitialCost  float64
	BestCost     float64
	Outcome      string
	Duration     time.Duration
	Time         time.Time
}

// MetricsSink records planning runs for observability purposes.
type MetricsSink interface {
	RecordSearchRun(run SearchRun) error
}

// BidEvent captures a price computed for an offered task.
type BidEvent struct {
	RunID     string
	AgentID   int
	TaskID    int
	Amount    int64
	Marginal  float64
	Immediate float64
	// Speculative counts the informative speculative rounds.
	Speculative     int
	SpeculativeMean float64
	Ineligible      bool
	Duration        time.Duration
	Time            time.Time
}

// BidRecorder records computed bids.
type BidRecorder interface {
	RecordBid(ev BidEvent) error
}

// AuctionEvent is the outcome of one auction as seen by an agent.
type AuctionEvent struct {
	AgentID int
	TaskID  int
	Winner  int
	Won     bool
	// Price is the winning bid.
	Price int64
	Time  time.Time
}

// AuctionRecorder records auction outcomes.
type AuctionRecorder interface {
	RecordAuctionResult(ev AuctionEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordSearchRun(SearchRun) error        { return nil }
func (NopSink) RecordBid(BidEvent) error               { return nil }
func (NopSink) RecordAuctionResult(AuctionEvent) error { return nil }
