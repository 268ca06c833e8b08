package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/haulage/core/metrics"
)

// PromSink records planning and auction events in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	cost     *prometheus.GaugeVec
	bids     *prometheus.CounterVec
	amount   prometheus.Histogram
	auctions *prometheus.CounterVec
}

// NewPromSink registers sink metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Creating a
// second sink on the same registerer reuses the existing collectors.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "plan_runs_total",
		Help: "Planning runs recorded by component and outcome",
	}, []string{"component", "outcome"})
	cost := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "plan_cost",
		Help: "Cost of the last plan produced by component",
	}, []string{"component"})
	bids := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bids_submitted_total",
		Help: "Bids computed by agent and outcome",
	}, []string{"agent", "outcome"})
	amount := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bid_amount",
		Help:    "Distribution of submitted bid amounts",
		Buckets: prometheus.ExponentialBuckets(10, 2, 12),
	})
	auctions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auctions_resolved_total",
		Help: "Auctions resolved by agent and result",
	}, []string{"agent", "won"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if cost, err = register(reg, cost); err != nil {
		return nil, err
	}
	if bids, err = register(reg, bids); err != nil {
		return nil, err
	}
	if amount, err = register(reg, amount); err != nil {
		return nil, err
	}
	if auctions, err = register(reg, auctions); err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, cost: cost, bids: bids, amount: amount, auctions: auctions}, nil
}

// register adds c to reg, returning the already registered collector when
// an identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSearchRun counts the run and exports its best cost.
func (s *PromSink) RecordSearchRun(run coremetrics.SearchRun) error {
	s.runs.WithLabelValues(run.Component, run.Outcome).Inc()
	s.cost.WithLabelValues(run.Component).Set(run.BestCost)
	return nil
}

// RecordBid counts the bid and observes its amount.
func (s *PromSink) RecordBid(ev coremetrics.BidEvent) error {
	agent := strconv.Itoa(ev.AgentID)
	if ev.Ineligible {
		s.bids.WithLabelValues(agent, "ineligible").Inc()
		return nil
	}
	s.bids.WithLabelValues(agent, "submitted").Inc()
	s.amount.Observe(float64(ev.Amount))
	return nil
}

// RecordAuctionResult counts won and lost auctions.
func (s *PromSink) RecordAuctionResult(ev coremetrics.AuctionEvent) error {
	s.auctions.WithLabelValues(strconv.Itoa(ev.AgentID), strconv.FormatBool(ev.Won)).Inc()
	return nil
}
