package auction

import "github.com/prometheus/client_golang/prometheus"

var (
	bidsTotal        *prometheus.CounterVec
	marginalCost     prometheus.Histogram
	estimateDuration prometheus.Histogram
	tasksWonTotal    prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Histogram, prometheus.Counter) {
	bids := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auction_bids_total",
			Help: "Price requests by outcome",
		},
		[]string{"outcome"},
	)
	marginal := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "auction_marginal_cost",
		Help:    "Estimated marginal cost of offered tasks",
		Buckets: prometheus.ExponentialBuckets(1, 2, 16),
	})
	dur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "auction_estimate_duration_seconds",
		Help:    "Wall-clock time spent estimating marginal costs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
	won := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auction_tasks_won_total",
		Help: "Auctions won by the agent",
	})
	return bids, marginal, dur, won
}

func init() {
	bidsTotal, marginalCost, estimateDuration, tasksWonTotal = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers auction metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(bidsTotal, marginalCost, estimateDuration, tasksWonTotal)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	bidsTotal, marginalCost, estimateDuration, tasksWonTotal = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
