package search

import "github.com/prometheus/client_golang/prometheus"

var (
	iterationsTotal   prometheus.Counter
	improvementsTotal prometheus.Counter
	runsTotal         *prometheus.CounterVec
	runDuration       prometheus.Histogram
	bestCost          prometheus.Gauge
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, *prometheus.CounterVec, prometheus.Histogram, prometheus.Gauge) {
	it := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_iterations_total",
		Help: "Local search iterations performed",
	})
	imp := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "search_improvements_total",
		Help: "Iterations that improved the best assignment",
	})
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "search_runs_total",
			Help: "Search runs by termination cause",
		},
		[]string{"outcome"},
	)
	dur := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "search_duration_seconds",
		Help:    "Wall-clock duration of search runs",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	})
	best := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "search_best_cost",
		Help: "Cost of the best assignment returned by the last run",
	})
	return it, imp, runs, dur, best
}

func init() {
	iterationsTotal, improvementsTotal, runsTotal, runDuration, bestCost = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers search metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(iterationsTotal, improvementsTotal, runsTotal, runDuration, bestCost)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	iterationsTotal, improvementsTotal, runsTotal, runDuration, bestCost = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
