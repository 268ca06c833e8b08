// Package search runs the anytime stochastic local search over plan
// assignments.
package search

import (
	"context"
	"math/rand"
	"time"

	"github.com/kilianp07/haulage/core/logger"
	"github.com/kilianp07/haulage/core/plan"
)

// Outcomes reported by Result.Outcome and the search_runs_total metric.
const (
	OutcomeDeadline        = "deadline"
	OutcomeIterations      = "iterations"
	OutcomeCanceled        = "canceled"
	OutcomeDeadlineAtEntry = "deadline_at_entry"
)

// Result is the outcome of one search run.
type Result struct {
	Best         *plan.Assignment
	InitialCost  float64
	Iterations   int
	Improvements int
	// DeadlineExceededAtEntry is set when the deadline had already passed; Best
	// is then the start assignment and no iteration ran.
	DeadlineExceededAtEntry bool
	Outcome                 string
	Elapsed                 time.Duration
	// History holds the best cost after each iteration when enabled.
	History []float64
}

// Driver runs the local search. A Driver owns its random source and must not
// be shared between goroutines.
type Driver struct {
	cfg Config
	rng *rand.Rand
	log logger.Logger
	now func() time.Time
}

// NewDriver creates a driver drawing every random decision from rng.
func NewDriver(cfg Config, rng *rand.Rand, log logger.Logger) *Driver {
	cfg.SetDefaults()
	return &Driver{cfg: cfg, rng: rng, log: log, now: time.Now}
}

// Solve builds a random initial assignment for p and improves it until the
// deadline. It returns plan.ErrInfeasible without iterating when a task cannot
// be carried by any vehicle.
func (d *Driver) Solve(ctx context.Context, p *plan.Problem, deadline time.Time) (Result, error) {
	start, err := plan.BuildRandomInitial(p, d.rng)
	if err != nil {
		runsTotal.WithLabelValues("infeasible").Inc()
		return Result{}, err
	}
	return d.Run(ctx, start, deadline), nil
}

// Run improves start until the deadline passes, the iteration cap is reached
// or ctx is done, and returns the best assignment seen.
func (d *Driver) Run(ctx context.Context, start *plan.Assignment, deadline time.Time) Result {
	begin := d.now()
	res := Result{Best: start, InitialCost: start.Cost()}
	if !begin.Before(deadline) {
		res.DeadlineExceededAtEntry = true
		res.Outcome = OutcomeDeadlineAtEntry
		d.finish(&res, begin)
		return res
	}

	current := start
	res.Outcome = OutcomeIterations
	for res.Iterations < d.cfg.MaxIterations {
		if !d.now().Before(deadline) {
			res.Outcome = OutcomeDeadline
			break
		}
		if ctx.Err() != nil {
			res.Outcome = OutcomeCanceled
			break
		}
		res.Iterations++
		neighbors := plan.Neighbors(current, d.rng)
		if d.rng.Float64() <= d.cfg.P {
			if n := cheapest(neighbors); n != nil {
				current = n
			}
		} else if len(neighbors) > 0 {
			current = neighbors[d.rng.Intn(len(neighbors))]
		}
		if current.Cost() < res.Best.Cost() {
			res.Best = current
			res.Improvements++
		}
		if d.cfg.RecordHistory {
			res.History = append(res.History, res.Best.Cost())
		}
	}
	d.finish(&res, begin)
	return res
}

func (d *Driver) finish(res *Result, begin time.Time) {
	res.Elapsed = d.now().Sub(begin)
	iterationsTotal.Add(float64(res.Iterations))
	improvementsTotal.Add(float64(res.Improvements))
	runsTotal.WithLabelValues(res.Outcome).Inc()
	runDuration.Observe(res.Elapsed.Seconds())
	bestCost.Set(res.Best.Cost())
	if d.log != nil {
		d.log.Debugw("search run finished", map[string]any{
			"outcome":      res.Outcome,
			"iterations":   res.Iterations,
			"improvements": res.Improvements,
			"initial_cost": res.InitialCost,
			"best_cost":    res.Best.Cost(),
			"elapsed_ms":   res.Elapsed.Milliseconds(),
		})
	}
}

// cheapest returns the first neighbor of minimal cost, or nil.
func cheapest(ns []*plan.Assignment) *plan.Assignment {
	var best *plan.Assignment
	for _, n := range ns {
		if best == nil || n.Cost() < best.Cost() {
			best = n
		}
	}
	return best
}
