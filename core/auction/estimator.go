package auction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/haulage/core/logger"
	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/plan"
	"github.com/kilianp07/haulage/core/search"
)

// ErrIneligible reports that no vehicle can carry the offered task. It is a
// "no bid" outcome rather than a failure.
var ErrIneligible = errors.New("task ineligible: exceeds every vehicle capacity")

// Estimate is the marginal cost of one candidate task.
type Estimate struct {
	// Immediate is the cost increase of the re-optimized plan, never negative.
	Immediate float64
	// Speculative holds the positive per-round marginals; zero rounds are
	// dropped as uninformative.
	Speculative []float64
	// Marginal is max(Immediate, min(Speculative)).
	Marginal float64
	// Extended is the re-optimized plan including the candidate.
	Extended *plan.Assignment
	Rounds   int
	Elapsed  time.Duration
}

// SpeculativeMean returns the mean of the informative speculative marginals.
func (e Estimate) SpeculativeMean() float64 {
	if len(e.Speculative) == 0 {
		return 0
	}
	return stat.Mean(e.Speculative, nil)
}

// Estimator computes marginal costs by re-running the local search with and
// without the candidate task.
type Estimator struct {
	cfg    Config
	search search.Config
	dist   Distribution
	log    logger.Logger
	now    func() time.Time
}

// NewEstimator creates an estimator. A nil distribution disables speculation.
func NewEstimator(cfg Config, sc search.Config, dist Distribution, log logger.Logger) *Estimator {
	cfg.SetDefaults()
	sc.SetDefaults()
	sc.RecordHistory = false
	return &Estimator{cfg: cfg, search: sc, dist: dist, log: log, now: time.Now}
}

func (e *Estimator) speculative() bool {
	return e.cfg.SpeculativeRounds > 0 && e.dist != nil
}

// Estimate prices candidate against the committed assignment before deadline.
// Every random decision is drawn from rng or from seeds derived from it, so a
// fixed seed reproduces the same search trajectories.
func (e *Estimator) Estimate(ctx context.Context, committed *plan.Assignment, candidate model.Task, deadline time.Time, rng *rand.Rand) (Estimate, error) {
	begin := e.now()
	p := committed.Problem()
	if !model.AnyCanCarry(p.Vehicles(), candidate) {
		return Estimate{}, fmt.Errorf("%w: task %d weighs %d", ErrIneligible, candidate.ID, candidate.Weight)
	}
	withCandidate, err := p.WithTasks(candidate)
	if err != nil {
		return Estimate{}, err
	}

	immediateDeadline := deadline
	var seeds []int64
	if e.speculative() {
		immediateDeadline = begin.Add(time.Duration(float64(deadline.Sub(begin)) * e.cfg.ImmediateShare))
		seeds = deriveSeeds(rng.Int63(), e.cfg.SpeculativeRounds)
	}

	start, err := committed.Extend(withCandidate, rng)
	if err != nil {
		return Estimate{}, err
	}
	res := search.NewDriver(e.search, rng, e.log).Run(ctx, start, immediateDeadline)
	est := Estimate{
		Immediate: math.Max(0, res.Best.Cost()-committed.Cost()),
		Extended:  res.Best,
	}
	est.Marginal = est.Immediate

	if len(seeds) > 0 {
		est.Speculative, est.Marginal = combineMarginals(est.Immediate, e.speculate(ctx, committed, candidate, deadline, seeds))
		est.Rounds = len(seeds)
	}
	est.Elapsed = e.now().Sub(begin)
	marginalCost.Observe(est.Marginal)
	estimateDuration.Observe(est.Elapsed.Seconds())
	if e.log != nil {
		e.log.Debugw("marginal cost estimated", map[string]any{
			"task_id":          candidate.ID,
			"immediate":        est.Immediate,
			"marginal":         est.Marginal,
			"rounds":           est.Rounds,
			"informative":      len(est.Speculative),
			"speculative_mean": est.SpeculativeMean(),
			"elapsed_ms":       est.Elapsed.Milliseconds(),
		})
	}
	return est, nil
}

// combineMarginals drops rounds that are not strictly positive and returns the
// rest with max(immediate, min(rest)), or immediate when none remain.
func combineMarginals(immediate float64, rounds []float64) ([]float64, float64) {
	var informative []float64
	for _, m := range rounds {
		if m > 0 {
			informative = append(informative, m)
		}
	}
	if len(informative) == 0 {
		return nil, immediate
	}
	return informative, math.Max(immediate, floats.Min(informative))
}

// speculate runs one round per seed, Workers at a time, and returns the
// per-round marginals in seed order. Failed rounds yield zero.
func (e *Estimator) speculate(ctx context.Context, committed *plan.Assignment, candidate model.Task, deadline time.Time, seeds []int64) []float64 {
	out := make([]float64, len(seeds))
	workers := min(e.cfg.Workers, len(seeds))
	waves := (len(seeds) + workers - 1) / workers
	slot := deadline.Sub(e.now()) / time.Duration(waves)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, seed := range seeds {
		i, seed := i, seed
		g.Go(func() error {
			roundStart := e.now()
			end := roundStart.Add(slot)
			if end.After(deadline) {
				end = deadline
			}
			mid := roundStart.Add(end.Sub(roundStart) / 2)
			m, err := e.round(gctx, committed, candidate, i, seed, mid, end)
			if err != nil {
				if e.log != nil {
					e.log.Warnf("speculative round %d for task %d skipped: %v", i, candidate.ID, err)
				}
				return nil
			}
			out[i] = m
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// round compares the plan for committed plus sampled future tasks with and
// without the candidate.
func (e *Estimator) round(ctx context.Context, committed *plan.Assignment, candidate model.Task, idx int, seed int64, mid, end time.Time) (float64, error) {
	rng := rand.New(rand.NewSource(seed))
	p := committed.Problem()
	future := e.sampleFuture(rng, p.Vehicles(), idx)

	without, err := p.WithTasks(future...)
	if err != nil {
		return 0, err
	}
	startWithout, err := committed.Extend(without, rng)
	if err != nil {
		return 0, err
	}
	base := search.NewDriver(e.search, rng, e.log).Run(ctx, startWithout, mid)

	with, err := without.WithTasks(candidate)
	if err != nil {
		return 0, err
	}
	startWith, err := base.Best.Extend(with, rng)
	if err != nil {
		return 0, err
	}
	ext := search.NewDriver(e.search, rng, e.log).Run(ctx, startWith, end)
	return math.Max(0, ext.Best.Cost()-base.Best.Cost()), nil
}

// sampleFuture draws FutureTasks synthetic tasks with negative ids unique to
// the round, dropping samples no vehicle can carry.
func (e *Estimator) sampleFuture(rng *rand.Rand, vehicles []model.Vehicle, idx int) []model.Task {
	m := e.cfg.FutureTasks
	out := make([]model.Task, 0, m)
	for j := 0; j < m; j++ {
		t := e.dist.Sample(rng, -(idx*m + j + 1))
		if model.AnyCanCarry(vehicles, t) {
			out = append(out, t)
		}
	}
	return out
}
