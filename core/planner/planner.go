// Package planner computes delivery plans for a fleet: it runs the local
// search over a set of tasks and turns the best assignment into per-vehicle
// step lists.
package planner

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/haulage/core/events"
	"github.com/kilianp07/haulage/core/logger"
	coremetrics "github.com/kilianp07/haulage/core/metrics"
	"github.com/kilianp07/haulage/core/model"
	coremqtt "github.com/kilianp07/haulage/core/mqtt"
	"github.com/kilianp07/haulage/core/plan"
	"github.com/kilianp07/haulage/core/search"
	"github.com/kilianp07/haulage/core/topology"
	"github.com/kilianp07/haulage/internal/eventbus"
)

// VehiclePlan is the itinerary of one vehicle.
type VehiclePlan struct {
	RunID     string      `json:"run_id"`
	VehicleID int         `json:"vehicle_id"`
	Steps     []plan.Step `json:"steps"`
	Distance  float64     `json:"distance"`
	Cost      float64     `json:"cost"`
}

// Result is the outcome of one planning run.
type Result struct {
	RunID string
	Plans []VehiclePlan
	Cost  float64
	// Search is the driver summary; Best is nil for an empty task set.
	Search search.Result
}

// Planner plans a fleet against a fixed distance oracle.
type Planner struct {
	cfg    search.Config
	oracle topology.Oracle
	rng    *rand.Rand
	log    logger.Logger
	sink   coremetrics.MetricsSink
	pub    coremqtt.Publisher
	bus    *eventbus.Bus[events.Event]
}

// New creates a planner. Every random decision is drawn from rng.
func New(cfg search.Config, oracle topology.Oracle, rng *rand.Rand, log logger.Logger) *Planner {
	cfg.SetDefaults()
	if log == nil {
		log = logger.Nop{}
	}
	return &Planner{
		cfg:    cfg,
		oracle: oracle,
		rng:    rng,
		log:    log,
		sink:   coremetrics.NopSink{},
		pub:    coremqtt.NopPublisher{},
	}
}

// SetSink configures the sink receiving one SearchRun per plan.
func (p *Planner) SetSink(s coremetrics.MetricsSink) {
	if s != nil {
		p.sink = s
	}
}

// SetPublisher configures the publisher receiving each vehicle plan under
// "plans/<vehicle id>".
func (p *Planner) SetPublisher(pub coremqtt.Publisher) {
	if pub != nil {
		p.pub = pub
	}
}

// SetBus configures the bus receiving a PlanEvent per run.
func (p *Planner) SetBus(b *eventbus.Bus[events.Event]) { p.bus = b }

// Plan assigns tasks to vehicles and improves the assignment until deadline.
// It fails with plan.ErrInfeasible when a task fits no vehicle and with
// topology.ErrUnknownCity when a home or task city is not in the network.
func (p *Planner) Plan(ctx context.Context, vehicles []model.Vehicle, tasks []model.Task, deadline time.Time) (Result, error) {
	runID := uuid.NewString()
	for _, v := range vehicles {
		if err := v.Validate(); err != nil {
			return Result{}, err
		}
	}
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return Result{}, err
		}
	}
	problem, err := plan.NewProblem(vehicles, tasks, p.oracle)
	if err != nil {
		return Result{}, err
	}

	res := Result{RunID: runID}
	var best *plan.Assignment
	if len(tasks) == 0 {
		best = plan.Empty(problem)
		res.Search = search.Result{Best: best, Outcome: search.OutcomeIterations}
	} else {
		sr, err := search.NewDriver(p.cfg, p.rng, p.log).Solve(ctx, problem, deadline)
		if err != nil {
			p.log.Warnf("plan %s: %v", runID, err)
			return Result{}, err
		}
		best = sr.Best
		res.Search = sr
	}
	if err := best.Validate(); err != nil {
		return Result{}, fmt.Errorf("plan %s: %w", runID, err)
	}

	res.Cost = best.Cost()
	res.Plans = make([]VehiclePlan, best.NumRoutes())
	for i := range res.Plans {
		v := problem.Vehicle(i)
		route := best.Route(i)
		res.Plans[i] = VehiclePlan{
			RunID:     runID,
			VehicleID: v.ID,
			Steps:     plan.MaterializeMoves(route, v.Home, p.oracle),
			Distance:  plan.RouteDistance(v.Home, route, p.oracle),
			Cost:      best.RouteCost(i),
		}
	}

	p.log.Infof("plan %s: %d tasks on %d vehicles, cost %.1f after %d iterations (%s)",
		runID, len(tasks), len(vehicles), res.Cost, res.Search.Iterations, res.Search.Outcome)
	if err := p.sink.RecordSearchRun(coremetrics.SearchRun{
		RunID:        runID,
		Component:    "planner",
		Vehicles:     len(vehicles),
		Tasks:        len(tasks),
		Iterations:   res.Search.Iterations,
		Improvements: res.Search.Improvements,
		InitialCost:  res.Search.InitialCost,
		BestCost:     res.Cost,
		Outcome:      res.Search.Outcome,
		Duration:     res.Search.Elapsed,
		Time:         time.Now(),
	}); err != nil {
		p.log.Warnf("record search run: %v", err)
	}
	for _, vp := range res.Plans {
		if err := p.pub.Publish(ctx, "plans/"+strconv.Itoa(vp.VehicleID), vp); err != nil {
			p.log.Warnf("publish plan for vehicle %d: %v", vp.VehicleID, err)
		}
	}
	if p.bus != nil {
		p.bus.Publish(events.PlanEvent{RunID: runID, Vehicles: len(vehicles), Tasks: len(tasks), Cost: res.Cost, Outcome: res.Search.Outcome})
	}
	return res, nil
}
