package auction

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/haulage/core/logger"
	coremetrics "github.com/kilianp07/haulage/core/metrics"
	"github.com/kilianp07/haulage/core/model"
	coremqtt "github.com/kilianp07/haulage/core/mqtt"
	"github.com/kilianp07/haulage/core/plan"
	"github.com/kilianp07/haulage/core/search"
	"github.com/kilianp07/haulage/core/topology"
)

// Bid is the agent's answer to a task offer.
type Bid struct {
	RunID     string  `json:"run_id"`
	AgentID   int     `json:"agent_id"`
	TaskID    int     `json:"task_id"`
	Amount    int64   `json:"amount"`
	Marginal  float64 `json:"marginal"`
	Immediate float64 `json:"immediate"`
}

type pendingBid struct {
	base *plan.Assignment
	est  Estimate
}

// Agent bids for tasks on behalf of a fleet and keeps the assignment of the
// tasks it has won. Methods are serialized by an internal lock.
type Agent struct {
	id      int
	cfg     Config
	search  search.Config
	est     *Estimator
	rng     *rand.Rand
	log     logger.Logger
	sink    coremetrics.MetricsSink
	pub     coremqtt.Publisher
	history *HistoryStore
	now     func() time.Time

	mu            sync.Mutex
	committed     *plan.Assignment
	pending       map[int]pendingBid
	competitorMin map[int]int64
	won           []model.Task
	revenue       int64
}

// NewAgent creates an agent with no committed task. A nil log discards
// messages.
func NewAgent(id int, vehicles []model.Vehicle, oracle topology.Oracle, dist Distribution, cfg Config, sc search.Config, rng *rand.Rand, log logger.Logger) (*Agent, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Nop{}
	}
	p, err := plan.NewProblem(vehicles, nil, oracle)
	if err != nil {
		return nil, err
	}
	return &Agent{
		id:            id,
		cfg:           cfg,
		search:        sc,
		est:           NewEstimator(cfg, sc, dist, log),
		rng:           rng,
		log:           log,
		sink:          coremetrics.NopSink{},
		pub:           coremqtt.NopPublisher{},
		now:           time.Now,
		committed:     plan.Empty(p),
		pending:       make(map[int]pendingBid),
		competitorMin: make(map[int]int64),
	}, nil
}

// SetSink sets the metrics sink receiving bid and auction events.
func (a *Agent) SetSink(s coremetrics.MetricsSink) {
	if s != nil {
		a.sink = s
	}
}

// SetPublisher sets the publisher receiving every bid under "bids/<task id>".
func (a *Agent) SetPublisher(p coremqtt.Publisher) {
	if p != nil {
		a.pub = p
	}
}

// SetHistory sets the store receiving every resolved auction.
func (a *Agent) SetHistory(h *HistoryStore) { a.history = h }

// ID returns the agent's auction identifier.
func (a *Agent) ID() int { return a.id }

// AskPrice estimates the marginal cost of task and converts it into a bid.
// It returns ErrIneligible when no vehicle can carry the task.
func (a *Agent) AskPrice(ctx context.Context, task model.Task, deadline time.Time) (Bid, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	runID := uuid.NewString()
	est, err := a.est.Estimate(ctx, a.committed, task, deadline, a.rng)
	if err != nil {
		if errors.Is(err, ErrIneligible) {
			bidsTotal.WithLabelValues("ineligible").Inc()
			a.log.Warnf("no bid for task %d: %v", task.ID, err)
			a.record(coremetrics.BidEvent{RunID: runID, AgentID: a.id, TaskID: task.ID, Ineligible: true, Time: a.now()})
		} else {
			bidsTotal.WithLabelValues("error").Inc()
		}
		return Bid{}, err
	}

	bid := Bid{
		RunID:     runID,
		AgentID:   a.id,
		TaskID:    task.ID,
		Amount:    a.price(est.Marginal),
		Marginal:  est.Marginal,
		Immediate: est.Immediate,
	}
	a.pending[task.ID] = pendingBid{base: a.committed, est: est}
	bidsTotal.WithLabelValues("submitted").Inc()
	a.log.Infof("bid %d for task %d (marginal %.1f, immediate %.1f, %d/%d informative rounds)",
		bid.Amount, task.ID, est.Marginal, est.Immediate, len(est.Speculative), est.Rounds)
	a.record(coremetrics.BidEvent{
		RunID:           runID,
		AgentID:         a.id,
		TaskID:          task.ID,
		Amount:          bid.Amount,
		Marginal:        est.Marginal,
		Immediate:       est.Immediate,
		Speculative:     len(est.Speculative),
		SpeculativeMean: est.SpeculativeMean(),
		Duration:        est.Elapsed,
		Time:            a.now(),
	})
	if err := a.pub.Publish(ctx, "bids/"+strconv.Itoa(task.ID), bid); err != nil {
		a.log.Warnf("publish bid for task %d: %v", task.ID, err)
	}
	return bid, nil
}

// price lifts the marginal cost towards the cheapest price any competitor has
// offered when that price is higher, then rounds to an integer.
func (a *Agent) price(marginal float64) int64 {
	bid := marginal
	if lowest, ok := a.lowestCompetitorBid(); ok && float64(lowest) > marginal {
		bid = marginal + a.cfg.Margin*(float64(lowest)-marginal)
	}
	return int64(math.Round(bid))
}

func (a *Agent) lowestCompetitorBid() (int64, bool) {
	var lowest int64
	found := false
	for _, b := range a.competitorMin {
		if !found || b < lowest {
			lowest, found = b, true
		}
	}
	return lowest, found
}

// AuctionResult updates competitor statistics from the bids seen and commits
// the task when the agent won. bids maps agent ids to their bid; agents that
// did not bid are absent.
func (a *Agent) AuctionResult(ctx context.Context, task model.Task, winner int, bids map[int]int64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	for agent, b := range bids {
		if agent == a.id {
			continue
		}
		if cur, ok := a.competitorMin[agent]; !ok || b < cur {
			a.competitorMin[agent] = b
		}
	}
	pending, hadBid := a.pending[task.ID]
	delete(a.pending, task.ID)

	won := winner == a.id
	if won {
		if err := a.commit(task, pending, hadBid); err != nil {
			return err
		}
		a.won = append(a.won, task)
		a.revenue += bids[a.id]
		tasksWonTotal.Inc()
		a.log.Infof("won task %d for %d, %d tasks committed", task.ID, bids[a.id], len(a.won))
	}

	if err := a.sinkAuction(coremetrics.AuctionEvent{
		AgentID: a.id,
		TaskID:  task.ID,
		Winner:  winner,
		Won:     won,
		Price:   bids[winner],
		Time:    a.now(),
	}); err != nil {
		a.log.Warnf("record auction result: %v", err)
	}
	if a.history != nil {
		rec := Record{Timestamp: a.now(), Task: task, Winner: winner, Bids: bids}
		if hadBid {
			rec.Marginal = pending.est.Marginal
		}
		if err := a.history.Append(ctx, rec); err != nil {
			a.log.Warnf("append auction history: %v", err)
		}
	}
	return nil
}

// commit replaces the committed assignment with the one priced for task. When
// the committed plan changed since pricing, the task is appended instead.
func (a *Agent) commit(task model.Task, pending pendingBid, hadBid bool) error {
	if hadBid && pending.base == a.committed {
		a.committed = pending.est.Extended
		return nil
	}
	p, err := a.committed.Problem().WithTasks(task)
	if err != nil {
		return fmt.Errorf("commit task %d: %w", task.ID, err)
	}
	next, err := a.committed.Extend(p, a.rng)
	if err != nil {
		return fmt.Errorf("commit task %d: %w", task.ID, err)
	}
	a.committed = next
	return nil
}

// Committed returns the assignment of the tasks won so far.
func (a *Agent) Committed() *plan.Assignment {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.committed
}

// Won returns the tasks won so far in auction order.
func (a *Agent) Won() []model.Task {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]model.Task(nil), a.won...)
}

// Revenue returns the sum of the agent's winning bids.
func (a *Agent) Revenue() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.revenue
}

// Plan re-optimizes the committed tasks until deadline and keeps the result
// as the committed assignment.
func (a *Agent) Plan(ctx context.Context, deadline time.Time) search.Result {
	a.mu.Lock()
	defer a.mu.Unlock()
	res := search.NewDriver(a.search, a.rng, a.log).Run(ctx, a.committed, deadline)
	a.committed = res.Best
	if err := a.sink.RecordSearchRun(coremetrics.SearchRun{
		RunID:        uuid.NewString(),
		Component:    "auction_agent",
		Vehicles:     res.Best.NumRoutes(),
		Tasks:        res.Best.Problem().NumTasks(),
		Iterations:   res.Iterations,
		Improvements: res.Improvements,
		InitialCost:  res.InitialCost,
		BestCost:     res.Best.Cost(),
		Outcome:      res.Outcome,
		Duration:     res.Elapsed,
		Time:         a.now(),
	}); err != nil {
		a.log.Warnf("record search run: %v", err)
	}
	return res
}

func (a *Agent) record(ev coremetrics.BidEvent) {
	rec, ok := a.sink.(coremetrics.BidRecorder)
	if !ok {
		return
	}
	if err := rec.RecordBid(ev); err != nil {
		a.log.Warnf("record bid: %v", err)
	}
}

func (a *Agent) sinkAuction(ev coremetrics.AuctionEvent) error {
	if rec, ok := a.sink.(coremetrics.AuctionRecorder); ok {
		return rec.RecordAuctionResult(ev)
	}
	return nil
}
