// Package app wires configuration, an instance and the infrastructure
// adapters into runnable planning and auction sessions.
package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/kilianp07/haulage/config"
	"github.com/kilianp07/haulage/core/auction"
	"github.com/kilianp07/haulage/core/events"
	"github.com/kilianp07/haulage/core/instance"
	coremetrics "github.com/kilianp07/haulage/core/metrics"
	"github.com/kilianp07/haulage/core/model"
	coremqtt "github.com/kilianp07/haulage/core/mqtt"
	"github.com/kilianp07/haulage/core/planner"
	"github.com/kilianp07/haulage/core/search"
	"github.com/kilianp07/haulage/infra/logger"
	"github.com/kilianp07/haulage/infra/metrics"
	"github.com/kilianp07/haulage/infra/mqtt"
	"github.com/kilianp07/haulage/internal/eventbus"
)

// Agent and opponent identifiers in auction sessions.
const (
	AgentID    = 0
	OpponentID = 1
)

// Service holds the components shared by planning and auction sessions.
type Service struct {
	cfg     *config.Config
	inst    *instance.Built
	seed    int64
	log     logger.Logger
	sink    coremetrics.MetricsSink
	pub     coremqtt.Publisher
	bus     *eventbus.Bus[events.Event]
	history *auction.HistoryStore
}

// New creates a Service. A zero search seed is replaced by a time-based one.
func New(cfg *config.Config, inst *instance.Built) (*Service, error) {
	if err := logger.SetLevel(cfg.Logging.Level); err != nil {
		return nil, err
	}
	sink, err := coremetrics.OpenSinks(cfg.Metrics)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	pub, err := mqtt.NewPublisher(cfg.MQTT)
	if err != nil {
		return nil, fmt.Errorf("mqtt publisher: %w", err)
	}
	s := &Service{
		cfg:  cfg,
		inst: inst,
		seed: cfg.Search.Seed,
		log:  logger.New("service"),
		sink: sink,
		pub:  pub,
		bus:  eventbus.New[events.Event](),
	}
	if s.seed == 0 {
		s.seed = time.Now().UnixNano()
	}
	if path := cfg.Auction.HistoryPath; path != "" {
		h, err := auction.NewHistoryStore(path)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("auction history: %w", err)
		}
		s.history = h
	}
	return s, nil
}

// Seed returns the seed of the session random sources.
func (s *Service) Seed() int64 { return s.seed }

// Bus returns the bus receiving plan and auction events.
func (s *Service) Bus() *eventbus.Bus[events.Event] { return s.bus }

// Serve exposes Prometheus metrics until ctx is canceled when an address is
// configured.
func (s *Service) Serve(ctx context.Context) {
	addr := s.cfg.Metrics.PrometheusAddr
	if addr == "" {
		return
	}
	go func() {
		if err := metrics.StartPromServer(ctx, addr); err != nil {
			s.log.Errorf("prom server: %v", err)
		}
	}()
}

// Plan plans every instance task over the fleet within budget. A zero budget
// uses the configured search time budget.
func (s *Service) Plan(ctx context.Context, budget time.Duration) (planner.Result, error) {
	if budget <= 0 {
		budget = s.cfg.Search.TimeBudget()
	}
	p := planner.New(s.cfg.Search, s.inst.Graph, rand.New(rand.NewSource(s.seed)), logger.New("planner"))
	p.SetSink(s.sink)
	p.SetPublisher(s.pub)
	p.SetBus(s.bus)
	return p.Plan(ctx, s.inst.Vehicles, s.inst.Tasks, time.Now().Add(budget))
}

// AuctionReport summarizes an auction session from the agent's side.
type AuctionReport struct {
	Outcomes []auction.Outcome
	// Final is the agent's re-optimized plan for the tasks it won.
	Final       search.Result
	Revenue     int64
	Cost        float64
	Profit      float64
	AgentWins   int
	OpponentWon int
	Unsold      int
	// Recorded and RecordedWins tally every auction in the history file,
	// earlier sessions included. Both stay zero without a history file.
	Recorded     int
	RecordedWins int
}

// Auction offers every instance task to the agent and the naive opponent,
// then re-plans the agent's won tasks within the search time budget.
func (s *Service) Auction(ctx context.Context) (AuctionReport, error) {
	agent, err := auction.NewAgent(AgentID, s.inst.Vehicles, s.inst.Graph, s.inst.Distribution,
		s.cfg.Auction, s.cfg.Search, rand.New(rand.NewSource(s.seed)), logger.New("agent"))
	if err != nil {
		return AuctionReport{}, err
	}
	agent.SetSink(s.sink)
	agent.SetPublisher(s.pub)
	if s.history != nil {
		agent.SetHistory(s.history)
	}

	opp, oppSeed := s.opponent()
	naive := auction.NewNaiveBidder(OpponentID, opp, s.inst.Graph, rand.New(rand.NewSource(oppSeed)))

	house := auction.NewHouse(s.cfg.Auction.BidBudget(), logger.New("auction"), agent, naive)
	house.SetBus(s.bus)
	outcomes, err := house.Run(ctx, s.inst.Tasks)
	if err != nil && !errors.Is(err, context.Canceled) {
		return AuctionReport{}, err
	}

	rep := AuctionReport{Outcomes: outcomes}
	for _, o := range outcomes {
		switch o.Winner {
		case AgentID:
			rep.AgentWins++
		case OpponentID:
			rep.OpponentWon++
		default:
			rep.Unsold++
		}
	}
	rep.Final = agent.Plan(ctx, time.Now().Add(s.cfg.Search.TimeBudget()))
	rep.Revenue = agent.Revenue()
	rep.Cost = rep.Final.Best.Cost()
	rep.Profit = float64(rep.Revenue) - rep.Cost
	if s.history != nil {
		if herr := s.tallyHistory(ctx, &rep); herr != nil {
			s.log.Warnf("read auction history: %v", herr)
		}
	}
	s.log.Infof("auction finished: %d won, %d lost, %d unsold, profit %.1f",
		rep.AgentWins, rep.OpponentWon, rep.Unsold, rep.Profit)
	return rep, err
}

func (s *Service) tallyHistory(ctx context.Context, rep *AuctionReport) error {
	all, err := s.history.Query(ctx, auction.Query{})
	if err != nil {
		return err
	}
	id := AgentID
	won, err := s.history.Query(ctx, auction.Query{Winner: &id})
	if err != nil {
		return err
	}
	rep.Recorded, rep.RecordedWins = len(all), len(won)
	return nil
}

// opponent returns the instance opponent, or a copy of the first fleet
// vehicle seeded from the session seed.
func (s *Service) opponent() (v model.Vehicle, seed int64) {
	if s.inst.Opponent != nil {
		return *s.inst.Opponent, s.inst.OpponentSeed
	}
	return s.inst.Vehicles[0], s.seed + 1
}

// Close releases the publisher and the metrics sink.
func (s *Service) Close() {
	s.bus.Close()
	s.pub.Close()
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	if s.history != nil {
		if err := s.history.Close(); err != nil {
			s.log.Warnf("close history: %v", err)
		}
	}
}
