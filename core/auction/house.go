package auction

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/haulage/core/events"
	"github.com/kilianp07/haulage/core/logger"
	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/internal/eventbus"
)

// NoWinner is the winner id of an auction nobody bid on.
const NoWinner = -1

// Participant takes part in sequential first-price auctions.
type Participant interface {
	ID() int
	// Offer returns the participant's price for task or an error when it
	// declines. ErrIneligible is the expected way to decline.
	Offer(ctx context.Context, task model.Task, deadline time.Time) (int64, error)
	// Resolve reports the outcome of the auction for task.
	Resolve(ctx context.Context, task model.Task, winner int, bids map[int]int64) error
}

// Offer implements Participant.
func (a *Agent) Offer(ctx context.Context, task model.Task, deadline time.Time) (int64, error) {
	bid, err := a.AskPrice(ctx, task, deadline)
	return bid.Amount, err
}

// Resolve implements Participant.
func (a *Agent) Resolve(ctx context.Context, task model.Task, winner int, bids map[int]int64) error {
	return a.AuctionResult(ctx, task, winner, bids)
}

// Offer implements Participant.
func (n *NaiveBidder) Offer(_ context.Context, task model.Task, _ time.Time) (int64, error) {
	return n.AskPrice(task)
}

// Resolve implements Participant.
func (n *NaiveBidder) Resolve(_ context.Context, task model.Task, winner int, _ map[int]int64) error {
	n.AuctionResult(task, winner)
	return nil
}

// Outcome is the result of one auction.
type Outcome struct {
	Task   model.Task
	Winner int
	Bids   map[int]int64
}

// Price returns the winning bid, zero when nobody won.
func (o Outcome) Price() int64 {
	if o.Winner == NoWinner {
		return 0
	}
	return o.Bids[o.Winner]
}

// House runs sequential sealed-bid auctions. The lowest bid wins; ties go to
// the participant registered first.
type House struct {
	participants []Participant
	budget       time.Duration
	bus          *eventbus.Bus[events.Event]
	log          logger.Logger
	now          func() time.Time
}

// NewHouse creates an auction house giving each participant budget to answer
// an offer.
func NewHouse(budget time.Duration, log logger.Logger, participants ...Participant) *House {
	if log == nil {
		log = logger.Nop{}
	}
	return &House{participants: participants, budget: budget, log: log, now: time.Now}
}

// SetBus configures the bus receiving offer, bid and award events.
func (h *House) SetBus(b *eventbus.Bus[events.Event]) { h.bus = b }

func (h *House) publish(e events.Event) {
	if h.bus != nil {
		h.bus.Publish(e)
	}
}

// Run auctions tasks in order. It stops early when ctx is done and returns
// the outcomes resolved so far together with the context error.
func (h *House) Run(ctx context.Context, tasks []model.Task) ([]Outcome, error) {
	out := make([]Outcome, 0, len(tasks))
	for _, task := range tasks {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		o, err := h.auction(ctx, task)
		if err != nil {
			return out, err
		}
		out = append(out, o)
	}
	return out, nil
}

func (h *House) auction(ctx context.Context, task model.Task) (Outcome, error) {
	o := Outcome{Task: task, Winner: NoWinner, Bids: make(map[int]int64, len(h.participants))}
	for _, p := range h.participants {
		deadline := h.now().Add(h.budget)
		h.publish(events.OfferEvent{Task: task, Deadline: deadline})
		start := h.now()
		amount, err := p.Offer(ctx, task, deadline)
		h.publish(events.BidEvent{TaskID: task.ID, ParticipantID: p.ID(), Amount: amount, Err: err, Latency: h.now().Sub(start)})
		if err != nil {
			if !errors.Is(err, ErrIneligible) {
				h.log.Warnf("participant %d failed to bid on task %d: %v", p.ID(), task.ID, err)
			}
			continue
		}
		o.Bids[p.ID()] = amount
		if o.Winner == NoWinner || amount < o.Bids[o.Winner] {
			o.Winner = p.ID()
		}
	}
	for _, p := range h.participants {
		if err := p.Resolve(ctx, task, o.Winner, o.Bids); err != nil {
			return o, err
		}
	}
	h.publish(events.AwardEvent{Task: task, Winner: o.Winner, Price: o.Price(), Bids: o.Bids})
	if o.Winner == NoWinner {
		h.log.Warnf("task %d received no bid", task.ID)
	}
	return o, nil
}
