package events

import (
	"time"

	"github.com/kilianp07/haulage/core/model"
)

// Event is implemented by every event type of this package.
type Event interface {
	Kind() string
}

// OfferEvent is published when a task is offered.
type OfferEvent struct {
	Task     model.Task
	Deadline time.Time
}

func (OfferEvent) Kind() string { return "offer" }

// BidEvent is published for each participant answer. Err is set when the
// participant declined, for instance because the task is too heavy.
type BidEvent struct {
	TaskID        int
	ParticipantID int
	Amount        int64
	Err           error
	Latency       time.Duration
}

func (BidEvent) Kind() string { return "bid" }

// AwardEvent is published once an auction is resolved. Winner is negative
// when nobody bid.
type AwardEvent struct {
	Task   model.Task
	Winner int
	Price  int64
	Bids   map[int]int64
}

func (AwardEvent) Kind() string { return "award" }

// PlanEvent is published when a planner run completes.
type PlanEvent struct {
	RunID    string
	Vehicles int
	Tasks    int
	Cost     float64
	Outcome  string
}

func (PlanEvent) Kind() string { return "plan" }
