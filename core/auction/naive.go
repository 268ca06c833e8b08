package auction

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

// NaiveBidder is a single-vehicle baseline. It prices a task as the trip from
// its current city through pickup to delivery, inflated by a random factor
// growing with the task id, and moves to the delivery city when it wins.
type NaiveBidder struct {
	id      int
	vehicle model.Vehicle
	current model.CityID
	oracle  topology.Oracle
	rng     *rand.Rand
	won     []model.Task
}

// NewNaiveBidder creates a bidder starting at the vehicle's home.
func NewNaiveBidder(id int, v model.Vehicle, o topology.Oracle, rng *rand.Rand) *NaiveBidder {
	return &NaiveBidder{id: id, vehicle: v, current: v.Home, oracle: o, rng: rng}
}

// ID returns the bidder's auction identifier.
func (n *NaiveBidder) ID() int { return n.id }

// AskPrice returns ErrIneligible when the task exceeds the vehicle capacity.
func (n *NaiveBidder) AskPrice(task model.Task) (int64, error) {
	if !n.vehicle.CanCarry(task) {
		return 0, fmt.Errorf("%w: task %d weighs %d", ErrIneligible, task.ID, task.Weight)
	}
	dist := n.oracle.Distance(n.current, task.Pickup) + n.oracle.Distance(task.Pickup, task.Delivery)
	ratio := 1 + n.rng.Float64()*0.05*float64(task.ID)
	return int64(math.Round(dist * n.vehicle.CostPerKm * ratio)), nil
}

// AuctionResult moves the vehicle to the delivery city when the bidder won.
func (n *NaiveBidder) AuctionResult(task model.Task, winner int) {
	if winner != n.id {
		return
	}
	n.current = task.Delivery
	n.won = append(n.won, task)
}

// Won returns the tasks won so far.
func (n *NaiveBidder) Won() []model.Task { return append([]model.Task(nil), n.won...) }
