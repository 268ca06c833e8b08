package plan

import (
	"fmt"

	"github.com/kilianp07/haulage/core/model"
)

type placement struct {
	vehicle  int
	pickup   int
	delivery int
}

// Validate checks that every task of the problem is picked up and delivered
// exactly once by the same vehicle, pickups precede deliveries and no route
// exceeds its vehicle's capacity. Violations wrap ErrInvalidAssignment.
func (a *Assignment) Validate() error {
	if len(a.routes) != len(a.problem.vehicles) {
		return fmt.Errorf("%w: %d routes for %d vehicles", ErrInvalidAssignment, len(a.routes), len(a.problem.vehicles))
	}
	tasks := make(map[int]struct{}, len(a.problem.tasks))
	for _, t := range a.problem.tasks {
		tasks[t.ID] = struct{}{}
	}
	seen := make(map[int]*placement, len(a.problem.tasks))
	for v, route := range a.routes {
		for i, act := range route {
			id := act.Task.ID
			if _, ok := tasks[id]; !ok {
				return fmt.Errorf("%w: vehicle %d carries unknown task %d", ErrInvalidAssignment, v, id)
			}
			pl, ok := seen[id]
			if !ok {
				pl = &placement{vehicle: v, pickup: -1, delivery: -1}
				seen[id] = pl
			}
			if pl.vehicle != v {
				return fmt.Errorf("%w: task %d split across vehicles %d and %d", ErrInvalidAssignment, id, pl.vehicle, v)
			}
			slot := &pl.pickup
			if act.Kind == model.Deliver {
				slot = &pl.delivery
			}
			if *slot >= 0 {
				return fmt.Errorf("%w: task %d duplicated %s", ErrInvalidAssignment, id, act.Kind)
			}
			*slot = i
		}
		if !IsCapacityFeasible(route, a.problem.vehicles[v]) {
			return fmt.Errorf("%w: vehicle %d exceeds capacity %d", ErrInvalidAssignment, v, a.problem.vehicles[v].Capacity)
		}
	}
	for _, t := range a.problem.tasks {
		pl, ok := seen[t.ID]
		if !ok || pl.pickup < 0 || pl.delivery < 0 {
			return fmt.Errorf("%w: task %d not fully covered", ErrInvalidAssignment, t.ID)
		}
		if pl.pickup > pl.delivery {
			return fmt.Errorf("%w: task %d delivered before pickup", ErrInvalidAssignment, t.ID)
		}
	}
	return nil
}
