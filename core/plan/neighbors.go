package plan

import (
	"math/rand"

	"github.com/kilianp07/haulage/core/model"
)

// Neighbors returns the feasible assignments one elementary move away from a.
//
// A vehicle with a non-empty route is drawn uniformly from rng. Its first task
// is moved to the front of every other vehicle able to carry it, and each of
// its pickups and deliveries is shifted to every position that keeps the
// pickup before its delivery. Moves failing IsCapacityFeasible are dropped.
// The result is empty when no vehicle has a task.
func Neighbors(a *Assignment, rng *rand.Rand) []*Assignment {
	busy := make([]int, 0, len(a.routes))
	for i, r := range a.routes {
		if len(r) > 0 {
			busy = append(busy, i)
		}
	}
	if len(busy) == 0 {
		return nil
	}
	v := busy[rng.Intn(len(busy))]
	out := reassignFirst(a, v)
	return append(out, shifts(a, v)...)
}

// reassignFirst moves the first task of vehicle v to the front of every other
// eligible vehicle.
func reassignFirst(a *Assignment, v int) []*Assignment {
	route := a.routes[v]
	task := route[0].Task
	rest := make([]model.Action, 0, len(route)-2)
	for _, act := range route {
		if act.Task.ID != task.ID {
			rest = append(rest, act)
		}
	}
	var out []*Assignment
	for w, vehicle := range a.problem.vehicles {
		if w == v || !vehicle.CanCarry(task) {
			continue
		}
		moved := make([]model.Action, 0, len(a.routes[w])+2)
		moved = append(moved, model.PickupOf(task), model.DeliverOf(task))
		moved = append(moved, a.routes[w]...)
		if !IsCapacityFeasible(moved, vehicle) {
			continue
		}
		out = append(out, a.apply(routeEdit{vehicle: v, route: rest}, routeEdit{vehicle: w, route: moved}))
	}
	return out
}

// shifts moves every action of vehicle v to each other position bounded by
// its partner action.
func shifts(a *Assignment, v int) []*Assignment {
	route := a.routes[v]
	vehicle := a.problem.vehicles[v]
	partner := partnerIndex(route)
	var out []*Assignment
	try := func(from, to int) {
		moved := moveAction(route, from, to)
		if IsCapacityFeasible(moved, vehicle) {
			out = append(out, a.apply(routeEdit{vehicle: v, route: moved}))
		}
	}
	for i, act := range route {
		k := partner[i]
		if act.Kind == model.Pickup {
			for j := i + 1; j < k; j++ {
				try(i, j)
			}
			for j := i - 1; j >= 0; j-- {
				try(i, j)
			}
			continue
		}
		for j := i + 1; j < len(route); j++ {
			try(i, j)
		}
		for j := i - 1; j > k; j-- {
			try(i, j)
		}
	}
	return out
}

// partnerIndex maps each position to the position of the other action of the
// same task.
func partnerIndex(route []model.Action) []int {
	first := make(map[int]int, len(route)/2)
	out := make([]int, len(route))
	for i, act := range route {
		if j, ok := first[act.Task.ID]; ok {
			out[i], out[j] = j, i
			continue
		}
		first[act.Task.ID] = i
	}
	return out
}

// moveAction returns a new route where the action at from ends up at index to.
func moveAction(route []model.Action, from, to int) []model.Action {
	out := make([]model.Action, 0, len(route))
	out = append(out, route[:from]...)
	out = append(out, route[from+1:]...)
	out = append(out, model.Action{})
	copy(out[to+1:], out[to:])
	out[to] = route[from]
	return out
}
