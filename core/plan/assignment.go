package plan

import (
	"fmt"
	"math/rand"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

// Assignment maps every vehicle of a Problem to its route. Route costs are
// computed once at construction, so an Assignment is safe for concurrent
// reads.
type Assignment struct {
	problem *Problem
	routes  [][]model.Action
	costs   []float64
	total   float64
}

func newAssignment(p *Problem, routes [][]model.Action) *Assignment {
	a := &Assignment{problem: p, routes: routes, costs: make([]float64, len(routes))}
	for i, r := range routes {
		a.costs[i] = RouteCost(p.vehicles[i], r, p.oracle)
	}
	a.total = sum(a.costs)
	return a
}

// Empty returns the assignment with an empty route for every vehicle. It only
// covers problems without tasks.
func Empty(p *Problem) *Assignment {
	return newAssignment(p, make([][]model.Action, len(p.vehicles)))
}

type routeEdit struct {
	vehicle int
	route   []model.Action
}

// apply derives a new assignment replacing the edited routes. Untouched routes
// are shared with the receiver; edited routes must be freshly allocated.
func (a *Assignment) apply(edits ...routeEdit) *Assignment {
	routes := make([][]model.Action, len(a.routes))
	copy(routes, a.routes)
	costs := make([]float64, len(a.costs))
	copy(costs, a.costs)
	for _, e := range edits {
		routes[e.vehicle] = e.route
		costs[e.vehicle] = RouteCost(a.problem.vehicles[e.vehicle], e.route, a.problem.oracle)
	}
	return &Assignment{problem: a.problem, routes: routes, costs: costs, total: sum(costs)}
}

// BuildRandomInitial assigns every task, in task order, to a uniformly random
// vehicle able to carry it, appending its pickup and delivery to that route.
func BuildRandomInitial(p *Problem, rng *rand.Rand) (*Assignment, error) {
	if err := p.CheckEligible(); err != nil {
		return nil, err
	}
	routes := make([][]model.Action, len(p.vehicles))
	for _, t := range p.tasks {
		v := pickCarrier(p.vehicles, t, rng)
		routes[v] = append(routes[v], model.PickupOf(t), model.DeliverOf(t))
	}
	return newAssignment(p, routes), nil
}

// pickCarrier resamples uniformly until it draws a vehicle that can carry t.
// Callers must ensure at least one such vehicle exists.
func pickCarrier(vehicles []model.Vehicle, t model.Task, rng *rand.Rand) int {
	v := rng.Intn(len(vehicles))
	for !vehicles[v].CanCarry(t) {
		v = rng.Intn(len(vehicles))
	}
	return v
}

// Extend carries the receiver's routes into p, a problem over the same fleet
// whose task set is a superset of the receiver's. Each additional task is
// appended to a random vehicle able to carry it.
func (a *Assignment) Extend(p *Problem, rng *rand.Rand) (*Assignment, error) {
	if len(p.vehicles) != len(a.problem.vehicles) {
		return nil, fmt.Errorf("extend: fleet size %d differs from %d", len(p.vehicles), len(a.problem.vehicles))
	}
	known := make(map[int]struct{}, len(a.problem.tasks))
	for _, t := range a.problem.tasks {
		known[t.ID] = struct{}{}
	}
	present := make(map[int]struct{}, len(p.tasks))
	var added []model.Task
	for _, t := range p.tasks {
		present[t.ID] = struct{}{}
		if _, ok := known[t.ID]; ok {
			continue
		}
		if !model.AnyCanCarry(p.vehicles, t) {
			return nil, fmt.Errorf("%w: task %d weighs %d", ErrInfeasible, t.ID, t.Weight)
		}
		added = append(added, t)
	}
	for id := range known {
		if _, ok := present[id]; !ok {
			return nil, fmt.Errorf("extend: task %d missing from target problem", id)
		}
	}
	routes := make([][]model.Action, len(a.routes))
	copy(routes, a.routes)
	grown := make([]bool, len(routes))
	for _, t := range added {
		v := pickCarrier(p.vehicles, t, rng)
		if !grown[v] {
			routes[v] = append(make([]model.Action, 0, len(routes[v])+2), routes[v]...)
			grown[v] = true
		}
		routes[v] = append(routes[v], model.PickupOf(t), model.DeliverOf(t))
	}
	return newAssignment(p, routes), nil
}

// Problem returns the problem the assignment solves.
func (a *Assignment) Problem() *Problem { return a.problem }

// Cost returns the total travel cost over all vehicles.
func (a *Assignment) Cost() float64 { return a.total }

// RouteCost returns the travel cost of vehicle i.
func (a *Assignment) RouteCost(i int) float64 { return a.costs[i] }

// NumRoutes returns the number of routes, one per vehicle.
func (a *Assignment) NumRoutes() int { return len(a.routes) }

// Route returns a copy of vehicle i's route.
func (a *Assignment) Route(i int) []model.Action {
	return append([]model.Action(nil), a.routes[i]...)
}

// Routes returns a copy of every route.
func (a *Assignment) Routes() [][]model.Action {
	out := make([][]model.Action, len(a.routes))
	for i := range a.routes {
		out[i] = a.Route(i)
	}
	return out
}

// RouteCost walks the route from the vehicle's home through every action
// city and returns the distance multiplied by the vehicle's cost per km.
func RouteCost(v model.Vehicle, route []model.Action, o topology.Oracle) float64 {
	return RouteDistance(v.Home, route, o) * v.CostPerKm
}

// RouteDistance returns the distance travelled by a route starting at start.
func RouteDistance(start model.CityID, route []model.Action, o topology.Oracle) float64 {
	d := 0.0
	cur := start
	for _, act := range route {
		next := act.City()
		d += o.Distance(cur, next)
		cur = next
	}
	return d
}

// IsCapacityFeasible reports whether the running load of the route never
// exceeds the vehicle's capacity.
func IsCapacityFeasible(route []model.Action, v model.Vehicle) bool {
	load := 0
	for _, act := range route {
		load += act.Load()
		if load > v.Capacity {
			return false
		}
	}
	return true
}

func sum(xs []float64) float64 {
	s := 0.0
	for _, x := range xs {
		s += x
	}
	return s
}
