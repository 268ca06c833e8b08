package plan

import (
	"errors"
	"fmt"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

var (
	// ErrInfeasible signals that a task is heavier than every vehicle's capacity.
	ErrInfeasible = errors.New("infeasible: task exceeds every vehicle capacity")
	// ErrInvalidAssignment is returned by Validate when coverage, precedence or
	// capacity is violated.
	ErrInvalidAssignment = errors.New("invalid assignment")
)

// Problem is the immutable input of one solve. Vehicles and tasks are
// addressed by their index in the problem.
type Problem struct {
	vehicles []model.Vehicle
	tasks    []model.Task
	oracle   topology.Oracle
}

// NewProblem validates and copies its inputs. Vehicle homes and task cities
// unknown to the oracle fail with topology.ErrUnknownCity.
func NewProblem(vehicles []model.Vehicle, tasks []model.Task, oracle topology.Oracle) (*Problem, error) {
	if oracle == nil {
		return nil, errors.New("nil distance oracle")
	}
	vids := make(map[int]struct{}, len(vehicles))
	for _, v := range vehicles {
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if _, dup := vids[v.ID]; dup {
			return nil, fmt.Errorf("duplicate vehicle id %d", v.ID)
		}
		if !oracle.Has(v.Home) {
			return nil, fmt.Errorf("vehicle %d home: %w %d", v.ID, topology.ErrUnknownCity, v.Home)
		}
		vids[v.ID] = struct{}{}
	}
	p := &Problem{
		vehicles: append([]model.Vehicle(nil), vehicles...),
		oracle:   oracle,
	}
	return p.WithTasks(tasks...)
}

// WithTasks returns a new problem holding the receiver's tasks followed by
// extra. Task IDs must stay unique and task cities must be known to the
// oracle.
func (p *Problem) WithTasks(extra ...model.Task) (*Problem, error) {
	seen := make(map[int]struct{}, len(p.tasks)+len(extra))
	for _, t := range p.tasks {
		seen[t.ID] = struct{}{}
	}
	for _, t := range extra {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %d", t.ID)
		}
		for _, c := range []model.CityID{t.Pickup, t.Delivery} {
			if !p.oracle.Has(c) {
				return nil, fmt.Errorf("task %d: %w %d", t.ID, topology.ErrUnknownCity, c)
			}
		}
		seen[t.ID] = struct{}{}
	}
	tasks := make([]model.Task, 0, len(p.tasks)+len(extra))
	tasks = append(tasks, p.tasks...)
	tasks = append(tasks, extra...)
	return &Problem{vehicles: p.vehicles, tasks: tasks, oracle: p.oracle}, nil
}

// Vehicles returns a copy of the fleet.
func (p *Problem) Vehicles() []model.Vehicle { return append([]model.Vehicle(nil), p.vehicles...) }

// Vehicle returns the vehicle at index i.
func (p *Problem) Vehicle(i int) model.Vehicle { return p.vehicles[i] }

// NumVehicles returns the fleet size.
func (p *Problem) NumVehicles() int { return len(p.vehicles) }

// Tasks returns a copy of the task set.
func (p *Problem) Tasks() []model.Task { return append([]model.Task(nil), p.tasks...) }

// NumTasks returns the number of tasks.
func (p *Problem) NumTasks() int { return len(p.tasks) }

// Oracle returns the distance oracle shared by every assignment of the problem.
func (p *Problem) Oracle() topology.Oracle { return p.oracle }

// CheckEligible returns ErrInfeasible for the first task no vehicle can carry.
func (p *Problem) CheckEligible() error {
	for _, t := range p.tasks {
		if !model.AnyCanCarry(p.vehicles, t) {
			return fmt.Errorf("%w: task %d weighs %d", ErrInfeasible, t.ID, t.Weight)
		}
	}
	return nil
}
