package plan

import (
	"fmt"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

// StepKind identifies a materialized step.
type StepKind int

const (
	StepMove StepKind = iota
	StepPickup
	StepDeliver
)

// String returns a human-readable representation of the step kind.
func (k StepKind) String() string {
	switch k {
	case StepMove:
		return "move"
	case StepPickup:
		return "pickup"
	case StepDeliver:
		return "deliver"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k StepKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// UnmarshalText decodes a kind written by MarshalText.
func (k *StepKind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "move":
		*k = StepMove
	case "pickup":
		*k = StepPickup
	case "deliver":
		*k = StepDeliver
	default:
		return fmt.Errorf("unknown step kind %q", b)
	}
	return nil
}

// Step is one entry of a materialized vehicle plan. Task is nil for moves.
type Step struct {
	Kind StepKind     `json:"kind"`
	City model.CityID `json:"city"`
	Task *model.Task  `json:"task,omitempty"`
}

// MaterializeMoves expands a route into concrete travel: one move per city on
// the shortest path between consecutive action cities, then the action.
func MaterializeMoves(route []model.Action, start model.CityID, o topology.Oracle) []Step {
	steps := make([]Step, 0, len(route)*2)
	cur := start
	for _, act := range route {
		for _, c := range o.Path(cur, act.City()) {
			steps = append(steps, Step{Kind: StepMove, City: c})
		}
		cur = act.City()
		t := act.Task
		kind := StepPickup
		if act.Kind == model.Deliver {
			kind = StepDeliver
		}
		steps = append(steps, Step{Kind: kind, City: cur, Task: &t})
	}
	return steps
}
