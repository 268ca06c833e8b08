package model

// ActionKind distinguishes pickups from deliveries.
type ActionKind int

const (
	Pickup ActionKind = iota
	Deliver
)

// String returns a human-readable representation of the action kind.
func (k ActionKind) String() string {
	switch k {
	case Pickup:
		return "pickup"
	case Deliver:
		return "deliver"
	default:
		return "unknown"
	}
}

// Action is a single stop of a route.
type Action struct {
	Kind ActionKind `json:"kind"`
	Task Task       `json:"task"`
}

// PickupOf returns the pickup action for t.
func PickupOf(t Task) Action { return Action{Kind: Pickup, Task: t} }

// DeliverOf returns the delivery action for t.
func DeliverOf(t Task) Action { return Action{Kind: Deliver, Task: t} }

// City returns the city where the action takes place.
func (a Action) City() CityID {
	if a.Kind == Pickup {
		return a.Task.Pickup
	}
	return a.Task.Delivery
}

// Load returns the change in carried weight caused by the action.
func (a Action) Load() int {
	if a.Kind == Pickup {
		return a.Task.Weight
	}
	return -a.Task.Weight
}

// Partner reports whether b is the other half of the same task.
func (a Action) Partner(b Action) bool {
	return a.Task.ID == b.Task.ID && a.Kind != b.Kind
}
