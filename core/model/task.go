package model

import "fmt"

// CityID identifies a node of the road network.
type CityID int64

// City is a named node of the road network.
type City struct {
	ID   CityID `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Task is a pickup-and-delivery request. A task is picked up at Pickup and
// delivered at Delivery by the same vehicle. Tasks are treated as values and
// compared by ID.
type Task struct {
	ID       int    `json:"id" yaml:"id"`
	Pickup   CityID `json:"pickup" yaml:"pickup"`
	Delivery CityID `json:"delivery" yaml:"delivery"`
	Weight   int    `json:"weight" yaml:"weight"`
}

// Validate checks the task fields.
func (t Task) Validate() error {
	if t.Weight < 0 {
		return fmt.Errorf("task %d: negative weight %d", t.ID, t.Weight)
	}
	return nil
}

// String returns a compact representation used in logs.
func (t Task) String() string {
	return fmt.Sprintf("T%d(%d->%d,w=%d)", t.ID, t.Pickup, t.Delivery, t.Weight)
}
