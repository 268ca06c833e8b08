package model

import "fmt"

// Vehicle is a capacitated carrier starting at Home.
type Vehicle struct {
	ID        int     `json:"id" yaml:"id"`
	Name      string  `json:"name" yaml:"name"`
	Capacity  int     `json:"capacity" yaml:"capacity"`
	CostPerKm float64 `json:"cost_per_km" yaml:"cost_per_km"`
	Home      CityID  `json:"home" yaml:"home"`
}

// CanCarry reports whether the task fits in an empty vehicle.
func (v Vehicle) CanCarry(t Task) bool {
	return v.Capacity >= t.Weight
}

// Validate checks the vehicle fields.
func (v Vehicle) Validate() error {
	if v.Capacity < 0 {
		return fmt.Errorf("vehicle %d: negative capacity %d", v.ID, v.Capacity)
	}
	if v.CostPerKm < 0 {
		return fmt.Errorf("vehicle %d: negative cost per km %v", v.ID, v.CostPerKm)
	}
	return nil
}

// AnyCanCarry reports whether at least one vehicle can carry the task.
func AnyCanCarry(vehicles []Vehicle, t Task) bool {
	for _, v := range vehicles {
		if v.CanCarry(t) {
			return true
		}
	}
	return false
}
