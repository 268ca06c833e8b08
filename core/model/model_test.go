package model

import "testing"

func TestActionCityAndLoad(t *testing.T) {
	task := Task{ID: 1, Pickup: 2, Delivery: 5, Weight: 7}
	p, d := PickupOf(task), DeliverOf(task)
	if p.City() != 2 || d.City() != 5 {
		t.Fatalf("unexpected cities %d %d", p.City(), d.City())
	}
	if p.Load() != 7 || d.Load() != -7 {
		t.Fatalf("unexpected loads %d %d", p.Load(), d.Load())
	}
	if !p.Partner(d) || p.Partner(p) {
		t.Fatal("partner detection broken")
	}
}

func TestAnyCanCarry(t *testing.T) {
	vs := []Vehicle{{ID: 0, Capacity: 3}, {ID: 1, Capacity: 10}}
	if !AnyCanCarry(vs, Task{Weight: 10}) {
		t.Fatal("expected eligible")
	}
	if AnyCanCarry(vs, Task{Weight: 11}) {
		t.Fatal("expected ineligible")
	}
}

func TestValidate(t *testing.T) {
	if err := (Task{ID: 1, Weight: -1}).Validate(); err == nil {
		t.Fatal("expected weight error")
	}
	if err := (Vehicle{ID: 1, Capacity: 1, CostPerKm: -2}).Validate(); err == nil {
		t.Fatal("expected cost error")
	}
	if err := (Vehicle{ID: 1, Capacity: 1, CostPerKm: 2}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
