package plan

import (
	"math"
	"math/rand"
	"testing"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

// lineOracle places cities on a line so distances are |x_a - x_b|.
func lineOracle(t *testing.T, xs ...float64) *topology.Matrix {
	t.Helper()
	ids := make([]model.CityID, len(xs))
	dist := make([][]float64, len(xs))
	for i := range xs {
		ids[i] = model.CityID(i)
		dist[i] = make([]float64, len(xs))
		for j := range xs {
			dist[i][j] = math.Abs(xs[i] - xs[j])
		}
	}
	m, err := topology.NewMatrix(ids, dist)
	if err != nil {
		t.Fatalf("matrix: %v", err)
	}
	return m
}

func randomProblem(t *testing.T, rng *rand.Rand, vehicles, tasks int) *Problem {
	t.Helper()
	const cities = 8
	xs := make([]float64, cities)
	for i := range xs {
		xs[i] = float64(rng.Intn(100))
	}
	o := lineOracle(t, xs...)
	vs := make([]model.Vehicle, vehicles)
	for i := range vs {
		vs[i] = model.Vehicle{ID: i, Capacity: 5 + rng.Intn(10), CostPerKm: 1 + float64(rng.Intn(3)), Home: model.CityID(rng.Intn(cities))}
	}
	ts := make([]model.Task, tasks)
	for i := range ts {
		ts[i] = model.Task{ID: i, Pickup: model.CityID(rng.Intn(cities)), Delivery: model.CityID(rng.Intn(cities)), Weight: 1 + rng.Intn(5)}
	}
	p, err := NewProblem(vs, ts, o)
	if err != nil {
		t.Fatalf("problem: %v", err)
	}
	return p
}
