package planner

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/haulage/core/events"
	coremetrics "github.com/kilianp07/haulage/core/metrics"
	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/plan"
	"github.com/kilianp07/haulage/core/search"
	"github.com/kilianp07/haulage/core/topology"
	infmqtt "github.com/kilianp07/haulage/infra/mqtt"
	"github.com/kilianp07/haulage/internal/eventbus"
)

// A--10--B--5--C, plus a long A--C road that is never shortest.
func graph(t *testing.T) *topology.Graph {
	t.Helper()
	g, err := topology.NewGraph(
		[]model.City{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}},
		[]topology.Road{{From: 1, To: 2, Distance: 10}, {From: 2, To: 3, Distance: 5}, {From: 1, To: 3, Distance: 40}},
	)
	require.NoError(t, err)
	return g
}

type sinkSpy struct{ runs []coremetrics.SearchRun }

func (s *sinkSpy) RecordSearchRun(r coremetrics.SearchRun) error {
	s.runs = append(s.runs, r)
	return nil
}

func cfg() search.Config { return search.Config{P: 0.4, MaxIterations: 300} }

func soon() time.Time { return time.Now().Add(time.Minute) }

func TestPlan_SingleTask(t *testing.T) {
	p := New(cfg(), graph(t), rand.New(rand.NewSource(1)), nil)
	vehicles := []model.Vehicle{{ID: 7, Capacity: 5, CostPerKm: 2, Home: 1}}
	tasks := []model.Task{{ID: 0, Pickup: 1, Delivery: 3, Weight: 1}}

	res, err := p.Plan(context.Background(), vehicles, tasks, soon())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.InDelta(t, 30, res.Cost, 1e-9)
	require.Len(t, res.Plans, 1)
	vp := res.Plans[0]
	assert.Equal(t, 7, vp.VehicleID)
	assert.InDelta(t, 15, vp.Distance, 1e-9)
	kinds := make([]plan.StepKind, len(vp.Steps))
	cities := make([]model.CityID, len(vp.Steps))
	for i, s := range vp.Steps {
		kinds[i] = s.Kind
		cities[i] = s.City
	}
	assert.Equal(t, []plan.StepKind{plan.StepPickup, plan.StepMove, plan.StepMove, plan.StepDeliver}, kinds)
	assert.Equal(t, []model.CityID{1, 2, 3, 3}, cities)
}

func TestPlan_EmptyTasks(t *testing.T) {
	p := New(cfg(), graph(t), rand.New(rand.NewSource(1)), nil)
	res, err := p.Plan(context.Background(), []model.Vehicle{{ID: 0, Capacity: 1, CostPerKm: 1, Home: 2}}, nil, soon())
	require.NoError(t, err)
	assert.Zero(t, res.Cost)
	require.Len(t, res.Plans, 1)
	assert.Empty(t, res.Plans[0].Steps)
	assert.Zero(t, res.Search.Iterations)
}

func TestPlan_Infeasible(t *testing.T) {
	spy := &sinkSpy{}
	p := New(cfg(), graph(t), rand.New(rand.NewSource(1)), nil)
	p.SetSink(spy)
	_, err := p.Plan(context.Background(), []model.Vehicle{{ID: 0, Capacity: 1, CostPerKm: 1, Home: 1}},
		[]model.Task{{ID: 0, Pickup: 1, Delivery: 2, Weight: 2}}, soon())
	assert.True(t, errors.Is(err, plan.ErrInfeasible))
	assert.Empty(t, spy.runs)
}

func TestPlan_InvalidInput(t *testing.T) {
	p := New(cfg(), graph(t), rand.New(rand.NewSource(1)), nil)
	_, err := p.Plan(context.Background(), []model.Vehicle{{ID: 0, Capacity: -1, Home: 1}}, nil, soon())
	assert.Error(t, err)
	_, err = p.Plan(context.Background(), []model.Vehicle{{ID: 0, Capacity: 1, Home: 1}},
		[]model.Task{{ID: 0, Pickup: 1, Delivery: 2, Weight: -3}}, soon())
	assert.Error(t, err)
}

func TestPlan_UnknownCity(t *testing.T) {
	spy := &sinkSpy{}
	p := New(cfg(), graph(t), rand.New(rand.NewSource(1)), nil)
	p.SetSink(spy)
	vehicles := []model.Vehicle{{ID: 0, Capacity: 5, CostPerKm: 1, Home: 1}}

	_, err := p.Plan(context.Background(), vehicles, []model.Task{{ID: 0, Pickup: 1, Delivery: 42, Weight: 1}}, soon())
	assert.ErrorIs(t, err, topology.ErrUnknownCity)

	vehicles[0].Home = 9
	_, err = p.Plan(context.Background(), vehicles, nil, soon())
	assert.ErrorIs(t, err, topology.ErrUnknownCity)
	assert.Empty(t, spy.runs)
}

func TestPlan_RecordsPublishesAndEmits(t *testing.T) {
	spy := &sinkSpy{}
	pub := infmqtt.NewMockPublisher()
	bus := eventbus.New[events.Event]()
	ch := bus.Subscribe()

	p := New(cfg(), graph(t), rand.New(rand.NewSource(3)), nil)
	p.SetSink(spy)
	p.SetPublisher(pub)
	p.SetBus(bus)

	vehicles := []model.Vehicle{
		{ID: 1, Capacity: 4, CostPerKm: 1, Home: 1},
		{ID: 2, Capacity: 4, CostPerKm: 3, Home: 3},
	}
	tasks := []model.Task{
		{ID: 0, Pickup: 1, Delivery: 2, Weight: 2},
		{ID: 1, Pickup: 2, Delivery: 3, Weight: 2},
		{ID: 2, Pickup: 3, Delivery: 1, Weight: 1},
	}
	res, err := p.Plan(context.Background(), vehicles, tasks, soon())
	require.NoError(t, err)

	var sum float64
	for _, vp := range res.Plans {
		sum += vp.Cost
	}
	assert.InDelta(t, res.Cost, sum, 1e-9)

	require.Len(t, spy.runs, 1)
	assert.Equal(t, res.RunID, spy.runs[0].RunID)
	assert.Equal(t, "planner", spy.runs[0].Component)
	assert.Equal(t, 3, spy.runs[0].Tasks)
	assert.LessOrEqual(t, spy.runs[0].BestCost, spy.runs[0].InitialCost)

	assert.Equal(t, []string{"plans/1", "plans/2"}, pub.Subjects())
	var got VehiclePlan
	require.NoError(t, json.Unmarshal(pub.Messages[0].Payload, &got))
	assert.Equal(t, res.RunID, got.RunID)

	ev := <-ch
	require.IsType(t, events.PlanEvent{}, ev)
	assert.Equal(t, res.Cost, ev.(events.PlanEvent).Cost)
}
