package auction

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

func TestTopologyDistribution_WeightedPairs(t *testing.T) {
	d, err := NewTopologyDistribution([]model.CityID{0, 1, 2, 3}, []Pair{{From: 0, To: 1, P: 0}, {From: 2, To: 3, P: 1}}, 2, 5)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		task := d.Sample(rng, -i-1)
		assert.Equal(t, -i-1, task.ID)
		assert.Equal(t, model.CityID(2), task.Pickup)
		assert.Equal(t, model.CityID(3), task.Delivery)
		assert.GreaterOrEqual(t, task.Weight, 2)
		assert.LessOrEqual(t, task.Weight, 5)
	}
}

func TestTopologyDistribution_DefaultPairs(t *testing.T) {
	d, err := NewTopologyDistribution([]model.CityID{0, 1, 2}, nil, 1, 1)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(5))
	seen := map[[2]model.CityID]bool{}
	for i := 0; i < 500; i++ {
		task := d.Sample(rng, i)
		assert.NotEqual(t, task.Pickup, task.Delivery)
		assert.Equal(t, 1, task.Weight)
		seen[[2]model.CityID{task.Pickup, task.Delivery}] = true
	}
	assert.Len(t, seen, 6)
}

func TestTopologyDistribution_Errors(t *testing.T) {
	_, err := NewTopologyDistribution([]model.CityID{0, 1}, nil, 3, 2)
	assert.Error(t, err)
	_, err = NewTopologyDistribution([]model.CityID{0}, nil, 1, 2)
	assert.Error(t, err)
	_, err = NewTopologyDistribution([]model.CityID{0, 1}, []Pair{{From: 0, To: 1, P: -1}}, 1, 2)
	assert.Error(t, err)
	_, err = NewTopologyDistribution([]model.CityID{0, 1}, []Pair{{From: 0, To: 1, P: 0}}, 1, 2)
	assert.Error(t, err)
}

func TestTopologyDistribution_UnknownPairCity(t *testing.T) {
	_, err := NewTopologyDistribution([]model.CityID{0, 1}, []Pair{{From: 0, To: 1, P: 1}, {From: 0, To: 99, P: 1}}, 1, 2)
	assert.ErrorIs(t, err, topology.ErrUnknownCity)
	_, err = NewTopologyDistribution(nil, []Pair{{From: 0, To: 1, P: 1}}, 1, 2)
	assert.ErrorIs(t, err, topology.ErrUnknownCity)
}
