package topology

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/haulage/core/model"
)

func line() ([]model.City, []Road) {
	cities := []model.City{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}, {ID: 4, Name: "D"}}
	roads := []Road{
		{From: 1, To: 2, Distance: 5},
		{From: 2, To: 3, Distance: 4},
		{From: 1, To: 3, Distance: 20},
		{From: 3, To: 4, Distance: 1},
	}
	return cities, roads
}

func TestGraph_DistanceAndPath(t *testing.T) {
	cities, roads := line()
	g, err := NewGraph(cities, roads)
	require.NoError(t, err)

	assert.Equal(t, 0.0, g.Distance(1, 1))
	assert.Equal(t, 9.0, g.Distance(1, 3))
	assert.Equal(t, 9.0, g.Distance(3, 1))
	assert.Equal(t, 10.0, g.Distance(1, 4))
	assert.Equal(t, []model.CityID{2, 3, 4}, g.Path(1, 4))
	assert.Equal(t, []model.CityID{3, 2, 1}, g.Path(4, 1))
	assert.Empty(t, g.Path(2, 2))
	assert.True(t, math.IsInf(g.Distance(1, 99), 1))
}

func TestGraph_PathAcrossZeroLengthRoads(t *testing.T) {
	cities := []model.City{{ID: 1}, {ID: 2}, {ID: 3}}
	g, err := NewGraph(cities, []Road{{From: 1, To: 2, Distance: 0}, {From: 1, To: 3, Distance: 5}})
	require.NoError(t, err)
	assert.Equal(t, 5.0, g.Distance(1, 3))
	assert.Equal(t, []model.CityID{3}, g.Path(1, 3))
	assert.Equal(t, []model.CityID{1, 3}, g.Path(2, 3))

	// 2 and 3 are joined at zero length; only 3 leads on to 4.
	cities = append(cities, model.City{ID: 4})
	g, err = NewGraph(cities, []Road{
		{From: 1, To: 2, Distance: 4},
		{From: 2, To: 3, Distance: 0},
		{From: 3, To: 4, Distance: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []model.CityID{2, 3, 4}, g.Path(1, 4))
	assert.Equal(t, []model.CityID{3, 2, 1}, g.Path(4, 1))
}

func TestGraph_ParallelRoadsKeepShortest(t *testing.T) {
	cities := []model.City{{ID: 1}, {ID: 2}}
	g, err := NewGraph(cities, []Road{{From: 1, To: 2, Distance: 7}, {From: 2, To: 1, Distance: 3}, {From: 1, To: 2, Distance: 9}})
	require.NoError(t, err)
	assert.Equal(t, 3.0, g.Distance(1, 2))
}

func TestGraph_Errors(t *testing.T) {
	cities := []model.City{{ID: 1}, {ID: 2}, {ID: 3}}
	_, err := NewGraph(cities, []Road{{From: 1, To: 2, Distance: 1}})
	if !errors.Is(err, ErrUnreachable) {
		t.Fatalf("expected ErrUnreachable, got %v", err)
	}
	_, err = NewGraph(cities, []Road{{From: 1, To: 9, Distance: 1}})
	if !errors.Is(err, ErrUnknownCity) {
		t.Fatalf("expected ErrUnknownCity, got %v", err)
	}
	_, err = NewGraph(cities[:2], []Road{{From: 1, To: 2, Distance: -1}})
	assert.Error(t, err)
	_, err = NewGraph([]model.City{{ID: 1}, {ID: 1}}, nil)
	assert.Error(t, err)
}

func TestMatrix(t *testing.T) {
	m, err := NewMatrix([]model.CityID{1, 2}, [][]float64{{0, 5}, {5, 0}})
	require.NoError(t, err)
	assert.Equal(t, 5.0, m.Distance(2, 1))
	assert.Equal(t, []model.CityID{2}, m.Path(1, 2))
	assert.Nil(t, m.Path(1, 1))

	_, err = NewMatrix([]model.CityID{1, 2}, [][]float64{{0, 5}, {4, 0}})
	assert.Error(t, err)
	_, err = NewMatrix([]model.CityID{1}, [][]float64{{1}})
	assert.Error(t, err)
}
