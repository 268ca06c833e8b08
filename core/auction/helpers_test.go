package auction

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/search"
	"github.com/kilianp07/haulage/core/topology"
)

func lineMatrix(t *testing.T, xs ...float64) *topology.Matrix {
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
	require.NoError(t, err)
	return m
}

// cappedSearch stops on the iteration cap long before any realistic deadline.
func cappedSearch(iterations int) search.Config {
	return search.Config{P: 0.5, MaxIterations: iterations, TimeBudgetMS: 60000}
}

func immediateOnly() Config {
	c := Config{SpeculativeRounds: 0, Margin: 0.5}
	c.SetDefaults()
	return c
}
