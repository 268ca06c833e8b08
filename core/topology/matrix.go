package topology

import (
	"fmt"
	"math"

	"github.com/kilianp07/haulage/core/model"
)

// Matrix is an Oracle over an explicit distance table. Every pair is treated
// as a direct hop, so Path(a, b) is [b].
type Matrix struct {
	index map[model.CityID]int
	dist  [][]float64
}

// NewMatrix validates that dist is square, symmetric and non-negative with a
// zero diagonal.
func NewMatrix(ids []model.CityID, dist [][]float64) (*Matrix, error) {
	if len(dist) != len(ids) {
		return nil, fmt.Errorf("matrix has %d rows for %d cities", len(dist), len(ids))
	}
	index := make(map[model.CityID]int, len(ids))
	for i, id := range ids {
		if _, dup := index[id]; dup {
			return nil, fmt.Errorf("duplicate city %d", id)
		}
		index[id] = i
		if len(dist[i]) != len(ids) {
			return nil, fmt.Errorf("row %d has %d columns", i, len(dist[i]))
		}
	}
	for i := range dist {
		if dist[i][i] != 0 {
			return nil, fmt.Errorf("non-zero diagonal at %d", ids[i])
		}
		for j := range dist[i] {
			d := dist[i][j]
			if d < 0 || math.IsNaN(d) || math.IsInf(d, 0) {
				return nil, fmt.Errorf("invalid distance %v between %d and %d", d, ids[i], ids[j])
			}
			if d != dist[j][i] {
				return nil, fmt.Errorf("asymmetric distance between %d and %d", ids[i], ids[j])
			}
		}
	}
	cp := make([][]float64, len(dist))
	for i := range dist {
		cp[i] = append([]float64(nil), dist[i]...)
	}
	return &Matrix{index: index, dist: cp}, nil
}

// Has reports whether the city has a row in the table.
func (m *Matrix) Has(id model.CityID) bool {
	_, ok := m.index[id]
	return ok
}

// Distance returns the tabulated distance, or +Inf for unknown cities.
func (m *Matrix) Distance(a, b model.CityID) float64 {
	i, okA := m.index[a]
	j, okB := m.index[b]
	if !okA || !okB {
		return math.Inf(1)
	}
	return m.dist[i][j]
}

// Path returns [b] for distinct cities.
func (m *Matrix) Path(a, b model.CityID) []model.CityID {
	if a == b {
		return nil
	}
	return []model.CityID{b}
}
