package auction

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

// Distribution samples synthetic tasks for speculative rounds. Sampled tasks
// never touch committed state.
type Distribution interface {
	Sample(rng *rand.Rand, id int) model.Task
}

// Pair weights one (pickup, delivery) combination.
type Pair struct {
	From model.CityID `json:"from" yaml:"from"`
	To   model.CityID `json:"to" yaml:"to"`
	P    float64      `json:"p" yaml:"p"`
}

// TopologyDistribution draws pickup and delivery cities from weighted pairs
// and a weight uniformly from [MinWeight, MaxWeight].
type TopologyDistribution struct {
	pairs     []Pair
	cum       []float64
	minWeight int
	maxWeight int
}

// NewTopologyDistribution builds the distribution. With no pairs every
// ordered pair of distinct cities is equally likely. Explicit pairs must only
// name cities from the list.
func NewTopologyDistribution(cities []model.CityID, pairs []Pair, minWeight, maxWeight int) (*TopologyDistribution, error) {
	if minWeight < 0 || maxWeight < minWeight {
		return nil, fmt.Errorf("invalid weight range [%d,%d]", minWeight, maxWeight)
	}
	known := make(map[model.CityID]struct{}, len(cities))
	for _, c := range cities {
		known[c] = struct{}{}
	}
	for _, p := range pairs {
		for _, c := range []model.CityID{p.From, p.To} {
			if _, ok := known[c]; !ok {
				return nil, fmt.Errorf("pair %d-%d: %w %d", p.From, p.To, topology.ErrUnknownCity, c)
			}
		}
	}
	if len(pairs) == 0 {
		for _, a := range cities {
			for _, b := range cities {
				if a != b {
					pairs = append(pairs, Pair{From: a, To: b, P: 1})
				}
			}
		}
	}
	if len(pairs) == 0 {
		return nil, errors.New("distribution needs at least two cities or one pair")
	}
	ps := make([]float64, len(pairs))
	for i, p := range pairs {
		if p.P < 0 {
			return nil, fmt.Errorf("pair %d-%d: negative probability %v", p.From, p.To, p.P)
		}
		ps[i] = p.P
	}
	cum := floats.CumSum(make([]float64, len(ps)), ps)
	if cum[len(cum)-1] <= 0 {
		return nil, errors.New("pair probabilities sum to zero")
	}
	return &TopologyDistribution{
		pairs:     append([]Pair(nil), pairs...),
		cum:       cum,
		minWeight: minWeight,
		maxWeight: maxWeight,
	}, nil
}

// Sample draws a task with the given id.
func (d *TopologyDistribution) Sample(rng *rand.Rand, id int) model.Task {
	r := rng.Float64() * d.cum[len(d.cum)-1]
	i := sort.Search(len(d.cum), func(i int) bool { return d.cum[i] > r })
	if i == len(d.cum) {
		i--
	}
	p := d.pairs[i]
	return model.Task{
		ID:       id,
		Pickup:   p.From,
		Delivery: p.To,
		Weight:   d.minWeight + rng.Intn(d.maxWeight-d.minWeight+1),
	}
}
