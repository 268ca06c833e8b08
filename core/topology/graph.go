package topology

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/kilianp07/haulage/core/model"
)

// Road is an undirected edge of the network.
type Road struct {
	From     model.CityID `json:"from" yaml:"from"`
	To       model.CityID `json:"to" yaml:"to"`
	Distance float64      `json:"distance" yaml:"distance"`
}

// Graph is an Oracle backed by all-pairs Dijkstra over a road network.
// It is immutable after construction and safe for concurrent use.
type Graph struct {
	g      *simple.WeightedUndirectedGraph
	cities []model.City
	index  map[model.CityID]int
	dist   [][]float64
}

// NewGraph builds the network and precomputes every pairwise distance.
// Parallel roads keep the shortest one. The network must be connected.
func NewGraph(cities []model.City, roads []Road) (*Graph, error) {
	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	index := make(map[model.CityID]int, len(cities))
	sorted := append([]model.City(nil), cities...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for i, c := range sorted {
		if _, dup := index[c.ID]; dup {
			return nil, fmt.Errorf("duplicate city %d", c.ID)
		}
		index[c.ID] = i
		g.AddNode(simple.Node(c.ID))
	}
	for _, r := range roads {
		if _, ok := index[r.From]; !ok {
			return nil, fmt.Errorf("road %d-%d: %w %d", r.From, r.To, ErrUnknownCity, r.From)
		}
		if _, ok := index[r.To]; !ok {
			return nil, fmt.Errorf("road %d-%d: %w %d", r.From, r.To, ErrUnknownCity, r.To)
		}
		if r.From == r.To {
			continue
		}
		if r.Distance < 0 || math.IsNaN(r.Distance) {
			return nil, fmt.Errorf("road %d-%d: invalid distance %v", r.From, r.To, r.Distance)
		}
		if w, ok := g.Weight(int64(r.From), int64(r.To)); ok && w <= r.Distance {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(r.From), simple.Node(r.To), r.Distance))
	}

	all := path.DijkstraAllPaths(g)
	dist := make([][]float64, len(sorted))
	for i, a := range sorted {
		dist[i] = make([]float64, len(sorted))
		for j, b := range sorted {
			if i == j {
				continue
			}
			w := all.Weight(int64(a.ID), int64(b.ID))
			if math.IsInf(w, 1) {
				return nil, fmt.Errorf("%w: no road path from %d to %d", ErrUnreachable, a.ID, b.ID)
			}
			dist[i][j] = w
		}
	}
	return &Graph{g: g, cities: sorted, index: index, dist: dist}, nil
}

// Cities returns the cities of the network ordered by ID.
func (t *Graph) Cities() []model.City {
	return append([]model.City(nil), t.cities...)
}

// Has reports whether the city belongs to the network.
func (t *Graph) Has(id model.CityID) bool {
	_, ok := t.index[id]
	return ok
}

// Distance returns the shortest-path distance between a and b. Unknown cities
// yield +Inf.
func (t *Graph) Distance(a, b model.CityID) float64 {
	i, okA := t.index[a]
	j, okB := t.index[b]
	if !okA || !okB {
		return math.Inf(1)
	}
	return t.dist[i][j]
}

// Path returns the cities traversed from a to b, excluding a. Among equal
// shortest paths the one stepping to the lowest city ID first is returned.
// Zero-length roads may lead to dead ends, so the walk backtracks.
func (t *Graph) Path(a, b model.CityID) []model.CityID {
	if a == b || !t.Has(a) || !t.Has(b) {
		return nil
	}
	visited := map[model.CityID]bool{a: true}
	out, ok := t.walk(a, b, visited)
	if !ok {
		return nil
	}
	return out
}

// walk follows roads lying on a shortest path to dst, lowest ID first.
// Cities that failed once are left marked since they cannot reach dst later.
func (t *Graph) walk(cur, dst model.CityID, visited map[model.CityID]bool) ([]model.CityID, bool) {
	if cur == dst {
		return nil, true
	}
	remaining := t.Distance(cur, dst)
	for _, n := range t.neighbors(cur) {
		if visited[n] {
			continue
		}
		w, _ := t.g.Weight(int64(cur), int64(n))
		if !nearlyEqual(w+t.Distance(n, dst), remaining) {
			continue
		}
		visited[n] = true
		if rest, ok := t.walk(n, dst, visited); ok {
			return append([]model.CityID{n}, rest...), true
		}
	}
	return nil, false
}

func (t *Graph) neighbors(cur model.CityID) []model.CityID {
	var hops []model.CityID
	it := t.g.From(int64(cur))
	for it.Next() {
		hops = append(hops, model.CityID(it.Node().ID()))
	}
	sort.Slice(hops, func(i, j int) bool { return hops[i] < hops[j] })
	return hops
}

func nearlyEqual(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
