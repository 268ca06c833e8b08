// Package instance loads problem instances: a road network, a fleet, an
// ordered list of tasks and the task-arrival model used when bidding.
package instance

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/haulage/core/auction"
	"github.com/kilianp07/haulage/core/model"
	"github.com/kilianp07/haulage/core/topology"
)

// Distribution describes how future tasks are expected to arrive. Empty
// pairs mean every ordered pair of distinct cities is equally likely.
type Distribution struct {
	MinWeight int            `json:"min_weight" yaml:"min_weight"`
	MaxWeight int            `json:"max_weight" yaml:"max_weight"`
	Pairs     []auction.Pair `json:"pairs,omitempty" yaml:"pairs,omitempty"`
}

// Opponent configures the baseline bidder of the auction simulation.
type Opponent struct {
	Home      model.CityID `json:"home" yaml:"home"`
	Capacity  int          `json:"capacity" yaml:"capacity"`
	CostPerKm float64      `json:"cost_per_km" yaml:"cost_per_km"`
	Seed      int64        `json:"seed" yaml:"seed"`
}

// Instance is the file representation of a problem.
type Instance struct {
	Name         string          `json:"name,omitempty" yaml:"name,omitempty"`
	Cities       []model.City    `json:"cities" yaml:"cities"`
	Roads        []topology.Road `json:"roads" yaml:"roads"`
	Vehicles     []model.Vehicle `json:"vehicles" yaml:"vehicles"`
	Tasks        []model.Task    `json:"tasks" yaml:"tasks"`
	Distribution *Distribution   `json:"distribution,omitempty" yaml:"distribution,omitempty"`
	Opponent     *Opponent       `json:"opponent,omitempty" yaml:"opponent,omitempty"`
}

// Built holds the runtime objects derived from an Instance.
type Built struct {
	Graph        *topology.Graph
	Vehicles     []model.Vehicle
	Tasks        []model.Task
	Distribution auction.Distribution
	// Opponent is the vehicle of the baseline bidder, nil when not configured.
	Opponent     *model.Vehicle
	OpponentSeed int64
}

// Load reads an instance from a JSON or YAML file chosen by extension.
func Load(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	inst, err := Decode(f, ext)
	if err != nil {
		return nil, fmt.Errorf("instance %s: %w", path, err)
	}
	return inst, nil
}

// Decode reads an instance in the given format ("yaml", "yml" or "json").
func Decode(r io.Reader, format string) (*Instance, error) {
	var inst Instance
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&inst); err != nil {
			return nil, err
		}
	case "json":
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&inst); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported instance format: %q", format)
	}
	return &inst, nil
}

// Validate checks vehicles and tasks. The road network is checked by Build.
func (i *Instance) Validate() error {
	if len(i.Cities) == 0 {
		return errors.New("instance has no city")
	}
	if len(i.Vehicles) == 0 {
		return errors.New("instance has no vehicle")
	}
	var errs []error
	for _, v := range i.Vehicles {
		errs = append(errs, v.Validate())
	}
	for _, t := range i.Tasks {
		errs = append(errs, t.Validate())
	}
	if i.Opponent != nil && i.Opponent.Capacity < 0 {
		errs = append(errs, fmt.Errorf("opponent capacity must be non-negative, got %d", i.Opponent.Capacity))
	}
	return errors.Join(errs...)
}

// Build validates the instance and constructs the distance oracle. Every
// city referenced by a vehicle, task or opponent must exist.
func (i *Instance) Build() (*Built, error) {
	if err := i.Validate(); err != nil {
		return nil, err
	}
	g, err := topology.NewGraph(i.Cities, i.Roads)
	if err != nil {
		return nil, err
	}
	for _, v := range i.Vehicles {
		if !g.Has(v.Home) {
			return nil, fmt.Errorf("vehicle %d home: %w: %d", v.ID, topology.ErrUnknownCity, v.Home)
		}
	}
	for _, t := range i.Tasks {
		if !g.Has(t.Pickup) || !g.Has(t.Delivery) {
			return nil, fmt.Errorf("task %d: %w", t.ID, topology.ErrUnknownCity)
		}
	}

	b := &Built{
		Graph:    g,
		Vehicles: append([]model.Vehicle(nil), i.Vehicles...),
		Tasks:    append([]model.Task(nil), i.Tasks...),
	}
	ids := make([]model.CityID, 0, len(i.Cities))
	for _, c := range g.Cities() {
		ids = append(ids, c.ID)
	}
	d := Distribution{MinWeight: 1, MaxWeight: 1}
	if i.Distribution != nil {
		d = *i.Distribution
	} else if lo, hi, ok := taskWeightRange(i.Tasks); ok {
		d.MinWeight, d.MaxWeight = lo, hi
	}
	if len(ids) > 1 || len(d.Pairs) > 0 {
		dist, err := auction.NewTopologyDistribution(ids, d.Pairs, d.MinWeight, d.MaxWeight)
		if err != nil {
			return nil, fmt.Errorf("distribution: %w", err)
		}
		b.Distribution = dist
	}
	if o := i.Opponent; o != nil {
		if !g.Has(o.Home) {
			return nil, fmt.Errorf("opponent home: %w: %d", topology.ErrUnknownCity, o.Home)
		}
		b.Opponent = &model.Vehicle{ID: 0, Name: "opponent", Capacity: o.Capacity, CostPerKm: o.CostPerKm, Home: o.Home}
		b.OpponentSeed = o.Seed
	}
	return b, nil
}

// taskWeightRange returns the smallest and largest task weight.
func taskWeightRange(tasks []model.Task) (lo, hi int, ok bool) {
	if len(tasks) == 0 {
		return 0, 0, false
	}
	lo, hi = tasks[0].Weight, tasks[0].Weight
	for _, t := range tasks[1:] {
		lo = min(lo, t.Weight)
		hi = max(hi, t.Weight)
	}
	return lo, hi, true
}
