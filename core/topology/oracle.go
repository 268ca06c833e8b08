// Package topology answers distance and shortest-path queries over the road
// network. Graph builds an all-pairs table once from a weighted undirected
// graph; Matrix serves precomputed distances.
package topology

import (
	"errors"

	"github.com/kilianp07/haulage/core/model"
)

var (
	// ErrUnknownCity is returned when a road or query references a city that
	// is not part of the network.
	ErrUnknownCity = errors.New("unknown city")
	// ErrUnreachable is returned when the network is not connected.
	ErrUnreachable = errors.New("city unreachable")
)

// Oracle provides shortest-path distances and city sequences between cities.
//
// Distance is symmetric, non-negative and zero for identical cities. Path
// returns the cities visited after a up to and including b; it is empty when
// a == b. Has reports whether a city belongs to the network; both queries are
// only meaningful for such cities.
type Oracle interface {
	Has(id model.CityID) bool
	Distance(a, b model.CityID) float64
	Path(a, b model.CityID) []model.CityID
}
