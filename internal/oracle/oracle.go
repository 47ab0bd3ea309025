// Package oracle implements the street-route oracle adapter (C4): a
// thin capability over an external street-routing provider that,
// given an ordered list of waypoints, returns a street-following
// polyline plus distance and duration. The provider itself is treated
// as an opaque oracle — no retries, no alternatives requested.
package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/prompt-general/saferoute/pkg/models"
)

// Mode selects the oracle's routing profile.
type Mode string

const (
	ModeWalking Mode = "walking"
	ModeCycling Mode = "cycling"
	ModeDriving Mode = "driving"
)

// Timeout is the hard ceiling on a single oracle call.
const Timeout = 10 * time.Second

// ErrOracleUnavailable is returned when the oracle times out or the
// request otherwise fails. Callers distinguish the baseline call
// (fatal) from the alternative call (recoverable) themselves.
var ErrOracleUnavailable = errors.New("oracle: unavailable")

// ErrTooFewWaypoints is returned when fewer than two waypoints are given.
var ErrTooFewWaypoints = errors.New("oracle: at least two waypoints required")

// Polyline is the oracle's street-following route: densely sampled —
// callers may assume several interior points per kilometer — plus the
// oracle's own distance and duration.
type Polyline struct {
	Coords     []models.Coordinate
	DistanceM  float64
	DurationS  float64
}

// RouteOracle is the capability the orchestrator depends on.
type RouteOracle interface {
	Route(ctx context.Context, waypoints []models.Coordinate, mode Mode) (Polyline, error)
}
