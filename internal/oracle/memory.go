package oracle

import (
	"context"

	"github.com/prompt-general/saferoute/internal/geo"
	"github.com/prompt-general/saferoute/pkg/models"
)

// InMemoryRouteOracle is a deterministic fake RouteOracle. It returns
// a pre-scripted polyline per waypoint-count "shape" (no detour vs.
// one detour waypoint), which is all the orchestrator distinguishes
// between in practice, and can be made to fail on demand.
type InMemoryRouteOracle struct {
	// Responses maps a waypoint count to the polyline to return for
	// any call with that many waypoints.
	Responses map[int]Polyline
	// FailOnWaypointCount makes calls with that many waypoints return
	// ErrOracleUnavailable, for exercising the orchestrator's
	// alternative-route fallback.
	FailOnWaypointCount int
	Calls               int
}

// NewInMemoryRouteOracle builds a fake oracle with no failure injected.
func NewInMemoryRouteOracle() *InMemoryRouteOracle {
	return &InMemoryRouteOracle{Responses: map[int]Polyline{}, FailOnWaypointCount: -1}
}

// Route implements RouteOracle.
func (o *InMemoryRouteOracle) Route(ctx context.Context, waypoints []models.Coordinate, mode Mode) (Polyline, error) {
	o.Calls++
	if len(waypoints) < 2 {
		return Polyline{}, ErrTooFewWaypoints
	}
	if len(waypoints) == o.FailOnWaypointCount {
		return Polyline{}, ErrOracleUnavailable
	}

	if resp, ok := o.Responses[len(waypoints)]; ok {
		return resp, nil
	}

	// Default: a straight-line polyline through the given waypoints,
	// densified to a few interior points per leg.
	return densify(waypoints), nil
}

func densify(waypoints []models.Coordinate) Polyline {
	const pointsPerLeg = 8
	var coords []models.Coordinate
	var total float64

	for i := 0; i < len(waypoints)-1; i++ {
		a, b := waypoints[i], waypoints[i+1]
		for step := 0; step < pointsPerLeg; step++ {
			t := float64(step) / float64(pointsPerLeg)
			coords = append(coords, models.Coordinate{
				Lat: a.Lat + (b.Lat-a.Lat)*t,
				Lng: a.Lng + (b.Lng-a.Lng)*t,
			})
		}
		total += geo.DistanceMeters(a, b)
	}
	coords = append(coords, waypoints[len(waypoints)-1])

	return Polyline{Coords: coords, DistanceM: total, DurationS: total / 1.3} // ~1.3 m/s walking pace
}
