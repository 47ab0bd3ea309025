// Package routing implements the routing orchestrator (C8): the
// single entry point that composes the crime store, route oracle,
// exposure model, detour synthesizer, and density grid into the
// {fastest, safest, comparison} response and the auxiliary heatmap and
// blocked-area views.
package routing

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/prompt-general/saferoute/internal/crimestore"
	"github.com/prompt-general/saferoute/internal/density"
	"github.com/prompt-general/saferoute/internal/detour"
	"github.com/prompt-general/saferoute/internal/exposure"
	"github.com/prompt-general/saferoute/internal/oracle"
	"github.com/prompt-general/saferoute/pkg/models"
)

// ErrInvalidCoordinate is returned when start or end falls outside the
// plausible Earth range. Fatal; reported as a client error.
var ErrInvalidCoordinate = errors.New("routing: invalid coordinate")

// ErrDegenerateRoute is returned when the oracle's polyline has fewer
// than two points. Fatal.
var ErrDegenerateRoute = errors.New("routing: degenerate route")

// epsilon guards the comparison percentage denominators against
// division by zero on a genuinely zero-distance request.
const epsilon = 0.001

// minSafetyDenominator is the floor used for the safety-improvement
// percentage denominator, since a fastest route can legitimately score 0.
const minSafetyDenominator = 0.1

// maxCriticalZones bounds how many critical crime zones are attached
// to a route response.
const maxCriticalZones = 20

// Config carries the §6 tunables the orchestrator and the components
// it composes read.
type Config struct {
	Exposure exposure.Config
	Detour   detour.Config
	Density  density.Config
	Mode     oracle.Mode
}

// DefaultConfig returns the spec-mandated defaults for every tunable.
func DefaultConfig() Config {
	return Config{
		Exposure: exposure.DefaultConfig(),
		Detour:   detour.DefaultConfig(),
		Density:  density.DefaultConfig(),
		Mode:     oracle.ModeWalking,
	}
}

// Orchestrator composes C3-C7. It owns no mutable state between
// requests: every operation is reentrant and safe for concurrent use.
type Orchestrator struct {
	store  crimestore.CrimeStore
	oracle oracle.RouteOracle
	cfg    Config
}

// New builds an Orchestrator over the given crime store and route
// oracle realizations.
func New(store crimestore.CrimeStore, routeOracle oracle.RouteOracle, cfg Config) *Orchestrator {
	return &Orchestrator{store: store, oracle: routeOracle, cfg: cfg}
}

// OptimalRoute implements the nine-step procedure: fetch crimes, score
// the baseline, synthesize a detour, score the alternative, and
// compute comparison deltas.
func (o *Orchestrator) OptimalRoute(ctx context.Context, start, end models.Coordinate) (models.RouteResponse, error) {
	if !start.Valid() || !end.Valid() {
		return models.RouteResponse{}, ErrInvalidCoordinate
	}

	bbox := crimestore.BBoxFromEndpoints(start, end)
	crimes, err := o.store.CrimesInBBox(ctx, bbox)
	if err != nil {
		return models.RouteResponse{}, fmt.Errorf("fetch crimes: %w", err)
	}

	baseline, err := o.oracle.Route(ctx, []models.Coordinate{start, end}, o.cfg.Mode)
	if err != nil {
		return models.RouteResponse{}, fmt.Errorf("baseline route: %w", err)
	}
	if len(baseline.Coords) < 2 {
		return models.RouteResponse{}, ErrDegenerateRoute
	}

	fastest := buildRoute(models.RouteTypeFastest, baseline, crimes, o.cfg.Exposure)

	waypoints := detour.Waypoints(baseline.Coords, crimes, start, end, o.cfg.Detour)

	var safest models.Route
	fallback := false

	if len(waypoints) == 2 {
		// No detour synthesized: the alternative is the baseline.
		safest = fastest
	} else {
		alternative, err := o.oracle.Route(ctx, waypoints, o.cfg.Mode)
		switch {
		case err != nil:
			// Recoverable: the alternative call failing degrades to the
			// baseline with an explicit fallback flag, it does not fail
			// the request.
			safest = fastest
			fallback = true
		case len(alternative.Coords) < 2:
			safest = fastest
			fallback = true
		default:
			safest = buildRoute(models.RouteTypeSafest, alternative, crimes, o.cfg.Exposure)
		}
	}

	zones := criticalZones(crimes, append(append([]models.Segment{}, fastest.Segments...), safest.Segments...), o.cfg.Exposure)
	fastest.CriticalCrimeZones = zones
	safest.CriticalCrimeZones = zones

	return models.RouteResponse{
		RequestID:    uuid.NewString(),
		FastestRoute: fastest,
		SafestRoute:  safest,
		Comparison:   compare(fastest, safest),
		Fallback:     fallback,
	}, nil
}

// Heatmap bypasses C4/C6 entirely: it fetches crimes for bbox and
// hands them straight to the density grid.
func (o *Orchestrator) Heatmap(ctx context.Context, bbox models.BoundingBox) (models.HeatmapResponse, error) {
	crimes, err := o.store.CrimesInBBox(ctx, bbox)
	if err != nil {
		return models.HeatmapResponse{}, fmt.Errorf("fetch crimes: %w", err)
	}

	resp := models.HeatmapResponse{
		HeatmapData: density.Grid(bbox, crimes, o.cfg.Density),
		TotalCrimes: len(crimes),
	}
	for _, c := range crimes {
		if c.IsCritical(density.BlockedAreaCriticalHours) {
			resp.CriticalCrimes24h++
		}
		if c.IsHighSeverity() {
			resp.HighSeverityCrimes++
		}
	}
	return resp, nil
}

// BlockedAreas bypasses C4/C6 entirely: it fetches crimes for bbox and
// wraps the recent-critical subset with their advisory radius.
func (o *Orchestrator) BlockedAreas(ctx context.Context, bbox models.BoundingBox) ([]models.BlockedArea, error) {
	crimes, err := o.store.CrimesInBBox(ctx, bbox)
	if err != nil {
		return nil, fmt.Errorf("fetch crimes: %w", err)
	}
	return density.BlockedAreas(crimes), nil
}

func buildRoute(routeType models.RouteType, poly oracle.Polyline, crimes []models.CrimePoint, cfg exposure.Config) models.Route {
	segments := exposure.BuildSegments(poly.Coords, crimes, cfg)
	return models.Route{
		RouteType:         routeType,
		TotalDistanceM:    poly.DistanceM,
		TotalDurationS:    poly.DurationS,
		TotalSafetyScore:  exposure.RouteSafetyScore(segments),
		TotalCrimePenalty: exposure.TotalPenalty(segments),
		PathCoordinates:   poly.Coords,
		Segments:          segments,
	}
}

func compare(fastest, safest models.Route) models.Comparison {
	distanceDiff := safest.TotalDistanceM - fastest.TotalDistanceM
	timeDiff := safest.TotalDurationS - fastest.TotalDurationS
	safetyDiff := safest.TotalSafetyScore - fastest.TotalSafetyScore

	distanceDenom := max(fastest.TotalDistanceM, epsilon)
	safetyDenom := max(fastest.TotalSafetyScore, minSafetyDenominator)

	return models.Comparison{
		TimeDifferenceSeconds:    timeDiff,
		TimeDifferenceMinutes:    timeDiff / 60,
		DistanceDifferenceMeters: distanceDiff,
		DistanceDifferencePct:    distanceDiff / distanceDenom * 100,
		SafetyImprovement:        safetyDiff,
		SafetyImprovementPct:     safetyDiff / safetyDenom * 100,
	}
}

// criticalZones collects the up-to-20 most critical crimes that fall
// within either route's influence regions, ranked by severity then
// recency.
func criticalZones(crimes []models.CrimePoint, segments []models.Segment, cfg exposure.Config) []models.CrimeZoneView {
	seen := make(map[models.Coordinate]bool)
	var candidates []models.CrimePoint

	for _, seg := range segments {
		for _, c := range exposure.InfluenceSet(seg.Start, seg.End, crimes, cfg.InfluenceRadiusM) {
			if seen[c.Coordinate] {
				continue
			}
			seen[c.Coordinate] = true
			candidates = append(candidates, c)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Severity != candidates[j].Severity {
			return candidates[i].Severity > candidates[j].Severity
		}
		return candidates[i].AgeHours < candidates[j].AgeHours
	})

	if len(candidates) > maxCriticalZones {
		candidates = candidates[:maxCriticalZones]
	}

	zones := make([]models.CrimeZoneView, len(candidates))
	for i, c := range candidates {
		zones[i] = models.CrimeZoneView{
			Coordinate: c.Coordinate,
			CrimeType:  c.CrimeType,
			Severity:   c.Severity,
			HoursAgo:   c.AgeHours,
		}
	}
	return zones
}
