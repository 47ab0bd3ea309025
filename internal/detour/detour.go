// Package detour implements the detour synthesizer (C6): given the
// baseline polyline and the crime set, it picks the single worst
// segment and, if it is bad enough, produces one interior waypoint
// perpendicular to the route's overall direction for the oracle's
// second call.
package detour

import (
	"math"

	"github.com/prompt-general/saferoute/internal/exposure"
	"github.com/prompt-general/saferoute/internal/geo"
	"github.com/prompt-general/saferoute/pkg/models"
)

// Config carries the §6 tunables this synthesizer reads.
type Config struct {
	DetectionRadiusM  float64
	TriggerScore      float64
	OffsetDeg         float64
	HighSeverityFloor int
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		DetectionRadiusM:  200,
		TriggerScore:      0.3,
		OffsetDeg:         0.003,
		HighSeverityFloor: 7,
	}
}

// candidateCheckRadiusM is the fixed radius used to rank the two
// offset candidates against each other — distinct from the
// detection radius used to pick the worst segment in the first place.
const candidateCheckRadiusM = 300

// Waypoints builds the ordered list of waypoints — [start, end] or
// [start, detour, end] — to hand to the oracle for its second call.
// It never fails: in the absence of high-severity incidents it
// degrades to the no-detour path.
func Waypoints(baseline []models.Coordinate, crimes []models.CrimePoint, start, end models.Coordinate, cfg Config) []models.Coordinate {
	noDetour := []models.Coordinate{start, end}
	if len(baseline) < 2 {
		return noDetour
	}

	bestIdx := -1
	bestScore := 0.0
	for i := 0; i < len(baseline)-1; i++ {
		score := detourScore(baseline[i], baseline[i+1], crimes, cfg)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore <= cfg.TriggerScore {
		return noDetour
	}

	a, b := baseline[bestIdx], baseline[bestIdx+1]
	mid := models.Coordinate{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}

	plus, minus := offsetCandidates(mid, start, end, cfg.OffsetDeg)

	plusCount := highSeverityWithin(plus, crimes, cfg.HighSeverityFloor)
	minusCount := highSeverityWithin(minus, crimes, cfg.HighSeverityFloor)

	chosen := plus
	if minusCount < plusCount {
		chosen = minus
	}

	return []models.Coordinate{start, chosen, end}
}

// detourScore is the detection-set, high-severity-only score used to
// rank candidate segments: routine nuisance incidents never trigger a
// detour, only high-severity ones. Incident age is not considered.
func detourScore(a, b models.Coordinate, crimes []models.CrimePoint, cfg Config) float64 {
	var score float64
	for _, c := range exposure.InfluenceSet(a, b, crimes, cfg.DetectionRadiusM) {
		if c.Severity >= cfg.HighSeverityFloor {
			score += geo.SeverityWeight(c.Severity)
		}
	}
	return score
}

// offsetCandidates returns the two points offset from m perpendicular
// to the overall route direction (end − start), not the worst
// segment's own direction — using the overall direction avoids wild
// detour orientations when the worst segment is short or oddly angled.
func offsetCandidates(m, start, end models.Coordinate, offsetDeg float64) (plus, minus models.Coordinate) {
	dx := end.Lng - start.Lng
	dy := end.Lat - start.Lat

	length := math.Hypot(dx, dy)
	if length == 0 {
		// Degenerate route direction: arbitrarily perpendicular along
		// the longitude axis rather than leaving the offset undefined.
		return models.Coordinate{Lat: m.Lat, Lng: m.Lng + offsetDeg},
			models.Coordinate{Lat: m.Lat, Lng: m.Lng - offsetDeg}
	}

	// Rotate (dx, dy) by +/-90 degrees and normalize.
	px, py := -dy/length, dx/length

	plus = models.Coordinate{Lat: m.Lat + py*offsetDeg, Lng: m.Lng + px*offsetDeg}
	minus = models.Coordinate{Lat: m.Lat - py*offsetDeg, Lng: m.Lng - px*offsetDeg}
	return plus, minus
}

func highSeverityWithin(p models.Coordinate, crimes []models.CrimePoint, floor int) int {
	count := 0
	for _, c := range crimes {
		if c.Severity >= floor && geo.DistanceMeters(c.Coordinate, p) <= candidateCheckRadiusM {
			count++
		}
	}
	return count
}
