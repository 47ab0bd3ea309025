// Package exposure implements the crime-exposure model (C5): the
// per-segment penalty and safety score that make up the rest of this
// system's routing decisions, and the distance-weighted route-level
// safety score built from them.
package exposure

import (
	"math"

	"github.com/prompt-general/saferoute/internal/geo"
	"github.com/prompt-general/saferoute/pkg/models"
)

// Config carries the §6 tunables this model reads. Zero-value Config
// is invalid; use DefaultConfig.
type Config struct {
	InfluenceRadiusM float64
	CriticalHours    float64
}

// DefaultConfig returns the spec-mandated defaults.
func DefaultConfig() Config {
	return Config{
		InfluenceRadiusM: 100,
		CriticalHours:    24,
	}
}

// safetyScoreConstant is the per-crime score-falloff multiplier: tuned
// so a moderate cluster of non-recent, mid-severity incidents within
// radius drops a segment's score by tens of points without routinely
// saturating to zero.
const safetyScoreConstant = 200.0

// recentSegmentPenaltyMultiplierScale sets the K(s,c) applied to a crime's
// contribution when it is within the critical window: multiplying by
// the segment's own length in mm is what makes a long segment routed
// through a fresh incident catastrophically expensive relative to a
// short detour around it.
const recentSegmentPenaltyMultiplierScale = 1000.0
const nonRecentPenaltyMultiplier = 100.0

// InfluenceSet returns the crimes within radius meters of segment ab,
// each with DistanceToSegmentM populated. The returned slice is a copy
// — callers must not assume it aliases crimes.
func InfluenceSet(a, b models.Coordinate, crimes []models.CrimePoint, radiusM float64) []models.CrimePoint {
	var out []models.CrimePoint
	for _, c := range crimes {
		d := geo.PointToSegmentMeters(c.Coordinate, a, b)
		if d < radiusM {
			c.DistanceToSegmentM = d
			out = append(out, c)
		}
	}
	return out
}

// ScoreSegment computes the full Segment view for one polyline edge:
// its penalty, safety score, density, and crime counts.
//
// Zero-length segments (coincident endpoints, which can appear at
// oracle-polyline joins) default to penalty 0 and score 100 rather
// than dividing by zero.
func ScoreSegment(a, b models.Coordinate, crimes []models.CrimePoint, cfg Config) models.Segment {
	distanceM := geo.DistanceMeters(a, b)

	seg := models.Segment{
		Start:               a,
		End:                 b,
		DistanceM:           distanceM,
		HoursToNearestCrime: models.NoCrimeSentinel,
	}

	if distanceM == 0 {
		seg.SafetyScore = 100
		seg.EdgeWeight = distanceM
		return seg
	}

	influence := InfluenceSet(a, b, crimes, cfg.InfluenceRadiusM)

	var penalty, scoreDeduction float64
	for _, c := range influence {
		t := geo.TimeDecay(c.AgeHours)
		fall := math.Max(0, 1-c.DistanceToSegmentM/cfg.InfluenceRadiusM)
		sigma := geo.SeverityWeight(c.Severity)

		k := nonRecentPenaltyMultiplier
		if c.IsCritical(cfg.CriticalHours) {
			k = distanceM * recentSegmentPenaltyMultiplierScale
		}

		penalty += t * fall * sigma * k
		scoreDeduction += t * sigma * fall * safetyScoreConstant

		if c.IsHighSeverity() {
			seg.HighSeverityCrimes++
		}
		if c.IsCritical(cfg.CriticalHours) {
			seg.CriticalCrimes24h++
		}
		if seg.HoursToNearestCrime == models.NoCrimeSentinel || c.AgeHours < seg.HoursToNearestCrime {
			seg.HoursToNearestCrime = c.AgeHours
		}
	}

	seg.Penalty = penalty
	seg.SafetyScore = clamp(100-scoreDeduction, 0, 100)
	seg.CrimeDensity = float64(len(influence)) / math.Max(distanceM/1000, 0.001)
	seg.EdgeWeight = distanceM + penalty

	return seg
}

// BuildSegments decomposes a polyline into scored segments.
func BuildSegments(coords []models.Coordinate, crimes []models.CrimePoint, cfg Config) []models.Segment {
	if len(coords) < 2 {
		return nil
	}
	segments := make([]models.Segment, 0, len(coords)-1)
	for i := 0; i < len(coords)-1; i++ {
		segments = append(segments, ScoreSegment(coords[i], coords[i+1], crimes, cfg))
	}
	return segments
}

// RouteSafetyScore is the distance-weighted mean of segment scores.
// The weighted (not unweighted) mean prevents short, coincidentally
// safe micro-segments from masking long exposed stretches. A route
// with zero total distance (degenerate) scores 100, matching the
// empty-crime-set convention.
func RouteSafetyScore(segments []models.Segment) float64 {
	var weighted, total float64
	for _, s := range segments {
		weighted += s.SafetyScore * s.DistanceM
		total += s.DistanceM
	}
	if total == 0 {
		return 100
	}
	return weighted / total
}

// TotalPenalty sums per-segment penalties into the route's
// total_crime_penalty.
func TotalPenalty(segments []models.Segment) float64 {
	var total float64
	for _, s := range segments {
		total += s.Penalty
	}
	return total
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
