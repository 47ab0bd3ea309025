package detour

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prompt-general/saferoute/pkg/models"
)

func coord(lat, lng float64) models.Coordinate {
	return models.Coordinate{Lat: lat, Lng: lng}
}

func crimeAt(lat, lng float64, severity int, ageHours float64) models.CrimePoint {
	return models.CrimePoint{
		Coordinate: coord(lat, lng),
		Severity:   severity,
		CrimeType:  "robbery",
		OccurredAt: time.Now().Add(-time.Duration(ageHours) * time.Hour),
		AgeHours:   ageHours,
	}
}

func TestWaypointsNoDetourOnEmptyCrimeSet(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)
	baseline := []models.Coordinate{start, end}

	wp := Waypoints(baseline, nil, start, end, DefaultConfig())
	assert.Equal(t, []models.Coordinate{start, end}, wp)
}

func TestWaypointsNoDetourBelowThreshold(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)
	baseline := []models.Coordinate{start, end}
	// Severity 5 is below the high-severity floor of 7, so it never
	// contributes to the detour score at all.
	crimes := []models.CrimePoint{crimeAt(37.7799, -122.4144, 5, 1)}

	wp := Waypoints(baseline, crimes, start, end, DefaultConfig())
	assert.Equal(t, []models.Coordinate{start, end}, wp)
}

func TestWaypointsSynthesizesDetourOnSevereCluster(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)
	mid := coord(37.7799, -122.4144)
	baseline := []models.Coordinate{start, mid, end}

	var crimes []models.CrimePoint
	for i := 0; i < 10; i++ {
		crimes = append(crimes, crimeAt(37.7799, -122.4144, 9, 5))
	}

	wp := Waypoints(baseline, crimes, start, end, DefaultConfig())
	assert.Len(t, wp, 3)
	assert.Equal(t, start, wp[0])
	assert.Equal(t, end, wp[2])
	assert.NotEqual(t, mid, wp[1])
}

func TestWaypointsDeterministic(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)
	mid := coord(37.7799, -122.4144)
	baseline := []models.Coordinate{start, mid, end}

	var crimes []models.CrimePoint
	for i := 0; i < 10; i++ {
		crimes = append(crimes, crimeAt(37.7799, -122.4144, 9, 5))
	}

	first := Waypoints(baseline, crimes, start, end, DefaultConfig())
	second := Waypoints(baseline, crimes, start, end, DefaultConfig())
	assert.Equal(t, first, second)
}

func TestWaypointsPicksFewerHighSeveritySide(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)
	mid := coord(37.7799, -122.4144)
	baseline := []models.Coordinate{start, mid, end}

	cfg := DefaultConfig()
	// The crimes at mid touch both segments equally; the tie goes to the
	// first segment (start→mid), whose midpoint the candidates offset from.
	worstMid := coord((start.Lat+mid.Lat)/2, (start.Lng+mid.Lng)/2)
	plus, minus := offsetCandidates(worstMid, start, end, cfg.OffsetDeg)

	crimes := []models.CrimePoint{
		// Enough severity on the worst segment itself to trigger a detour.
		crimeAt(mid.Lat, mid.Lng, 9, 5),
		crimeAt(mid.Lat, mid.Lng, 9, 5),
		// Load the minus-side candidate with extra high-severity incidents
		// so the synthesizer must prefer the plus side.
		crimeAt(minus.Lat, minus.Lng, 9, 5),
	}

	wp := Waypoints(baseline, crimes, start, end, cfg)
	assert.Len(t, wp, 3)
	assert.InDelta(t, plus.Lat, wp[1].Lat, 1e-9)
	assert.InDelta(t, plus.Lng, wp[1].Lng, 1e-9)
}

func TestOffsetCandidatesPerpendicularToOverallDirection(t *testing.T) {
	start := coord(0, 0)
	end := coord(1, 0) // due north
	mid := coord(0.5, 0)

	plus, minus := offsetCandidates(mid, start, end, 0.003)
	// Perpendicular to due-north travel is east/west: lat unchanged, lng shifts.
	assert.InDelta(t, mid.Lat, plus.Lat, 1e-9)
	assert.InDelta(t, mid.Lat, minus.Lat, 1e-9)
	assert.NotEqual(t, plus.Lng, minus.Lng)
}

func TestHighSeverityWithinIgnoresLowSeverity(t *testing.T) {
	p := coord(37.7799, -122.4144)
	crimes := []models.CrimePoint{crimeAt(37.7799, -122.4144, 3, 1)}
	assert.Equal(t, 0, highSeverityWithin(p, crimes, 7))
}
