package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/prompt-general/saferoute/pkg/models"
)

func TestDistanceMetersKnownPair(t *testing.T) {
	sf := models.Coordinate{Lat: 37.7749, Lng: -122.4194}
	oakland := models.Coordinate{Lat: 37.8044, Lng: -122.2711}

	d := DistanceMeters(sf, oakland)

	assert.InDelta(t, 13_000.0, d, 12_000.0) // sanity bound, not a tight assertion
	assert.Greater(t, d, 10_000.0)
}

func TestDistanceMetersZeroForIdenticalPoints(t *testing.T) {
	p := models.Coordinate{Lat: 37.7749, Lng: -122.4194}
	assert.Equal(t, 0.0, DistanceMeters(p, p))
}

func TestPointToSegmentMetersMidpointIsClose(t *testing.T) {
	a := models.Coordinate{Lat: 37.7749, Lng: -122.4194}
	b := models.Coordinate{Lat: 37.7849, Lng: -122.4094}
	mid := models.Coordinate{Lat: (a.Lat + b.Lat) / 2, Lng: (a.Lng + b.Lng) / 2}

	d := PointToSegmentMeters(mid, a, b)
	assert.Less(t, d, 1.0)
}

func TestPointToSegmentMetersDegenerateSegment(t *testing.T) {
	a := models.Coordinate{Lat: 37.7749, Lng: -122.4194}
	p := models.Coordinate{Lat: 37.7750, Lng: -122.4194}

	d := PointToSegmentMeters(p, a, a)
	assert.InDelta(t, DistanceMeters(p, a), d, 1e-6)
}

func TestPointToSegmentMetersClampsToEndpoints(t *testing.T) {
	a := models.Coordinate{Lat: 37.7749, Lng: -122.4194}
	b := models.Coordinate{Lat: 37.7849, Lng: -122.4094}
	beyond := models.Coordinate{Lat: 37.9, Lng: -122.3}

	d := PointToSegmentMeters(beyond, a, b)
	// Clamped to endpoint b, measured with the same flat-earth scaling.
	flatToB := math.Hypot(beyond.Lat-b.Lat, beyond.Lng-b.Lng) * MetersPerDegree
	assert.InDelta(t, flatToB, d, 1.0)
}

func TestMetersToDegreesConversion(t *testing.T) {
	latDeg := MetersToLatDegrees(100)
	assert.InDelta(t, 100.0/111_000.0, latDeg, 1e-9)

	lngDeg := MetersToLngDegrees(100, 37.7749)
	assert.Greater(t, lngDeg, latDeg) // a degree of longitude spans fewer meters away from the equator, so 100 m takes more of them
}
