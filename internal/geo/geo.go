// Package geo implements the geodesy kernel (C1): great-circle and
// point-to-segment distance, and the degree/meter conversions the rest
// of the engine uses to size radii and offsets in metric units.
package geo

import (
	"math"

	"github.com/prompt-general/saferoute/pkg/models"
)

// EarthRadiusM is the mean Earth radius used by the haversine formula.
const EarthRadiusM = 6_371_000.0

// MetersPerDegree is the flat-earth approximation used for
// point-to-segment projection: at urban scales and sub-100m
// tolerances its error sits below the data's own positional noise.
const MetersPerDegree = 111_000.0

// DistanceMeters returns the haversine great-circle distance between
// two coordinates.
func DistanceMeters(a, b models.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusM * c
}

// PointToSegmentMeters projects p onto the segment ab in (lat,lng)
// space and scales the result by MetersPerDegree. The segment's own
// length, where accuracy matters more, should use DistanceMeters
// instead; this is reserved for the short projections the exposure
// model performs per crime per segment.
func PointToSegmentMeters(p, a, b models.Coordinate) float64 {
	ax, ay := a.Lng, a.Lat
	bx, by := b.Lng, b.Lat
	px, py := p.Lng, p.Lat

	dx := bx - ax
	dy := by - ay

	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		// Degenerate segment: both endpoints coincide.
		return DistanceMeters(p, a)
	}

	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	t = math.Max(0, math.Min(1, t))

	closestLng := ax + t*dx
	closestLat := ay + t*dy

	ddx := px - closestLng
	ddy := py - closestLat
	return math.Sqrt(ddx*ddx+ddy*ddy) * MetersPerDegree
}

// MetersToLatDegrees converts a metric distance to degrees of
// latitude, which is constant everywhere on the sphere.
func MetersToLatDegrees(m float64) float64 {
	return m / MetersPerDegree
}

// MetersToLngDegrees converts a metric distance to degrees of
// longitude at the given reference latitude, where a degree of
// longitude shrinks by cos(lat).
func MetersToLngDegrees(m, refLatDeg float64) float64 {
	return m / (MetersPerDegree * math.Cos(refLatDeg*math.Pi/180))
}
