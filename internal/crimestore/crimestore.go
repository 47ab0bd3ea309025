// Package crimestore implements the crime store adapter (C3): a
// spatio-temporal query surface over a normalized crime record stream.
// The store is opaque beyond its contract — a relational range query
// and a spatial-index realization are both provided and are
// interchangeable from the orchestrator's point of view.
package crimestore

import (
	"context"
	"errors"
	"time"

	"github.com/prompt-general/saferoute/pkg/models"
)

// ErrStoreUnavailable is returned when the crime store cannot be
// reached or times out. Fatal to the request issuing the query.
var ErrStoreUnavailable = errors.New("crimestore: store unavailable")

// RetentionWindow bounds how far back crimes_in_bbox looks.
const RetentionWindow = 90 * 24 * time.Hour

// BBoxInflationDeg is the default bbox inflation applied before
// querying, so incidents near a border segment's influence radius are
// not missed. ≈1km on each axis at mid-latitudes.
const BBoxInflationDeg = 0.01

// CrimeStore is the capability the orchestrator depends on. A
// relational realization (Postgres) and a spatial-index realization
// (Neo4j) both satisfy it; tests substitute an in-memory fake.
type CrimeStore interface {
	// CrimesInBBox returns crimes within bbox and the retention
	// window, ordered by occurrence descending. Callers should not
	// rely on that ordering for correctness, only for display.
	CrimesInBBox(ctx context.Context, bbox models.BoundingBox) ([]models.CrimePoint, error)
}

// InflateBBox expands bbox by BBoxInflationDeg on every side.
func InflateBBox(bbox models.BoundingBox) models.BoundingBox {
	return models.BoundingBox{
		MinLat: bbox.MinLat - BBoxInflationDeg,
		MinLng: bbox.MinLng - BBoxInflationDeg,
		MaxLat: bbox.MaxLat + BBoxInflationDeg,
		MaxLng: bbox.MaxLng + BBoxInflationDeg,
	}
}

// BBoxFromEndpoints builds the minimal bbox containing both endpoints.
func BBoxFromEndpoints(a, b models.Coordinate) models.BoundingBox {
	return models.BoundingBox{
		MinLat: min(a.Lat, b.Lat),
		MinLng: min(a.Lng, b.Lng),
		MaxLat: max(a.Lat, b.Lat),
		MaxLng: max(a.Lng, b.Lng),
	}
}
