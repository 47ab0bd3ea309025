package oracle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompt-general/saferoute/pkg/models"
)

func TestInMemoryRouteOracleDensifies(t *testing.T) {
	o := NewInMemoryRouteOracle()
	start := models.Coordinate{Lat: 37.7749, Lng: -122.4194}
	end := models.Coordinate{Lat: 37.7849, Lng: -122.4094}

	poly, err := o.Route(context.Background(), []models.Coordinate{start, end}, ModeWalking)
	require.NoError(t, err)
	assert.Greater(t, len(poly.Coords), 2)
	assert.Equal(t, start, poly.Coords[0])
	assert.Equal(t, 1, o.Calls)
}

func TestInMemoryRouteOracleTooFewWaypoints(t *testing.T) {
	o := NewInMemoryRouteOracle()
	_, err := o.Route(context.Background(), []models.Coordinate{{Lat: 1, Lng: 1}}, ModeWalking)
	assert.ErrorIs(t, err, ErrTooFewWaypoints)
}

func TestInMemoryRouteOracleInjectedFailure(t *testing.T) {
	o := NewInMemoryRouteOracle()
	o.FailOnWaypointCount = 3

	start := models.Coordinate{Lat: 37.7749, Lng: -122.4194}
	detour := models.Coordinate{Lat: 37.78, Lng: -122.415}
	end := models.Coordinate{Lat: 37.7849, Lng: -122.4094}

	_, err := o.Route(context.Background(), []models.Coordinate{start, detour, end}, ModeWalking)
	assert.ErrorIs(t, err, ErrOracleUnavailable)

	_, err = o.Route(context.Background(), []models.Coordinate{start, end}, ModeWalking)
	assert.NoError(t, err)
}

func TestCostingForMode(t *testing.T) {
	assert.Equal(t, "pedestrian", costingFor(ModeWalking))
	assert.Equal(t, "bicycle", costingFor(ModeCycling))
	assert.Equal(t, "auto", costingFor(ModeDriving))
}
