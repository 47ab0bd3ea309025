package routing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompt-general/saferoute/internal/crimestore"
	"github.com/prompt-general/saferoute/internal/oracle"
	"github.com/prompt-general/saferoute/pkg/models"
)

func coord(lat, lng float64) models.Coordinate {
	return models.Coordinate{Lat: lat, Lng: lng}
}

func crimeAt(lat, lng float64, severity int, ageHours float64) models.CrimePoint {
	return models.CrimePoint{
		Coordinate: coord(lat, lng),
		Severity:   severity,
		CrimeType:  "assault",
		OccurredAt: time.Now().Add(-time.Duration(ageHours) * time.Hour),
		AgeHours:   ageHours,
	}
}

func TestOptimalRouteEmptyCrimeSet(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)

	store := crimestore.NewInMemoryCrimeStore(nil)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	resp, err := orch.OptimalRoute(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 100.0, resp.FastestRoute.TotalSafetyScore)
	assert.Equal(t, 100.0, resp.SafestRoute.TotalSafetyScore)
	assert.False(t, resp.Fallback)
	assert.Equal(t, 1, ora.Calls)
}

func TestOptimalRouteSynthesizesDetourForSevereRecentCrime(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)

	crimes := []models.CrimePoint{crimeAt(37.7799, -122.4144, 9, 2)}
	store := crimestore.NewInMemoryCrimeStore(crimes)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	resp, err := orch.OptimalRoute(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 2, ora.Calls)
	assert.GreaterOrEqual(t, resp.SafestRoute.TotalSafetyScore, resp.FastestRoute.TotalSafetyScore)
}

func TestOptimalRouteNoDetourForOldLowSeverityCrime(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)

	crimes := []models.CrimePoint{crimeAt(37.7799, -122.4144, 5, 45*24)}
	store := crimestore.NewInMemoryCrimeStore(crimes)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	resp, err := orch.OptimalRoute(context.Background(), start, end)
	require.NoError(t, err)
	assert.Equal(t, 1, ora.Calls)
	assert.Equal(t, resp.FastestRoute.TotalSafetyScore, resp.SafestRoute.TotalSafetyScore)
}

func TestOptimalRouteFallsBackOnAlternativeOracleFailure(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)

	crimes := []models.CrimePoint{crimeAt(37.7799, -122.4144, 9, 2)}
	store := crimestore.NewInMemoryCrimeStore(crimes)
	ora := oracle.NewInMemoryRouteOracle()
	ora.FailOnWaypointCount = 3
	orch := New(store, ora, DefaultConfig())

	resp, err := orch.OptimalRoute(context.Background(), start, end)
	require.NoError(t, err)
	assert.True(t, resp.Fallback)
	assert.Equal(t, resp.FastestRoute, resp.SafestRoute)
}

func TestOptimalRouteInvalidCoordinate(t *testing.T) {
	store := crimestore.NewInMemoryCrimeStore(nil)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	_, err := orch.OptimalRoute(context.Background(), coord(999, 0), coord(0, 0))
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestOptimalRouteStoreUnavailable(t *testing.T) {
	store := crimestore.NewInMemoryCrimeStore(nil)
	store.SetFail(true)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	_, err := orch.OptimalRoute(context.Background(), coord(37.7749, -122.4194), coord(37.7849, -122.4094))
	assert.ErrorIs(t, err, crimestore.ErrStoreUnavailable)
}

func TestOptimalRouteBaselineOracleUnavailableIsFatal(t *testing.T) {
	store := crimestore.NewInMemoryCrimeStore(nil)
	ora := oracle.NewInMemoryRouteOracle()
	ora.FailOnWaypointCount = 2
	orch := New(store, ora, DefaultConfig())

	_, err := orch.OptimalRoute(context.Background(), coord(37.7749, -122.4194), coord(37.7849, -122.4094))
	assert.ErrorIs(t, err, oracle.ErrOracleUnavailable)
}

func TestOptimalRouteIsIdempotentForFrozenInputs(t *testing.T) {
	start := coord(37.7749, -122.4194)
	end := coord(37.7849, -122.4094)
	crimes := []models.CrimePoint{crimeAt(37.7799, -122.4144, 9, 2)}

	store := crimestore.NewInMemoryCrimeStore(crimes)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	first, err := orch.OptimalRoute(context.Background(), start, end)
	require.NoError(t, err)
	second, err := orch.OptimalRoute(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, first.FastestRoute.TotalSafetyScore, second.FastestRoute.TotalSafetyScore)
	assert.Equal(t, first.SafestRoute.TotalSafetyScore, second.SafestRoute.TotalSafetyScore)
}

func TestHeatmapAggregatesCrimes(t *testing.T) {
	bbox := models.BoundingBox{MinLat: 37.77, MinLng: -122.43, MaxLat: 37.79, MaxLng: -122.41}
	crimes := []models.CrimePoint{
		crimeAt(37.78, -122.42, 9, 1),
		crimeAt(37.781, -122.421, 3, 400),
	}
	store := crimestore.NewInMemoryCrimeStore(crimes)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	resp, err := orch.Heatmap(context.Background(), bbox)
	require.NoError(t, err)
	assert.Equal(t, 2, resp.TotalCrimes)
	assert.Equal(t, 1, resp.CriticalCrimes24h)
	assert.Equal(t, 1, resp.HighSeverityCrimes)
}

func TestBlockedAreasOnlyReturnsRecentIncidents(t *testing.T) {
	bbox := models.BoundingBox{MinLat: 37.77, MinLng: -122.43, MaxLat: 37.79, MaxLng: -122.41}
	crimes := []models.CrimePoint{
		crimeAt(37.78, -122.42, 9, 1),
		crimeAt(37.78, -122.42, 9, 48),
	}
	store := crimestore.NewInMemoryCrimeStore(crimes)
	ora := oracle.NewInMemoryRouteOracle()
	orch := New(store, ora, DefaultConfig())

	areas, err := orch.BlockedAreas(context.Background(), bbox)
	require.NoError(t, err)
	assert.Len(t, areas, 1)
}
