package density

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/prompt-general/saferoute/pkg/models"
)

func crimeAt(lat, lng float64, severity int, ageHours float64) models.CrimePoint {
	return models.CrimePoint{
		Coordinate: models.Coordinate{Lat: lat, Lng: lng},
		Severity:   severity,
		CrimeType:  "theft",
		OccurredAt: time.Now().Add(-time.Duration(ageHours) * time.Hour),
		AgeHours:   ageHours,
	}
}

func testBBox() models.BoundingBox {
	return models.BoundingBox{MinLat: 37.77, MinLng: -122.43, MaxLat: 37.79, MaxLng: -122.41}
}

func TestGridDiscardsOutOfBoundsCrimes(t *testing.T) {
	bbox := testBBox()
	crimes := []models.CrimePoint{crimeAt(40, -122.42, 8, 1)}
	cells := Grid(bbox, crimes, DefaultConfig())
	var total float64
	for _, c := range cells {
		total += c.Density
	}
	assert.Equal(t, 0.0, total)
}

func TestGridAccumulatesWithinCell(t *testing.T) {
	bbox := testBBox()
	crimes := []models.CrimePoint{
		crimeAt(37.78, -122.42, 9, 1),
		crimeAt(37.78, -122.42, 9, 1),
	}
	cells := Grid(bbox, crimes, DefaultConfig())
	assert.NotEmpty(t, cells)

	var total float64
	for _, c := range cells {
		total += c.Density
	}
	assert.Greater(t, total, 0.0)
}

func TestGridIntensityClampedToOne(t *testing.T) {
	bbox := testBBox()
	var crimes []models.CrimePoint
	for i := 0; i < 50; i++ {
		crimes = append(crimes, crimeAt(37.78, -122.42, 10, 1))
	}
	cells := Grid(bbox, crimes, DefaultConfig())
	for _, c := range cells {
		assert.LessOrEqual(t, c.Intensity, 1.0)
	}
}

func TestGridEmptyBBox(t *testing.T) {
	bbox := models.BoundingBox{MinLat: 1, MinLng: 1, MaxLat: 1, MaxLng: 1}
	assert.Nil(t, Grid(bbox, []models.CrimePoint{crimeAt(1, 1, 5, 1)}, DefaultConfig()))
}

func TestGridHonorsConfiguredCellSize(t *testing.T) {
	bbox := testBBox()
	var crimes []models.CrimePoint
	for i := 0; i < 20; i++ {
		offset := float64(i) * 0.0005
		crimes = append(crimes, crimeAt(37.771+offset, -122.429+offset, 9, 1))
	}

	coarse := Grid(bbox, crimes, Config{CellSizeM: 500})
	fine := Grid(bbox, crimes, Config{CellSizeM: 20})
	assert.NotEmpty(t, coarse)
	assert.NotEmpty(t, fine)
	assert.Less(t, len(coarse), len(fine))
}

func TestBlockedAreasFiltersByAge(t *testing.T) {
	crimes := []models.CrimePoint{
		crimeAt(37.78, -122.42, 9, 1),
		crimeAt(37.78, -122.42, 9, 48),
	}
	areas := BlockedAreas(crimes)
	assert.Len(t, areas, 1)
	assert.Equal(t, 100.0, areas[0].BlockedRadius)
	assert.Equal(t, "CRITICAL", areas[0].PenaltyLevel)
}

func TestBlockedAreasAlwaysReportCriticalPenaltyLevel(t *testing.T) {
	crimes := []models.CrimePoint{
		crimeAt(37.78, -122.42, 1, 1),
		crimeAt(37.78, -122.43, 9, 2),
	}
	areas := BlockedAreas(crimes)
	assert.Len(t, areas, 2)
	for _, a := range areas {
		assert.Equal(t, "CRITICAL", a.PenaltyLevel)
	}
}
