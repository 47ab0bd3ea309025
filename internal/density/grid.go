// Package density implements the density-grid aggregation (C7): a
// fixed-size metric grid over a bounding box used for heatmap
// rendering, and the companion blocked-area enumeration.
package density

import (
	"math"

	"github.com/prompt-general/saferoute/internal/geo"
	"github.com/prompt-general/saferoute/pkg/models"
)

// DefaultCellSizeM is the grid cell size used when no tunable is configured.
const DefaultCellSizeM = 100

// BlockedAreaRadiusM is the fixed advisory radius attached to every
// blocked-area incident.
const BlockedAreaRadiusM = 100

// BlockedAreaCriticalHours bounds which incidents qualify as blocked areas.
const BlockedAreaCriticalHours = 24

// Config carries the §6 tunable this grid reads.
type Config struct {
	CellSizeM float64
}

// DefaultConfig returns the spec-mandated default.
func DefaultConfig() Config {
	return Config{CellSizeM: DefaultCellSizeM}
}

// Grid aggregates crime density over a bounding box into fixed-size
// cells. Incidents that fall outside the grid (which can happen when
// the bbox was expanded upstream of this call) are silently discarded.
func Grid(bbox models.BoundingBox, crimes []models.CrimePoint, cfg Config) []models.DensityCell {
	if bbox.MaxLat <= bbox.MinLat || bbox.MaxLng <= bbox.MinLng {
		return nil
	}

	cellSizeM := cfg.CellSizeM
	if cellSizeM <= 0 {
		cellSizeM = DefaultCellSizeM
	}

	meanLat := bbox.MeanLat()
	cellLat := geo.MetersToLatDegrees(cellSizeM)
	cellLng := geo.MetersToLngDegrees(cellSizeM, meanLat)

	latRange := bbox.MaxLat - bbox.MinLat
	lngRange := bbox.MaxLng - bbox.MinLng

	rows := int(math.Ceil(latRange/cellLat)) + 1
	cols := int(math.Ceil(lngRange/cellLng)) + 1

	type key struct{ row, col int }
	buckets := make(map[key]float64, rows)

	for _, c := range crimes {
		if c.Lat < bbox.MinLat || c.Lat > bbox.MaxLat || c.Lng < bbox.MinLng || c.Lng > bbox.MaxLng {
			continue
		}
		row := int((c.Lat - bbox.MinLat) / cellLat)
		col := int((c.Lng - bbox.MinLng) / cellLng)
		if row < 0 || row >= rows || col < 0 || col >= cols {
			continue
		}
		buckets[key{row, col}] += geo.TimeDecay(c.AgeHours) * geo.SeverityWeight(c.Severity)
	}

	cells := make([]models.DensityCell, 0, len(buckets))
	for k, d := range buckets {
		cells = append(cells, models.DensityCell{
			Coordinate: models.Coordinate{
				Lat: bbox.MinLat + (float64(k.row)+0.5)*cellLat,
				Lng: bbox.MinLng + (float64(k.col)+0.5)*cellLng,
			},
			Density:   d,
			Intensity: math.Min(1.0, d/10.0),
		})
	}
	return cells
}

// BlockedAreas returns the subset of crimes recent enough to count as
// an active advisory, each wrapped with its fixed radius. No spatial
// merging is performed; duplicate coordinates are left to the client.
func BlockedAreas(crimes []models.CrimePoint) []models.BlockedArea {
	var areas []models.BlockedArea
	for _, c := range crimes {
		if c.AgeHours > BlockedAreaCriticalHours {
			continue
		}
		areas = append(areas, models.BlockedArea{
			Coordinate:    c.Coordinate,
			Severity:      c.Severity,
			CrimeType:     c.CrimeType,
			HoursAgo:      c.AgeHours,
			BlockedRadius: BlockedAreaRadiusM,
			PenaltyLevel:  "CRITICAL",
		})
	}
	return areas
}
