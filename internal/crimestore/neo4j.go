package crimestore

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/prompt-general/saferoute/pkg/models"
)

// Neo4jConfig configures the spatial-index realization of CrimeStore.
type Neo4jConfig struct {
	URI         string        `yaml:"uri"`
	Username    string        `yaml:"username"`
	Password    string        `yaml:"password"`
	MaxPoolSize int           `yaml:"max_pool_size"`
	ConnTimeout time.Duration `yaml:"conn_timeout"`
	// RetentionWindow bounds how far back CrimesInBBox looks. Defaults
	// to RetentionWindow (the package constant) when zero.
	RetentionWindow time.Duration `yaml:"retention_window"`
}

// Neo4jCrimeStore is the spatial-index realization of C3, which
// spec.md's §4.3 calls "strictly preferred at large scales." Crime
// events are stored as `(:CrimeEvent)` nodes with indexed lat/lng/
// occurred_at properties; the bbox query is a single Cypher range
// match rather than a multi-hop traversal.
type Neo4jCrimeStore struct {
	driver    neo4j.DriverWithContext
	retention time.Duration
}

// NewNeo4jCrimeStore opens a driver and verifies connectivity.
func NewNeo4jCrimeStore(ctx context.Context, cfg Neo4jConfig) (*Neo4jCrimeStore, error) {
	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *neo4j.Config) {
			if cfg.MaxPoolSize > 0 {
				c.MaxConnectionPoolSize = cfg.MaxPoolSize
			}
			c.MaxConnectionLifetime = time.Hour
		},
	)
	if err != nil {
		return nil, fmt.Errorf("crimestore: create neo4j driver: %w", err)
	}

	connTimeout := cfg.ConnTimeout
	if connTimeout == 0 {
		connTimeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()
	if err := driver.VerifyConnectivity(pingCtx); err != nil {
		return nil, fmt.Errorf("crimestore: verify neo4j connectivity: %w", err)
	}

	retention := cfg.RetentionWindow
	if retention <= 0 {
		retention = RetentionWindow
	}

	return &Neo4jCrimeStore{driver: driver, retention: retention}, nil
}

// CrimesInBBox implements CrimeStore with a single indexed range match
// over (:CrimeEvent) nodes.
func (s *Neo4jCrimeStore) CrimesInBBox(ctx context.Context, bbox models.BoundingBox) ([]models.CrimePoint, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	inflated := InflateBBox(bbox)
	cutoff := time.Now().Add(-s.retention)

	const query = `
		MATCH (c:CrimeEvent)
		WHERE c.lat >= $minLat AND c.lat <= $maxLat
		  AND c.lng >= $minLng AND c.lng <= $maxLng
		  AND c.occurred_at >= $cutoff
		RETURN c.lat AS lat, c.lng AS lng, c.severity AS severity,
		       c.crime_type AS crime_type, c.occurred_at AS occurred_at
		ORDER BY c.occurred_at DESC`

	params := map[string]any{
		"minLat": inflated.MinLat, "maxLat": inflated.MaxLat,
		"minLng": inflated.MinLng, "maxLng": inflated.MaxLng,
		"cutoff": cutoff.Format(time.RFC3339),
	}

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	now := time.Now()
	var out []models.CrimePoint
	for result.Next(ctx) {
		rec := result.Record().AsMap()

		occurredAt, err := time.Parse(time.RFC3339, rec["occurred_at"].(string))
		if err != nil {
			continue
		}

		out = append(out, models.CrimePoint{
			Coordinate: models.Coordinate{
				Lat: rec["lat"].(float64),
				Lng: rec["lng"].(float64),
			},
			Severity:   int(rec["severity"].(int64)),
			CrimeType:  rec["crime_type"].(string),
			OccurredAt: occurredAt,
			AgeHours:   now.Sub(occurredAt).Hours(),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return out, nil
}

// Close releases the underlying driver.
func (s *Neo4jCrimeStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
