package crimestore

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prompt-general/saferoute/pkg/models"
)

// PostgresConfig configures the relational realization of CrimeStore.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	ConnTimeout     time.Duration `yaml:"conn_timeout"`
	// RetentionWindow bounds how far back CrimesInBBox looks. Defaults
	// to RetentionWindow (the package constant) when zero.
	RetentionWindow time.Duration `yaml:"retention_window"`
}

// PostgresCrimeStore is the relational realization of C3: a range
// query on indexed (lat, lng, occurred_at), as spec.md's §4.3 names
// as the baseline realization.
type PostgresCrimeStore struct {
	pool      *pgxpool.Pool
	retention time.Duration
}

// NewPostgresCrimeStore opens a pool and verifies connectivity.
func NewPostgresCrimeStore(ctx context.Context, cfg PostgresConfig) (*PostgresCrimeStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("crimestore: parse postgres config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	poolCfg.HealthCheckPeriod = 30 * time.Second
	poolCfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("crimestore: create postgres pool: %w", err)
	}

	connTimeout := cfg.ConnTimeout
	if connTimeout == 0 {
		connTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, connTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("crimestore: ping postgres: %w", err)
	}

	retention := cfg.RetentionWindow
	if retention <= 0 {
		retention = RetentionWindow
	}

	return &PostgresCrimeStore{pool: pool, retention: retention}, nil
}

// CrimesInBBox implements CrimeStore against a `crime_events` table
// indexed on (lat, lng, occurred_at).
func (s *PostgresCrimeStore) CrimesInBBox(ctx context.Context, bbox models.BoundingBox) ([]models.CrimePoint, error) {
	inflated := InflateBBox(bbox)
	cutoff := time.Now().Add(-s.retention)

	const query = `
		SELECT lat, lng, severity, crime_type, occurred_at
		FROM crime_events
		WHERE lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		  AND occurred_at >= $5
		ORDER BY occurred_at DESC`

	rows, err := s.pool.Query(ctx, query,
		inflated.MinLat, inflated.MaxLat,
		inflated.MinLng, inflated.MaxLng,
		cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer rows.Close()

	now := time.Now()
	var out []models.CrimePoint
	for rows.Next() {
		var c models.CrimePoint
		if scanErr := rows.Scan(&c.Lat, &c.Lng, &c.Severity, &c.CrimeType, &c.OccurredAt); scanErr != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStoreUnavailable, scanErr)
		}
		c.AgeHours = now.Sub(c.OccurredAt).Hours()
		out = append(out, c)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, rows.Err())
	}

	return out, nil
}

// Close releases the underlying connection pool.
func (s *PostgresCrimeStore) Close() {
	s.pool.Close()
}
