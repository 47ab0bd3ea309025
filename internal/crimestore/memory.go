package crimestore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prompt-general/saferoute/pkg/models"
)

// InMemoryCrimeStore is a deterministic fake CrimeStore used by tests
// and by cmd/saferoute in demo/offline mode.
type InMemoryCrimeStore struct {
	mu        sync.RWMutex
	crimes    []models.CrimePoint
	fail      bool
	retention time.Duration
}

// NewInMemoryCrimeStore builds a fake store seeded with crimes.
func NewInMemoryCrimeStore(crimes []models.CrimePoint) *InMemoryCrimeStore {
	return &InMemoryCrimeStore{crimes: crimes, retention: RetentionWindow}
}

// SetFail makes every subsequent query return ErrStoreUnavailable,
// for exercising the orchestrator's failure path.
func (s *InMemoryCrimeStore) SetFail(fail bool) {
	s.fail = fail
}

// SetRetentionWindow overrides the default retention window (the
// package's RetentionWindow constant) with a configured one.
func (s *InMemoryCrimeStore) SetRetentionWindow(d time.Duration) {
	if d <= 0 {
		d = RetentionWindow
	}
	s.retention = d
}

// Ingest appends a normalized crime record, for use by the ingestion
// demo consumer. Safe for concurrent use alongside CrimesInBBox.
func (s *InMemoryCrimeStore) Ingest(c models.CrimePoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.crimes = append(s.crimes, c)
}

// CrimesInBBox implements CrimeStore.
func (s *InMemoryCrimeStore) CrimesInBBox(ctx context.Context, bbox models.BoundingBox) ([]models.CrimePoint, error) {
	if s.fail {
		return nil, ErrStoreUnavailable
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrStoreUnavailable
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	inflated := InflateBBox(bbox)
	var out []models.CrimePoint
	for _, c := range s.crimes {
		if c.Lat < inflated.MinLat || c.Lat > inflated.MaxLat {
			continue
		}
		if c.Lng < inflated.MinLng || c.Lng > inflated.MaxLng {
			continue
		}
		if c.AgeHours > s.retention.Hours() {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OccurredAt.After(out[j].OccurredAt)
	})
	return out, nil
}
