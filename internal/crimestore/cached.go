package crimestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prompt-general/saferoute/pkg/models"
)

// CachedCrimeStore decorates another CrimeStore with a short-TTL Redis
// memoization of bbox queries. It does not change C3's contract (the
// decorated store is still queried on a cache miss, and failures in
// the cache itself are non-fatal — only the underlying store's
// failures produce ErrStoreUnavailable); it only reduces repeat
// latency for the bboxes that recur heavily across nearby requests.
type CachedCrimeStore struct {
	inner  CrimeStore
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedCrimeStore wraps inner with a Redis-backed memoization layer.
func NewCachedCrimeStore(inner CrimeStore, client *redis.Client, prefix string, ttl time.Duration) *CachedCrimeStore {
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	return &CachedCrimeStore{inner: inner, client: client, prefix: prefix, ttl: ttl}
}

// CrimesInBBox implements CrimeStore.
func (s *CachedCrimeStore) CrimesInBBox(ctx context.Context, bbox models.BoundingBox) ([]models.CrimePoint, error) {
	key := s.cacheKey(bbox)

	if cached, ok := s.getCached(ctx, key); ok {
		return cached, nil
	}

	crimes, err := s.inner.CrimesInBBox(ctx, bbox)
	if err != nil {
		return nil, err
	}

	s.setCached(ctx, key, crimes)
	return crimes, nil
}

func (s *CachedCrimeStore) cacheKey(bbox models.BoundingBox) string {
	return fmt.Sprintf("%s:bbox:%.5f:%.5f:%.5f:%.5f", s.prefix, bbox.MinLat, bbox.MinLng, bbox.MaxLat, bbox.MaxLng)
}

func (s *CachedCrimeStore) getCached(ctx context.Context, key string) ([]models.CrimePoint, bool) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var crimes []models.CrimePoint
	if err := json.Unmarshal(data, &crimes); err != nil {
		return nil, false
	}
	return crimes, true
}

func (s *CachedCrimeStore) setCached(ctx context.Context, key string, crimes []models.CrimePoint) {
	data, err := json.Marshal(crimes)
	if err != nil {
		return
	}
	// Best-effort: a cache write failure must not fail the request.
	_ = s.client.Set(ctx, key, data, s.ttl).Err()
}
