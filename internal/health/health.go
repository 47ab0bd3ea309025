// Package health provides the HTTP-facing health checks for the crime
// store and route oracle dependencies.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prompt-general/saferoute/internal/crimestore"
	"github.com/prompt-general/saferoute/internal/oracle"
	"github.com/prompt-general/saferoute/pkg/models"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

type Check interface {
	Name() string
	Check(ctx context.Context) Result
}

type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
	Error    error         `json:"error,omitempty"`
}

type Checker struct {
	checks []Check
	mu     sync.RWMutex
}

func NewChecker() *Checker {
	return &Checker{checks: make([]Check, 0)}
}

func (hc *Checker) Register(check Check) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks = append(hc.checks, check)
}

func (hc *Checker) Check(ctx context.Context) map[string]Result {
	hc.mu.RLock()
	checks := make([]Check, len(hc.checks))
	copy(checks, hc.checks)
	hc.mu.RUnlock()

	results := make(map[string]Result)
	var wg sync.WaitGroup
	var mu sync.Mutex
	for _, c := range checks {
		wg.Add(1)
		go func(ch Check) {
			defer wg.Done()
			start := time.Now()
			res := ch.Check(ctx)
			res.Duration = time.Since(start)
			mu.Lock()
			results[ch.Name()] = res
			mu.Unlock()
		}(c)
	}
	wg.Wait()
	return results
}

func (hc *Checker) OverallStatus(results map[string]Result) Status {
	hasDegraded := false
	for _, r := range results {
		switch r.Status {
		case StatusUnhealthy:
			return StatusUnhealthy
		case StatusDegraded:
			hasDegraded = true
		}
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusHealthy
}

func (hc *Checker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		results := hc.Check(ctx)
		overall := hc.OverallStatus(results)
		resp := map[string]interface{}{
			"status":    overall,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"checks":    results,
		}
		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if overall == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(resp)
	}
}

// probeBBox is a tiny, fixed bounding box used only to exercise the
// crime store's connectivity — its contents are discarded.
var probeBBox = models.BoundingBox{MinLat: 0, MinLng: 0, MaxLat: 0.001, MaxLng: 0.001}

// CrimeStoreCheck pings the crime store with a negligible bbox query.
type CrimeStoreCheck struct {
	Store crimestore.CrimeStore
}

func (c *CrimeStoreCheck) Name() string { return "crimestore" }

func (c *CrimeStoreCheck) Check(ctx context.Context) Result {
	start := time.Now()
	_, err := c.Store.CrimesInBBox(ctx, probeBBox)
	duration := time.Since(start)
	res := Result{Name: c.Name(), Duration: duration}
	switch {
	case err != nil:
		res.Status = StatusUnhealthy
		res.Message = "crime store query failed"
		res.Error = err
	case duration > 500*time.Millisecond:
		res.Status = StatusDegraded
		res.Message = "crime store responding slowly"
	default:
		res.Status = StatusHealthy
		res.Message = "crime store reachable"
	}
	return res
}

// OracleCheck exercises the route oracle with a two-point probe route.
type OracleCheck struct {
	Oracle oracle.RouteOracle
}

func (o *OracleCheck) Name() string { return "oracle" }

func (o *OracleCheck) Check(ctx context.Context) Result {
	start := time.Now()
	_, err := o.Oracle.Route(ctx, []models.Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 0.001, Lng: 0.001},
	}, oracle.ModeWalking)
	duration := time.Since(start)
	res := Result{Name: o.Name(), Duration: duration}
	switch {
	case err != nil:
		res.Status = StatusUnhealthy
		res.Message = "oracle probe failed"
		res.Error = err
	case duration > 2*time.Second:
		res.Status = StatusDegraded
		res.Message = "oracle responding slowly"
	default:
		res.Status = StatusHealthy
		res.Message = "oracle reachable"
	}
	return res
}
