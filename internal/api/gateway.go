// Package api is the HTTP surface over the routing orchestrator. It is
// an external collaborator per spec.md §1/§2 — it exists only so the
// core has a caller, the way cmd/saferoute exists only to wire it up.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/prompt-general/saferoute/internal/health"
	"github.com/prompt-general/saferoute/pkg/models"
)

// Orchestrator is the capability this gateway wraps.
type Orchestrator interface {
	OptimalRoute(ctx context.Context, start, end models.Coordinate) (models.RouteResponse, error)
	Heatmap(ctx context.Context, bbox models.BoundingBox) (models.HeatmapResponse, error)
	BlockedAreas(ctx context.Context, bbox models.BoundingBox) ([]models.BlockedArea, error)
}

// Gateway is the API gateway over the routing orchestrator.
type Gateway struct {
	server       *http.Server
	router       *mux.Router
	orchestrator Orchestrator
	health       *health.Checker
	config       GatewayConfig
	middleware   []Middleware
	metrics      *GatewayMetrics
}

// GatewayConfig represents gateway configuration.
type GatewayConfig struct {
	Host           string
	Port           int
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	EnableCORS     bool
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	EnableAuth     bool
	JWTSecret      string
	RequestTimeout time.Duration
	MaxRequestSize int64
}

// DefaultGatewayConfig returns default gateway configuration.
func DefaultGatewayConfig() GatewayConfig {
	return GatewayConfig{
		Host:           "0.0.0.0",
		Port:           8080,
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    120 * time.Second,
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		EnableAuth:     false,
		RequestTimeout: 30 * time.Second,
		MaxRequestSize: 1 << 20,
	}
}

// Middleware represents HTTP middleware.
type Middleware func(http.Handler) http.Handler

// GatewayMetrics represents gateway metrics.
type GatewayMetrics struct {
	mu               sync.Mutex
	RequestsTotal    int64            `json:"requests_total"`
	RequestsFailed   int64            `json:"requests_failed"`
	AverageLatency   time.Duration    `json:"average_latency"`
	RequestsByPath   map[string]int64 `json:"requests_by_path"`
	RequestsByMethod map[string]int64 `json:"requests_by_method"`
	LastRequest      time.Time        `json:"last_request"`
}

// NewGateway creates a new API gateway.
func NewGateway(config GatewayConfig, orchestrator Orchestrator, checker *health.Checker) *Gateway {
	router := mux.NewRouter()

	gateway := &Gateway{
		router:       router,
		orchestrator: orchestrator,
		health:       checker,
		config:       config,
		middleware:   make([]Middleware, 0),
		metrics: &GatewayMetrics{
			RequestsByPath:   make(map[string]int64),
			RequestsByMethod: make(map[string]int64),
		},
	}

	gateway.setupRoutes()
	gateway.setupMiddleware()

	gateway.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      router,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	return gateway
}

// setupRoutes configures all API routes.
func (g *Gateway) setupRoutes() {
	v1 := g.router.PathPrefix("/api/v1").Subrouter()

	v1.HandleFunc("/route", g.handleOptimalRoute).Methods("POST")
	v1.HandleFunc("/heatmap", g.handleHeatmap).Methods("GET")
	v1.HandleFunc("/blocked-areas", g.handleBlockedAreas).Methods("GET")

	if g.health != nil {
		g.router.HandleFunc("/healthz", g.health.HTTPHandler()).Methods("GET")
	}
}

// setupMiddleware configures HTTP middleware.
func (g *Gateway) setupMiddleware() {
	for i := len(g.middleware) - 1; i >= 0; i-- {
		g.router.Use(g.middleware[i])
	}

	if g.config.EnableCORS {
		g.setupCORS()
	}

	if g.config.EnableAuth {
		g.router.Use(g.jwtAuthMiddleware)
	}

	g.router.Use(g.metricsMiddleware)
}

func (g *Gateway) setupCORS() {
	c := cors.New(cors.Options{
		AllowedOrigins:   g.config.AllowedOrigins,
		AllowedMethods:   g.config.AllowedMethods,
		AllowedHeaders:   g.config.AllowedHeaders,
		AllowCredentials: true,
	})
	g.router.Use(c.Handler)
}

// Start starts the API gateway.
func (g *Gateway) Start() error {
	log.Printf("starting API gateway on %s", g.server.Addr)
	return g.server.ListenAndServe()
}

// Stop stops the API gateway.
func (g *Gateway) Stop(ctx context.Context) error {
	log.Printf("stopping API gateway")
	return g.server.Shutdown(ctx)
}

// AddMiddleware adds middleware to the gateway.
func (g *Gateway) AddMiddleware(middleware Middleware) {
	g.middleware = append(g.middleware, middleware)
}

// Response types

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSONResponse(w http.ResponseWriter, status int, response apiResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSONResponse(w, status, apiResponse{Success: false, Error: &apiError{Code: code, Message: message}})
}

func writeSuccessResponse(w http.ResponseWriter, data interface{}) {
	writeJSONResponse(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

// Middleware implementations

func (g *Gateway) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		g.updateMetrics(r, wrapped.statusCode, time.Since(start))
	})
}

func (g *Gateway) updateMetrics(r *http.Request, statusCode int, duration time.Duration) {
	g.metrics.mu.Lock()
	defer g.metrics.mu.Unlock()

	g.metrics.RequestsTotal++
	g.metrics.RequestsByPath[r.URL.Path]++
	g.metrics.RequestsByMethod[r.Method]++
	g.metrics.LastRequest = time.Now()
	if statusCode >= 400 {
		g.metrics.RequestsFailed++
	}

	if g.metrics.AverageLatency == 0 {
		g.metrics.AverageLatency = duration
	} else {
		g.metrics.AverageLatency = (g.metrics.AverageLatency + duration) / 2
	}
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// jwtAuthMiddleware gates every request behind a bearer token signed
// with the gateway's configured secret.
func (g *Gateway) jwtAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		tokenString := header[len(prefix):]
		_, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(g.config.JWTSecret), nil
		})
		if err != nil {
			writeErrorResponse(w, http.StatusUnauthorized, "unauthorized", "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
