package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/prompt-general/saferoute/pkg/models"
)

// costingFor maps a Mode onto the external provider's costing/profile
// name, following the walking/bicycle/driving profile convention
// common to street-routing directions APIs.
func costingFor(mode Mode) string {
	switch mode {
	case ModeCycling:
		return "bicycle"
	case ModeDriving:
		return "auto"
	default:
		return "pedestrian"
	}
}

// HTTPRouteOracle calls an external street-routing HTTP API. Waypoints
// are submitted in request order as {lat, lon} location objects; the
// core works exclusively in (lat, lng) and this adapter is the single
// place that speaks the provider's wire format.
type HTTPRouteOracle struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewHTTPRouteOracle builds a client with the fixed 10s oracle timeout.
func NewHTTPRouteOracle(baseURL, apiKey string) *HTTPRouteOracle {
	return &HTTPRouteOracle{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: Timeout},
	}
}

type routeRequestLocation struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type routeRequest struct {
	Locations []routeRequestLocation `json:"locations"`
	Costing   string                 `json:"costing"`
}

type routeResponseGeometry struct {
	// Coordinates are [lng, lat] pairs, the common oracle convention
	// this adapter translates back to the core's (lat, lng).
	Coordinates [][2]float64 `json:"coordinates"`
}

type routeResponseRoute struct {
	Geometry routeResponseGeometry `json:"geometry"`
	Distance float64               `json:"distance_m"`
	Duration float64               `json:"duration_s"`
}

type routeResponseBody struct {
	Routes []routeResponseRoute `json:"routes"`
}

// Route implements RouteOracle.
func (o *HTTPRouteOracle) Route(ctx context.Context, waypoints []models.Coordinate, mode Mode) (Polyline, error) {
	if len(waypoints) < 2 {
		return Polyline{}, ErrTooFewWaypoints
	}

	ctx, cancel := context.WithTimeout(ctx, Timeout)
	defer cancel()

	locations := make([]routeRequestLocation, len(waypoints))
	for i, wp := range waypoints {
		locations[i] = routeRequestLocation{Lat: wp.Lat, Lon: wp.Lng}
	}

	body, err := json.Marshal(routeRequest{Locations: locations, Costing: costingFor(mode)})
	if err != nil {
		return Polyline{}, fmt.Errorf("%w: encode request: %v", ErrOracleUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/route", strings.NewReader(string(body)))
	if err != nil {
		return Polyline{}, fmt.Errorf("%w: build request: %v", ErrOracleUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return Polyline{}, fmt.Errorf("%w: %v", ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Polyline{}, fmt.Errorf("%w: status %d", ErrOracleUnavailable, resp.StatusCode)
	}

	var parsed routeResponseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Polyline{}, fmt.Errorf("%w: decode response: %v", ErrOracleUnavailable, err)
	}
	if len(parsed.Routes) == 0 {
		return Polyline{}, fmt.Errorf("%w: no route in response", ErrOracleUnavailable)
	}

	route := parsed.Routes[0]
	coords := make([]models.Coordinate, len(route.Geometry.Coordinates))
	for i, c := range route.Geometry.Coordinates {
		coords[i] = models.Coordinate{Lat: c[1], Lng: c[0]}
	}

	return Polyline{Coords: coords, DistanceM: route.Distance, DurationS: route.Duration}, nil
}
