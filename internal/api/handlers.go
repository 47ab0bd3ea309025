package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/prompt-general/saferoute/internal/crimestore"
	"github.com/prompt-general/saferoute/internal/oracle"
	"github.com/prompt-general/saferoute/internal/routing"
	"github.com/prompt-general/saferoute/pkg/models"
)

type optimalRouteRequest struct {
	Start models.Coordinate `json:"start"`
	End   models.Coordinate `json:"end"`
}

func (g *Gateway) handleOptimalRoute(w http.ResponseWriter, r *http.Request) {
	var req optimalRouteRequest
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	resp, err := g.orchestrator.OptimalRoute(r.Context(), req.Start, req.End)
	if err != nil {
		writeRouteError(w, err)
		return
	}

	writeSuccessResponse(w, resp)
}

func (g *Gateway) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	bbox, err := parseBBoxQuery(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	resp, err := g.orchestrator.Heatmap(r.Context(), bbox)
	if err != nil {
		writeRouteError(w, err)
		return
	}

	writeSuccessResponse(w, resp)
}

func (g *Gateway) handleBlockedAreas(w http.ResponseWriter, r *http.Request) {
	bbox, err := parseBBoxQuery(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	resp, err := g.orchestrator.BlockedAreas(r.Context(), bbox)
	if err != nil {
		writeRouteError(w, err)
		return
	}

	writeSuccessResponse(w, resp)
}

func parseBBoxQuery(r *http.Request) (models.BoundingBox, error) {
	q := r.URL.Query()
	fields := []string{"min_lat", "min_lng", "max_lat", "max_lng"}
	values := make(map[string]float64, len(fields))
	for _, f := range fields {
		raw := q.Get(f)
		if raw == "" {
			return models.BoundingBox{}, errors.New(f + " is required")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return models.BoundingBox{}, errors.New(f + " must be a number")
		}
		values[f] = v
	}
	return models.BoundingBox{
		MinLat: values["min_lat"],
		MinLng: values["min_lng"],
		MaxLat: values["max_lat"],
		MaxLng: values["max_lng"],
	}, nil
}

func parseRequestBody(r *http.Request, target interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}

func writeRouteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, routing.ErrInvalidCoordinate):
		writeErrorResponse(w, http.StatusBadRequest, "invalid_coordinate", err.Error())
	case errors.Is(err, crimestore.ErrStoreUnavailable):
		writeErrorResponse(w, http.StatusServiceUnavailable, "store_unavailable", err.Error())
	case errors.Is(err, oracle.ErrOracleUnavailable):
		writeErrorResponse(w, http.StatusServiceUnavailable, "oracle_unavailable", err.Error())
	case errors.Is(err, routing.ErrDegenerateRoute):
		writeErrorResponse(w, http.StatusUnprocessableEntity, "degenerate_route", err.Error())
	default:
		writeErrorResponse(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
