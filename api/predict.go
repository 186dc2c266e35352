package api

import (
	"net/http"
	"time"

	"github.com/shipmind-ai/shipmind/core/geo"
	"github.com/shipmind-ai/shipmind/core/model"
)

// handlePredictRoute serves POST /api/v1/predict/route. When the request
// omits weather it is resolved from the provider at the leg midpoint.
func (s *Server) handlePredictRoute(w http.ResponseWriter, r *http.Request) {
	var req model.RouteRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	if req.Weather == nil && s.deps.Weather != nil && req.Origin.Valid() && req.Destination.Valid() {
		mid := geo.Interpolate(req.Origin, req.Destination, 0.5)
		wx, err := s.deps.Weather.Conditions(r.Context(), mid, req.Departure)
		if err != nil {
			s.log.Warnf("weather lookup failed: %v", err)
		} else {
			req.Weather = wx
		}
	}
	plan, err := s.deps.Predictor.PredictRoute(r.Context(), &req)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, plan)
}

// fuelRequest extends the core request with an optional position so the
// server can resolve weather for callers that do not supply it.
type fuelRequest struct {
	model.FuelRequest
	Position *model.Position `json:"position,omitempty"`
}

func (s *Server) handlePredictFuel(w http.ResponseWriter, r *http.Request) {
	var req fuelRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	if req.Weather == nil && s.deps.Weather != nil && req.Position != nil && req.Position.Valid() {
		wx, err := s.deps.Weather.Conditions(r.Context(), *req.Position, time.Time{})
		if err != nil {
			s.log.Warnf("weather lookup failed: %v", err)
		} else {
			req.Weather = wx
		}
	}
	est, err := s.deps.Predictor.PredictFuel(r.Context(), &req.FuelRequest)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, est)
}

func (s *Server) handlePredictMaintenance(w http.ResponseWriter, r *http.Request) {
	var req model.MaintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	outlook, err := s.deps.Predictor.PredictMaintenance(r.Context(), &req)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, outlook)
}
