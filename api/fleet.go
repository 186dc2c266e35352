package api

import (
	"net/http"
	"time"

	"github.com/shipmind-ai/shipmind/core/model"
	"github.com/shipmind-ai/shipmind/core/scheduler"
	"github.com/shipmind-ai/shipmind/pkg/export"
)

type fleetRequest struct {
	Components []*model.MaintenanceRequest `json:"components"`
}

// handleFleetHealth serves POST /api/v1/fleet/health: an aggregate
// maintenance analysis over the submitted component set.
func (s *Server) handleFleetHealth(w http.ResponseWriter, r *http.Request) {
	var req fleetRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	health, err := s.deps.Predictor.AnalyzeFleetHealth(r.Context(), req.Components)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, health)
}

type scheduleRequest struct {
	Components []*model.MaintenanceRequest `json:"components"`
	From       time.Time                   `json:"from,omitempty"`
	PortCalls  map[string][]portCall       `json:"port_calls,omitempty"`
}

type portCall struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// handleFleetSchedule serves POST /api/v1/fleet/schedule: it predicts
// maintenance for every submitted component and turns the outlooks into a
// dated work plan. ?format=csv renders the plan as CSV instead of JSON.
func (s *Server) handleFleetSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	if len(req.Components) == 0 {
		s.respondErr(w, &model.ValidationError{Field: "components", Reason: "at least one component required"})
		return
	}

	outlooks := make([]model.MaintenanceOutlook, 0, len(req.Components))
	for _, comp := range req.Components {
		outlook, err := s.deps.Predictor.PredictMaintenance(r.Context(), comp)
		if err != nil {
			s.respondErr(w, err)
			return
		}
		outlooks = append(outlooks, *outlook)
	}

	sched := scheduler.Scheduler{
		Config:   s.deps.Schedule,
		Outlooks: outlooks,
	}
	if len(req.PortCalls) > 0 {
		sched.PortCalls = make(map[string][]scheduler.PortCallWindow, len(req.PortCalls))
		for vessel, calls := range req.PortCalls {
			windows := make([]scheduler.PortCallWindow, len(calls))
			for i, c := range calls {
				windows[i] = scheduler.PortCallWindow{Start: c.Start, End: c.End}
			}
			sched.PortCalls[vessel] = windows
		}
	}

	from := req.From
	if from.IsZero() {
		from = time.Now().UTC()
	}
	orders, err := sched.GeneratePlan(from)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		if err := export.WriteCSV(w, orders); err != nil {
			s.log.Errorf("write csv plan: %v", err)
		}
		return
	}
	s.respondJSON(w, http.StatusOK, orders)
}
