package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shipmind-ai/shipmind/core/predictor/logging"
)

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Predictor.Status(r.Context())
	if err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, st)
}

// handleTrain serves POST /api/v1/train. Training runs in the background;
// the request is acknowledged immediately and failures are only logged.
func (s *Server) handleTrain(w http.ResponseWriter, _ *http.Request) {
	go func() {
		if err := s.deps.Predictor.TrainAll(context.Background()); err != nil {
			s.log.Errorf("manual training failed: %v", err)
		}
	}()
	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "training started"})
}

// handlePredictions serves GET /api/v1/predictions, querying the audit log.
// Filters: start, end (RFC3339), model, vessel_id, failed, limit.
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	if s.deps.Logs == nil {
		s.writeError(w, http.StatusNotFound, errors.New("prediction log disabled"))
		return
	}
	q := logging.LogQuery{}
	if v := r.URL.Query().Get("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.Start = t
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			q.End = t
		}
	}
	q.Model = r.URL.Query().Get("model")
	q.VesselID = r.URL.Query().Get("vessel_id")
	if v := r.URL.Query().Get("failed"); v != "" {
		q.FailedOnly, _ = strconv.ParseBool(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		q.Limit, _ = strconv.Atoi(v)
	}
	records, err := s.deps.Logs.Query(r.Context(), q)
	if err != nil {
		s.respondErr(w, err)
		return
	}
	if records == nil {
		records = []logging.LogRecord{}
	}
	s.respondJSON(w, http.StatusOK, records)
}

type modelPathRequest struct {
	Path string `json:"path"`
}

// handleModelExport copies the trained artifacts to a server-local path.
func (s *Server) handleModelExport(w http.ResponseWriter, r *http.Request) {
	var req modelPathRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	if err := s.deps.Predictor.ExportArtifacts(req.Path); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "exported", "path": req.Path})
}

// handleModelImport loads artifacts from a server-local path and
// re-initializes the models.
func (s *Server) handleModelImport(w http.ResponseWriter, r *http.Request) {
	var req modelPathRequest
	if err := decodeJSON(r, &req); err != nil {
		s.respondErr(w, err)
		return
	}
	if req.Path == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("path is required"))
		return
	}
	if err := s.deps.Predictor.ImportArtifacts(req.Path); err != nil {
		s.respondErr(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "imported", "path": req.Path})
}
