// Package api exposes the prediction service over HTTP. All endpoints
// speak JSON; /api/v1/events upgrades to a websocket that streams bus
// events to fleet dashboards.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/shipmind-ai/shipmind/config"
	"github.com/shipmind-ai/shipmind/core/model"
	"github.com/shipmind-ai/shipmind/core/predictor"
	"github.com/shipmind-ai/shipmind/core/predictor/logging"
	"github.com/shipmind-ai/shipmind/core/scheduler"
	"github.com/shipmind-ai/shipmind/infra/logger"
	"github.com/shipmind-ai/shipmind/internal/eventbus"
	"github.com/shipmind-ai/shipmind/weather"
)

// Predictor is the slice of the prediction service the handlers depend on.
// *predictor.Service satisfies it.
type Predictor interface {
	PredictRoute(ctx context.Context, req *model.RouteRequest) (*model.RoutePlan, error)
	PredictFuel(ctx context.Context, req *model.FuelRequest) (*model.FuelEstimate, error)
	PredictMaintenance(ctx context.Context, req *model.MaintenanceRequest) (*model.MaintenanceOutlook, error)
	AnalyzeFleetHealth(ctx context.Context, reqs []*model.MaintenanceRequest) (*model.FleetHealth, error)
	Status(ctx context.Context) (*predictor.ServiceStatus, error)
	TrainAll(ctx context.Context) error
	ExportArtifacts(dst string) error
	ImportArtifacts(src string) error
}

// Deps carries the collaborators the server wires into its handlers.
// Logs, Bus and Weather may be nil; the matching endpoints then report
// 404 or skip enrichment.
type Deps struct {
	Predictor Predictor
	Logs      logging.LogStore
	Bus       eventbus.EventBus
	Weather   weather.Provider
	Schedule  scheduler.SchedulerConfig
}

// Server serves the fleet prediction API.
type Server struct {
	cfg    config.APIConfig
	deps   Deps
	router *mux.Router
	log    logger.Logger
}

// NewServer builds the router and binds every handler.
func NewServer(cfg config.APIConfig, deps Deps) *Server {
	s := &Server{
		cfg:    cfg,
		deps:   deps,
		router: mux.NewRouter(),
		log:    logger.New("api"),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	v1.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	v1.HandleFunc("/predict/route", s.handlePredictRoute).Methods(http.MethodPost)
	v1.HandleFunc("/predict/fuel", s.handlePredictFuel).Methods(http.MethodPost)
	v1.HandleFunc("/predict/maintenance", s.handlePredictMaintenance).Methods(http.MethodPost)
	v1.HandleFunc("/fleet/health", s.handleFleetHealth).Methods(http.MethodPost)
	v1.HandleFunc("/fleet/schedule", s.handleFleetSchedule).Methods(http.MethodPost)
	v1.HandleFunc("/train", s.handleTrain).Methods(http.MethodPost)
	v1.Handle("/predictions", s.requireToken(http.HandlerFunc(s.handlePredictions))).Methods(http.MethodGet)
	v1.Handle("/models/export", s.requireToken(http.HandlerFunc(s.handleModelExport))).Methods(http.MethodPost)
	v1.Handle("/models/import", s.requireToken(http.HandlerFunc(s.handleModelImport))).Methods(http.MethodPost)
	v1.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)
}

// Handler returns the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start runs the HTTP server until the context is canceled, then shuts it
// down within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.WriteTimeoutSeconds) * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(s.cfg.ShutdownTimeoutSeconds)*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("api listening on %s", s.cfg.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// requireToken guards admin endpoints with a bearer check when a token is
// configured.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token != "" {
			if r.Header.Get("Authorization") != "Bearer "+s.cfg.Token {
				s.writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorf("encode response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.respondJSON(w, status, map[string]string{"error": err.Error()})
}

// respondErr maps service errors onto HTTP statuses: request validation is
// the caller's fault, an uninitialized model is transient, everything else
// is on us.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, predictor.ErrNotInitialized):
		s.writeError(w, http.StatusServiceUnavailable, err)
	default:
		s.log.Errorf("request failed: %v", err)
		s.writeError(w, http.StatusInternalServerError, err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer func() { _ = r.Body.Close() }()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &model.ValidationError{Field: "body", Reason: "malformed JSON: " + err.Error()}
	}
	return nil
}
