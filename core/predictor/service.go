package predictor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shipmind-ai/shipmind/core/events"
	"github.com/shipmind-ai/shipmind/core/logger"
	"github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/core/model"
	"github.com/shipmind-ai/shipmind/core/monitoring"
	"github.com/shipmind-ai/shipmind/core/perf"
	"github.com/shipmind-ai/shipmind/core/predictor/logging"
	"github.com/shipmind-ai/shipmind/internal/eventbus"
)

const (
	defaultThreshold = 0.7
	defaultSeed      = 42
)

// ModelState tracks one model through its lifecycle.
type ModelState string

const (
	StateUninitialized ModelState = "uninitialized"
	StateInitializing  ModelState = "initializing"
	StateReady         ModelState = "ready"
	StateFailed        ModelState = "failed"
)

// ServiceConfig carries the service-level settings. Zero values fall back to
// production defaults, except ArtifactDir which is required.
type ServiceConfig struct {
	// ArtifactDir is the root under which each model persists its weights.
	ArtifactDir string `json:"artifact_dir"`
	// PerformanceThreshold triggers auto-training when any model's
	// evaluation score drops below it.
	PerformanceThreshold float64 `json:"performance_threshold"`
	// Seed makes weight initialization, synthetic data and waypoint jitter
	// reproducible.
	Seed int64 `json:"seed"`
	// MetricsPath names the performance store file, when file-backed. It is
	// only used to include the store in artifact exports.
	MetricsPath string `json:"metrics_path"`
	// Models overrides the trained model set. Defaults to the three
	// production models.
	Models []ModelConfig `json:"models"`
}

// Service orchestrates the prediction models: lifecycle, inference, outcome
// history, evaluation and retraining. Construct it with NewService and share
// one instance per process.
type Service struct {
	cfg   ServiceConfig
	log   logger.Logger
	sink  metrics.Sink
	perf  perf.Store
	audit logging.LogStore
	bus   eventbus.EventBus

	models map[string]*Model
	order  []string

	stateMu sync.Mutex
	states  map[string]ModelState
	lastErr map[string]error

	hist *history

	rngMu sync.Mutex
	rng   *rand.Rand

	// training serializes full retraining cycles via TryLock.
	training sync.Mutex
}

// NewService wires the prediction service. Logger, sink and performance
// store fall back to no-op or in-memory defaults; the audit log and the
// event bus are optional and may be nil.
func NewService(cfg ServiceConfig, log logger.Logger, sink metrics.Sink, perfStore perf.Store, audit logging.LogStore, bus eventbus.EventBus) (*Service, error) {
	if cfg.ArtifactDir == "" {
		return nil, fmt.Errorf("predictor: artifact dir required")
	}
	if cfg.PerformanceThreshold <= 0 || cfg.PerformanceThreshold >= 1 {
		cfg.PerformanceThreshold = defaultThreshold
	}
	if cfg.Seed == 0 {
		cfg.Seed = defaultSeed
	}
	if len(cfg.Models) == 0 {
		cfg.Models = DefaultConfigs()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if perfStore == nil {
		perfStore = perf.NewMemoryStore()
	}

	s := &Service{
		cfg:     cfg,
		log:     log,
		sink:    sink,
		perf:    perfStore,
		audit:   audit,
		bus:     bus,
		models:  make(map[string]*Model, len(cfg.Models)),
		states:  make(map[string]ModelState, len(cfg.Models)),
		lastErr: make(map[string]error, len(cfg.Models)),
		hist:    newHistory(historyCapacity),
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}
	for i, mc := range cfg.Models {
		if mc.Name == "" {
			return nil, fmt.Errorf("predictor: model %d has no name", i)
		}
		if _, dup := s.models[mc.Name]; dup {
			return nil, fmt.Errorf("predictor: duplicate model %q", mc.Name)
		}
		s.models[mc.Name] = NewModel(mc, cfg.ArtifactDir, cfg.Seed+int64(i))
		s.states[mc.Name] = StateUninitialized
		s.order = append(s.order, mc.Name)
	}
	return s, nil
}

// Initialize brings every model up concurrently, loading persisted artifacts
// where present. An unreadable artifact is logged, reported and replaced by
// a fresh network; only unrecoverable failures mark a model failed.
func (s *Service) Initialize() error {
	start := time.Now()
	var wg sync.WaitGroup
	errs := make([]error, len(s.order))
	for i, name := range s.order {
		i, name := i, name
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.initializeModel(name)
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("initialize: %d of %d models failed", failed, len(s.order))
	}
	s.log.Infof("all %d models initialized in %s", len(s.order), time.Since(start).Round(time.Millisecond))
	return nil
}

func (s *Service) initializeModel(name string) error {
	m := s.models[name]
	s.setState(name, StateInitializing, nil)
	err := m.Initialize()
	var loadErr *ModelLoadError
	if errors.As(err, &loadErr) {
		s.log.Warnf("model %s artifact unreadable, rebuilding fresh: %v", name, err)
		monitoring.CaptureException(err, map[string]string{"model": name})
		err = m.Compile()
	}
	if err != nil {
		s.log.Errorf("initialize model %s: %v", name, err)
		s.setState(name, StateFailed, err)
		return err
	}
	s.setState(name, StateReady, nil)
	s.log.Debugf("model %s ready", name)
	return nil
}

// ensureReady gates predictions on the model state. A failed model gets one
// renewed initialize attempt per request; an uninitialized one reports
// ErrNotInitialized so startup stays explicit.
func (s *Service) ensureReady(name string) error {
	switch s.stateOf(name) {
	case StateReady:
		return nil
	case StateFailed:
		if err := s.initializeModel(name); err != nil {
			return fmt.Errorf("model %s unavailable: %w", name, err)
		}
		return nil
	default:
		return ErrNotInitialized
	}
}

func (s *Service) setState(name string, st ModelState, err error) {
	s.stateMu.Lock()
	s.states[name] = st
	s.lastErr[name] = err
	s.stateMu.Unlock()
}

func (s *Service) stateOf(name string) ModelState {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.states[name]
}

func (s *Service) stateWithErr(name string) (ModelState, error) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.states[name], s.lastErr[name]
}

// record books a prediction outcome everywhere it is tracked: the rolling
// history (always, including failures), the metrics sink, the audit log and
// the event bus. Recording failures are logged, never propagated.
func (s *Service) record(ctx context.Context, modelName, vesselID string, start time.Time, conf float64, req, resp any, err error) {
	now := time.Now().UTC()
	dur := now.Sub(start)
	s.hist.Append(HistoryEntry{Model: modelName, Timestamp: now, Confidence: conf, Success: err == nil})

	res := metrics.PredictionResult{
		Model:      modelName,
		VesselID:   vesselID,
		Duration:   dur,
		Confidence: conf,
		Success:    err == nil,
		Time:       now,
	}
	if err != nil {
		res.ErrorKind = errorKind(err)
	}
	if sinkErr := s.sink.RecordPrediction(res); sinkErr != nil {
		s.log.Errorf("record prediction metric: %v", sinkErr)
	}
	if rec, ok := s.sink.(metrics.HistoryDepthRecorder); ok {
		if depthErr := rec.RecordHistoryDepth(modelName, s.hist.Depth(modelName)); depthErr != nil {
			s.log.Debugf("record history depth: %v", depthErr)
		}
	}
	s.appendAudit(ctx, now, modelName, vesselID, conf, dur, req, resp, err)
	if s.bus != nil {
		s.bus.Publish(events.PredictionEvent{
			Model:      modelName,
			VesselID:   vesselID,
			Confidence: conf,
			Duration:   dur,
			Err:        err,
		})
	}
}

func (s *Service) appendAudit(ctx context.Context, now time.Time, modelName, vesselID string, conf float64, dur time.Duration, req, resp any, err error) {
	if s.audit == nil {
		return
	}
	rec := logging.LogRecord{
		Timestamp:  now,
		Model:      modelName,
		VesselID:   vesselID,
		Confidence: conf,
		DurationMS: float64(dur) / float64(time.Millisecond),
		Success:    err == nil,
	}
	if err != nil {
		rec.Error = err.Error()
	}
	if raw, mErr := json.Marshal(req); mErr == nil {
		rec.Request = raw
	}
	if resp != nil {
		if raw, mErr := json.Marshal(resp); mErr == nil {
			rec.Response = raw
		}
	}
	if aErr := s.audit.Append(ctx, rec); aErr != nil {
		s.log.Errorf("append prediction log: %v", aErr)
	}
}

// errorKind labels an error for metrics without leaking request details.
func errorKind(err error) string {
	var vErr *model.ValidationError
	var pErr *InvalidPredictionError
	var lErr *ModelLoadError
	var tErr *TrainingError
	switch {
	case errors.As(err, &vErr):
		return "validation"
	case errors.Is(err, ErrNotInitialized):
		return "not_initialized"
	case errors.As(err, &pErr):
		return "invalid_output"
	case errors.As(err, &lErr):
		return "model_load"
	case errors.As(err, &tErr):
		return "training"
	default:
		return "internal"
	}
}

// Close disposes the models and releases the injected resources. The
// service must not be used afterwards.
func (s *Service) Close() error {
	var firstErr error
	for _, name := range s.order {
		s.models[name].Dispose()
		s.setState(name, StateUninitialized, nil)
	}
	if s.audit != nil {
		if err := s.audit.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.perf.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if s.bus != nil {
		s.bus.Close()
	}
	s.log.Infof("prediction service closed")
	return firstErr
}
