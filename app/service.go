// Package app wires the configured collaborators into a running prediction
// service: models, stores, sinks, MQTT telemetry, the HTTP API and the
// background training loop.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shipmind-ai/shipmind/api"
	"github.com/shipmind-ai/shipmind/config"
	coremetrics "github.com/shipmind-ai/shipmind/core/metrics"
	coremon "github.com/shipmind-ai/shipmind/core/monitoring"
	coremqtt "github.com/shipmind-ai/shipmind/core/mqtt"
	coreperf "github.com/shipmind-ai/shipmind/core/perf"
	"github.com/shipmind-ai/shipmind/core/predictor"
	"github.com/shipmind-ai/shipmind/core/predictor/logging"
	"github.com/shipmind-ai/shipmind/infra/logger"
	"github.com/shipmind-ai/shipmind/infra/metrics"
	"github.com/shipmind-ai/shipmind/infra/monitoring"
	"github.com/shipmind-ai/shipmind/infra/mqtt"
	"github.com/shipmind-ai/shipmind/infra/perf"
	"github.com/shipmind-ai/shipmind/infra/telemetry"
	"github.com/shipmind-ai/shipmind/internal/eventbus"
	"github.com/shipmind-ai/shipmind/jobs"
	"github.com/shipmind-ai/shipmind/weather"
)

// Service owns the prediction engine and its peripherals.
type Service struct {
	Predictor *predictor.Service
	API       *api.Server
	Telemetry *telemetry.Manager

	cfg  *config.Config
	bus  eventbus.EventBus
	cli  coremqtt.Client
	sink coremetrics.Sink
	log  logger.Logger
}

// New builds the full service from the configuration. Model initialization
// failures are logged, not fatal: failed models get a renewed attempt on
// first use.
func New(cfg *config.Config) (*Service, error) {
	log := logger.NewWithConfig(cfg.Logging, "service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry monitor: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sinks: %w", err)
	}

	logStore, err := newLogStore(cfg.PredictionLog)
	if err != nil {
		return nil, fmt.Errorf("prediction log: %w", err)
	}

	var perfStore coreperf.Store
	if cfg.Predictor.MetricsPath != "" {
		ps, err := perf.NewSQLiteStore(cfg.Predictor.MetricsPath)
		if err != nil {
			return nil, fmt.Errorf("performance store: %w", err)
		}
		perfStore = ps
	}

	bus := eventbus.New()
	svc, err := predictor.NewService(cfg.Predictor,
		logger.NewWithConfig(cfg.Logging, "predictor"), sink, perfStore, logStore, bus)
	if err != nil {
		return nil, fmt.Errorf("prediction service: %w", err)
	}
	if err := svc.Initialize(); err != nil {
		log.Errorf("model initialization incomplete: %v", err)
		coremon.CaptureException(err, nil)
	}

	s := &Service{
		Predictor: svc,
		cfg:       cfg,
		bus:       bus,
		sink:      sink,
		log:       log,
	}

	if cfg.Telemetry.Enabled {
		cli, err := mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		mgr, err := telemetry.NewManager(cli, cfg.Telemetry, svc)
		if err != nil {
			return nil, fmt.Errorf("telemetry manager: %w", err)
		}
		s.cli = cli
		s.Telemetry = mgr
	}

	s.API = api.NewServer(cfg.API, api.Deps{
		Predictor: svc,
		Logs:      logStore,
		Bus:       bus,
		Weather:   weather.NewProvider(cfg.Weather),
		Schedule:  cfg.Schedule,
	})
	return s, nil
}

// newLogStore builds the audit log backend named by the configuration.
func newLogStore(cfg config.PredictionLogConfig) (logging.LogStore, error) {
	switch cfg.Backend {
	case "jsonl":
		return logging.NewJSONLStore(cfg.Path)
	case "jsonl_rotating":
		return logging.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return logging.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Run starts every configured component and blocks until the context is
// canceled.
func (s *Service) Run(ctx context.Context) error {
	metrics.StartEventCollector(ctx, s.bus, s.sink)
	if port := s.cfg.Metrics.PrometheusPort; port != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, port); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.Telemetry != nil {
		go func() {
			if err := s.Telemetry.Start(ctx); err != nil {
				s.log.Errorf("telemetry manager: %v", err)
			}
		}()
	}
	if s.cfg.Training.Enabled {
		loop := jobs.NewRetrainLoop(s.Predictor,
			time.Duration(s.cfg.Training.Interval())*time.Minute)
		go func() {
			if err := loop.Start(ctx); err != nil {
				s.log.Errorf("retrain loop: %v", err)
			}
		}()
	}
	go func() {
		if err := s.API.Start(ctx); err != nil {
			s.log.Errorf("api server: %v", err)
		}
	}()
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	err := s.Predictor.Close()
	if s.cli != nil {
		s.cli.Disconnect()
	}
	coremon.Flush(2 * time.Second)
	return err
}
