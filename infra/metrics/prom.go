package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/shipmind-ai/shipmind/core/metrics"
)

// PromSink records prediction events in Prometheus metrics.
type PromSink struct {
	predictions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	confidence  *prometheus.HistogramVec
	trainings   *prometheus.CounterVec
	loss        *prometheus.GaugeVec
	evaluation  *prometheus.GaugeVec
	cycles      *prometheus.CounterVec
	fleetScore  prometheus.Gauge
	fleetComps  *prometheus.GaugeVec
	history     *prometheus.GaugeVec
}

// NewPromSink registers prediction metrics on the default Prometheus
// registerer. The metrics server is started separately using
// cfg.PrometheusPort.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{}
	var err error
	s.predictions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prediction_events_total",
		Help: "Total number of model predictions",
	}, []string{"model", "success"}))
	if err != nil {
		return nil, err
	}
	s.latency, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prediction_latency_seconds",
		Help:    "Time spent running a single inference",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"}))
	if err != nil {
		return nil, err
	}
	s.confidence, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "prediction_confidence",
		Help:    "Confidence reported with each prediction",
		Buckets: prometheus.LinearBuckets(0.1, 0.1, 9),
	}, []string{"model"}))
	if err != nil {
		return nil, err
	}
	s.trainings, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "training_runs_total",
		Help: "Total number of model fitting runs",
	}, []string{"model", "success"}))
	if err != nil {
		return nil, err
	}
	s.loss, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "training_loss",
		Help: "Loss of the last fitting run",
	}, []string{"model", "phase"}))
	if err != nil {
		return nil, err
	}
	s.evaluation, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "model_evaluation_score",
		Help: "Last evaluation score per model",
	}, []string{"model"}))
	if err != nil {
		return nil, err
	}
	s.cycles, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "training_cycles_total",
		Help: "Total number of full retraining cycles",
	}, []string{"trigger", "success"}))
	if err != nil {
		return nil, err
	}
	s.fleetScore, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fleet_health_score",
		Help: "Overall fleet health score of the last analysis",
	}))
	if err != nil {
		return nil, err
	}
	s.fleetComps, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "fleet_components",
		Help: "Component counts of the last fleet analysis",
	}, []string{"status"}))
	if err != nil {
		return nil, err
	}
	s.history, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "prediction_history_depth",
		Help: "Number of retained prediction outcomes per model",
	}, []string{"model"}))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// register adds the collector to reg, reusing an existing collector when one
// with the same descriptor is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return are.ExistingCollector.(T), nil
		}
		return c, err
	}
	return c, nil
}

// RecordPrediction increments the prediction counter and observes latency
// and confidence.
func (s *PromSink) RecordPrediction(res coremetrics.PredictionResult) error {
	s.predictions.WithLabelValues(res.Model, strconv.FormatBool(res.Success)).Inc()
	s.latency.WithLabelValues(res.Model).Observe(res.Duration.Seconds())
	if res.Success {
		s.confidence.WithLabelValues(res.Model).Observe(res.Confidence)
	}
	return nil
}

// RecordTraining counts the fitting run and updates the loss gauges.
func (s *PromSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	s.trainings.WithLabelValues(ev.Model, strconv.FormatBool(ev.Success)).Inc()
	if ev.Success {
		s.loss.WithLabelValues(ev.Model, "train").Set(ev.Loss)
		s.loss.WithLabelValues(ev.Model, "validation").Set(ev.ValidationLoss)
	}
	return nil
}

// RecordEvaluation sets the evaluation score gauge.
func (s *PromSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	s.evaluation.WithLabelValues(ev.Model).Set(ev.Score)
	return nil
}

// RecordTrainingCycle counts a completed retraining cycle.
func (s *PromSink) RecordTrainingCycle(ev coremetrics.TrainingCycleEvent) error {
	s.cycles.WithLabelValues(ev.Trigger, strconv.FormatBool(ev.Success)).Inc()
	return nil
}

// RecordFleetHealth sets the fleet gauges from the last analysis.
func (s *PromSink) RecordFleetHealth(ev coremetrics.FleetHealthEvent) error {
	s.fleetScore.Set(ev.Score)
	s.fleetComps.WithLabelValues("total").Set(float64(ev.Components))
	s.fleetComps.WithLabelValues("failed").Set(float64(ev.Failed))
	s.fleetComps.WithLabelValues("critical").Set(float64(ev.Critical))
	return nil
}

// RecordHistoryDepth sets the per-model outcome history gauge.
func (s *PromSink) RecordHistoryDepth(model string, depth int) error {
	s.history.WithLabelValues(model).Set(float64(depth))
	return nil
}
