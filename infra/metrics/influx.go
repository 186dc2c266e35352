package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/infra/logger"
)

// InfluxConfig holds connection settings for an InfluxDB sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes prediction events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.Sink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

// RecordPrediction writes the inference as a point.
func (s *InfluxSink) RecordPrediction(res coremetrics.PredictionResult) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("prediction_event").
		AddTag("model", res.Model).
		AddTag("success", strconv.FormatBool(res.Success)).
		AddTag("component", "predictor")
	if res.VesselID != "" {
		p = p.AddTag("vessel_id", res.VesselID)
	}
	if res.ErrorKind != "" {
		p = p.AddTag("error_kind", res.ErrorKind)
	}
	p = p.AddField("confidence", round3(res.Confidence)).
		AddField("latency_ms", round3(res.Duration.Seconds()*1000)).
		SetTime(res.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTraining writes a fitting run as a point.
func (s *InfluxSink) RecordTraining(ev coremetrics.TrainingEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("training_event").
		AddTag("model", ev.Model).
		AddTag("success", strconv.FormatBool(ev.Success)).
		AddTag("component", "predictor").
		AddField("samples", ev.Samples).
		AddField("epochs", ev.Epochs).
		AddField("loss", round3(ev.Loss)).
		AddField("validation_loss", round3(ev.ValidationLoss)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEvaluation writes an accuracy evaluation as a point.
func (s *InfluxSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("model_evaluation").
		AddTag("model", ev.Model).
		AddTag("component", "predictor").
		AddField("score", round3(ev.Score)).
		AddField("window", ev.Window).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordTrainingCycle writes a full retraining cycle as a point.
func (s *InfluxSink) RecordTrainingCycle(ev coremetrics.TrainingCycleEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("training_cycle").
		AddTag("trigger", ev.Trigger).
		AddTag("success", strconv.FormatBool(ev.Success)).
		AddTag("component", "predictor").
		AddField("models", ev.Models).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordFleetHealth writes the outcome of a fleet analysis cycle.
func (s *InfluxSink) RecordFleetHealth(ev coremetrics.FleetHealthEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("fleet_health").
		AddTag("trend", ev.Trend).
		AddTag("component", "fleet").
		AddField("score", round3(ev.Score)).
		AddField("components", ev.Components).
		AddField("failed", ev.Failed).
		AddField("critical", ev.Critical).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
