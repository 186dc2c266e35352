package metrics

import "time"

// PredictionResult represents a single model inference to be recorded.
type PredictionResult struct {
	Model      string
	VesselID   string
	Duration   time.Duration
	Confidence float64
	Success    bool
	ErrorKind  string
	Time       time.Time
}

// Sink records prediction results for observability purposes.
type Sink interface {
	RecordPrediction(res PredictionResult) error
}

// TrainingEvent captures one model fitting run.
type TrainingEvent struct {
	Model          string
	Samples        int
	Epochs         int
	Loss           float64
	ValidationLoss float64
	Duration       time.Duration
	Success        bool
	Time           time.Time
}

// TrainingRecorder records training runs.
type TrainingRecorder interface {
	RecordTraining(ev TrainingEvent) error
}

// EvaluationEvent captures a per-model accuracy evaluation.
type EvaluationEvent struct {
	Model  string
	Score  float64
	Window int
	Time   time.Time
}

// EvaluationRecorder records accuracy evaluations.
type EvaluationRecorder interface {
	RecordEvaluation(ev EvaluationEvent) error
}

// FleetHealthEvent captures the outcome of a fleet analysis cycle.
type FleetHealthEvent struct {
	Score      float64
	Trend      string
	Components int
	Failed     int
	Critical   int
	Time       time.Time
}

// FleetHealthRecorder records fleet analysis outcomes.
type FleetHealthRecorder interface {
	RecordFleetHealth(ev FleetHealthEvent) error
}

// HistoryDepthRecorder records the prediction history depth per model.
type HistoryDepthRecorder interface {
	RecordHistoryDepth(model string, depth int) error
}

// TrainingCycleEvent captures a full retraining cycle.
type TrainingCycleEvent struct {
	Trigger  string
	Models   int
	Duration time.Duration
	Success  bool
	Time     time.Time
}

// TrainingCycleRecorder records full retraining cycles.
type TrainingCycleRecorder interface {
	RecordTrainingCycle(ev TrainingCycleEvent) error
}

// NopSink implements Sink and every optional recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordPrediction(PredictionResult) error      { return nil }
func (NopSink) RecordTraining(TrainingEvent) error           { return nil }
func (NopSink) RecordEvaluation(EvaluationEvent) error       { return nil }
func (NopSink) RecordFleetHealth(FleetHealthEvent) error     { return nil }
func (NopSink) RecordHistoryDepth(string, int) error         { return nil }
func (NopSink) RecordTrainingCycle(TrainingCycleEvent) error { return nil }
