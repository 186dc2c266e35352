package events

import "time"

// TrainingEvent is published when a single model finishes a fitting run.
type TrainingEvent struct {
	Model          string
	Samples        int
	Loss           float64
	ValidationLoss float64
	Duration       time.Duration
	Err            error
}

// TrainingCycleEvent is emitted when a full retraining cycle completes.
// Trigger can be "manual", "auto", or "schedule".
type TrainingCycleEvent struct {
	Trigger  string
	Models   int
	Duration time.Duration
	Err      error
}
