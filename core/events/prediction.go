package events

import "time"

// PredictionEvent is published for each model inference, successful or not.
type PredictionEvent struct {
	Model      string
	VesselID   string
	Confidence float64
	Duration   time.Duration
	Err        error
}
