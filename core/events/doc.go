// Package events defines the prediction related events emitted on the event bus.
//
// Available event types:
//   - PredictionEvent: completed model inference
//   - TrainingEvent: finished model fitting run
//   - TrainingCycleEvent: outcome of a full retraining cycle
//   - FleetHealthEvent: fleet analysis result
package events
