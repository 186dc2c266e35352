package predictor

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when a prediction is requested before the
// model has been initialized, or after it was disposed.
var ErrNotInitialized = errors.New("predictor: model not initialized")

// ModelLoadError reports a persisted artifact that is present but unusable.
// It is recoverable during initialization: the caller may compile a fresh
// network instead.
type ModelLoadError struct {
	Model string
	Path  string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s from %s: %v", e.Model, e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// TrainingError reports an unusable training set or a failed fitting run.
type TrainingError struct {
	Model  string
	Reason string
}

func (e *TrainingError) Error() string {
	return fmt.Sprintf("train model %s: %s", e.Model, e.Reason)
}

// InvalidPredictionError reports a non-finite network output. It points at
// broken weights, not at the request.
type InvalidPredictionError struct {
	Model string
	Index int
	Value float64
}

func (e *InvalidPredictionError) Error() string {
	return fmt.Sprintf("model %s produced non-finite output %v at index %d", e.Model, e.Value, e.Index)
}
