package metrics

// MultiSink fans events out to multiple sinks. Optional recorder interfaces
// are forwarded only to sinks that implement them.
type MultiSink struct {
	Sinks []Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordPrediction forwards the result to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordPrediction(res PredictionResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordPrediction(res); err != nil {
			return err
		}
	}
	return nil
}

// RecordTraining forwards training runs.
func (m *MultiSink) RecordTraining(ev TrainingEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TrainingRecorder); ok {
			if err := rec.RecordTraining(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEvaluation forwards accuracy evaluations.
func (m *MultiSink) RecordEvaluation(ev EvaluationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EvaluationRecorder); ok {
			if err := rec.RecordEvaluation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFleetHealth forwards fleet analysis outcomes.
func (m *MultiSink) RecordFleetHealth(ev FleetHealthEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(FleetHealthRecorder); ok {
			if err := rec.RecordFleetHealth(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordHistoryDepth forwards history depth gauges when supported by the sink.
func (m *MultiSink) RecordHistoryDepth(model string, depth int) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(HistoryDepthRecorder); ok {
			if err := rec.RecordHistoryDepth(model, depth); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordTrainingCycle forwards full retraining cycles.
func (m *MultiSink) RecordTrainingCycle(ev TrainingCycleEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(TrainingCycleRecorder); ok {
			if err := rec.RecordTrainingCycle(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
