package predictor

import (
	"context"
	"fmt"
	"time"

	"github.com/shipmind-ai/shipmind/core/perf"
)

// ModelStatus is one model's lifecycle snapshot.
type ModelStatus struct {
	State ModelState `json:"state"`
	Ready bool       `json:"ready"`
	Error string     `json:"error,omitempty"`
}

// ServiceStatus is the externally visible service snapshot.
type ServiceStatus struct {
	Ready        bool                   `json:"ready"`
	Health       string                 `json:"health"`
	Models       map[string]ModelStatus `json:"models"`
	Metrics      []perf.Metric          `json:"metrics"`
	HistoryDepth int                    `json:"history_depth"`
	LastTraining time.Time              `json:"last_training,omitempty"`
}

// Status reports readiness, the aggregate health label and the persisted
// performance metrics.
func (s *Service) Status(ctx context.Context) (*ServiceStatus, error) {
	st := &ServiceStatus{
		Ready:  true,
		Models: make(map[string]ModelStatus, len(s.order)),
	}
	for _, name := range s.order {
		state, lastErr := s.stateWithErr(name)
		ms := ModelStatus{State: state, Ready: state == StateReady}
		if lastErr != nil {
			ms.Error = lastErr.Error()
		}
		if !ms.Ready {
			st.Ready = false
		}
		if meta := s.models[name].Metadata(); meta != nil && meta.SavedAt.After(st.LastTraining) {
			st.LastTraining = meta.SavedAt
		}
		st.Models[name] = ms
	}
	st.HistoryDepth = s.hist.Depth("")

	stored, err := s.perf.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list performance metrics: %w", err)
	}
	st.Metrics = stored
	st.Health = healthLabel(s.meanAccuracy(stored))
	return st, nil
}

// meanAccuracy averages stored accuracy over the configured models, falling
// back to the live evaluation score for models not yet persisted.
func (s *Service) meanAccuracy(stored []perf.Metric) float64 {
	if len(s.order) == 0 {
		return 0
	}
	byName := make(map[string]float64, len(stored))
	for _, m := range stored {
		byName[m.Model] = m.Accuracy
	}
	var sum float64
	for _, name := range s.order {
		if acc, ok := byName[name]; ok {
			sum += acc
			continue
		}
		sum += s.evaluateModel(name)
	}
	return sum / float64(len(s.order))
}

// healthLabel buckets mean accuracy for dashboards.
func healthLabel(acc float64) string {
	switch {
	case acc > 0.9:
		return "excellent"
	case acc > 0.8:
		return "good"
	case acc > 0.6:
		return "fair"
	default:
		return "poor"
	}
}
