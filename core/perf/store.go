// Package perf tracks the evaluated quality of each prediction model. The
// orchestrator recomputes metrics after every evaluation or training cycle
// and persists them through a Store.
package perf

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Metric captures the current quality of one model. Precision, recall and f1
// are derived from the prediction history success rate; without labeled
// ground truth they express operational reliability, not classification
// quality.
type Metric struct {
	Model         string    `json:"model"`
	Accuracy      float64   `json:"accuracy"`
	Precision     float64   `json:"precision"`
	Recall        float64   `json:"recall"`
	F1            float64   `json:"f1"`
	SuccessRate   float64   `json:"success_rate"`
	AvgConfidence float64   `json:"avg_confidence"`
	Predictions   int       `json:"predictions"`
	LastEvaluated time.Time `json:"last_evaluated"`
	LastTrained   time.Time `json:"last_trained,omitempty"`
}

// Store persists per-model performance metrics.
type Store interface {
	Put(ctx context.Context, m Metric) error
	Get(ctx context.Context, model string) (Metric, bool, error)
	List(ctx context.Context) ([]Metric, error)
	Close() error
}

// MemoryStore keeps metrics in memory. It is the default for tests and for
// deployments that do not care about persistence across restarts.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Metric
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[string]Metric{}}
}

func (s *MemoryStore) Put(_ context.Context, m Metric) error {
	s.mu.Lock()
	s.data[m.Model] = m
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, model string) (Metric, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.data[model]
	return m, ok, nil
}

func (s *MemoryStore) List(_ context.Context) ([]Metric, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Metric, 0, len(s.data))
	for _, m := range s.data {
		res = append(res, m)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Model < res[j].Model })
	return res, nil
}

func (s *MemoryStore) Close() error { return nil }
