package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shipmind-ai/shipmind/core/events"
	coremetrics "github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/internal/eventbus"
)

type cycleSink struct {
	coremetrics.NopSink

	mu     sync.Mutex
	cycles []coremetrics.TrainingCycleEvent
}

func (s *cycleSink) RecordTrainingCycle(ev coremetrics.TrainingCycleEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles = append(s.cycles, ev)
	return nil
}

func (s *cycleSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cycles)
}

func TestStartEventCollectorRecordsCycles(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sink := &cycleSink{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartEventCollector(ctx, bus, sink)

	bus.Publish(events.TrainingCycleEvent{Trigger: "auto", Models: 3, Duration: time.Second})
	bus.Publish(events.PredictionEvent{Model: "route"})

	deadline := time.After(time.Second)
	for sink.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("cycle event not recorded")
		case <-time.After(5 * time.Millisecond):
		}
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.cycles) != 1 {
		t.Fatalf("expected 1 cycle, got %d", len(sink.cycles))
	}
	ev := sink.cycles[0]
	if ev.Trigger != "auto" || ev.Models != 3 || !ev.Success {
		t.Fatalf("unexpected cycle event: %+v", ev)
	}
}

func TestStartEventCollectorNilGuards(t *testing.T) {
	// must not panic
	StartEventCollector(context.Background(), nil, coremetrics.NopSink{})
	StartEventCollector(context.Background(), eventbus.New(), nil)
}
