package metrics

import (
	"context"
	"time"

	"github.com/shipmind-ai/shipmind/core/events"
	coremetrics "github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records metrics for
// events that are not sunk directly by the predictor, currently full
// retraining cycles. It stops when the context is canceled.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.Sink) {
	if bus == nil || sink == nil {
		return
	}
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				if e, ok := ev.(events.TrainingCycleEvent); ok {
					if r, ok := sink.(coremetrics.TrainingCycleRecorder); ok {
						_ = r.RecordTrainingCycle(coremetrics.TrainingCycleEvent{
							Trigger:  e.Trigger,
							Models:   e.Models,
							Duration: e.Duration,
							Success:  e.Err == nil,
							Time:     time.Now().UTC(),
						})
					}
				}
			}
		}
	}()
}
