// Package jobs holds the background loops of the prediction service.
package jobs

import (
	"context"
	"time"

	"github.com/shipmind-ai/shipmind/infra/logger"
)

// Retrainer is the slice of the prediction service the loop drives.
type Retrainer interface {
	CheckAndAutoTrain(ctx context.Context)
}

// RetrainLoop periodically re-evaluates model scores and triggers a full
// retraining cycle when any score falls below the configured threshold.
type RetrainLoop struct {
	svc      Retrainer
	log      logger.Logger
	interval time.Duration
}

// NewRetrainLoop creates the loop. Non-positive intervals fall back to six
// hours.
func NewRetrainLoop(svc Retrainer, interval time.Duration) *RetrainLoop {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &RetrainLoop{
		svc:      svc,
		log:      logger.New("retrain-loop"),
		interval: interval,
	}
}

// Start runs the evaluation loop until the context is canceled. Training
// outcomes are handled inside the service; an attempt overlapping a running
// cycle is dropped there.
func (l *RetrainLoop) Start(ctx context.Context) error {
	l.log.Infof("auto-training check every %s", l.interval)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			l.svc.CheckAndAutoTrain(ctx)
		}
	}
}
