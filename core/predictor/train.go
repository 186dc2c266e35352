package predictor

import (
	"context"
	"math/rand"
	"time"

	"github.com/montanaflynn/stats"

	"github.com/shipmind-ai/shipmind/core/events"
	"github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/core/monitoring"
	"github.com/shipmind-ai/shipmind/core/perf"
)

// Evaluate scores every model over its recent history: 0.7×success rate +
// 0.3×mean confidence. A model without history scores the 0.5 prior.
func (s *Service) Evaluate() map[string]float64 {
	scores := make(map[string]float64, len(s.order))
	for _, name := range s.order {
		scores[name] = s.evaluateModel(name)
	}
	return scores
}

func (s *Service) evaluateModel(name string) float64 {
	entries := s.hist.Recent(name, evaluationWindow)
	if len(entries) == 0 {
		return 0.5
	}
	rate, conf := windowStats(entries)
	return 0.7*rate + 0.3*conf
}

// windowStats reduces a history window to its success rate and mean
// confidence. Callers guard against empty windows.
func windowStats(entries []HistoryEntry) (rate, meanConf float64) {
	var succ float64
	conf := make([]float64, len(entries))
	for i, e := range entries {
		if e.Success {
			succ++
		}
		conf[i] = e.Confidence
	}
	meanConf, _ = stats.Mean(conf)
	return succ / float64(len(entries)), meanConf
}

// CheckAndAutoTrain retrains the whole suite when any model scores below the
// threshold. Retraining is never selective: the models share drift causes
// and a full cycle keeps their artifacts aligned.
func (s *Service) CheckAndAutoTrain(ctx context.Context) {
	scores := s.Evaluate()
	var below []string
	for _, name := range s.order {
		if scores[name] < s.cfg.PerformanceThreshold {
			below = append(below, name)
		}
	}
	if len(below) == 0 {
		return
	}
	s.log.Infof("models %v scored below threshold %.2f, starting auto-training", below, s.cfg.PerformanceThreshold)
	if err := s.trainAll(ctx, "auto"); err != nil {
		s.log.Errorf("auto-training failed: %v", err)
		monitoring.CaptureException(err, map[string]string{"trigger": "auto"})
	}
}

// TrainAll retrains every model on fresh synthetic data, then refreshes the
// persisted performance metrics. Overlapping cycles are dropped, not queued.
func (s *Service) TrainAll(ctx context.Context) error {
	return s.trainAll(ctx, "manual")
}

func (s *Service) trainAll(ctx context.Context, trigger string) error {
	if !s.training.TryLock() {
		s.log.Warnf("training already in flight, dropping %s cycle", trigger)
		return nil
	}
	defer s.training.Unlock()

	start := time.Now()
	var firstErr error
	trained := 0
	for _, name := range s.order {
		if ctx.Err() != nil {
			if firstErr == nil {
				firstErr = ctx.Err()
			}
			break
		}
		if err := s.trainModel(name); err != nil {
			s.log.Errorf("train %s: %v", name, err)
			monitoring.CaptureException(err, map[string]string{"model": name})
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		trained++
	}
	s.refreshMetrics(ctx)
	if s.bus != nil {
		s.bus.Publish(events.TrainingCycleEvent{
			Trigger:  trigger,
			Models:   trained,
			Duration: time.Since(start),
			Err:      firstErr,
		})
	}
	s.log.Infof("%s training cycle finished: %d/%d models in %s",
		trigger, trained, len(s.order), time.Since(start).Round(time.Millisecond))
	return firstErr
}

// trainModel fits one model on a fresh synthetic set. The model's write lock
// keeps predictions out for the duration; a run is not cancellable
// mid-epoch.
func (s *Service) trainModel(name string) error {
	m := s.models[name]
	set := s.syntheticSet(m)
	start := time.Now()
	res, err := m.Train(set)
	dur := time.Since(start)

	ev := metrics.TrainingEvent{
		Model:    name,
		Samples:  len(set.Inputs),
		Duration: dur,
		Success:  err == nil,
		Time:     time.Now().UTC(),
	}
	busEv := events.TrainingEvent{Model: name, Samples: len(set.Inputs), Duration: dur, Err: err}
	if res != nil {
		ev.Epochs = res.Epochs
		ev.Loss = res.Loss
		ev.ValidationLoss = res.ValidationLoss
		busEv.Loss = res.Loss
		busEv.ValidationLoss = res.ValidationLoss
	}
	if rec, ok := s.sink.(metrics.TrainingRecorder); ok {
		if recErr := rec.RecordTraining(ev); recErr != nil {
			s.log.Errorf("record training metric: %v", recErr)
		}
	}
	if s.bus != nil {
		s.bus.Publish(busEv)
	}
	if err != nil {
		return err
	}
	s.setState(name, StateReady, nil)
	s.log.Infof("model %s trained: loss %.5f (validation %.5f) over %d samples in %s",
		name, res.Loss, res.ValidationLoss, len(set.Inputs), dur.Round(time.Millisecond))
	return nil
}

// syntheticSet draws the model's training set from the shared rng so cycles
// stay reproducible for a fixed service seed.
func (s *Service) syntheticSet(m *Model) TrainingSet {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	cfg := m.Config()
	n := cfg.TrainingSamples
	if n <= 0 {
		n = 1000
	}
	switch cfg.Name {
	case ModelRoute:
		return GenerateRouteSamples(n, s.rng)
	case ModelFuel:
		return GenerateFuelSamples(n, s.rng)
	case ModelMaintenance:
		return GenerateMaintenanceSamples(n, s.rng)
	default:
		return GenerateUniformSamples(n, cfg.InputSize, cfg.OutputSize, s.rng)
	}
}

// GenerateUniformSamples produces an unstructured random set. It backs
// custom model configurations that have no dedicated generator.
func GenerateUniformSamples(n, inputs, outputs int, rng *rand.Rand) TrainingSet {
	in := make([][]float64, n)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		in[i] = make([]float64, inputs)
		out[i] = make([]float64, outputs)
		for j := range in[i] {
			in[i][j] = rng.Float64()
		}
		for j := range out[i] {
			out[i][j] = rng.Float64()
		}
	}
	return TrainingSet{Inputs: in, Targets: out}
}

// refreshMetrics recomputes and persists per-model metrics. Precision,
// recall and f1 all collapse onto the success rate: without labeled ground
// truth the history only knows whether a prediction was served.
func (s *Service) refreshMetrics(ctx context.Context) {
	now := time.Now().UTC()
	for _, name := range s.order {
		entries := s.hist.Recent(name, evaluationWindow)
		score := s.evaluateModel(name)
		m := perf.Metric{
			Model:         name,
			Accuracy:      score,
			Predictions:   len(entries),
			LastEvaluated: now,
		}
		if len(entries) > 0 {
			rate, conf := windowStats(entries)
			m.Precision = rate
			m.Recall = rate
			m.F1 = rate
			m.SuccessRate = rate
			m.AvgConfidence = conf
		}
		if meta := s.models[name].Metadata(); meta != nil {
			m.LastTrained = meta.SavedAt
		}
		if err := s.perf.Put(ctx, m); err != nil {
			s.log.Errorf("persist metrics for %s: %v", name, err)
		}
		if rec, ok := s.sink.(metrics.EvaluationRecorder); ok {
			evErr := rec.RecordEvaluation(metrics.EvaluationEvent{
				Model:  name,
				Score:  score,
				Window: len(entries),
				Time:   now,
			})
			if evErr != nil {
				s.log.Debugf("record evaluation metric: %v", evErr)
			}
		}
	}
}
