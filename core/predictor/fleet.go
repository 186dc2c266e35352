package predictor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shipmind-ai/shipmind/core/events"
	"github.com/shipmind-ai/shipmind/core/metrics"
	"github.com/shipmind-ai/shipmind/core/model"
)

// Fleet aggregation thresholds.
const (
	degradingRiskMean = 0.6
	improvingRiskMean = 0.3
	criticalRisk      = 0.8
	upcomingRisk      = 0.5
)

// componentAssessment pairs one analyzed component with its outlook.
type componentAssessment struct {
	vesselID    string
	componentID string
	outlook     *model.MaintenanceOutlook
}

// aggregateFleet condenses per-component outlooks into a fleet report.
// Components whose prediction failed are counted but contribute nothing to
// the scores. With no successful assessments the report is empty but valid.
func aggregateFleet(assessed []componentAssessment, failed int, now time.Time) *model.FleetHealth {
	health := &model.FleetHealth{
		Trend:               model.TrendStable,
		CriticalIssues:      []string{},
		UpcomingMaintenance: []model.UpcomingMaintenance{},
		EvaluatedComponents: len(assessed),
		FailedComponents:    failed,
		GeneratedAt:         now,
	}
	if len(assessed) == 0 {
		return health
	}

	var scoreSum, riskSum float64
	for _, a := range assessed {
		risk := a.outlook.RiskScore
		scoreSum += 1 - risk
		riskSum += risk
		if risk > criticalRisk {
			health.CriticalIssues = append(health.CriticalIssues,
				fmt.Sprintf("component %s on vessel %s at risk %.2f", a.componentID, a.vesselID, risk))
		}
		if risk > upcomingRisk {
			health.UpcomingMaintenance = append(health.UpcomingMaintenance, model.UpcomingMaintenance{
				VesselID:        a.vesselID,
				ComponentID:     a.componentID,
				ComponentType:   a.outlook.ComponentType,
				RiskScore:       risk,
				RecommendedDate: a.outlook.RecommendedDate,
				MaintenanceType: a.outlook.MaintenanceType,
			})
		}
	}
	n := float64(len(assessed))
	health.OverallScore = scoreSum / n

	switch meanRisk := riskSum / n; {
	case meanRisk > degradingRiskMean:
		health.Trend = model.TrendDegrading
	case meanRisk < improvingRiskMean:
		health.Trend = model.TrendImproving
	}

	sort.Slice(health.UpcomingMaintenance, func(i, j int) bool {
		return health.UpcomingMaintenance[i].RecommendedDate.Before(health.UpcomingMaintenance[j].RecommendedDate)
	})
	return health
}

// AnalyzeFleetHealth runs a maintenance prediction for every component and
// aggregates the outcomes. Individual failures are logged and excluded from
// the scores; only an empty input fails the whole call.
func (s *Service) AnalyzeFleetHealth(ctx context.Context, reqs []*model.MaintenanceRequest) (*model.FleetHealth, error) {
	if len(reqs) == 0 {
		return nil, &model.ValidationError{Field: "components", Reason: "at least one component required"}
	}
	assessed := make([]componentAssessment, 0, len(reqs))
	failed := 0
	for _, req := range reqs {
		outlook, err := s.PredictMaintenance(ctx, req)
		if err != nil {
			failed++
			id := "unknown"
			if req != nil {
				id = req.VesselID + "/" + req.ComponentID
			}
			s.log.Warnf("fleet analysis: component %s skipped: %v", id, err)
			continue
		}
		assessed = append(assessed, componentAssessment{
			vesselID:    req.VesselID,
			componentID: req.ComponentID,
			outlook:     outlook,
		})
	}

	health := aggregateFleet(assessed, failed, time.Now().UTC())
	if rec, ok := s.sink.(metrics.FleetHealthRecorder); ok {
		recErr := rec.RecordFleetHealth(metrics.FleetHealthEvent{
			Score:      health.OverallScore,
			Trend:      string(health.Trend),
			Components: health.EvaluatedComponents,
			Failed:     failed,
			Critical:   len(health.CriticalIssues),
			Time:       health.GeneratedAt,
		})
		if recErr != nil {
			s.log.Errorf("record fleet health metric: %v", recErr)
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.FleetHealthEvent{
			Score:      health.OverallScore,
			Trend:      string(health.Trend),
			Components: health.EvaluatedComponents,
			Failed:     failed,
			Critical:   len(health.CriticalIssues),
			Time:       health.GeneratedAt,
		})
	}
	s.log.Infof("fleet health %.2f (%s): %d assessed, %d failed, %d critical",
		health.OverallScore, health.Trend, health.EvaluatedComponents, failed, len(health.CriticalIssues))
	return health, nil
}
