package model

import "time"

// HealthTrend summarizes which way fleet condition is moving.
type HealthTrend string

const (
	TrendImproving HealthTrend = "improving"
	TrendStable    HealthTrend = "stable"
	TrendDegrading HealthTrend = "degrading"
)

// UpcomingMaintenance is one entry of the fleet maintenance queue.
type UpcomingMaintenance struct {
	VesselID        string          `json:"vessel_id"`
	ComponentID     string          `json:"component_id"`
	ComponentType   ComponentType   `json:"component_type"`
	RiskScore       float64         `json:"risk_score"`
	RecommendedDate time.Time       `json:"recommended_date"`
	MaintenanceType MaintenanceType `json:"maintenance_type"`
}

// FleetHealth aggregates maintenance predictions over a set of components.
type FleetHealth struct {
	OverallScore        float64               `json:"overall_score"` // mean(1-risk) over successes
	Trend               HealthTrend           `json:"trend"`
	CriticalIssues      []string              `json:"critical_issues"`
	UpcomingMaintenance []UpcomingMaintenance `json:"upcoming_maintenance"`
	EvaluatedComponents int                   `json:"evaluated_components"`
	FailedComponents    int                   `json:"failed_components"`
	GeneratedAt         time.Time             `json:"generated_at"`
}
