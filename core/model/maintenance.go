package model

import (
	"fmt"
	"math"
	"time"
)

// ComponentType identifies the class of shipboard equipment a maintenance
// prediction refers to. The type drives the cost and downtime base tables.
type ComponentType int

const (
	ComponentEngine ComponentType = iota
	ComponentPropulsion
	ComponentNavigation
	ComponentElectrical
	ComponentHull
	ComponentAuxiliary
)

// ComponentTypeCount is the number of known component classes.
const ComponentTypeCount = 6

// String returns the wire name of the component type.
func (t ComponentType) String() string {
	switch t {
	case ComponentEngine:
		return "engine"
	case ComponentPropulsion:
		return "propulsion"
	case ComponentNavigation:
		return "navigation"
	case ComponentElectrical:
		return "electrical"
	case ComponentHull:
		return "hull"
	case ComponentAuxiliary:
		return "auxiliary"
	default:
		return "unknown"
	}
}

// ParseComponentType maps a wire name back to its ComponentType.
func ParseComponentType(s string) (ComponentType, error) {
	for t := ComponentEngine; t <= ComponentAuxiliary; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown component type %q", s)
}

// MarshalText implements encoding.TextMarshaler so the type serializes as its
// name in JSON payloads.
func (t ComponentType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *ComponentType) UnmarshalText(b []byte) error {
	v, err := ParseComponentType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// MaintenanceType classifies the recommended intervention. The ordering is
// meaningful: escalation only ever moves toward emergency.
type MaintenanceType int

const (
	MaintenancePreventive MaintenanceType = iota
	MaintenanceCorrective
	MaintenanceEmergency
)

// String returns the wire name of the maintenance type.
func (t MaintenanceType) String() string {
	switch t {
	case MaintenancePreventive:
		return "preventive"
	case MaintenanceCorrective:
		return "corrective"
	case MaintenanceEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t MaintenanceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *MaintenanceType) UnmarshalText(b []byte) error {
	switch string(b) {
	case "preventive":
		*t = MaintenancePreventive
	case "corrective":
		*t = MaintenanceCorrective
	case "emergency":
		*t = MaintenanceEmergency
	default:
		return fmt.Errorf("unknown maintenance type %q", string(b))
	}
	return nil
}

// MaintenanceRequest carries the state of one component for risk forecasting.
// The history slices are optional: an empty or partially malformed history
// degrades the sensor trend features but never fails the request.
type MaintenanceRequest struct {
	VesselID          string        `json:"vessel_id"`
	ComponentID       string        `json:"component_id"`
	ComponentType     ComponentType `json:"component_type"`
	AgeYears          float64       `json:"age_years"`
	OperatingHours    float64       `json:"operating_hours"`
	HoursSinceService float64       `json:"hours_since_service"`
	AvgLoadFactor     float64       `json:"avg_load_factor"` // [0,1]
	VibrationMMS      float64       `json:"vibration_mms"`   // RMS velocity
	TempC             float64       `json:"temp_c"`
	OilPressureBar    float64       `json:"oil_pressure_bar"`
	OilQualityPct     float64       `json:"oil_quality_pct"`
	FailureCount      float64       `json:"failure_count"`

	// Optional histories, newest last.
	MaintenanceIntervalsDays []float64 `json:"maintenance_intervals_days,omitempty"`
	VibrationHistory         []float64 `json:"vibration_history,omitempty"`
	TemperatureHistory       []float64 `json:"temperature_history,omitempty"`
}

// Validate rejects requests with missing or out-of-range required fields.
// Optional histories are not validated here; the feature codec sanitizes
// them and logs what it drops.
func (r *MaintenanceRequest) Validate() error {
	if r.VesselID == "" {
		return invalidf("vessel_id", "required")
	}
	if r.ComponentID == "" {
		return invalidf("component_id", "required")
	}
	if r.ComponentType < ComponentEngine || r.ComponentType > ComponentAuxiliary {
		return invalidf("component_type", "unknown component type")
	}
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"age_years", r.AgeYears, 0, 60},
		{"operating_hours", r.OperatingHours, 0, 500000},
		{"hours_since_service", r.HoursSinceService, 0, 100000},
		{"avg_load_factor", r.AvgLoadFactor, 0, 1},
		{"vibration_mms", r.VibrationMMS, 0, 50},
		{"temp_c", r.TempC, -50, 250},
		{"oil_pressure_bar", r.OilPressureBar, 0, 30},
		{"oil_quality_pct", r.OilQualityPct, 0, 100},
		{"failure_count", r.FailureCount, 0, 100},
	}
	for _, c := range checks {
		if math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return invalidf(c.name, "must be finite")
		}
		if c.v < c.min || c.v > c.max {
			return invalidf(c.name, "must be between %g and %g", c.min, c.max)
		}
	}
	return nil
}

// MaintenanceFactors are the five weighted sub-scores behind a risk estimate.
type MaintenanceFactors struct {
	Age       float64 `json:"age"`
	Usage     float64 `json:"usage"`
	Condition float64 `json:"condition"`
	History   float64 `json:"history"`
	Sensor    float64 `json:"sensor"`
}

// MaintenanceOutlook is the forecast for one component.
type MaintenanceOutlook struct {
	VesselID           string             `json:"vessel_id"`
	ComponentID        string             `json:"component_id"`
	ComponentType      ComponentType      `json:"component_type"`
	RiskScore          float64            `json:"risk_score"`
	PredictedFailure   *time.Time         `json:"predicted_failure,omitempty"` // only when risk > 0.8
	RecommendedDate    time.Time          `json:"recommended_date"`
	MaintenanceType    MaintenanceType    `json:"maintenance_type"`
	EstimatedCost      float64            `json:"estimated_cost"`
	EstimatedDowntimeH float64            `json:"estimated_downtime_h"`
	Factors            MaintenanceFactors `json:"factors"`
	Recommendations    []string           `json:"recommendations"`
	Confidence         float64            `json:"confidence"`
	ModelVersion       string             `json:"model_version"`
	GeneratedAt        time.Time          `json:"generated_at"`
}
