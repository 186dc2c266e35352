package model

import (
	"math"
	"time"
)

// Position is a geographic coordinate in decimal degrees.
type Position struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the position lies on the globe.
func (p Position) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// RouteRequest asks for an optimized passage between two ports.
type RouteRequest struct {
	Origin         Position           `json:"origin"`
	Destination    Position           `json:"destination"`
	PlannedSpeedKn float64            `json:"planned_speed_kn"`
	CargoLoadPct   float64            `json:"cargo_load_pct"`
	EnginePowerKW  float64            `json:"engine_power_kw"`
	Weather        *WeatherConditions `json:"weather,omitempty"`
	Departure      time.Time          `json:"departure,omitempty"`
}

// Validate rejects requests with missing or out-of-range required fields.
// Weather must already be resolved; the API layer fills it from the weather
// provider when the caller leaves it empty.
func (r *RouteRequest) Validate() error {
	if !r.Origin.Valid() {
		return invalidf("origin", "latitude must be in [-90,90], longitude in [-180,180]")
	}
	if !r.Destination.Valid() {
		return invalidf("destination", "latitude must be in [-90,90], longitude in [-180,180]")
	}
	if r.Origin == r.Destination {
		return invalidf("destination", "must differ from origin")
	}
	if !(r.PlannedSpeedKn > 0) || r.PlannedSpeedKn > 60 {
		return invalidf("planned_speed_kn", "must be in (0,60]")
	}
	if math.IsNaN(r.CargoLoadPct) || r.CargoLoadPct < 0 || r.CargoLoadPct > 100 {
		return invalidf("cargo_load_pct", "must be in [0,100]")
	}
	if !(r.EnginePowerKW > 0) || r.EnginePowerKW > 120000 {
		return invalidf("engine_power_kw", "must be in (0,120000]")
	}
	return r.Weather.Validate()
}

// AlternativeRoute is a secondary passage option with rough estimates.
type AlternativeRoute struct {
	Waypoints []Position `json:"waypoints"`
	Hours     float64    `json:"hours"`
	FuelL     float64    `json:"fuel_l"`
	RiskScore float64    `json:"risk_score"`
}

// RoutePlan is the optimized passage returned to the caller.
type RoutePlan struct {
	DistanceNM     float64            `json:"distance_nm"`
	EstimatedHours float64            `json:"estimated_hours"`
	EstimatedFuelL float64            `json:"estimated_fuel_l"`
	Efficiency     float64            `json:"efficiency"` // [0,1], higher is better
	Waypoints      []Position         `json:"waypoints"`
	Alternatives   []AlternativeRoute `json:"alternatives,omitempty"`
	Confidence     float64            `json:"confidence"`
	ModelVersion   string             `json:"model_version"`
	GeneratedAt    time.Time          `json:"generated_at"`
}
