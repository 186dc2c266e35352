package model

import (
	"math"
	"time"
)

// FuelRequest asks for a fuel consumption estimate over a voyage leg.
type FuelRequest struct {
	DistanceNM       float64            `json:"distance_nm"`
	SpeedKn          float64            `json:"speed_kn"`
	CargoLoadPct     float64            `json:"cargo_load_pct"`
	EnginePowerKW    float64            `json:"engine_power_kw"`
	EngineEfficiency float64            `json:"engine_efficiency"` // (0,1]
	Weather          *WeatherConditions `json:"weather,omitempty"`
	SeaState         float64            `json:"sea_state"` // Douglas scale 0-9
}

// Validate rejects requests with missing or out-of-range required fields.
func (r *FuelRequest) Validate() error {
	if !(r.DistanceNM > 0) || r.DistanceNM > 15000 {
		return invalidf("distance_nm", "must be in (0,15000]")
	}
	if !(r.SpeedKn > 0) || r.SpeedKn > 60 {
		return invalidf("speed_kn", "must be in (0,60]")
	}
	if math.IsNaN(r.CargoLoadPct) || r.CargoLoadPct < 0 || r.CargoLoadPct > 100 {
		return invalidf("cargo_load_pct", "must be in [0,100]")
	}
	if !(r.EnginePowerKW > 0) || r.EnginePowerKW > 120000 {
		return invalidf("engine_power_kw", "must be in (0,120000]")
	}
	if !(r.EngineEfficiency > 0) || r.EngineEfficiency > 1 {
		return invalidf("engine_efficiency", "must be in (0,1]")
	}
	if math.IsNaN(r.SeaState) || r.SeaState < 0 || r.SeaState > 9 {
		return invalidf("sea_state", "must be in [0,9]")
	}
	return r.Weather.Validate()
}

// FuelFactors breaks the estimate down into formula-derived contribution
// percentages. They come from the physics side, not the model, so operators
// can see why an estimate is high.
type FuelFactors struct {
	WeatherPct  float64 `json:"weather_pct"`
	LoadPct     float64 `json:"load_pct"`
	SpeedPct    float64 `json:"speed_pct"`
	SeaStatePct float64 `json:"sea_state_pct"`
}

// FuelEstimate is the predicted consumption for a voyage leg.
type FuelEstimate struct {
	TotalL           float64     `json:"total_l"`
	MainEngineL      float64     `json:"main_engine_l"`
	AuxiliaryL       float64     `json:"auxiliary_l"`
	EfficiencyLPerNM float64     `json:"efficiency_l_per_nm"`
	CO2Kg            float64     `json:"co2_kg"`
	Factors          FuelFactors `json:"factors"`
	Confidence       float64     `json:"confidence"`
	ModelVersion     string      `json:"model_version"`
	GeneratedAt      time.Time   `json:"generated_at"`
}
