package model

import "math"

// WeatherConditions describes the sea and wind state along a voyage leg.
// Requests may omit it, in which case the service fills it from the
// configured weather provider before the prediction runs.
type WeatherConditions struct {
	WindSpeedKn    float64 `json:"wind_speed_kn"`
	WindDirDeg     float64 `json:"wind_dir_deg"` // meteorological, 0-360
	WaveHeightM    float64 `json:"wave_height_m"`
	CurrentSpeedKn float64 `json:"current_speed_kn"`
	VisibilityNM   float64 `json:"visibility_nm"`
}

// Validate checks that every field is finite and within physical bounds.
func (w *WeatherConditions) Validate() error {
	if w == nil {
		return invalidf("weather", "required")
	}
	checks := []struct {
		name     string
		v        float64
		min, max float64
	}{
		{"weather.wind_speed_kn", w.WindSpeedKn, 0, 200},
		{"weather.wind_dir_deg", w.WindDirDeg, 0, 360},
		{"weather.wave_height_m", w.WaveHeightM, 0, 30},
		{"weather.current_speed_kn", w.CurrentSpeedKn, 0, 15},
		{"weather.visibility_nm", w.VisibilityNM, 0, 50},
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

// Severity condenses wind and wave state into a single [0,1] score used for
// waypoint jitter and impact factors.
func (w *WeatherConditions) Severity() float64 {
	if w == nil {
		return 0
	}
	s := 0.6*(w.WindSpeedKn/60) + 0.4*(w.WaveHeightM/10)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
