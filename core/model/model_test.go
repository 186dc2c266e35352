package model

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func validWeather() *WeatherConditions {
	return &WeatherConditions{WindSpeedKn: 15, WindDirDeg: 220, WaveHeightM: 1.5, CurrentSpeedKn: 1, VisibilityNM: 8}
}

func validRouteRequest() RouteRequest {
	return RouteRequest{
		Origin:         Position{Lat: 40.7128, Lon: -74.0060},
		Destination:    Position{Lat: 51.5074, Lon: -0.1278},
		PlannedSpeedKn: 18,
		CargoLoadPct:   70,
		EnginePowerKW:  25000,
		Weather:        validWeather(),
	}
}

func TestRouteRequestValidate(t *testing.T) {
	r := validRouteRequest()
	if err := r.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestRouteRequestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*RouteRequest)
	}{
		{"bad origin", func(r *RouteRequest) { r.Origin.Lat = 91 }},
		{"same endpoints", func(r *RouteRequest) { r.Destination = r.Origin }},
		{"zero speed", func(r *RouteRequest) { r.PlannedSpeedKn = 0 }},
		{"nan speed", func(r *RouteRequest) { r.PlannedSpeedKn = math.NaN() }},
		{"load over 100", func(r *RouteRequest) { r.CargoLoadPct = 120 }},
		{"no power", func(r *RouteRequest) { r.EnginePowerKW = 0 }},
		{"no weather", func(r *RouteRequest) { r.Weather = nil }},
		{"nan wind", func(r *RouteRequest) { r.Weather.WindSpeedKn = math.NaN() }},
	}
	for _, c := range cases {
		r := validRouteRequest()
		c.mutate(&r)
		err := r.Validate()
		if err == nil {
			t.Fatalf("%s: expected error", c.name)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("%s: expected ValidationError, got %T", c.name, err)
		}
	}
}

func TestFuelRequestValidate(t *testing.T) {
	r := FuelRequest{
		DistanceNM:       3000,
		SpeedKn:          16,
		CargoLoadPct:     80,
		EnginePowerKW:    20000,
		EngineEfficiency: 0.82,
		Weather:          validWeather(),
		SeaState:         3,
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	r.EngineEfficiency = 0
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for zero efficiency")
	}
	r.EngineEfficiency = 0.82
	r.SeaState = 10
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for sea state above scale")
	}
}

func TestMaintenanceRequestValidate(t *testing.T) {
	r := MaintenanceRequest{
		VesselID:          "mv-aurora",
		ComponentID:       "main-engine-1",
		ComponentType:     ComponentEngine,
		AgeYears:          8,
		OperatingHours:    42000,
		HoursSinceService: 1200,
		AvgLoadFactor:     0.7,
		VibrationMMS:      3.2,
		TempC:             78,
		OilPressureBar:    4.1,
		OilQualityPct:     65,
		FailureCount:      2,
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
	r.VesselID = ""
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for missing vessel id")
	}
	r.VesselID = "mv-aurora"
	r.ComponentType = ComponentType(99)
	if err := r.Validate(); err == nil {
		t.Fatal("expected error for unknown component type")
	}
}

func TestComponentTypeRoundTrip(t *testing.T) {
	for ct := ComponentEngine; ct <= ComponentAuxiliary; ct++ {
		parsed, err := ParseComponentType(ct.String())
		if err != nil {
			t.Fatalf("parse %s: %v", ct, err)
		}
		if parsed != ct {
			t.Fatalf("round trip %s: got %s", ct, parsed)
		}
	}
	if _, err := ParseComponentType("warpdrive"); err == nil {
		t.Fatal("expected error for unknown name")
	}
}

func TestMaintenanceTypeJSON(t *testing.T) {
	b, err := json.Marshal(MaintenanceCorrective)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"corrective"` {
		t.Fatalf("expected \"corrective\" got %s", b)
	}
	var mt MaintenanceType
	if err := json.Unmarshal([]byte(`"emergency"`), &mt); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if mt != MaintenanceEmergency {
		t.Fatalf("expected emergency got %s", mt)
	}
}

func TestWeatherSeverityBounds(t *testing.T) {
	w := &WeatherConditions{WindSpeedKn: 60, WaveHeightM: 10}
	if s := w.Severity(); s != 1 {
		t.Fatalf("expected severity 1 got %v", s)
	}
	calm := &WeatherConditions{}
	if s := calm.Severity(); s != 0 {
		t.Fatalf("expected severity 0 got %v", s)
	}
	var nilWeather *WeatherConditions
	if s := nilWeather.Severity(); s != 0 {
		t.Fatalf("expected severity 0 for nil weather got %v", s)
	}
}
