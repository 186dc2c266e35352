package predictor

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/shipmind-ai/shipmind/core/model"
)

func fuelRequestFixture() *model.FuelRequest {
	return &model.FuelRequest{
		DistanceNM:       1200,
		SpeedKn:          13,
		CargoLoadPct:     60,
		EnginePowerKW:    15000,
		EngineEfficiency: 0.85,
		SeaState:         4,
		Weather: &model.WeatherConditions{
			WindSpeedKn:    15,
			WindDirDeg:     120,
			WaveHeightM:    1.8,
			CurrentSpeedKn: 0.5,
			VisibilityNM:   9,
		},
	}
}

func TestFuelCodecDeterministicAndBounded(t *testing.T) {
	req := fuelRequestFixture()
	a := fuelCodec{}.Encode(req)
	b := fuelCodec{}.Encode(req)
	if len(a) != FuelConfig().InputSize {
		t.Fatalf("expected %d features, got %d", FuelConfig().InputSize, len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("feature %d not deterministic", i)
		}
		if a[i] < 0 || a[i] > 1 {
			t.Fatalf("feature %d out of [0,1]: %v", i, a[i])
		}
	}
}

func TestBuildFuelEstimateMidpointMatchesBaseline(t *testing.T) {
	req := fuelRequestFixture()
	out := &Outcome{Raw: []float64{0.5, 0.5, 0.5}, Confidence: 0.8, ModelVersion: "1.0.0", GeneratedAt: time.Now()}

	est := buildFuelEstimate(req, out)
	hours := req.DistanceNM / req.SpeedKn
	base := fuelLiters(req.EnginePowerKW, req.CargoLoadPct/100, hours)
	if math.Abs(est.TotalL-base) > 1e-9 {
		t.Fatalf("midpoint total %v, want baseline %v", est.TotalL, base)
	}
	if math.Abs(est.MainEngineL-0.8*est.TotalL) > 1e-9 {
		t.Fatalf("midpoint main share %v, want 0.8", est.MainEngineL/est.TotalL)
	}
	if math.Abs(est.MainEngineL+est.AuxiliaryL-est.TotalL) > 1e-9 {
		t.Fatal("engine split does not sum to the total")
	}
	if math.Abs(est.EfficiencyLPerNM-est.TotalL/req.DistanceNM) > 1e-9 {
		t.Fatal("efficiency is not liters per mile")
	}
	wantCO2 := est.TotalL * fuelDensityKgPerL * co2KgPerKgFuel
	if math.Abs(est.CO2Kg-wantCO2) > 1e-9 {
		t.Fatalf("co2 %v, want %v", est.CO2Kg, wantCO2)
	}
}

func TestBuildFuelEstimateBounds(t *testing.T) {
	req := fuelRequestFixture()
	hours := req.DistanceNM / req.SpeedKn
	base := fuelLiters(req.EnginePowerKW, req.CargoLoadPct/100, hours)

	low := buildFuelEstimate(req, &Outcome{Raw: []float64{0, 0, 0}})
	high := buildFuelEstimate(req, &Outcome{Raw: []float64{1, 1, 1}})
	if math.Abs(low.TotalL-base*0.85) > 1e-9 || math.Abs(high.TotalL-base*1.15) > 1e-9 {
		t.Fatalf("total correction outside ±15%%: %v .. %v around %v", low.TotalL, high.TotalL, base)
	}

	// The share span stays inside its clamp window for sigmoid outputs and
	// is clamped for anything wilder.
	share := high.MainEngineL / high.TotalL
	if math.Abs(share-0.875) > 1e-9 {
		t.Fatalf("share for raw=1 is %v, want 0.875", share)
	}
	wild := buildFuelEstimate(req, &Outcome{Raw: []float64{0.5, 5, 0.5}})
	if got := wild.MainEngineL / wild.TotalL; math.Abs(got-mainShareMax) > 1e-9 {
		t.Fatalf("share not clamped: %v", got)
	}
}

func TestFuelImpactFactorsIgnoreModelOutput(t *testing.T) {
	req := fuelRequestFixture()
	a := buildFuelEstimate(req, &Outcome{Raw: []float64{0.1, 0.2, 0.3}})
	b := buildFuelEstimate(req, &Outcome{Raw: []float64{0.9, 0.8, 0.7}})
	if a.Factors != b.Factors {
		t.Fatalf("factors depend on model output: %+v vs %+v", a.Factors, b.Factors)
	}
	f := a.Factors
	if f.WeatherPct < 0 || f.WeatherPct > 30 {
		t.Fatalf("weather impact %v outside [0,30]", f.WeatherPct)
	}
	if f.LoadPct < 0 || f.LoadPct > 20 {
		t.Fatalf("load impact %v outside [0,20]", f.LoadPct)
	}
	if f.SpeedPct < 0 || f.SpeedPct > 25 {
		t.Fatalf("speed impact %v outside [0,25]", f.SpeedPct)
	}
	if f.SeaStatePct < 0 || f.SeaStatePct > 15 {
		t.Fatalf("sea state impact %v outside [0,15]", f.SeaStatePct)
	}
}

func TestGenerateFuelSamples(t *testing.T) {
	set := GenerateFuelSamples(150, rand.New(rand.NewSource(9)))
	if len(set.Inputs) != 150 {
		t.Fatalf("expected 150 samples, got %d", len(set.Inputs))
	}
	for i := range set.Inputs {
		if len(set.Inputs[i]) != 10 || len(set.Targets[i]) != 3 {
			t.Fatalf("sample %d has widths %d/%d", i, len(set.Inputs[i]), len(set.Targets[i]))
		}
		for _, v := range set.Targets[i] {
			if v < 0 || v > 1 || math.IsNaN(v) {
				t.Fatalf("sample %d target %v out of [0,1]", i, v)
			}
		}
	}
}
