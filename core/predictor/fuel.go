package predictor

import (
	"math"
	"math/rand"

	"github.com/shipmind-ai/shipmind/core/model"
)

const maxSeaState = 9.0

// Correction spans for the fuel model. The third output is a reserved
// efficiency signal: it reaches the caller only through the confidence
// spread.
const (
	fuelTotalSpan = 0.3 // ±15%
	mainShareBase = 0.80
	mainShareSpan = 0.15
	mainShareMin  = 0.70
	mainShareMax  = 0.95
)

// fuelCodec turns a fuel request into the model's ten features.
type fuelCodec struct{}

func (fuelCodec) Encode(req *model.FuelRequest) []float64 {
	w := req.Weather
	dirRad := w.WindDirDeg * math.Pi / 180
	return []float64{
		norm(req.DistanceNM, maxVoyageDistanceNM),
		norm(req.SpeedKn, maxSpeedKn),
		norm(req.CargoLoadPct, 100),
		norm(req.EnginePowerKW, maxEnginePowerKW),
		clamp01(req.EngineEfficiency),
		norm(w.WindSpeedKn, maxWindKn),
		(math.Sin(dirRad) + 1) / 2,
		(math.Cos(dirRad) + 1) / 2,
		norm(w.WaveHeightM, maxWaveM),
		norm(req.SeaState, maxSeaState),
	}
}

// buildFuelEstimate derives the consumption breakdown from the raw output.
// MainEngineL and AuxiliaryL always sum to TotalL.
func buildFuelEstimate(req *model.FuelRequest, out *Outcome) *model.FuelEstimate {
	hours := req.DistanceNM / req.SpeedKn
	base := fuelLiters(req.EnginePowerKW, req.CargoLoadPct/100, hours)
	total := base * (1 + (out.Raw[0]-0.5)*fuelTotalSpan)
	share := clampRange(mainShareBase+(out.Raw[1]-0.5)*mainShareSpan, mainShareMin, mainShareMax)
	mainL := total * share

	return &model.FuelEstimate{
		TotalL:           total,
		MainEngineL:      mainL,
		AuxiliaryL:       total - mainL,
		EfficiencyLPerNM: total / req.DistanceNM,
		CO2Kg:            total * fuelDensityKgPerL * co2KgPerKgFuel,
		Factors:          fuelImpactFactors(req),
		Confidence:       out.Confidence,
		ModelVersion:     out.ModelVersion,
		GeneratedAt:      out.GeneratedAt,
	}
}

// fuelImpactFactors breaks the estimate into contribution percentages. They
// are formula-derived from the request, on purpose independent of the model,
// so operators can see why an estimate runs high even when they distrust
// the network.
func fuelImpactFactors(req *model.FuelRequest) model.FuelFactors {
	speedN := norm(req.SpeedKn, maxSpeedKn)
	return model.FuelFactors{
		WeatherPct:  round1(req.Weather.Severity() * 30),
		LoadPct:     round1(req.CargoLoadPct / 100 * 20),
		SpeedPct:    round1(speedN * speedN * 25),
		SeaStatePct: round1(norm(req.SeaState, maxSeaState) * 15),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// GenerateFuelSamples synthesizes training pairs for the fuel model. Heavy
// weather and deep loading push consumption up; an efficient engine pulls it
// down.
func GenerateFuelSamples(n int, rng *rand.Rand) TrainingSet {
	in := make([][]float64, n)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		dirRad := rng.Float64() * 2 * math.Pi
		f := []float64{
			0.05 + rng.Float64()*0.95, // distance
			0.25 + rng.Float64()*0.6,  // speed
			rng.Float64(),             // cargo load
			0.1 + rng.Float64()*0.8,   // engine power
			0.6 + rng.Float64()*0.4,   // engine efficiency
			rng.Float64() * 0.85,      // wind
			(math.Sin(dirRad) + 1) / 2,
			(math.Cos(dirRad) + 1) / 2,
			rng.Float64() * 0.8, // waves
			rng.Float64(),       // sea state
		}
		weather := 0.5*f[5] + 0.3*f[8] + 0.2*f[9]
		in[i] = f
		out[i] = []float64{
			clamp01(0.5 + 0.25*weather + 0.15*(f[2]-0.5) - 0.3*(f[4]-0.8)),
			clamp01(0.5 + 0.25*(f[2]-0.5) - 0.1*weather),
			clamp01(f[4] - 0.2*weather),
		}
	}
	return TrainingSet{Inputs: in, Targets: out}
}
