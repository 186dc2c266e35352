package predictor

import (
	"math"
	"math/rand"

	"github.com/shipmind-ai/shipmind/core/geo"
	"github.com/shipmind-ai/shipmind/core/model"
)

// Fuel chemistry constants for a medium-speed marine diesel on distillate
// fuel.
const (
	sfocGramsPerKWh   = 190.0 // specific fuel oil consumption
	fuelDensityKgPerL = 0.845
	co2KgPerKgFuel    = 3.15
)

// Normalization ceilings shared by the voyage codecs.
const (
	maxVoyageDistanceNM = 10000.0
	maxSpeedKn          = 30.0
	maxEnginePowerKW    = 50000.0
	maxWindKn           = 60.0
	maxWaveM            = 10.0
	maxCurrentKn        = 6.0
	maxVisibilityNM     = 10.0
)

// Correction spans around the physics baselines.
const (
	routeTimeSpan = 0.4 // ±20%
	routeFuelSpan = 0.4 // ±20%
)

// routeCodec turns a route request into the model's ten features. Encoding
// is deterministic for identical requests; wind direction enters as shifted
// sine and cosine so 359° and 1° stay neighbours.
type routeCodec struct{}

func (routeCodec) Encode(req *model.RouteRequest) []float64 {
	w := req.Weather
	dirRad := w.WindDirDeg * math.Pi / 180
	return []float64{
		norm(geo.Haversine(req.Origin, req.Destination), maxVoyageDistanceNM),
		norm(req.PlannedSpeedKn, maxSpeedKn),
		norm(req.CargoLoadPct, 100),
		norm(req.EnginePowerKW, maxEnginePowerKW),
		norm(w.WindSpeedKn, maxWindKn),
		(math.Sin(dirRad) + 1) / 2,
		(math.Cos(dirRad) + 1) / 2,
		norm(w.WaveHeightM, maxWaveM),
		norm(w.CurrentSpeedKn, maxCurrentKn),
		norm(w.VisibilityNM, maxVisibilityNM),
	}
}

// fuelLiters is the SFOC baseline: installed power at the given load factor
// over the given duration, converted from grams to liters.
func fuelLiters(powerKW, loadFactor, hours float64) float64 {
	kg := powerKW * loadFactor * hours * sfocGramsPerKWh / 1000
	return kg / fuelDensityKgPerL
}

// buildRoutePlan turns raw model output into a route plan. The outputs are
// corrections around physics baselines, never absolute values, so a badly
// trained model still yields a defensible plan.
func buildRoutePlan(req *model.RouteRequest, out *Outcome, rng *rand.Rand) *model.RoutePlan {
	distance := geo.Haversine(req.Origin, req.Destination)
	baseHours := distance / req.PlannedSpeedKn
	hours := baseHours * (1 + (out.Raw[0]-0.5)*routeTimeSpan)
	baseFuel := fuelLiters(req.EnginePowerKW, req.CargoLoadPct/100, hours)
	fuel := baseFuel * (1 + (out.Raw[1]-0.5)*routeFuelSpan)
	efficiency := clamp01(out.Raw[2])
	severity := req.Weather.Severity()

	return &model.RoutePlan{
		DistanceNM:     distance,
		EstimatedHours: hours,
		EstimatedFuelL: fuel,
		Efficiency:     efficiency,
		Waypoints:      routeWaypoints(req.Origin, req.Destination, efficiency, severity, rng),
		Alternatives:   routeAlternatives(req.Origin, req.Destination, hours, fuel, severity, rng),
		Confidence:     out.Confidence,
		ModelVersion:   out.ModelVersion,
		GeneratedAt:    out.GeneratedAt,
	}
}

// routeWaypoints samples the great-circle line between the endpoints. More
// efficient routes earn more intermediate points; heavy weather jitters each
// point sideways to indicate deviation room.
func routeWaypoints(origin, dest model.Position, efficiency, severity float64, rng *rand.Rand) []model.Position {
	intermediate := 3 + int(math.Round(efficiency*5))
	pts := make([]model.Position, 0, intermediate+2)
	pts = append(pts, origin)
	for i := 1; i <= intermediate; i++ {
		p := geo.Interpolate(origin, dest, float64(i)/float64(intermediate+1))
		if severity > 0 {
			p.Lat = geo.ClampLat(p.Lat + (rng.Float64()*2-1)*severity*0.5)
			p.Lon = geo.WrapLon(p.Lon + (rng.Float64()*2-1)*severity*0.5)
		}
		pts = append(pts, p)
	}
	return append(pts, dest)
}

// routeAlternatives builds up to two fallback passages. Each trades a few
// percent of time and fuel for a lower weather risk.
func routeAlternatives(origin, dest model.Position, hours, fuel, severity float64, rng *rand.Rand) []model.AlternativeRoute {
	alts := make([]model.AlternativeRoute, 0, 2)
	for i := 0; i < 2; i++ {
		detour := 0.03 + 0.04*float64(i) + rng.Float64()*0.03
		alts = append(alts, model.AlternativeRoute{
			Waypoints: routeWaypoints(origin, dest, 0.4, math.Min(1, severity+0.2), rng),
			Hours:     hours * (1 + detour),
			FuelL:     fuel * (1 + detour*0.8),
			RiskScore: clamp01(severity*(1-2*detour) + rng.Float64()*0.1),
		})
	}
	return alts
}

// GenerateRouteSamples synthesizes training pairs for the route model. The
// targets are smooth closed-form functions of the features, deliberately
// distinct from the serving-time baselines so the model learns weather and
// loading corrections rather than an identity.
func GenerateRouteSamples(n int, rng *rand.Rand) TrainingSet {
	in := make([][]float64, n)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		dirRad := rng.Float64() * 2 * math.Pi
		f := []float64{
			rng.Float64(),            // distance
			0.25 + rng.Float64()*0.6, // 7.5-25.5 kn
			rng.Float64(),            // cargo load
			0.1 + rng.Float64()*0.8,  // engine power
			rng.Float64() * 0.85,     // wind to ~50 kn
			(math.Sin(dirRad) + 1) / 2,
			(math.Cos(dirRad) + 1) / 2,
			rng.Float64() * 0.8,  // waves to 8 m
			rng.Float64() * 0.85, // current
			0.1 + rng.Float64()*0.9,
		}
		weather := 0.6*f[4] + 0.4*f[7]
		in[i] = f
		out[i] = []float64{
			clamp01(0.5 + 0.35*weather - 0.15*(f[1]-0.5) + 0.05*f[8]),
			clamp01(0.5 + 0.3*weather + 0.2*(f[2]-0.5) + 0.1*(f[1]-0.5)),
			clamp01(0.85 - 0.4*weather - 0.1*f[2] + 0.1*f[9] - 0.05*f[8]),
		}
	}
	return TrainingSet{Inputs: in, Targets: out}
}
