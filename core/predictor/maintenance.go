package predictor

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shipmind-ai/shipmind/core/model"
)

// Normalization ceilings for the maintenance codec.
const (
	maxComponentAgeYears = 25.0
	maxOperatingHours    = 100000.0
	maxHoursSinceService = 8760.0
	maxVibrationMMS      = 10.0
	maxComponentTempC    = 120.0
	maxOilPressureBar    = 10.0
	maxFailureCount      = 10.0
)

// Output post-processing thresholds and spans.
const (
	emergencyThreshold  = 0.9
	correctiveThreshold = 0.6
	failureRiskFloor    = 0.8 // PredictedFailure is only set above this
	upkeepCostSpan      = 0.5 // ±25% around the base table
	minLeadDays         = 7.0
	lifeSafetyFactor    = 1.2
)

// defaultIntervalDays is the class-society style service interval used when a
// component carries no maintenance history.
var defaultIntervalDays = map[model.ComponentType]float64{
	model.ComponentEngine:     180,
	model.ComponentPropulsion: 240,
	model.ComponentNavigation: 365,
	model.ComponentElectrical: 300,
	model.ComponentHull:       730,
	model.ComponentAuxiliary:  200,
}

// Base cost (USD) and downtime (hours) per component class, indexed by
// maintenance type.
var (
	baseCostUSD = map[model.ComponentType][3]float64{
		model.ComponentEngine:     {15000, 45000, 120000},
		model.ComponentPropulsion: {12000, 36000, 90000},
		model.ComponentNavigation: {3000, 9000, 20000},
		model.ComponentElectrical: {4000, 12000, 30000},
		model.ComponentHull:       {20000, 60000, 150000},
		model.ComponentAuxiliary:  {5000, 15000, 40000},
	}
	baseDowntimeH = map[model.ComponentType][3]float64{
		model.ComponentEngine:     {24, 72, 168},
		model.ComponentPropulsion: {24, 96, 240},
		model.ComponentNavigation: {4, 12, 48},
		model.ComponentElectrical: {8, 24, 72},
		model.ComponentHull:       {48, 168, 504},
		model.ComponentAuxiliary:  {12, 36, 96},
	}
)

// maintenanceCodec turns a maintenance request into the model's twelve
// features. Sensor history trends are shifted from [-1,1] into [0,1] so 0.5
// means flat. Missing histories default to a flat trend and are reported as
// warnings rather than rejected.
type maintenanceCodec struct{}

func (maintenanceCodec) Encode(req *model.MaintenanceRequest) ([]float64, []string) {
	var warnings []string
	if len(req.VibrationHistory) == 0 {
		warnings = append(warnings, "vibration_history empty, trend defaults to flat")
	}
	if len(req.TemperatureHistory) == 0 {
		warnings = append(warnings, "temperature_history empty, trend defaults to flat")
	}
	vec := []float64{
		float64(req.ComponentType) / (model.ComponentTypeCount - 1),
		norm(req.AgeYears, maxComponentAgeYears),
		norm(req.OperatingHours, maxOperatingHours),
		norm(req.HoursSinceService, maxHoursSinceService),
		clamp01(req.AvgLoadFactor),
		norm(req.VibrationMMS, maxVibrationMMS),
		norm(req.TempC, maxComponentTempC),
		norm(req.OilPressureBar, maxOilPressureBar),
		norm(req.OilQualityPct, 100),
		norm(req.FailureCount, maxFailureCount),
		(seriesTrend(req.VibrationHistory) + 1) / 2,
		(seriesTrend(req.TemperatureHistory) + 1) / 2,
	}
	return vec, warnings
}

// baselineLifeDays estimates the remaining-life scale from past maintenance
// intervals, padded by a safety factor. Components without history fall back
// to the per-class default interval.
func baselineLifeDays(req *model.MaintenanceRequest) float64 {
	interval := defaultIntervalDays[req.ComponentType]
	if len(req.MaintenanceIntervalsDays) > 0 {
		interval = mean(req.MaintenanceIntervalsDays)
	}
	return interval * lifeSafetyFactor
}

// maintenanceTypeFor escalates monotonically with risk and urgency.
func maintenanceTypeFor(risk, urgency float64) model.MaintenanceType {
	switch {
	case risk > emergencyThreshold || urgency > emergencyThreshold:
		return model.MaintenanceEmergency
	case risk > correctiveThreshold:
		return model.MaintenanceCorrective
	default:
		return model.MaintenancePreventive
	}
}

// buildMaintenanceOutlook derives the full outlook from the raw output
// vector [risk, urgency, cost correction, downtime correction].
func buildMaintenanceOutlook(req *model.MaintenanceRequest, out *Outcome) *model.MaintenanceOutlook {
	risk := clamp01(out.Raw[0])
	urgency := clamp01(out.Raw[1])
	mtype := maintenanceTypeFor(risk, urgency)

	daysToFailure := baselineLifeDays(req) * (1 - urgency)
	var predictedFailure *time.Time
	if risk > failureRiskFloor {
		t := out.GeneratedAt.Add(time.Duration(daysToFailure * 24 * float64(time.Hour)))
		predictedFailure = &t
	}
	leadDays := math.Max(minLeadDays, 0.7*daysToFailure)

	cost := baseCostUSD[req.ComponentType][mtype] * (1 + (out.Raw[2]-0.5)*upkeepCostSpan)
	downtime := baseDowntimeH[req.ComponentType][mtype] * (1 + (out.Raw[3]-0.5)*upkeepCostSpan)

	return &model.MaintenanceOutlook{
		VesselID:           req.VesselID,
		ComponentID:        req.ComponentID,
		ComponentType:      req.ComponentType,
		RiskScore:          risk,
		PredictedFailure:   predictedFailure,
		RecommendedDate:    out.GeneratedAt.Add(time.Duration(leadDays * 24 * float64(time.Hour))),
		MaintenanceType:    mtype,
		EstimatedCost:      cost,
		EstimatedDowntimeH: downtime,
		Factors:            maintenanceFactors(req),
		Recommendations:    maintenanceRecommendations(req, risk),
		Confidence:         out.Confidence,
		ModelVersion:       out.ModelVersion,
		GeneratedAt:        out.GeneratedAt,
	}
}

// maintenanceFactors breaks the assessment into five formula-derived
// sub-scores. Like the fuel impact factors they stay independent of the
// network for explainability.
func maintenanceFactors(req *model.MaintenanceRequest) model.MaintenanceFactors {
	vibTrend := seriesTrend(req.VibrationHistory)
	tempTrend := seriesTrend(req.TemperatureHistory)
	return model.MaintenanceFactors{
		Age: norm(req.AgeYears, maxComponentAgeYears),
		Usage: clamp01(0.6*norm(req.OperatingHours, maxOperatingHours) +
			0.4*norm(req.HoursSinceService, maxHoursSinceService)),
		Condition: clamp01(0.4*norm(req.VibrationMMS, maxVibrationMMS) +
			0.3*clamp01((req.TempC-60)/60) +
			0.3*(1-norm(req.OilQualityPct, 100))),
		History: norm(req.FailureCount, maxFailureCount),
		Sensor:  clamp01(0.5*math.Max(0, vibTrend) + 0.5*math.Max(0, tempTrend)),
	}
}

// maintenanceRecommendations applies fixed threshold rules over the raw
// readings. The risk score only contributes the immediate-inspection rule.
func maintenanceRecommendations(req *model.MaintenanceRequest, risk float64) []string {
	var recs []string
	if req.VibrationMMS > 7 {
		recs = append(recs, "Schedule shaft alignment and bearing inspection")
	}
	if req.TempC > 95 {
		recs = append(recs, "Inspect cooling circuit and heat exchangers")
	}
	if req.OilQualityPct < 40 {
		recs = append(recs, "Replace lubrication oil and filters")
	}
	if req.HoursSinceService > defaultIntervalDays[req.ComponentType]*24 {
		recs = append(recs, fmt.Sprintf("Service overdue, last one %.0f hours ago", req.HoursSinceService))
	}
	if risk > failureRiskFloor {
		recs = append(recs, "Carry out detailed condition inspection immediately")
	}
	if len(recs) == 0 {
		recs = append(recs, "No action required before the recommended date")
	}
	return recs
}

// GenerateMaintenanceSamples synthesizes training pairs for the maintenance
// model. Wear, sensor condition and failure history drive the risk target;
// urgency follows risk plus time since service.
func GenerateMaintenanceSamples(n int, rng *rand.Rand) TrainingSet {
	in := make([][]float64, n)
	out := make([][]float64, n)
	for i := 0; i < n; i++ {
		fail := rng.Float64()
		f := []float64{
			float64(rng.Intn(model.ComponentTypeCount)) / (model.ComponentTypeCount - 1),
			rng.Float64(),           // age
			rng.Float64(),           // operating hours
			rng.Float64(),           // hours since service
			0.2 + rng.Float64()*0.8, // load factor
			rng.Float64(),           // vibration
			0.2 + rng.Float64()*0.7, // temperature
			0.1 + rng.Float64()*0.8, // oil pressure
			0.1 + rng.Float64()*0.9, // oil quality
			fail * fail,             // failures skew low
			rng.Float64(),           // vibration trend
			rng.Float64(),           // temperature trend
		}
		wear := clamp01(0.3*f[1] + 0.25*f[2] + 0.2*f[3])
		condition := clamp01(0.35*f[5] + 0.5*math.Max(0, f[6]-0.5) + 0.25*(1-f[8]) + 0.15*(1-f[7]))
		sensor := clamp01(0.6*math.Max(0, 2*f[10]-1) + 0.4*math.Max(0, 2*f[11]-1))
		risk := clamp01(0.35*wear + 0.35*condition + 0.15*f[9] + 0.15*sensor)
		in[i] = f
		out[i] = []float64{
			risk,
			clamp01(0.6*risk + 0.3*f[3] + 0.1*sensor),
			clamp01(0.4 + 0.4*risk),
			clamp01(0.35 + 0.5*risk),
		}
	}
	return TrainingSet{Inputs: in, Targets: out}
}
