package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/shipmind-ai/shipmind/core/model"
)

var fleetRng = rand.New(rand.NewSource(time.Now().UnixNano()))

// FleetConfig holds parameters for bulk fleet generation.
type FleetConfig struct {
	Size    int
	MeanAge float64
}

// VesselTemplate allows overriding generated vessels.
type VesselTemplate struct {
	AgeYears       float64 `json:"age_years"`
	OperatingHours float64 `json:"operating_hours"`
}

// componentBlueprint seeds one component class carried by every vessel.
type componentBlueprint struct {
	id       string
	ctype    model.ComponentType
	baseTemp float64
	baseOil  float64
	baseVib  float64
	baseLoad float64
}

var blueprints = []componentBlueprint{
	{"main_engine", model.ComponentEngine, 82, 4.5, 2.8, 0.72},
	{"aux_engine", model.ComponentAuxiliary, 74, 3.8, 2.2, 0.45},
	{"propeller_shaft", model.ComponentPropulsion, 52, 2.4, 3.5, 0.68},
	{"main_generator", model.ComponentElectrical, 64, 3.1, 1.8, 0.55},
	{"radar_array", model.ComponentNavigation, 38, 0.5, 0.6, 0.35},
}

// GenerateFleet creates Size vessels with IDs mv0001..mvNNNN, each carrying
// one component per blueprint with a randomized service history.
func GenerateFleet(cfg FleetConfig, tmpl map[string]VesselTemplate) []SimulatedVessel {
	if cfg.Size <= 0 {
		return nil
	}
	vs := make([]SimulatedVessel, cfg.Size)
	for i := 0; i < cfg.Size; i++ {
		id := fmt.Sprintf("mv%04d", i+1)
		age := cfg.MeanAge + fleetRng.NormFloat64()*3
		if age < 0.5 {
			age = 0.5
		}
		hours := age * 6000 * (0.8 + fleetRng.Float64()*0.4)
		if t, ok := tmpl[id]; ok {
			if t.AgeYears > 0 {
				age = t.AgeYears
			}
			if t.OperatingHours > 0 {
				hours = t.OperatingHours
			}
		}
		comps := make([]*ComponentWear, len(blueprints))
		for j, bp := range blueprints {
			comps[j] = &ComponentWear{
				State: model.MaintenanceRequest{
					VesselID:          id,
					ComponentID:       bp.id,
					ComponentType:     bp.ctype,
					AgeYears:          age,
					OperatingHours:    hours,
					HoursSinceService: fleetRng.Float64() * serviceIntervalH,
					AvgLoadFactor:     bp.baseLoad,
					VibrationMMS:      bp.baseVib,
					TempC:             bp.baseTemp,
					OilPressureBar:    bp.baseOil,
					OilQualityPct:     70 + fleetRng.Float64()*30,
					FailureCount:      float64(fleetRng.Intn(3)),
				},
				BaseTemp: bp.baseTemp,
				BaseOil:  bp.baseOil,
				BaseVib:  bp.baseVib,
			}
		}
		vs[i] = SimulatedVessel{ID: id, Components: comps}
	}
	return vs
}

// LoadVesselTemplates reads per-vessel overrides from JSON.
func LoadVesselTemplates(data []byte) (map[string]VesselTemplate, error) {
	var m map[string]VesselTemplate
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
