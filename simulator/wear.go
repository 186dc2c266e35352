package main

import (
	"math"
	"math/rand"
	"sync"

	"github.com/shipmind-ai/shipmind/core/model"
)

// Wear rates per simulated operating hour.
const (
	vibrationDriftPerKh = 0.35 // mm/s RMS added per 1000 h since service
	oilDecayPerKh       = 4.0  // oil quality percent lost per 1000 h
	serviceIntervalH    = 4000
	historyCap          = 24
)

// ComponentWear ages one shipboard component and drifts its sensor readings.
// State always stays inside the ranges the prediction service accepts.
type ComponentWear struct {
	State    model.MaintenanceRequest
	BaseTemp float64
	BaseOil  float64
	BaseVib  float64

	mu sync.Mutex
}

// Advance runs the component for the given number of operating hours and
// returns a copy of the updated state.
func (c *ComponentWear) Advance(rng *rand.Rand, hours float64) model.MaintenanceRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := &c.State
	load := clamp(s.AvgLoadFactor+rng.NormFloat64()*0.05, 0.1, 1)
	s.AvgLoadFactor = load
	s.OperatingHours = clamp(s.OperatingHours+hours*load, 0, 500000)
	s.HoursSinceService = clamp(s.HoursSinceService+hours*load, 0, 100000)
	s.AgeYears = clamp(s.AgeYears+hours/8760, 0, 60)

	wear := s.HoursSinceService / 1000
	s.VibrationMMS = clamp(c.BaseVib+wear*vibrationDriftPerKh+rng.NormFloat64()*0.2, 0, 50)
	s.TempC = clamp(c.BaseTemp+load*12+wear*0.8+rng.NormFloat64()*1.5, -50, 250)
	s.OilQualityPct = clamp(100-wear*oilDecayPerKh, 0, 100)
	// Pressure sags as the oil degrades.
	s.OilPressureBar = clamp(c.BaseOil*(0.7+0.3*s.OilQualityPct/100), 0, 30)

	if s.VibrationMMS > 12 && rng.Float64() < 0.02 {
		s.FailureCount = clamp(s.FailureCount+1, 0, 100)
	}
	if s.HoursSinceService >= serviceIntervalH {
		c.service(s)
	}

	s.VibrationHistory = appendCapped(s.VibrationHistory, round1(s.VibrationMMS))
	s.TemperatureHistory = appendCapped(s.TemperatureHistory, round1(s.TempC))
	return *s
}

// service models a completed maintenance stop.
func (c *ComponentWear) service(s *model.MaintenanceRequest) {
	s.MaintenanceIntervalsDays = appendCapped(s.MaintenanceIntervalsDays, round1(s.HoursSinceService/24))
	s.HoursSinceService = 0
	s.OilQualityPct = 100
	s.OilPressureBar = c.BaseOil
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCap {
		h = h[len(h)-historyCap:]
	}
	return h
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
