package scheduler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shipmind-ai/shipmind/core/model"
)

// PortCallWindow represents a period during which a vessel is alongside and
// can take a component out of service.
type PortCallWindow struct {
	Start time.Time
	End   time.Time
}

// SchedulerConfig defines planning parameters loaded from configuration.
type SchedulerConfig struct {
	HorizonDays   int `json:"horizon_days" yaml:"horizon_days"`
	MaxJobsPerDay int `json:"max_jobs_per_day" yaml:"max_jobs_per_day"`
}

// Scheduler turns maintenance outlooks into a dated work plan.
type Scheduler struct {
	Config    SchedulerConfig
	Outlooks  []model.MaintenanceOutlook
	PortCalls map[string][]PortCallWindow
}

// GeneratePlan builds a work plan starting at the given day. Each job lands
// on the latest free day at or before its recommended date; past-due jobs and
// jobs whose due days are all taken fall forward to the earliest free day and
// are flagged overdue. Jobs recommended beyond the horizon are left for the
// next planning cycle. A job with no feasible day at all is an error.
func (s *Scheduler) GeneratePlan(from time.Time) ([]WorkOrder, error) {
	if s.Config.HorizonDays <= 0 {
		return nil, errors.New("horizon_days must be positive")
	}
	if s.Config.MaxJobsPerDay <= 0 {
		return nil, errors.New("max_jobs_per_day must be positive")
	}

	start := truncateDay(from)
	horizon := start.AddDate(0, 0, s.Config.HorizonDays)

	jobs := append([]model.MaintenanceOutlook(nil), s.Outlooks...)
	sort.SliceStable(jobs, func(i, j int) bool {
		if !jobs[i].RecommendedDate.Equal(jobs[j].RecommendedDate) {
			return jobs[i].RecommendedDate.Before(jobs[j].RecommendedDate)
		}
		return jobs[i].RiskScore > jobs[j].RiskScore
	})

	load := make(map[time.Time]int)
	orders := make([]WorkOrder, 0, len(jobs))
	for _, job := range jobs {
		if !job.RecommendedDate.Before(horizon) {
			continue
		}
		day, overdue, ok := s.placeJob(job, start, horizon, load)
		if !ok {
			return nil, fmt.Errorf("no capacity for %s/%s before %s",
				job.VesselID, job.ComponentID, horizon.Format("2006-01-02"))
		}
		load[day]++
		orders = append(orders, WorkOrder{
			VesselID:    job.VesselID,
			ComponentID: job.ComponentID,
			Date:        day,
			Type:        job.MaintenanceType,
			RiskScore:   job.RiskScore,
			CostUSD:     job.EstimatedCost,
			DowntimeH:   job.EstimatedDowntimeH,
			Overdue:     overdue,
		})
	}
	sort.SliceStable(orders, func(i, j int) bool { return orders[i].Date.Before(orders[j].Date) })
	return orders, nil
}

// placeJob picks a day for the job. It scans backward from the due day to the
// plan start, then forward past the due day up to the horizon.
func (s *Scheduler) placeJob(job model.MaintenanceOutlook, start, horizon time.Time, load map[time.Time]int) (time.Time, bool, bool) {
	due := truncateDay(job.RecommendedDate)
	if !due.Before(start) {
		for d := due; !d.Before(start); d = d.AddDate(0, 0, -1) {
			if s.dayFits(job.VesselID, d, load) {
				return d, false, true
			}
		}
	}
	next := start
	if due.After(start) {
		next = due.AddDate(0, 0, 1)
	}
	for d := next; d.Before(horizon); d = d.AddDate(0, 0, 1) {
		if s.dayFits(job.VesselID, d, load) {
			return d, true, true
		}
	}
	return time.Time{}, false, false
}

func (s *Scheduler) dayFits(vesselID string, day time.Time, load map[time.Time]int) bool {
	if load[day] >= s.Config.MaxJobsPerDay {
		return false
	}
	return s.vesselInPort(vesselID, day)
}

// vesselInPort reports whether a declared port call covers the whole day.
// Vessels without declared port calls can be worked on any day.
func (s *Scheduler) vesselInPort(id string, day time.Time) bool {
	windows := s.PortCalls[id]
	if len(windows) == 0 {
		return true
	}
	end := day.AddDate(0, 0, 1)
	for _, w := range windows {
		if !day.Before(w.Start) && !end.After(w.End) {
			return true
		}
	}
	return false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WorkOrder assigns one maintenance job to a calendar day.
type WorkOrder struct {
	VesselID    string                `json:"vessel_id"`
	ComponentID string                `json:"component_id"`
	Date        time.Time             `json:"date"`
	Type        model.MaintenanceType `json:"maintenance_type"`
	RiskScore   float64               `json:"risk_score"`
	CostUSD     float64               `json:"estimated_cost_usd"`
	DowntimeH   float64               `json:"estimated_downtime_h"`
	Overdue     bool                  `json:"overdue,omitempty"`
}
