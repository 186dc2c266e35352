package config

// TrainingConfig holds configuration for the periodic retraining job.
type TrainingConfig struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
}

func (c TrainingConfig) Interval() int {
	if c.IntervalMinutes <= 0 {
		return 360
	}
	return c.IntervalMinutes
}
