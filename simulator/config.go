package main

import (
	"fmt"
	"time"
)

// Config collects the simulator command line parameters.
type Config struct {
	Broker      string
	Vessels     int
	Interval    time.Duration
	TickHours   float64
	TopicPrefix string
	MeanAge     float64

	TemplateFile string
	HealthEvery  time.Duration
	Seed         int64
	Verbose      bool

	InfluxURL    string
	InfluxToken  string
	InfluxOrg    string
	InfluxBucket string
}

// Validate rejects parameter combinations the simulator cannot run with.
func (c *Config) Validate() error {
	if c.Vessels <= 0 {
		return fmt.Errorf("vessels must be positive")
	}
	if c.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	if c.TickHours <= 0 {
		return fmt.Errorf("tick-hours must be positive")
	}
	if c.TopicPrefix == "" {
		return fmt.Errorf("topic-prefix is required")
	}
	if c.MeanAge < 0 || c.MeanAge > 60 {
		return fmt.Errorf("mean-age must be between 0 and 60")
	}
	return nil
}
