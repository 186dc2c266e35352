package events

import "time"

// FleetHealthEvent is published after a fleet analysis cycle.
type FleetHealthEvent struct {
	Score      float64
	Trend      string
	Components int
	Failed     int
	Critical   int
	Time       time.Time
}
