// Package monitoring forwards unexpected errors from the prediction
// pipeline to an external tracker. Captures carry tags such as the model
// name or the MQTT topic so failures group by origin.
package monitoring

import "time"

// Monitor receives captured errors. Flush drains buffered captures and is
// called once on shutdown.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// NopMonitor swallows every capture. It is the active monitor until Init
// installs a real one.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Flush(time.Duration)                       {}

var current Monitor = NopMonitor{}

// Init installs the process-wide monitor. A nil monitor keeps the current
// one.
func Init(m Monitor) {
	if m != nil {
		current = m
	}
}

// CaptureException hands the error to the installed monitor. Tags may be
// nil.
func CaptureException(err error, tags map[string]string) {
	current.CaptureException(err, tags)
}

// Flush blocks until buffered captures are delivered or the timeout
// expires.
func Flush(d time.Duration) {
	current.Flush(d)
}
