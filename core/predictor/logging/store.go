// Package logging persists an audit trail of prediction requests and their
// outcomes. Stores share one record shape; backends cover plain JSONL files,
// size-rotated JSONL files and SQLite.
package logging

import (
	"context"
	"encoding/json"
	"time"
)

// LogRecord captures one prediction request and its outcome. Request and
// Response hold the raw JSON payloads so the record stays model-agnostic.
type LogRecord struct {
	Timestamp  time.Time       `json:"timestamp"`
	Model      string          `json:"model"`
	VesselID   string          `json:"vessel_id,omitempty"`
	Confidence float64         `json:"confidence"`
	DurationMS float64         `json:"duration_ms"`
	Success    bool            `json:"success"`
	Error      string          `json:"error,omitempty"`
	Request    json.RawMessage `json:"request,omitempty"`
	Response   json.RawMessage `json:"response,omitempty"`
}

// LogQuery defines filters for retrieving records. Zero values mean no
// filtering; Limit caps the number of returned records when positive.
type LogQuery struct {
	Start      time.Time
	End        time.Time
	Model      string
	VesselID   string
	FailedOnly bool
	Limit      int
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}

// matches reports whether the record passes every filter of q except Limit.
func matches(q LogQuery, r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Model != "" && r.Model != q.Model {
		return false
	}
	if q.VesselID != "" && r.VesselID != q.VesselID {
		return false
	}
	if q.FailedOnly && r.Success {
		return false
	}
	return true
}

func applyLimit(q LogQuery, res []LogRecord) []LogRecord {
	if q.Limit > 0 && len(res) > q.Limit {
		return res[:q.Limit]
	}
	return res
}
