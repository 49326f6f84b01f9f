// Package logging persists an audit trail of docking decisions.
package logging

import (
	"context"
	"time"

	"github.com/kilianp07/dockyard/core/model"
)

// Action names the operation a record describes.
type Action string

const (
	ActionAllocate Action = "allocate"
	ActionClear    Action = "clear"
)

// LogRecord captures one allocator operation and its outcome.
type LogRecord struct {
	ID        string                 `json:"id"`
	Timestamp time.Time              `json:"timestamp"`
	Action    Action                 `json:"action"`
	Request   model.DockingRequest   `json:"request,omitempty"`
	Result    model.AllocationResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	LatencyMS float64                `json:"latency_ms"`
}

// Outcome is the result status, "error" for refused input, or the action
// name for non-allocation records.
func (r LogRecord) Outcome() string {
	switch {
	case r.Action != ActionAllocate:
		return string(r.Action)
	case r.Error != "":
		return "error"
	default:
		return string(r.Result.Status)
	}
}

// LogQuery defines filters for retrieving records. Zero fields match all.
type LogQuery struct {
	Start     time.Time
	End       time.Time
	MissionID string
	// Port matches either the requested or the assigned port.
	Port model.PortID
	// Outcome matches LogRecord.Outcome, e.g. "accepted" or "error".
	Outcome string
}

// Match reports whether r satisfies every filter of q.
func (q LogQuery) Match(r LogRecord) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.MissionID != "" && r.Request.MissionID != q.MissionID {
		return false
	}
	if q.Port != "" && r.Request.RequestedPort != q.Port && r.Result.AssignedPort != q.Port {
		return false
	}
	if q.Outcome != "" && r.Outcome() != q.Outcome {
		return false
	}
	return true
}

// LogStore persists LogRecords and supports querying.
type LogStore interface {
	Append(ctx context.Context, rec LogRecord) error
	Query(ctx context.Context, q LogQuery) ([]LogRecord, error)
	Close() error
}
