package metrics

import (
	"time"

	"github.com/kilianp07/dockyard/core/model"
)

// Decision is one processed docking request as seen by metrics sinks.
type Decision struct {
	DecisionID        string
	MissionID         string
	RequestedPort     model.PortID
	AssignedPort      model.PortID
	Status            model.Status
	Reason            model.Reason
	Error             string // set when the request failed validation
	RefuelingRequired bool
	Start             time.Time
	End               time.Time
	Latency           time.Duration
	Time              time.Time
}

// Failed reports whether the decision was a validation failure.
func (d Decision) Failed() bool { return d.Error != "" }

// Outcome returns the status label, "error" for validation failures.
func (d Decision) Outcome() string {
	if d.Failed() {
		return "error"
	}
	return string(d.Status)
}

// MetricsSink records docking decisions for observability purposes.
type MetricsSink interface {
	RecordDecision(d Decision) error
}

// PortOccupancy is the number of committed missions on a port.
type PortOccupancy struct {
	Port     model.PortID
	Missions int
	Time     time.Time
}

// OccupancyRecorder is implemented by sinks tracking schedule occupancy.
type OccupancyRecorder interface {
	RecordOccupancy(occ []PortOccupancy) error
}

// ScheduleClearEvent describes a reset of the whole schedule.
type ScheduleClearEvent struct {
	Removed int
	Time    time.Time
}

// ClearRecorder is implemented by sinks recording schedule resets.
type ClearRecorder interface {
	RecordScheduleClear(ev ScheduleClearEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordDecision(Decision) error                { return nil }
func (NopSink) RecordOccupancy([]PortOccupancy) error        { return nil }
func (NopSink) RecordScheduleClear(ScheduleClearEvent) error { return nil }
