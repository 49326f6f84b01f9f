package metrics

import (
	"sort"

	"github.com/kilianp07/dockyard/core/events"
)

// DecisionFromEvent converts a bus event into the sink representation.
func DecisionFromEvent(e events.DecisionEvent) Decision {
	d := Decision{
		DecisionID:        e.DecisionID,
		MissionID:         e.Request.MissionID,
		RequestedPort:     e.Request.RequestedPort,
		AssignedPort:      e.Result.AssignedPort,
		Status:            e.Result.Status,
		Reason:            e.Result.Reason,
		RefuelingRequired: e.Request.RefuelingRequired,
		Start:             e.Start,
		End:               e.End,
		Latency:           e.Latency,
		Time:              e.Time,
	}
	if e.Err != nil {
		d.Error = e.Err.Error()
	}
	return d
}

// OccupancyFromEvent returns the per-port mission counts of e sorted by port.
func OccupancyFromEvent(e events.DecisionEvent) []PortOccupancy {
	if len(e.Occupancy) == 0 {
		return nil
	}
	out := make([]PortOccupancy, 0, len(e.Occupancy))
	for p, n := range e.Occupancy {
		out = append(out, PortOccupancy{Port: p, Missions: n, Time: e.Time})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Port < out[j].Port })
	return out
}

// Record writes the decision event to sink, including occupancy when the
// sink supports it.
func Record(sink MetricsSink, e events.DecisionEvent) error {
	if sink == nil {
		return nil
	}
	err := sink.RecordDecision(DecisionFromEvent(e))
	if occ := OccupancyFromEvent(e); len(occ) > 0 {
		if r, ok := sink.(OccupancyRecorder); ok {
			if oerr := r.RecordOccupancy(occ); err == nil {
				err = oerr
			}
		}
	}
	return err
}

// RecordClear writes the clear event to sink when it supports it.
func RecordClear(sink MetricsSink, e events.ClearEvent) error {
	r, ok := sink.(ClearRecorder)
	if !ok {
		return nil
	}
	return r.RecordScheduleClear(ScheduleClearEvent{Removed: e.Removed, Time: e.Time})
}
