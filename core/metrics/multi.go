package metrics

// MultiSink fans records out to several sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordDecision forwards the decision to all sinks, returning the first error.
// Every sink is attempted even when an earlier one fails.
func (m *MultiSink) RecordDecision(d Decision) error {
	var first error
	for _, s := range m.Sinks {
		if err := s.RecordDecision(d); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// RecordOccupancy forwards occupancy to sinks that support it.
func (m *MultiSink) RecordOccupancy(occ []PortOccupancy) error {
	var first error
	for _, s := range m.Sinks {
		if rec, ok := s.(OccupancyRecorder); ok {
			if err := rec.RecordOccupancy(occ); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// RecordScheduleClear forwards clear events to sinks that support it.
func (m *MultiSink) RecordScheduleClear(ev ScheduleClearEvent) error {
	var first error
	for _, s := range m.Sinks {
		if rec, ok := s.(ClearRecorder); ok {
			if err := rec.RecordScheduleClear(ev); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}
