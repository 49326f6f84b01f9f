package model

import (
	"fmt"
	"strings"
	"time"
)

// DockingRequest is the normalized mission record handed to the allocator.
type DockingRequest struct {
	MissionID         string `json:"mission_id" yaml:"mission_id"`
	RequestedPort     PortID `json:"requested_port" yaml:"requested_port"`
	StartTime         string `json:"start_time" yaml:"start_time"`
	EndTime           string `json:"end_time" yaml:"end_time"`
	Team              string `json:"team" yaml:"team"`
	RefuelingRequired bool   `json:"refueling_required,omitempty" yaml:"refueling_required,omitempty"`
}

// Interval parses the start and end timestamps of the request. The window
// must be non-empty: start strictly before end.
func (r DockingRequest) Interval() (time.Time, time.Time, error) {
	start, err := ParseTimestamp(r.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start_time: %w", err)
	}
	end, err := ParseTimestamp(r.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end_time: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start %s is not before end %s",
			ErrMalformedInterval, FormatTimestamp(start), FormatTimestamp(end))
	}
	return start, end, nil
}

// Mission is a committed docking interval. The refueling flag and the
// requested port are not kept once a mission is committed.
type Mission struct {
	ID    string
	Start time.Time
	End   time.Time
	Team  string
}

// Overlaps reports whether the half-open windows [m.Start, m.End) and
// [start, end) intersect. Touching windows do not overlap.
func (m Mission) Overlaps(start, end time.Time) bool {
	return end.After(m.Start) && start.Before(m.End)
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp. A trailing "Z" is stripped
// and timestamps without offset are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	raw := strings.TrimSpace(s)
	raw = strings.TrimSuffix(strings.TrimSuffix(raw, "Z"), "z")
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty timestamp", ErrMalformedInterval)
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: cannot parse %q", ErrMalformedInterval, s)
}

// FormatTimestamp renders t as an ISO-8601 UTC timestamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
