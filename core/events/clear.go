package events

import "time"

// ClearEvent is emitted after the schedule has been reset.
type ClearEvent struct {
	Removed int
	Time    time.Time
}
