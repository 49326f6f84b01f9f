package events

import (
	"time"

	"github.com/kilianp07/dockyard/core/model"
)

// DecisionEvent is published once per processed request. Err is set when the
// request was refused as invalid input; Result is then the zero value.
type DecisionEvent struct {
	DecisionID string
	Request    model.DockingRequest
	Result     model.AllocationResult
	Err        error
	// Start and End are the parsed window, zero when parsing failed.
	Start   time.Time
	End     time.Time
	Latency time.Duration
	// Occupancy holds the mission count per port after an accepted request.
	Occupancy map[model.PortID]int
	Time      time.Time
}
