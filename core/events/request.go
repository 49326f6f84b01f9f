package events

import (
	"time"

	"github.com/kilianp07/dockyard/core/model"
)

// RequestEvent is published when a docking request is received.
type RequestEvent struct {
	Request  model.DockingRequest
	Received time.Time
}
