// Package monitoring forwards unexpected failures to an error tracker.
package monitoring

import (
	"sync"
	"time"

	"github.com/kilianp07/dockyard/core/model"
)

// Monitor defines methods used for error reporting.
type Monitor interface {
	CaptureException(err error, tags map[string]string)
	Recover()
	Flush(timeout time.Duration)
}

type NopMonitor struct{}

func (NopMonitor) CaptureException(error, map[string]string) {}
func (NopMonitor) Recover()                                  {}
func (NopMonitor) Flush(time.Duration)                       {}

var (
	mu      sync.RWMutex
	current Monitor = NopMonitor{}
)

// Init sets the global monitor implementation. A nil monitor is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	mu.Lock()
	current = m
	mu.Unlock()
}

func get() Monitor {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// CaptureException records the error with optional tags.
func CaptureException(err error, tags map[string]string) {
	if err == nil {
		return
	}
	get().CaptureException(err, tags)
}

// CaptureRequestError records err tagged with the request's mission and port.
func CaptureRequestError(err error, component string, req model.DockingRequest) {
	CaptureException(err, map[string]string{
		"component":      component,
		"mission_id":     req.MissionID,
		"requested_port": req.RequestedPort.String(),
	})
}

// Recover captures panics in goroutines.
func Recover() {
	get().Recover()
}

// Flush flushes buffered events.
func Flush(d time.Duration) {
	get().Flush(d)
}
