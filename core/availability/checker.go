// Package availability answers whether a docking window is free on a port
// and whether a refueling requirement can be honored.
package availability

import (
	"time"

	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/core/registry"
	"github.com/kilianp07/dockyard/core/schedule"
)

// Overlaps reports whether the half-open windows [s1,e1) and [s2,e2) conflict.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return !(!e1.After(s2) || !s1.Before(e2))
}

// IsFree reports whether [start,end) conflicts with none of the intervals.
// An empty window (start equal to end) never conflicts.
func IsFree(intervals []model.Mission, start, end time.Time) bool {
	if start.Equal(end) {
		return true
	}
	for _, m := range intervals {
		if Overlaps(start, end, m.Start, m.End) {
			return false
		}
	}
	return true
}

// CanRefuel is true when refueling is not required, otherwise it reflects the
// requested port's capability.
func CanRefuel(reg *registry.Registry, requested model.PortID, required bool) (bool, error) {
	p, err := reg.Capability(requested)
	if err != nil {
		return false, err
	}
	if !required {
		return true, nil
	}
	return p.RefuelCapable, nil
}

// Checker evaluates availability against a schedule store.
type Checker struct {
	store schedule.Store
}

// NewChecker returns a Checker reading from store.
func NewChecker(store schedule.Store) *Checker {
	return &Checker{store: store}
}

// IsFree reports whether the port has no committed mission overlapping
// [start,end). The answer may be stale as soon as it is returned; use
// schedule.Store.WithPort to check and commit atomically.
func (c *Checker) IsFree(port model.PortID, start, end time.Time) (bool, error) {
	intervals, err := c.store.IntervalsAt(port)
	if err != nil {
		return false, err
	}
	return IsFree(intervals, start, end), nil
}
