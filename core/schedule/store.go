// Package schedule keeps the committed docking missions of every port.
package schedule

import (
	"fmt"
	"sync"

	"github.com/kilianp07/dockyard/core/model"
)

// PortView gives access to one port's missions while its exclusive scope is
// held. It must not be retained after the callback returns.
type PortView interface {
	Port() model.PortID
	Intervals() []model.Mission
	Commit(m model.Mission)
}

// Store is the mutable schedule shared by allocations.
type Store interface {
	IntervalsAt(port model.PortID) ([]model.Mission, error)
	Commit(port model.PortID, m model.Mission) error
	// WithPort runs fn with the port's check-then-commit scope held.
	WithPort(port model.PortID, fn func(PortView) error) error
	// ClearAll empties every port and reports how many missions were removed.
	ClearAll() int
	Snapshot() map[model.PortID][]model.Mission
}

type portSchedule struct {
	mu       sync.Mutex
	missions []model.Mission
}

// MemoryStore is an in-memory Store. Each port has its own mutex so that
// allocations on different ports proceed in parallel; the store-wide lock is
// only taken exclusively by ClearAll.
type MemoryStore struct {
	mu    sync.RWMutex
	order []model.PortID
	ports map[model.PortID]*portSchedule
}

// NewMemoryStore creates an empty schedule for the given ports.
func NewMemoryStore(ports []model.PortID) *MemoryStore {
	s := &MemoryStore{
		order: make([]model.PortID, 0, len(ports)),
		ports: make(map[model.PortID]*portSchedule, len(ports)),
	}
	for _, p := range ports {
		if _, ok := s.ports[p]; ok {
			continue
		}
		s.order = append(s.order, p)
		s.ports[p] = &portSchedule{}
	}
	return s
}

func (s *MemoryStore) lookup(port model.PortID) (*portSchedule, error) {
	ps, ok := s.ports[port]
	if !ok {
		return nil, fmt.Errorf("%w: %q", model.ErrUnknownPort, port)
	}
	return ps, nil
}

// IntervalsAt returns a copy of the port's missions in insertion order.
func (s *MemoryStore) IntervalsAt(port model.PortID) ([]model.Mission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.lookup(port)
	if err != nil {
		return nil, err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return append([]model.Mission(nil), ps.missions...), nil
}

// Commit appends m to the port without checking for conflicts.
func (s *MemoryStore) Commit(port model.PortID, m model.Mission) error {
	return s.WithPort(port, func(v PortView) error {
		v.Commit(m)
		return nil
	})
}

// WithPort holds the port's lock for the duration of fn. ClearAll cannot run
// while fn executes.
func (s *MemoryStore) WithPort(port model.PortID, fn func(PortView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ps, err := s.lookup(port)
	if err != nil {
		return err
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return fn(&portView{id: port, ps: ps})
}

// ClearAll removes every committed mission.
func (s *MemoryStore) ClearAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for _, ps := range s.ports {
		removed += len(ps.missions)
		ps.missions = nil
	}
	return removed
}

// Snapshot returns a copy of every port's missions. Ports without missions
// map to an empty slice. Each port is copied under its own lock, so a
// snapshot only waits for in-flight commits and never for ClearAll halfway.
func (s *MemoryStore) Snapshot() map[model.PortID][]model.Mission {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.PortID][]model.Mission, len(s.ports))
	for _, id := range s.order {
		ps := s.ports[id]
		ps.mu.Lock()
		out[id] = append([]model.Mission{}, ps.missions...)
		ps.mu.Unlock()
	}
	return out
}

// Ports returns the ports known to the store in creation order.
func (s *MemoryStore) Ports() []model.PortID {
	return append([]model.PortID(nil), s.order...)
}

type portView struct {
	id model.PortID
	ps *portSchedule
}

func (v *portView) Port() model.PortID { return v.id }

func (v *portView) Intervals() []model.Mission {
	return append([]model.Mission(nil), v.ps.missions...)
}

func (v *portView) Commit(m model.Mission) {
	v.ps.missions = append(v.ps.missions, m)
}
