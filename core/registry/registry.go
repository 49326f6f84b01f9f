// Package registry holds the static docking port configuration: which ports
// exist, which of them can refuel, and which physical ports may satisfy a
// request for a given port.
package registry

import (
	"fmt"

	"github.com/kilianp07/dockyard/core/model"
)

// Registry is an immutable lookup table of ports. It is safe for concurrent
// use because it is never mutated after New returns.
type Registry struct {
	order []model.PortID
	ports map[model.PortID]model.Port
}

// New validates the port definitions and builds a Registry. A port missing
// from the front of its own CanDock list is prepended.
func New(ports []model.Port) (*Registry, error) {
	if len(ports) == 0 {
		return nil, fmt.Errorf("registry: at least one port is required")
	}
	r := &Registry{
		order: make([]model.PortID, 0, len(ports)),
		ports: make(map[model.PortID]model.Port, len(ports)),
	}
	for _, p := range ports {
		if p.ID == "" {
			return nil, fmt.Errorf("registry: empty port id")
		}
		if _, dup := r.ports[p.ID]; dup {
			return nil, fmt.Errorf("registry: duplicate port %s", p.ID)
		}
		r.order = append(r.order, p.ID)
		r.ports[p.ID] = model.Port{ID: p.ID, RefuelCapable: p.RefuelCapable}
	}
	for _, p := range ports {
		targets, err := r.normalizeTargets(p)
		if err != nil {
			return nil, err
		}
		entry := r.ports[p.ID]
		entry.CanDock = targets
		r.ports[p.ID] = entry
	}
	return r, nil
}

func (r *Registry) normalizeTargets(p model.Port) ([]model.PortID, error) {
	targets := make([]model.PortID, 0, len(p.CanDock)+1)
	seen := map[model.PortID]bool{}
	if len(p.CanDock) == 0 || p.CanDock[0] != p.ID {
		targets = append(targets, p.ID)
		seen[p.ID] = true
	}
	for _, t := range p.CanDock {
		if _, ok := r.ports[t]; !ok {
			return nil, fmt.Errorf("registry: port %s lists %w %s", p.ID, model.ErrUnknownPort, t)
		}
		if seen[t] {
			return nil, fmt.Errorf("registry: port %s lists %s twice", p.ID, t)
		}
		seen[t] = true
		targets = append(targets, t)
	}
	return targets, nil
}

// Default returns the station layout used when no ports are configured:
// A1 refuels and overflows to B1, A2 overflows to B1, B1 stands alone.
func Default() *Registry {
	r, err := New(DefaultPorts())
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultPorts returns the port definitions backing Default.
func DefaultPorts() []model.Port {
	return []model.Port{
		{ID: "A1", RefuelCapable: true, CanDock: []model.PortID{"A1", "B1"}},
		{ID: "A2", RefuelCapable: false, CanDock: []model.PortID{"A2", "B1"}},
		{ID: "B1", RefuelCapable: false, CanDock: []model.PortID{"B1"}},
	}
}

// Capability returns the static attributes of the port.
func (r *Registry) Capability(id model.PortID) (model.Port, error) {
	p, ok := r.ports[id]
	if !ok {
		return model.Port{}, fmt.Errorf("%w: %q", model.ErrUnknownPort, id)
	}
	p.CanDock = append([]model.PortID(nil), p.CanDock...)
	return p, nil
}

// CompatibleTargets returns, in priority order, the ports that may satisfy a
// request for id.
func (r *Registry) CompatibleTargets(id model.PortID) ([]model.PortID, error) {
	p, err := r.Capability(id)
	if err != nil {
		return nil, err
	}
	return p.CanDock, nil
}

// Has reports whether id is a configured port.
func (r *Registry) Has(id model.PortID) bool {
	_, ok := r.ports[id]
	return ok
}

// Ports returns the configured port identifiers in definition order.
func (r *Registry) Ports() []model.PortID {
	return append([]model.PortID(nil), r.order...)
}
