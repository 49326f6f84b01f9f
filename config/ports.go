package config

import (
	"fmt"

	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/core/registry"
)

// PortConfig describes one physical port.
type PortConfig struct {
	ID            string   `json:"id" yaml:"id"`
	RefuelCapable bool     `json:"refuel_capable" yaml:"refuel_capable"`
	CanDock       []string `json:"can_dock" yaml:"can_dock"`
}

// PortsConfig lists the ports of the facility in priority order.
type PortsConfig []PortConfig

// SetDefaults fills the built-in A1/A2/B1 layout when no port is configured.
func (c *PortsConfig) SetDefaults() {
	if len(*c) > 0 {
		return
	}
	for _, p := range registry.DefaultPorts() {
		pc := PortConfig{ID: p.ID.String(), RefuelCapable: p.RefuelCapable}
		for _, t := range p.CanDock {
			pc.CanDock = append(pc.CanDock, t.String())
		}
		*c = append(*c, pc)
	}
}

// Model converts the configuration to registry ports.
func (c PortsConfig) Model() []model.Port {
	out := make([]model.Port, 0, len(c))
	for _, pc := range c {
		p := model.Port{ID: model.PortID(pc.ID), RefuelCapable: pc.RefuelCapable}
		for _, t := range pc.CanDock {
			p.CanDock = append(p.CanDock, model.PortID(t))
		}
		out = append(out, p)
	}
	return out
}

// Registry builds the immutable port registry.
func (c PortsConfig) Registry() (*registry.Registry, error) {
	return registry.New(c.Model())
}

// Validate checks that the ports form a valid registry.
func (c PortsConfig) Validate() error {
	if _, err := c.Registry(); err != nil {
		return fmt.Errorf("ports: %w", err)
	}
	return nil
}
