package metrics

import "github.com/kilianp07/dockyard/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddr is the listen address of the /metrics endpoint. Empty
	// disables the endpoint.
	PrometheusAddr string `json:"prometheus_addr"`
	// Async records sinks from the event bus instead of inline with each
	// decision.
	Async bool `json:"async"`
	// BusBuffer is the per-subscriber event bus capacity.
	BusBuffer int `json:"bus_buffer"`
}
