// Package metrics defines the sinks that observe docking decisions. Sinks
// such as PromSink and InfluxSink live in infra/metrics and register
// themselves with the factory; several sinks are combined with NewMultiSink.
package metrics
