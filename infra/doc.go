// Package infra holds the dockyard adapters: the MQTT intake, the metrics
// sinks, zerolog logging and sentry monitoring. They implement interfaces
// owned by the core packages and never the other way round.
package infra
