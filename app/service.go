// Package app wires the docking allocator to its transports and sinks.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/dockyard/app/plugins"
	"github.com/kilianp07/dockyard/config"
	"github.com/kilianp07/dockyard/core/docking"
	coremetrics "github.com/kilianp07/dockyard/core/metrics"
	coremon "github.com/kilianp07/dockyard/core/monitoring"
	"github.com/kilianp07/dockyard/core/schedule"
	"github.com/kilianp07/dockyard/infra/logger"
	"github.com/kilianp07/dockyard/infra/metrics"
	"github.com/kilianp07/dockyard/infra/monitoring"
	"github.com/kilianp07/dockyard/infra/mqtt"
	"github.com/kilianp07/dockyard/internal/eventbus"
)

// Service orchestrates the allocator, the MQTT intake and the metrics endpoint.
type Service struct {
	Allocator *docking.Allocator
	Intake    *mqtt.Intake

	bus      *eventbus.Bus
	sink     coremetrics.MetricsSink
	async    bool
	log      logger.Logger
	promAddr string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	alloc, bus, sink, err := NewAllocator(cfg)
	if err != nil {
		return nil, err
	}
	svc := &Service{
		Allocator: alloc,
		bus:       bus,
		sink:      sink,
		async:     cfg.Metrics.Async,
		log:       logg,
		promAddr:  cfg.Metrics.PrometheusAddr,
	}
	if cfg.MQTT.Enabled() {
		in, err := mqtt.NewIntake(cfg.MQTT, alloc, logger.New("mqtt_intake"))
		if err != nil {
			_ = alloc.Close()
			return nil, fmt.Errorf("mqtt intake: %w", err)
		}
		svc.Intake = in
	}
	return svc, nil
}

// NewAllocator builds the allocator with its registry, metrics sink, event
// bus and decision log from the configuration. With metrics.async set, the
// returned sink is fed by the bus instead of by the allocator.
func NewAllocator(cfg *config.Config) (*docking.Allocator, *eventbus.Bus, coremetrics.MetricsSink, error) {
	reg, err := cfg.Ports.Registry()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("ports: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("metrics sink: %w", err)
	}
	bus := eventbus.New()
	if cfg.Metrics.BusBuffer > 0 {
		bus = eventbus.NewWithBuffer(cfg.Metrics.BusBuffer)
	}
	inline := sink
	if cfg.Metrics.Async {
		inline = coremetrics.NopSink{}
	}
	alloc, err := docking.NewAllocator(reg, schedule.NewMemoryStore(reg.Ports()), inline, bus, logger.New("allocator"))
	if err != nil {
		return nil, nil, nil, err
	}
	store, err := plugins.NewLogStore(cfg.Logging)
	if err != nil {
		_ = alloc.Close()
		return nil, nil, nil, fmt.Errorf("decision log: %w", err)
	}
	if store != nil {
		alloc.SetLogStore(store)
	}
	return alloc, bus, sink, nil
}

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.async {
		metrics.StartEventCollector(ctx, s.bus, s.sink, logger.New("event_collector"))
	}
	if s.promAddr != "" {
		go func() {
			defer coremon.Recover()
			if err := metrics.StartPromServer(ctx, s.promAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
				coremon.CaptureException(err, map[string]string{"module": "metrics"})
			}
		}()
	}
	if s.Intake != nil {
		if err := s.Intake.Start(ctx); err != nil {
			coremon.CaptureException(err, map[string]string{"module": "mqtt"})
			return fmt.Errorf("mqtt intake: %w", err)
		}
		defer s.Intake.Stop()
	}
	s.log.Infof("dockyard ready, ports %v", s.Allocator.Registry().Ports())
	<-ctx.Done()
	s.log.Infof("shutting down")
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	err := s.Allocator.Close()
	coremon.Flush(2 * time.Second)
	return err
}
