package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/dockyard/core/metrics"
)

// PromSink records docking decisions in Prometheus metrics.
type PromSink struct {
	decisions *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	occupancy *prometheus.GaugeVec
	clears    prometheus.Counter
	removed   prometheus.Counter
}

// NewPromSink registers the sink metrics on the default Prometheus registerer.
// The HTTP endpoint is served separately by StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered under the same name are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dockyard_decisions_total",
		Help: "Docking decisions by requested port, assigned port and outcome",
	}, []string{"requested_port", "assigned_port", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dockyard_decision_duration_seconds",
		Help:    "Time between request intake and decision",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	}, []string{"outcome"})
	occupancy := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dockyard_port_occupancy",
		Help: "Missions committed per port",
	}, []string{"port"})
	clears := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dockyard_schedule_clears_total",
		Help: "Number of schedule resets",
	})
	removed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dockyard_schedule_cleared_missions_total",
		Help: "Missions removed by schedule resets",
	})

	var err error
	if decisions, err = register(reg, decisions); err != nil {
		return nil, err
	}
	if latency, err = register(reg, latency); err != nil {
		return nil, err
	}
	if occupancy, err = register(reg, occupancy); err != nil {
		return nil, err
	}
	if clears, err = register(reg, clears); err != nil {
		return nil, err
	}
	if removed, err = register(reg, removed); err != nil {
		return nil, err
	}
	return &PromSink{decisions: decisions, latency: latency, occupancy: occupancy, clears: clears, removed: removed}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordDecision counts the decision and observes its latency.
func (s *PromSink) RecordDecision(d coremetrics.Decision) error {
	s.decisions.WithLabelValues(d.RequestedPort.String(), d.AssignedPort.String(), d.Outcome()).Inc()
	s.latency.WithLabelValues(d.Outcome()).Observe(d.Latency.Seconds())
	return nil
}

// RecordOccupancy sets the per-port gauge.
func (s *PromSink) RecordOccupancy(occ []coremetrics.PortOccupancy) error {
	for _, o := range occ {
		s.occupancy.WithLabelValues(o.Port.String()).Set(float64(o.Missions))
	}
	return nil
}

// RecordScheduleClear counts the reset and zeroes the occupancy gauge.
func (s *PromSink) RecordScheduleClear(ev coremetrics.ScheduleClearEvent) error {
	s.clears.Inc()
	s.removed.Add(float64(ev.Removed))
	s.occupancy.Reset()
	return nil
}
