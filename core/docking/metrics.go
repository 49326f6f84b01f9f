package docking

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestsTotal   *prometheus.CounterVec
	rejectionsTotal *prometheus.CounterVec
	assignments     *prometheus.CounterVec
	decisionLatency prometheus.Histogram
	portMissions    *prometheus.GaugeVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, prometheus.Histogram, *prometheus.GaugeVec) {
	req := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docking_requests_total",
			Help: "Number of processed docking requests by outcome",
		},
		[]string{"status"},
	)
	rej := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docking_rejections_total",
			Help: "Number of rejected docking requests by reason",
		},
		[]string{"reason"},
	)
	asn := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "docking_assignments_total",
			Help: "Number of missions committed per port",
		},
		[]string{"port"},
	)
	lat := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "docking_decision_latency_seconds",
			Help:    "Time spent deciding a docking request",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)
	occ := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "docking_port_missions",
			Help: "Number of missions currently committed per port",
		},
		[]string{"port"},
	)
	return req, rej, asn, lat, occ
}

func init() {
	requestsTotal, rejectionsTotal, assignments, decisionLatency, portMissions = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers docking metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(requestsTotal, rejectionsTotal, assignments, decisionLatency, portMissions)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	requestsTotal, rejectionsTotal, assignments, decisionLatency, portMissions = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
