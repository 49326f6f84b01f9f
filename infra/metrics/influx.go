package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/dockyard/core/metrics"
	"github.com/kilianp07/dockyard/infra/logger"
)

// InfluxConfig holds the InfluxDB connection settings.
type InfluxConfig struct {
	URL     string        `json:"url"`
	Token   string        `json:"token"`
	Org     string        `json:"org"`
	Bucket  string        `json:"bucket"`
	Timeout time.Duration `json:"timeout"`
}

// InfluxSink writes docking decisions to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	timeout  time.Duration
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		timeout:  cfg.Timeout,
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordDecision writes one docking_decision point.
func (s *InfluxSink) RecordDecision(d coremetrics.Decision) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	p := write.NewPointWithMeasurement("docking_decision").
		AddTag("decision_id", d.DecisionID).
		AddTag("requested_port", d.RequestedPort.String()).
		AddTag("outcome", d.Outcome()).
		AddTag("component", "allocator")
	if d.AssignedPort != "" {
		p = p.AddTag("assigned_port", d.AssignedPort.String())
	}
	p = p.AddField("mission_id", d.MissionID).
		AddField("refueling_required", d.RefuelingRequired).
		AddField("latency_ms", round3(d.Latency.Seconds()*1000))
	if d.Reason != "" {
		p = p.AddField("reason", string(d.Reason))
	}
	if d.Error != "" {
		p = p.AddField("error", d.Error)
	}
	if !d.Start.IsZero() {
		p = p.AddField("window_minutes", round3(d.End.Sub(d.Start).Minutes()))
	}
	return s.writeAPI.WritePoint(ctx, p.SetTime(d.Time))
}

// RecordOccupancy writes one port_occupancy point per port.
func (s *InfluxSink) RecordOccupancy(occ []coremetrics.PortOccupancy) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	points := make([]*write.Point, 0, len(occ))
	for _, o := range occ {
		points = append(points, write.NewPointWithMeasurement("port_occupancy").
			AddTag("port", o.Port.String()).
			AddField("missions", o.Missions).
			SetTime(o.Time))
	}
	return s.writeAPI.WritePoint(ctx, points...)
}

// RecordScheduleClear writes a schedule_clear point.
func (s *InfluxSink) RecordScheduleClear(ev coremetrics.ScheduleClearEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	p := write.NewPointWithMeasurement("schedule_clear").
		AddTag("component", "allocator").
		AddField("removed", ev.Removed).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
