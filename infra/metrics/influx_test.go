package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/dockyard/core/metrics"
)

func newCaptureServer(t *testing.T) (*httptest.Server, func() string) {
	t.Helper()
	var mu sync.Mutex
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		body = string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() string {
		mu.Lock()
		defer mu.Unlock()
		return body
	}
}

func TestInfluxSinkRecordDecision(t *testing.T) {
	srv, body := newCaptureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	now := time.Now()
	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	d := coremetrics.Decision{
		DecisionID:    "d1",
		MissionID:     "M1",
		RequestedPort: "A1",
		AssignedPort:  "A1",
		Status:        "accepted",
		Start:         start,
		End:           start.Add(2 * time.Hour),
		Latency:       1500 * time.Microsecond,
		Time:          now,
	}
	if err := sink.RecordDecision(d); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("docking_decision").
		AddTag("decision_id", "d1").
		AddTag("requested_port", "A1").
		AddTag("outcome", "accepted").
		AddTag("component", "allocator").
		AddTag("assigned_port", "A1").
		AddField("mission_id", "M1").
		AddField("refueling_required", false).
		AddField("latency_ms", 1.5).
		AddField("window_minutes", 120.0).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body()) != expected {
		t.Errorf("unexpected body: %s", body())
	}
}

func TestInfluxSinkRecordRejection(t *testing.T) {
	srv, body := newCaptureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()

	d := coremetrics.Decision{RequestedPort: "A2", Status: "rejected", Reason: "refueling unsupported at requested port", Time: time.Now()}
	if err := sink.RecordDecision(d); err != nil {
		t.Fatalf("record error: %v", err)
	}
	got := body()
	if strings.Contains(got, "assigned_port") {
		t.Errorf("rejections carry no assigned port: %s", got)
	}
	if !strings.Contains(got, `reason="refueling unsupported at requested port"`) {
		t.Errorf("reason missing: %s", got)
	}
}

func TestInfluxSinkOccupancyAndClear(t *testing.T) {
	srv, body := newCaptureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "t", Org: "o", Bucket: "b"})
	defer sink.Close()

	now := time.Now()
	if err := sink.RecordOccupancy([]coremetrics.PortOccupancy{{Port: "A1", Missions: 1, Time: now}, {Port: "B1", Missions: 0, Time: now}}); err != nil {
		t.Fatalf("occupancy: %v", err)
	}
	if lines := strings.Split(strings.TrimSpace(body()), "\n"); len(lines) != 2 {
		t.Fatalf("expected 2 points, got %q", body())
	}
	if err := sink.RecordScheduleClear(coremetrics.ScheduleClearEvent{Removed: 4, Time: now}); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !strings.HasPrefix(body(), "schedule_clear,component=allocator removed=4i") {
		t.Errorf("unexpected body: %s", body())
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
