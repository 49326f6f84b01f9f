package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/dockyard/core/metrics"
)

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("sink: %v", err)
	}
	_ = sink.RecordDecision(coremetrics.Decision{RequestedPort: "A1", AssignedPort: "A1", Status: "accepted"})

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `dockyard_decisions_total{assigned_port="A1",outcome="accepted",requested_port="A1"} 1`) {
		t.Fatalf("metric not exposed:\n%s", body)
	}
}
