package scenarios

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/dockyard/config"
	"github.com/kilianp07/dockyard/core/docking"
	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/core/registry"
	"github.com/kilianp07/dockyard/infra/logger"
	"github.com/kilianp07/dockyard/infra/metrics"
)

func RunScenario(t *testing.T, sc *Scenario) {
	reg := registry.Default()
	if len(sc.Ports) > 0 {
		var err error
		if reg, err = config.PortsConfig(sc.Ports).Registry(); err != nil {
			t.Fatalf("ports: %v", err)
		}
	}
	sink, err := metrics.NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}
	alloc, err := docking.NewAllocator(reg, nil, sink, nil, logger.NopLogger{})
	if err != nil {
		t.Fatalf("allocator: %v", err)
	}

	ctx := context.Background()
	for i, st := range sc.Steps {
		if st.Clear {
			if err := alloc.ClearSchedule(ctx); err != nil {
				t.Errorf("step %d: clear: %v", i, err)
			}
			continue
		}
		res, err := alloc.ProcessDockingRequest(ctx, *st.Request)
		checkStep(t, i, st, res, err)
	}

	if sc.Schedule == nil {
		return
	}
	got := alloc.Schedule()
	for port, want := range sc.Schedule {
		ids := make([]string, 0, len(got[port]))
		for _, m := range got[port] {
			ids = append(ids, m.MissionID)
		}
		if strings.Join(ids, ",") != strings.Join(want, ",") {
			t.Errorf("scenario %s port %s: expected missions %v, got %v", sc.Name, port, want, ids)
		}
	}
}

func checkStep(t *testing.T, i int, st Step, res model.AllocationResult, err error) {
	t.Helper()
	id := st.Request.MissionID
	if st.Expect.Status == "error" {
		if err == nil {
			t.Errorf("step %d (%s): expected error, got %+v", i, id, res)
		} else if st.Expect.Error != "" && !strings.Contains(err.Error(), st.Expect.Error) {
			t.Errorf("step %d (%s): error %q does not mention %q", i, id, err, st.Expect.Error)
		}
		return
	}
	if err != nil {
		t.Errorf("step %d (%s): unexpected error: %v", i, id, err)
		return
	}
	if string(res.Status) != st.Expect.Status {
		t.Errorf("step %d (%s): expected %s, got %s", i, id, st.Expect.Status, res.Status)
	}
	if st.Expect.AssignedPort != "" && res.AssignedPort != st.Expect.AssignedPort {
		t.Errorf("step %d (%s): expected port %s, got %s", i, id, st.Expect.AssignedPort, res.AssignedPort)
	}
	if st.Expect.Reason != "" && res.Reason != st.Expect.Reason {
		t.Errorf("step %d (%s): expected reason %q, got %q", i, id, st.Expect.Reason, res.Reason)
	}
}
