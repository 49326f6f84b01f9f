package logging

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/kilianp07/dockyard/core/model"
)

func sampleRecord(id, mission string, port model.PortID, res model.AllocationResult, ts time.Time) LogRecord {
	return LogRecord{
		ID:        id,
		Timestamp: ts,
		Action:    ActionAllocate,
		Request: model.DockingRequest{
			MissionID:     mission,
			RequestedPort: port,
			StartTime:     "2025-01-01T10:00:00Z",
			EndTime:       "2025-01-01T11:00:00Z",
		},
		Result:    res,
		LatencyMS: 0.2,
	}
}

func TestLogRecordJSONKeys(t *testing.T) {
	rec := sampleRecord("d1", "M1", "A1", model.Accepted("A1"), time.Unix(0, 0).UTC())
	b, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"id", "timestamp", "action", "request", "result", "latency_ms"} {
		if _, ok := m[k]; !ok {
			t.Errorf("missing key %s", k)
		}
	}
	if _, ok := m["error"]; ok {
		t.Errorf("error key should be omitted when empty")
	}
}

func TestLogRecordOutcome(t *testing.T) {
	ts := time.Now()
	if got := sampleRecord("1", "M", "A1", model.Accepted("A1"), ts).Outcome(); got != "accepted" {
		t.Errorf("got %s", got)
	}
	rej := sampleRecord("2", "M", "A1", model.Rejected(model.ReasonNoCompatiblePort), ts)
	if got := rej.Outcome(); got != "rejected" {
		t.Errorf("got %s", got)
	}
	bad := sampleRecord("3", "M", "Z9", model.AllocationResult{}, ts)
	bad.Error = "unknown port"
	if got := bad.Outcome(); got != "error" {
		t.Errorf("got %s", got)
	}
	clr := LogRecord{ID: "4", Action: ActionClear, Timestamp: ts}
	if got := clr.Outcome(); got != "clear" {
		t.Errorf("got %s", got)
	}
}

func TestLogQueryMatch(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := sampleRecord("1", "M2", "A2", model.Accepted("B1"), base)

	cases := []struct {
		name string
		q    LogQuery
		want bool
	}{
		{"empty", LogQuery{}, true},
		{"requested port", LogQuery{Port: "A2"}, true},
		{"assigned port", LogQuery{Port: "B1"}, true},
		{"other port", LogQuery{Port: "A1"}, false},
		{"mission", LogQuery{MissionID: "M2"}, true},
		{"other mission", LogQuery{MissionID: "M1"}, false},
		{"outcome", LogQuery{Outcome: "accepted"}, true},
		{"other outcome", LogQuery{Outcome: "rejected"}, false},
		{"inside range", LogQuery{Start: base.Add(-time.Minute), End: base.Add(time.Minute)}, true},
		{"before range", LogQuery{Start: base.Add(time.Minute)}, false},
		{"after range", LogQuery{End: base.Add(-time.Minute)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.q.Match(rec); got != tc.want {
				t.Errorf("Match() = %v, want %v", got, tc.want)
			}
		})
	}
}
