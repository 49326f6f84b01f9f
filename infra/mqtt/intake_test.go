package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/dockyard/core/docking"
	coremon "github.com/kilianp07/dockyard/core/monitoring"
	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/core/registry"
	"github.com/kilianp07/dockyard/infra/logger"
)

func startIntake(t *testing.T, mc *mockClient) (*Intake, *docking.Allocator) {
	t.Helper()
	t.Cleanup(installMock(mc))
	alloc, err := docking.NewAllocator(registry.Default(), nil, nil, nil, logger.NopLogger{})
	require.NoError(t, err)
	in, err := NewIntake(Config{Broker: "tcp://localhost:1883", BackoffMS: 1}, alloc, logger.NopLogger{})
	require.NoError(t, err)
	require.NoError(t, in.Start(context.Background()))
	return in, alloc
}

func decodeResponse(t *testing.T, msgs []publishedMsg) Response {
	t.Helper()
	require.NotEmpty(t, msgs)
	var r Response
	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1].payload, &r))
	return r
}

func TestNewIntakeNilAllocator(t *testing.T) {
	_, err := NewIntake(Config{}, nil, nil)
	assert.Error(t, err)
}

func TestIntakeSubscribesAndPublishesHealth(t *testing.T) {
	mc := newMockClient()
	startIntake(t, mc)
	for _, topic := range []string{"dockyard/requests", "dockyard/schedule/clear", "dockyard/schedule/get"} {
		_, ok := mc.subscribed[topic]
		assert.True(t, ok, "missing subscription %s", topic)
	}
	health := mc.publishedOn("dockyard/health")
	require.Len(t, health, 1)
	assert.True(t, health[0].retained)
	assert.Contains(t, string(health[0].payload), `"status":"online"`)
}

func TestIntakeAllocatesRequests(t *testing.T) {
	mc := newMockClient()
	startIntake(t, mc)

	mc.deliver("dockyard/requests", []byte(`{"mission_id":"M1","requested_port":"A1","start_time":"2025-01-01T10:00:00Z","end_time":"2025-01-01T12:00:00Z","team":"alpha","refueling_required":true}`))
	mc.deliver("dockyard/requests", []byte(`{"mission_id":"M3","requested_port":"A2","start_time":"2025-01-01T11:30:00Z","end_time":"2025-01-01T12:30:00Z","refueling_required":true}`))

	r1 := decodeResponse(t, mc.publishedOn("dockyard/results/M1"))
	assert.Equal(t, Response{MissionID: "M1", Status: "accepted", AssignedPort: "A1"}, r1)

	r3 := decodeResponse(t, mc.publishedOn("dockyard/results/M3"))
	assert.Equal(t, "rejected", r3.Status)
	assert.Equal(t, model.ReasonRefuelingUnsupported, r3.Reason)
}

func TestIntakeReportsBadInput(t *testing.T) {
	mc := newMockClient()
	startIntake(t, mc)

	mc.deliver("dockyard/requests", []byte(`{"mission_id":"M9","requested_port":"Z9","start_time":"2025-01-01T10:00:00Z","end_time":"2025-01-01T12:00:00Z"}`))
	r := decodeResponse(t, mc.publishedOn("dockyard/results/M9"))
	assert.Equal(t, StatusError, r.Status)
	assert.Contains(t, r.Error, "unknown port")

	mc.deliver("dockyard/requests", []byte(`{not json`))
	var decodeErrs int
	for _, p := range mc.published {
		if strings.HasPrefix(p.topic, "dockyard/results/") && p.topic != "dockyard/results/M9" {
			decodeErrs++
			assert.Contains(t, string(p.payload), `"status":"error"`)
		}
	}
	assert.Equal(t, 1, decodeErrs)
}

func TestIntakeUnsafeMissionIDUsesGeneratedTopic(t *testing.T) {
	mc := newMockClient()
	startIntake(t, mc)

	for _, id := range []string{"M#1/+", "M+2", "M3/deep"} {
		payload := fmt.Sprintf(`{"mission_id":%q,"requested_port":"B1","start_time":"2025-01-01T10:00:00Z","end_time":"2025-01-01T11:00:00Z"}`, id)
		mc.deliver("dockyard/requests", []byte(payload))
	}

	var ids []string
	for _, p := range mc.published {
		if !strings.HasPrefix(p.topic, "dockyard/results/") {
			continue
		}
		level := strings.TrimPrefix(p.topic, "dockyard/results/")
		assert.NotContains(t, level, "/", "result published below a single topic level: %s", p.topic)
		assert.False(t, strings.ContainsAny(p.topic, "+#"), "wildcard in publish topic %s", p.topic)
		var r Response
		require.NoError(t, json.Unmarshal(p.payload, &r))
		ids = append(ids, r.MissionID)
	}
	assert.Equal(t, []string{"M#1/+", "M+2", "M3/deep"}, ids)
}

func TestResultID(t *testing.T) {
	assert.Equal(t, "M1", resultID("M1"))
	for _, id := range []string{"", "a/b", "a+", "#"} {
		got := resultID(id)
		assert.NotEqual(t, id, got)
		assert.False(t, strings.ContainsAny(got, "+#/"))
	}
}

func TestIntakeClearAndDump(t *testing.T) {
	mc := newMockClient()
	_, alloc := startIntake(t, mc)

	mc.deliver("dockyard/requests", []byte(`{"mission_id":"M1","requested_port":"B1","start_time":"2025-01-01T10:00:00Z","end_time":"2025-01-01T11:00:00Z"}`))
	mc.deliver("dockyard/schedule/get", nil)

	dumps := mc.publishedOn("dockyard/schedule")
	require.Len(t, dumps, 1)
	var view model.ScheduleView
	require.NoError(t, json.Unmarshal(dumps[0].payload, &view))
	require.Len(t, view["B1"], 1)
	assert.Equal(t, "2025-01-01T10:00:00Z", view["B1"][0].StartTime)

	mc.deliver("dockyard/schedule/clear", nil)
	acks := mc.publishedOn("dockyard/schedule/clear/result")
	require.Len(t, acks, 1)
	assert.JSONEq(t, `{"status":"cleared"}`, string(acks[0].payload))
	assert.Empty(t, alloc.Schedule()["B1"])
}

type recordMonitor struct {
	err  error
	tags map[string]string
}

func (r *recordMonitor) CaptureException(err error, tags map[string]string) {
	r.err = err
	r.tags = tags
}
func (r *recordMonitor) Recover()            {}
func (r *recordMonitor) Flush(time.Duration) {}

func TestPublishRetriesThenCaptures(t *testing.T) {
	mc := newMockClient()
	startIntake(t, mc)
	mon := &recordMonitor{}
	coremon.Init(mon)
	t.Cleanup(func() { coremon.Init(coremon.NopMonitor{}) })

	// One failure is retried; four exhaust the default budget.
	mc.publishErrs = []error{fmt.Errorf("net fail")}
	mc.deliver("dockyard/requests", []byte(`{"mission_id":"M1","requested_port":"A1","start_time":"2025-01-01T10:00:00Z","end_time":"2025-01-01T11:00:00Z"}`))
	assert.Len(t, mc.publishedOn("dockyard/results/M1"), 2)
	assert.Nil(t, mon.err)

	mc.publishErrs = []error{errors.New("a"), errors.New("b"), errors.New("c"), errors.New("d")}
	mc.deliver("dockyard/requests", []byte(`{"mission_id":"M2","requested_port":"A1","start_time":"2025-01-01T12:00:00Z","end_time":"2025-01-01T13:00:00Z"}`))
	require.Error(t, mon.err)
	assert.Equal(t, "M2", mon.tags["mission_id"])
	assert.Equal(t, "mqtt_intake", mon.tags["component"])
}

func TestStopPublishesOffline(t *testing.T) {
	mc := newMockClient()
	in, _ := startIntake(t, mc)
	in.Stop()
	health := mc.publishedOn("dockyard/health")
	require.Len(t, health, 2)
	assert.Contains(t, string(health[1].payload), `"status":"offline"`)
	assert.False(t, mc.IsConnected())
}
