package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/dockyard/core/events"
	coremetrics "github.com/kilianp07/dockyard/core/metrics"
	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/infra/logger"
	"github.com/kilianp07/dockyard/internal/eventbus"
)

type chanSink struct {
	mu        sync.Mutex
	decisions []coremetrics.Decision
	clears    int
	done      chan struct{}
}

func (c *chanSink) RecordDecision(d coremetrics.Decision) error {
	c.mu.Lock()
	c.decisions = append(c.decisions, d)
	c.mu.Unlock()
	return nil
}

func (c *chanSink) RecordScheduleClear(coremetrics.ScheduleClearEvent) error {
	c.mu.Lock()
	c.clears++
	c.mu.Unlock()
	close(c.done)
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.New()
	sink := &chanSink{done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	stopped := StartEventCollector(ctx, bus, sink, logger.NopLogger{})

	// Subscription happens synchronously, so events published now are seen.
	bus.Publish(events.RequestEvent{Request: model.DockingRequest{MissionID: "M1"}})
	bus.Publish(events.DecisionEvent{DecisionID: "d1", Request: model.DockingRequest{MissionID: "M1"}, Result: model.Accepted("A1")})
	bus.Publish(events.ClearEvent{Removed: 1})

	select {
	case <-sink.done:
	case <-time.After(time.Second):
		t.Fatalf("events not collected")
	}
	sink.mu.Lock()
	if len(sink.decisions) != 1 || sink.decisions[0].MissionID != "M1" {
		t.Errorf("unexpected decisions %+v", sink.decisions)
	}
	sink.mu.Unlock()

	cancel()
	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatalf("collector did not stop")
	}
}

func TestStartEventCollectorNilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, coremetrics.NopSink{}, nil)
	if _, ok := <-done; ok {
		t.Fatalf("expected closed channel")
	}
}
