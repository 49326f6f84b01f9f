package metrics

import (
	"context"

	"github.com/kilianp07/dockyard/core/events"
	coremetrics "github.com/kilianp07/dockyard/core/metrics"
	"github.com/kilianp07/dockyard/infra/logger"
	"github.com/kilianp07/dockyard/internal/eventbus"
)

// StartEventCollector subscribes to the event bus and records decision and
// clear events to sink off the request path. It stops when the context is
// canceled or the bus is closed; the returned channel is closed on exit.
func StartEventCollector(ctx context.Context, bus eventbus.EventBus, sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || sink == nil {
		close(done)
		return done
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	sub := bus.Subscribe()
	go func() {
		defer close(done)
		defer bus.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-sub:
				if !ok {
					return
				}
				var err error
				switch e := ev.(type) {
				case events.DecisionEvent:
					err = coremetrics.Record(sink, e)
				case events.ClearEvent:
					err = coremetrics.RecordClear(sink, e)
				}
				if err != nil {
					log.Errorf("event collector: %v", err)
				}
			}
		}
	}()
	return done
}
