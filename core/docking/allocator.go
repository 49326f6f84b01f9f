// Package docking decides docking requests against the shared port schedule.
package docking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/dockyard/core/availability"
	"github.com/kilianp07/dockyard/core/docking/logging"
	"github.com/kilianp07/dockyard/core/events"
	"github.com/kilianp07/dockyard/core/logger"
	"github.com/kilianp07/dockyard/core/metrics"
	"github.com/kilianp07/dockyard/core/model"
	"github.com/kilianp07/dockyard/core/registry"
	"github.com/kilianp07/dockyard/core/schedule"
	"github.com/kilianp07/dockyard/internal/eventbus"
)

// Allocator assigns docking requests to ports with a single first-fit pass
// over the requested port's compatibility list.
type Allocator struct {
	registry *registry.Registry
	store    schedule.Store
	metrics  metrics.MetricsSink
	bus      eventbus.EventBus
	logger   logger.Logger

	mu       sync.Mutex
	logStore logging.LogStore
}

// NewAllocator wires an allocator. A nil store is replaced by an empty
// in-memory schedule for the registry's ports; nil sink, bus and logger
// disable the corresponding side effects.
func NewAllocator(reg *registry.Registry, store schedule.Store, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Allocator, error) {
	if reg == nil {
		return nil, fmt.Errorf("docking: nil registry provided to NewAllocator")
	}
	if store == nil {
		store = schedule.NewMemoryStore(reg.Ports())
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Allocator{
		registry: reg,
		store:    store,
		metrics:  sink,
		bus:      bus,
		logger:   log,
	}, nil
}

// SetLogStore configures the store used to persist the decision log.
func (a *Allocator) SetLogStore(store logging.LogStore) {
	a.mu.Lock()
	a.logStore = store
	a.mu.Unlock()
}

func (a *Allocator) decisionLog() logging.LogStore {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.logStore
}

// Registry returns the port registry used by the allocator.
func (a *Allocator) Registry() *registry.Registry { return a.registry }

// ProcessDockingRequest validates req and commits it to the first compatible
// free port. A rejection is reported through the result; the error is only
// set for malformed intervals and unknown ports, in which case nothing is
// committed.
func (a *Allocator) ProcessDockingRequest(ctx context.Context, req model.DockingRequest) (model.AllocationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.AllocationResult{}, err
	}
	received := time.Now()
	a.publish(events.RequestEvent{Request: req, Received: received})

	start, end, res, err := a.decide(req)
	a.record(ctx, decisionRecord{
		req:     req,
		res:     res,
		err:     err,
		start:   start,
		end:     end,
		latency: time.Since(received),
	})
	return res, err
}

// decide runs the allocation algorithm without side effects besides the
// commit itself.
func (a *Allocator) decide(req model.DockingRequest) (time.Time, time.Time, model.AllocationResult, error) {
	start, end, err := req.Interval()
	if err != nil {
		return time.Time{}, time.Time{}, model.AllocationResult{}, err
	}
	ok, err := availability.CanRefuel(a.registry, req.RequestedPort, req.RefuelingRequired)
	if err != nil {
		return start, end, model.AllocationResult{}, err
	}
	if !ok {
		return start, end, model.Rejected(model.ReasonRefuelingUnsupported), nil
	}
	targets, err := a.registry.CompatibleTargets(req.RequestedPort)
	if err != nil {
		return start, end, model.AllocationResult{}, err
	}

	mission := model.Mission{ID: req.MissionID, Start: start, End: end, Team: req.Team}
	for _, port := range targets {
		committed := false
		err := a.store.WithPort(port, func(v schedule.PortView) error {
			if !availability.IsFree(v.Intervals(), start, end) {
				return nil
			}
			v.Commit(mission)
			committed = true
			return nil
		})
		if err != nil {
			return start, end, model.AllocationResult{}, err
		}
		if committed {
			return start, end, model.Accepted(port), nil
		}
	}
	return start, end, model.Rejected(model.ReasonNoCompatiblePort), nil
}

type decisionRecord struct {
	req     model.DockingRequest
	res     model.AllocationResult
	err     error
	start   time.Time
	end     time.Time
	latency time.Duration
}

// record emits metrics, events and the decision log entry. Failures are
// logged and never alter the decision.
func (a *Allocator) record(ctx context.Context, d decisionRecord) {
	now := time.Now()
	ev := events.DecisionEvent{
		DecisionID: uuid.NewString(),
		Request:    d.req,
		Result:     d.res,
		Err:        d.err,
		Start:      d.start,
		End:        d.end,
		Latency:    d.latency,
		Time:       now,
	}

	decisionLatency.Observe(d.latency.Seconds())
	switch {
	case d.err != nil:
		requestsTotal.WithLabelValues("error").Inc()
		a.logger.Warnf("docking request %s refused: %v", d.req.MissionID, d.err)
	case d.res.IsAccepted():
		requestsTotal.WithLabelValues(string(model.StatusAccepted)).Inc()
		assignments.WithLabelValues(d.res.AssignedPort.String()).Inc()
		snap := a.store.Snapshot()
		ev.Occupancy = occupancy(snap)
		for p, n := range ev.Occupancy {
			portMissions.WithLabelValues(p.String()).Set(float64(n))
		}
		a.logger.Infof("mission %s assigned to %s (requested %s)", d.req.MissionID, d.res.AssignedPort, d.req.RequestedPort)
		if n := countMission(snap, d.req.MissionID); n > 1 {
			a.logger.Warnf("mission id %s is committed %d times", d.req.MissionID, n)
		}
	default:
		requestsTotal.WithLabelValues(string(model.StatusRejected)).Inc()
		rejectionsTotal.WithLabelValues(string(d.res.Reason)).Inc()
		a.logger.Infof("mission %s rejected at %s: %s", d.req.MissionID, d.req.RequestedPort, d.res.Reason)
	}

	if err := metrics.Record(a.metrics, ev); err != nil {
		a.logger.Errorf("metrics error: %v", err)
	}
	a.publish(ev)

	if store := a.decisionLog(); store != nil {
		rec := logging.LogRecord{
			ID:        ev.DecisionID,
			Timestamp: now,
			Action:    logging.ActionAllocate,
			Request:   d.req,
			Result:    d.res,
			LatencyMS: float64(d.latency.Microseconds()) / 1000,
		}
		if d.err != nil {
			rec.Error = d.err.Error()
		}
		if err := store.Append(ctx, rec); err != nil {
			a.logger.Errorf("decision log append: %v", err)
		}
	}
	a.logger.Debugw("docking decision", map[string]any{
		"decision_id":   ev.DecisionID,
		"mission_id":    d.req.MissionID,
		"outcome":       metrics.DecisionFromEvent(ev).Outcome(),
		"assigned_port": d.res.AssignedPort.String(),
		"latency_us":    d.latency.Microseconds(),
	})
}

func occupancy(snap map[model.PortID][]model.Mission) map[model.PortID]int {
	out := make(map[model.PortID]int, len(snap))
	for p, ms := range snap {
		out[p] = len(ms)
	}
	return out
}

// countMission returns how many committed missions carry id. Duplicates are
// kept; the count only drives a warning.
func countMission(snap map[model.PortID][]model.Mission, id string) int {
	if id == "" {
		return 0
	}
	count := 0
	for _, ms := range snap {
		for _, m := range ms {
			if m.ID == id {
				count++
			}
		}
	}
	return count
}

// ClearSchedule removes every committed mission. Calling it on an empty
// schedule is a no-op.
func (a *Allocator) ClearSchedule(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	removed := a.store.ClearAll()
	now := time.Now()
	for _, p := range a.registry.Ports() {
		portMissions.WithLabelValues(p.String()).Set(0)
	}
	ev := events.ClearEvent{Removed: removed, Time: now}
	if err := metrics.RecordClear(a.metrics, ev); err != nil {
		a.logger.Errorf("metrics error: %v", err)
	}
	a.publish(ev)
	if store := a.decisionLog(); store != nil {
		rec := logging.LogRecord{ID: uuid.NewString(), Timestamp: now, Action: logging.ActionClear}
		if err := store.Append(ctx, rec); err != nil {
			a.logger.Errorf("decision log append: %v", err)
		}
	}
	a.logger.Infof("schedule cleared, %d missions removed", removed)
	return nil
}

// Schedule returns the current schedule keyed by port.
func (a *Allocator) Schedule() model.ScheduleView {
	return model.NewScheduleView(a.store.Snapshot())
}

// Decisions queries the decision log. It returns nil when no log is configured.
func (a *Allocator) Decisions(ctx context.Context, q logging.LogQuery) ([]logging.LogRecord, error) {
	store := a.decisionLog()
	if store == nil {
		return nil, nil
	}
	return store.Query(ctx, q)
}

func (a *Allocator) publish(ev eventbus.Event) {
	if a.bus != nil {
		a.bus.Publish(ev)
	}
}

// Close releases the bus and the decision log.
func (a *Allocator) Close() error {
	if a.bus != nil {
		a.bus.Close()
	}
	if store := a.decisionLog(); store != nil {
		return store.Close()
	}
	return nil
}
