package metrics

import (
	"errors"
	"testing"
)

type recordSink struct {
	decisions int
	occupancy int
	clears    int
	err       error
}

func (r *recordSink) RecordDecision(Decision) error {
	r.decisions++
	return r.err
}

func (r *recordSink) RecordOccupancy([]PortOccupancy) error {
	r.occupancy++
	return nil
}

func (r *recordSink) RecordScheduleClear(ScheduleClearEvent) error {
	r.clears++
	return nil
}

type decisionOnly struct{ n int }

func (d *decisionOnly) RecordDecision(Decision) error { d.n++; return nil }

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	plain := &decisionOnly{}
	m := NewMultiSink(s1, s2, plain)
	if err := m.RecordDecision(Decision{MissionID: "M1"}); err != nil {
		t.Fatalf("record decision: %v", err)
	}
	if err := m.RecordOccupancy([]PortOccupancy{{Port: "A1", Missions: 1}}); err != nil {
		t.Fatalf("record occupancy: %v", err)
	}
	if err := m.RecordScheduleClear(ScheduleClearEvent{}); err != nil {
		t.Fatalf("record clear: %v", err)
	}
	if s1.decisions != 1 || s2.decisions != 1 || plain.n != 1 {
		t.Fatalf("decisions not forwarded")
	}
	if s1.occupancy != 1 || s2.clears != 1 {
		t.Fatalf("optional recorders not forwarded")
	}
}

func TestMultiSinkFirstError(t *testing.T) {
	boom := errors.New("boom")
	s1 := &recordSink{err: boom}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordDecision(Decision{}); !errors.Is(err, boom) {
		t.Fatalf("expected first error, got %v", err)
	}
	if s2.decisions != 1 {
		t.Fatalf("later sinks must still receive the decision")
	}
}

func TestDecisionOutcome(t *testing.T) {
	if got := (Decision{Status: "accepted"}).Outcome(); got != "accepted" {
		t.Fatalf("got %s", got)
	}
	if got := (Decision{Error: "bad"}).Outcome(); got != "error" {
		t.Fatalf("got %s", got)
	}
}
