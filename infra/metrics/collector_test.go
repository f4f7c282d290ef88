package metrics

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kilianp07/maintsched/core/events"
	coremetrics "github.com/kilianp07/maintsched/core/metrics"
	"github.com/kilianp07/maintsched/internal/eventbus"
)

type countingSink struct {
	mu       sync.Mutex
	solves   int
	workload int
}

func (c *countingSink) RecordSolve(coremetrics.SolveEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.solves++
	return nil
}

func (c *countingSink) RecordWorkload(s []coremetrics.WorkloadSample) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.workload += len(s)
	return nil
}

func TestStartEventCollector(t *testing.T) {
	bus := eventbus.NewTyped[events.RunEvent]()
	sink := &countingSink{}
	done := StartEventCollector(context.Background(), bus, sink, nil)

	bus.Publish(events.RunEvent{
		Solve:    coremetrics.SolveEvent{RunID: "r1", Status: "OPTIMAL"},
		Workload: []coremetrics.WorkloadSample{{Resource: "c1"}, {Resource: "c1", Period: 2}},
	})
	bus.Publish(events.RunEvent{Solve: coremetrics.SolveEvent{RunID: "r2", Status: "INFEASIBLE"}})
	bus.Close()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop after bus close")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if sink.solves != 2 || sink.workload != 2 {
		t.Fatalf("unexpected counts solves=%d workload=%d", sink.solves, sink.workload)
	}
}

func TestStartEventCollectorNilBus(t *testing.T) {
	done := StartEventCollector(context.Background(), nil, &countingSink{}, nil)
	select {
	case <-done:
	default:
		t.Fatal("expected closed channel for nil bus")
	}
}
