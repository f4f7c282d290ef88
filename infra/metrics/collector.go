package metrics

import (
	"context"

	"github.com/kilianp07/maintsched/core/events"
	coremetrics "github.com/kilianp07/maintsched/core/metrics"
	"github.com/kilianp07/maintsched/infra/logger"
	"github.com/kilianp07/maintsched/internal/eventbus"
)

// StartEventCollector subscribes to the bus and records metrics for every run
// event. The returned channel is closed once the subscription ends, which
// happens when the bus is closed or ctx is canceled.
func StartEventCollector(ctx context.Context, bus *eventbus.TypedBus[events.RunEvent], sink coremetrics.MetricsSink, log logger.Logger) <-chan struct{} {
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
				if err := sink.RecordSolve(ev.Solve); err != nil {
					log.Warnf("record solve %s: %v", ev.Solve.RunID, err)
				}
				if wr, ok := sink.(coremetrics.WorkloadRecorder); ok && len(ev.Workload) > 0 {
					if err := wr.RecordWorkload(ev.Workload); err != nil {
						log.Warnf("record workload %s: %v", ev.Solve.RunID, err)
					}
				}
			}
		}
	}()
	return done
}
