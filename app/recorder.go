package app

import (
	"context"

	"github.com/kilianp07/maintsched/core/events"
	"github.com/kilianp07/maintsched/core/runlog"
	"github.com/kilianp07/maintsched/infra/logger"
	"github.com/kilianp07/maintsched/internal/eventbus"
)

// StartRunRecorder appends the record of every run event to store. The
// returned channel is closed once the bus is closed or ctx is done.
func StartRunRecorder(ctx context.Context, bus *eventbus.TypedBus[events.RunEvent], store runlog.Store, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || store == nil {
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
				if err := store.Append(ctx, ev.Record); err != nil {
					log.Errorf("append run %s: %v", ev.Record.ID, err)
				}
			}
		}
	}()
	return done
}
