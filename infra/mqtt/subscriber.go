package mqtt

import (
	"context"

	"github.com/kilianp07/maintsched/core/events"
	"github.com/kilianp07/maintsched/infra/logger"
	"github.com/kilianp07/maintsched/internal/eventbus"
	"github.com/kilianp07/maintsched/pkg/export"
)

// ReportPublisher publishes run reports.
type ReportPublisher interface {
	PublishReport(ctx context.Context, r export.Report) (string, error)
}

// StartReportPublisher publishes the report of every run event received on
// bus. The returned channel is closed once the bus is closed or ctx is done.
func StartReportPublisher(ctx context.Context, bus *eventbus.TypedBus[events.RunEvent], pub ReportPublisher, log logger.Logger) <-chan struct{} {
	done := make(chan struct{})
	if bus == nil || pub == nil {
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
				if ev.Report == nil {
					continue
				}
				if _, err := pub.PublishReport(ctx, *ev.Report); err != nil {
					log.Errorf("publish run %s: %v", ev.Report.RunID, err)
				}
			}
		}
	}()
	return done
}
