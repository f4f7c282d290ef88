package events

import (
	"github.com/kilianp07/maintsched/core/metrics"
	"github.com/kilianp07/maintsched/core/runlog"
	"github.com/kilianp07/maintsched/pkg/export"
)

// RunEvent is published once per solve run. Report is nil when the run failed
// before a schedule could be reported.
type RunEvent struct {
	Record   runlog.RunRecord
	Solve    metrics.SolveEvent
	Workload []metrics.WorkloadSample
	Report   *export.Report
}
