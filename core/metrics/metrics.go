package metrics

import "time"

// Phase timings of a solve run.
const (
	PhaseLoad  = "load"
	PhaseBuild = "build"
	PhaseSolve = "solve"
)

// SolveEvent summarises one load-build-solve cycle.
type SolveEvent struct {
	RunID    string
	Instance string
	Status   string
	// Phases maps a phase name to its wall time.
	Phases        map[string]time.Duration
	Interventions int
	Variables     int
	Constraints   int
	Intervals     int
	Branches      int64
	Failures      int64
	Violations    int
	Objective     float64
	Time          time.Time
}

// MetricsSink records solve runs for observability purposes.
type MetricsSink interface {
	RecordSolve(ev SolveEvent) error
}

// WorkloadSample is the load of a resource at one period of a schedule.
type WorkloadSample struct {
	RunID    string
	Resource string
	Period   int
	Amount   float64
	Min      float64
	Max      float64
	Time     time.Time
}

// WorkloadRecorder is implemented by sinks able to record resource loads.
type WorkloadRecorder interface {
	RecordWorkload(samples []WorkloadSample) error
}

// NopSink implements MetricsSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordSolve(SolveEvent) error { return nil }

// Ensure NopSink implements WorkloadRecorder.
func (NopSink) RecordWorkload([]WorkloadSample) error { return nil }
