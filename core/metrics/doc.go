// Package metrics defines the contracts used to observe solve runs. Sinks
// like the Prometheus and InfluxDB implementations in infra/metrics record
// one SolveEvent per run and, when they implement WorkloadRecorder, the
// per-period resource loads of the schedule. NewMetricsSink builds sinks from
// configuration and wraps several of them in a MultiSink.
package metrics
