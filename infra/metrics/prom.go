package metrics

import (
	coremetrics "github.com/kilianp07/maintsched/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records solve runs in Prometheus metrics.
type PromSink struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	size     *prometheus.GaugeVec
	load     *prometheus.GaugeVec
}

// NewPromSink registers solve metrics on the default Prometheus registerer.
// The /metrics endpoint is started separately with StartPromServer.
func NewPromSink() (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintsched_solve_runs_total",
		Help: "Total number of solve runs by status",
	}, []string{"status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maintsched_solve_duration_seconds",
		Help:    "Wall time of each phase of a solve run",
		Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"phase"})
	size := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "maintsched_model_size",
		Help: "Size of the last constraint model built",
	}, []string{"kind"})
	load := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "maintsched_resource_load",
		Help: "Peak load of a resource over the last schedule",
	}, []string{"resource"})

	var err error
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	if size, err = register(reg, size); err != nil {
		return nil, err
	}
	if load, err = register(reg, load); err != nil {
		return nil, err
	}
	return &PromSink{runs: runs, duration: duration, size: size, load: load}, nil
}

// register reuses an already registered collector of the same shape.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordSolve counts the run and records its phase timings and model size.
func (s *PromSink) RecordSolve(ev coremetrics.SolveEvent) error {
	s.runs.WithLabelValues(ev.Status).Inc()
	for phase, d := range ev.Phases {
		s.duration.WithLabelValues(phase).Observe(d.Seconds())
	}
	s.size.WithLabelValues("interventions").Set(float64(ev.Interventions))
	s.size.WithLabelValues("variables").Set(float64(ev.Variables))
	s.size.WithLabelValues("constraints").Set(float64(ev.Constraints))
	s.size.WithLabelValues("intervals").Set(float64(ev.Intervals))
	return nil
}

// RecordWorkload sets each resource gauge to its peak load.
func (s *PromSink) RecordWorkload(samples []coremetrics.WorkloadSample) error {
	peak := make(map[string]float64)
	for _, sm := range samples {
		if v, ok := peak[sm.Resource]; !ok || sm.Amount > v {
			peak[sm.Resource] = sm.Amount
		}
	}
	for res, v := range peak {
		s.load.WithLabelValues(res).Set(v)
	}
	return nil
}
