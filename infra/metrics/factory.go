package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/maintsched/core/factory"
	coremetrics "github.com/kilianp07/maintsched/core/metrics"
)

// Sink type names accepted in metrics.sinks.
const (
	SinkNop        = "nop"
	SinkPrometheus = "prometheus"
	SinkInflux     = "influx"
)

func init() {
	builtins := map[string]factory.Factory[coremetrics.MetricsSink]{
		SinkNop: func(map[string]any) (coremetrics.MetricsSink, error) {
			return coremetrics.NopSink{}, nil
		},
		// Prometheus sinks share the default registry served on /metrics.
		SinkPrometheus: func(map[string]any) (coremetrics.MetricsSink, error) {
			return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
		},
		SinkInflux: func(conf map[string]any) (coremetrics.MetricsSink, error) {
			var c InfluxConfig
			if err := factory.Decode(conf, &c); err != nil {
				return nil, err
			}
			return NewInfluxSinkWithFallback(c), nil
		},
	}
	for name, f := range builtins {
		_ = coremetrics.RegisterMetricsSink(name, f)
	}
}
