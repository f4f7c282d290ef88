package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordSolve forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordSolve(ev SolveEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordSolve(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordWorkload forwards samples to the sinks that support them.
func (m *MultiSink) RecordWorkload(samples []WorkloadSample) error {
	for _, s := range m.Sinks {
		if wr, ok := s.(WorkloadRecorder); ok {
			if err := wr.RecordWorkload(samples); err != nil {
				return err
			}
		}
	}
	return nil
}
