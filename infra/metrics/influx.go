package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/maintsched/core/metrics"
	"github.com/kilianp07/maintsched/infra/logger"
)

// InfluxConfig locates an InfluxDB v2 bucket.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes solve runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(cfg InfluxConfig) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordSolve writes the run as a solve_run point.
func (s *InfluxSink) RecordSolve(ev coremetrics.SolveEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := solvePoint(ev)
	return s.writeAPI.WritePoint(ctx, p)
}

func solvePoint(ev coremetrics.SolveEvent) *write.Point {
	p := write.NewPointWithMeasurement("solve_run").
		AddTag("run_id", ev.RunID).
		AddTag("instance", ev.Instance).
		AddTag("status", ev.Status).
		AddField("interventions", ev.Interventions).
		AddField("variables", ev.Variables).
		AddField("constraints", ev.Constraints).
		AddField("branches", ev.Branches).
		AddField("violations", ev.Violations).
		AddField("objective", round3(ev.Objective))
	for _, phase := range []string{coremetrics.PhaseLoad, coremetrics.PhaseBuild, coremetrics.PhaseSolve} {
		if d, ok := ev.Phases[phase]; ok {
			p = p.AddField(phase+"_ms", round3(d.Seconds()*1000))
		}
	}
	return p.SetTime(ev.Time)
}

// RecordWorkload writes one resource_workload point per sample.
func (s *InfluxSink) RecordWorkload(samples []coremetrics.WorkloadSample) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, sm := range samples {
		p := write.NewPointWithMeasurement("resource_workload").
			AddTag("run_id", sm.RunID).
			AddTag("resource", sm.Resource).
			AddField("period", sm.Period).
			AddField("amount", round3(sm.Amount)).
			AddField("min", round3(sm.Min)).
			AddField("max", round3(sm.Max)).
			SetTime(sm.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
