package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/maintsched/core/metrics"
)

func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu     sync.Mutex
		bodies []string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(b)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordSolve(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	ev := coremetrics.SolveEvent{
		RunID:         "r1",
		Instance:      "A_01",
		Status:        "OPTIMAL",
		Phases:        map[string]time.Duration{coremetrics.PhaseSolve: 1500 * time.Microsecond},
		Interventions: 2,
		Variables:     10,
		Constraints:   7,
		Branches:      4,
		Objective:     1.23456,
		Time:          now,
	}
	if err := sink.RecordSolve(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("solve_run").
		AddTag("run_id", "r1").
		AddTag("instance", "A_01").
		AddTag("status", "OPTIMAL").
		AddField("interventions", 2).
		AddField("variables", 10).
		AddField("constraints", 7).
		AddField("branches", int64(4)).
		AddField("violations", 0).
		AddField("objective", 1.235).
		AddField("solve_ms", 1.5).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 1 || got[0] != exp {
		t.Errorf("unexpected bodies: %#v", got)
	}
}

func TestInfluxSink_RecordWorkload(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	defer sink.Close()
	now := time.Now()
	samples := []coremetrics.WorkloadSample{
		{RunID: "r1", Resource: "c1", Period: 1, Amount: 0.5, Min: 0, Max: 1, Time: now},
		{RunID: "r1", Resource: "c1", Period: 2, Amount: 1, Min: 0, Max: 1, Time: now},
	}
	if err := sink.RecordWorkload(samples); err != nil {
		t.Fatalf("record: %v", err)
	}
	p := write.NewPointWithMeasurement("resource_workload").
		AddTag("run_id", "r1").
		AddTag("resource", "c1").
		AddField("period", 1).
		AddField("amount", 0.5).
		AddField("min", 0.0).
		AddField("max", 1.0).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	got := bodies()
	if len(got) != 2 || got[0] != exp {
		t.Errorf("bodies: %#v", got)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
