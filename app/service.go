// Package app wires configuration, solver and reporting into runnable
// operations.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/kilianp07/maintsched/config"
	"github.com/kilianp07/maintsched/core/cp"
	"github.com/kilianp07/maintsched/core/evaluation"
	"github.com/kilianp07/maintsched/core/events"
	"github.com/kilianp07/maintsched/core/formulation"
	coremetrics "github.com/kilianp07/maintsched/core/metrics"
	"github.com/kilianp07/maintsched/core/model"
	"github.com/kilianp07/maintsched/core/runlog"
	"github.com/kilianp07/maintsched/infra/logger"
	"github.com/kilianp07/maintsched/infra/metrics"
	"github.com/kilianp07/maintsched/infra/mqtt"
	"github.com/kilianp07/maintsched/internal/eventbus"
	"github.com/kilianp07/maintsched/pkg/export"
)

// StatusError is recorded for runs that failed before the solver concluded.
const StatusError = "ERROR"

// Service runs load, build, solve, verify and report cycles.
type Service struct {
	cfg       *config.Config
	solver    cp.Solver
	sink      coremetrics.MetricsSink
	store     runlog.Store
	publisher mqtt.ReportPublisher
	log       logger.Logger
	now       func() time.Time
	closers   []func() error
}

// Option customises a Service.
type Option func(*Service)

// WithSolver replaces the bundled engine.
func WithSolver(s cp.Solver) Option { return func(svc *Service) { svc.solver = s } }

// WithMetricsSink replaces the configured metrics sinks.
func WithMetricsSink(s coremetrics.MetricsSink) Option {
	return func(svc *Service) { svc.sink = s }
}

// WithStore replaces the configured run history.
func WithStore(s runlog.Store) Option { return func(svc *Service) { svc.store = s } }

// WithPublisher replaces the configured MQTT publisher.
func WithPublisher(p mqtt.ReportPublisher) Option {
	return func(svc *Service) { svc.publisher = p }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option { return func(svc *Service) { svc.now = now } }

// New creates a Service from the configuration. Components not provided
// through options are built from cfg.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	if err := logger.Configure(cfg.Log); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	svc := &Service{cfg: cfg, log: logger.New("service"), now: time.Now}
	for _, o := range opts {
		o(svc)
	}
	if svc.solver == nil {
		svc.solver = cp.NewEngine(cfg.Solver, logger.New("solver"))
	}
	if svc.sink == nil {
		sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
		if err != nil {
			return nil, fmt.Errorf("metrics sink: %w", err)
		}
		svc.sink = sink
		if c, ok := sink.(interface{ Close() }); ok {
			svc.closers = append(svc.closers, func() error { c.Close(); return nil })
		}
	}
	if svc.store == nil {
		store, err := runlog.Open(cfg.RunLog)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("run log: %w", err)
		}
		svc.store = store
	}
	svc.closers = append(svc.closers, svc.store.Close)
	if svc.publisher == nil && cfg.MQTT.Enabled {
		pub, err := mqtt.NewPublisher(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		svc.publisher = pub
		svc.closers = append(svc.closers, func() error { pub.Disconnect(); return nil })
	}
	return svc, nil
}

// ServeMetrics exposes the Prometheus registry when an address is
// configured. It returns nil otherwise.
func (s *Service) ServeMetrics(ctx context.Context) *http.Server {
	if s.cfg.Metrics.PrometheusAddr == "" {
		return nil
	}
	return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr, nil, logger.New("metrics"))
}

// RunOptions tunes a single run.
type RunOptions struct {
	// Verify re-checks the schedule without the solver.
	Verify bool
	// Evaluate scores the schedule against the risk scenarios.
	Evaluate bool
}

// Solve runs one cycle on the instance at path. An infeasible instance is a
// successful run whose report carries the status; errors are returned for
// malformed input and solver failures. Every run, failed or not, is
// published to metrics, history and MQTT before Solve returns.
func (s *Service) Solve(ctx context.Context, path string, ro RunOptions) (export.Report, error) {
	started := s.now()
	report := export.Report{
		RunID:    uuid.NewString(),
		Instance: InstanceName(path),
		Status:   StatusError,
		Schedule: map[string]formulation.Assignment{},
	}
	ev := events.RunEvent{
		Solve: coremetrics.SolveEvent{
			RunID:    report.RunID,
			Instance: report.Instance,
			Phases:   map[string]time.Duration{},
			Time:     started,
		},
	}
	err := s.run(ctx, path, ro, &report, &ev)
	s.publish(ctx, &report, &ev, started, err)
	return report, err
}

func (s *Service) run(ctx context.Context, path string, ro RunOptions, report *export.Report, ev *events.RunEvent) error {
	phase := func(name string, begin time.Time) { ev.Solve.Phases[name] = s.now().Sub(begin) }

	begin := s.now()
	p, err := model.Load(path)
	phase(coremetrics.PhaseLoad, begin)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	begin = s.now()
	f, err := formulation.Build(p, s.cfg.Model, logger.New("formulation"))
	phase(coremetrics.PhaseBuild, begin)
	if err != nil {
		return fmt.Errorf("build model: %w", err)
	}
	report.Model = f.Stats()

	begin = s.now()
	res, err := f.Solve(ctx, s.solver)
	phase(coremetrics.PhaseSolve, begin)
	report.Branches = res.Stats.Branches
	report.WallTimeMS = res.Stats.WallTime.Milliseconds()
	ev.Solve.Failures = res.Stats.Failures
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}
	report.Status = res.Status.String()
	report.Schedule = res.Schedule
	if !res.Status.HasSolution() {
		s.log.Infof("instance %s: %s", report.Instance, report.Status)
		return nil
	}

	if ro.Verify {
		vr := formulation.Verify(p, res.Schedule, s.cfg.Model)
		report.Violations = vr.Violations
		for _, v := range vr.Violations {
			s.log.Warnf("violation: %s", v)
		}
		ev.Workload = make([]coremetrics.WorkloadSample, 0, len(vr.Loads))
		for _, l := range vr.Loads {
			ev.Workload = append(ev.Workload, coremetrics.WorkloadSample{
				RunID:    report.RunID,
				Resource: l.Resource,
				Period:   l.Period,
				Amount:   l.Amount,
				Min:      l.Min,
				Max:      l.Max,
				Time:     ev.Solve.Time,
			})
		}
	}
	if ro.Evaluate {
		sc, err := evaluation.Evaluate(p, res.Schedule)
		if err != nil {
			return fmt.Errorf("evaluate: %w", err)
		}
		report.Score = &sc
	}
	return nil
}

// publish fans the run out to every subscriber and waits for them to drain.
func (s *Service) publish(ctx context.Context, report *export.Report, ev *events.RunEvent, started time.Time, runErr error) {
	report.SolvedAt = s.now()
	ev.Solve.Status = report.Status
	ev.Solve.Interventions = report.Model.Interventions
	ev.Solve.Variables = report.Model.Variables
	ev.Solve.Constraints = report.Model.Constraints
	ev.Solve.Intervals = report.Model.Intervals
	ev.Solve.Branches = report.Branches
	ev.Solve.Violations = len(report.Violations)
	rec := runlog.RunRecord{
		ID:            report.RunID,
		Instance:      report.Instance,
		Status:        report.Status,
		StartedAt:     started,
		Duration:      report.SolvedAt.Sub(started),
		Interventions: report.Model.Interventions,
		Variables:     report.Model.Variables,
		Constraints:   report.Model.Constraints,
		Violations:    len(report.Violations),
	}
	if report.Score != nil {
		ev.Solve.Objective = report.Score.Objective
		rec.Objective = report.Score.Objective
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}
	if len(report.Schedule) > 0 {
		rec.Starts = make(map[string]int, len(report.Schedule))
		for name, a := range report.Schedule {
			rec.Starts[name] = a.Start
		}
	}
	ev.Record = rec
	ev.Report = report

	// Subscribers must not observe cancellation of the run itself.
	subCtx := context.WithoutCancel(ctx)
	bus := eventbus.NewTyped[events.RunEvent]()
	done := []<-chan struct{}{
		metrics.StartEventCollector(subCtx, bus, s.sink, logger.New("metrics")),
		StartRunRecorder(subCtx, bus, s.store, logger.New("runlog")),
	}
	if s.publisher != nil {
		done = append(done, mqtt.StartReportPublisher(subCtx, bus, s.publisher, logger.New("mqtt")))
	}
	if n := bus.Publish(*ev); n != len(done) {
		s.log.Warnf("run %s delivered to %d of %d subscribers", report.RunID, n, len(done))
	}
	bus.Close()
	for _, d := range done {
		<-d
	}
}

// Validate loads and builds the instance at path without solving it.
func (s *Service) Validate(path string) (formulation.Stats, error) {
	p, err := model.Load(path)
	if err != nil {
		return formulation.Stats{}, fmt.Errorf("load %s: %w", path, err)
	}
	f, err := formulation.Build(p, s.cfg.Model, logger.New("formulation"))
	if err != nil {
		return formulation.Stats{}, fmt.Errorf("build model: %w", err)
	}
	return f.Stats(), nil
}

// History queries past runs.
func (s *Service) History(ctx context.Context, q runlog.RunQuery) ([]runlog.RunRecord, error) {
	return s.store.Query(ctx, q)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var err error
	for i := len(s.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.closers[i]())
	}
	s.closers = nil
	return err
}

// InstanceName derives the instance name from its file path.
func InstanceName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
