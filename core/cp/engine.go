package cp

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/kilianp07/maintsched/core/logger"
)

// Engine is the bundled constraint solver: propagation to fixpoint plus a
// depth-first search, run as a portfolio of workers.
type Engine struct {
	cfg Config
	log logger.Logger
}

// NewEngine returns an engine. A nil logger disables logging.
func NewEngine(cfg Config, log logger.Logger) *Engine {
	cfg.SetDefaults()
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Engine{cfg: cfg, log: log}
}

var (
	errStopped     = errors.New("search stopped")
	errBranchLimit = errors.New("branch limit reached")
)

type outcome struct {
	status Status
	values []int64
	stats  Stats
}

// Solve implements Solver.
func (e *Engine) Solve(ctx context.Context, m *Model) (*Solution, error) {
	begin := time.Now()
	if err := m.Validate(); err != nil {
		e.log.Warnf("model invalid: %v", err)
		return &Solution{Status: StatusModelInvalid}, nil
	}
	root := newStore(m)
	if root.hasEmpty() {
		e.log.Debugf("empty domain before search")
		return e.finish(m, &Solution{Status: StatusInfeasible}, begin), nil
	}
	root.enqueueAll()
	if !root.fixpoint() {
		e.log.Debugf("root propagation failed")
		return e.finish(m, &Solution{Status: StatusInfeasible}, begin), nil
	}

	searchCtx := ctx
	if limit := e.cfg.TimeLimit(); limit > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, limit)
		defer cancel()
	}
	searchCtx, stop := context.WithCancel(searchCtx)
	defer stop()

	var (
		mu      sync.Mutex
		result  *outcome
		limited bool
	)
	g, gctx := errgroup.WithContext(searchCtx)
	for id := 0; id < e.cfg.Workers; id++ {
		w := &worker{
			id:          id,
			m:           m,
			ctx:         gctx,
			maxBranches: e.cfg.MaxBranches,
			rng:         rand.New(rand.NewSource(e.cfg.Seed + int64(id))),
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &SolverError{Op: "search", Err: fmt.Errorf("worker %d: %v", w.id, r)}
				}
			}()
			found, serr := w.search(root.clone())
			mu.Lock()
			defer mu.Unlock()
			switch {
			case errors.Is(serr, errBranchLimit):
				limited = true
				e.log.Debugf("worker %d hit branch limit after %d branches", w.id, w.branches)
				return nil
			case serr != nil:
				return nil
			}
			if result != nil {
				return nil
			}
			st := Stats{Branches: w.branches, Failures: w.failures, Worker: w.id}
			if found {
				result = &outcome{status: StatusOptimal, values: w.solution, stats: st}
			} else {
				result = &outcome{status: StatusInfeasible, stats: st}
			}
			stop()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if result == nil {
		sol := e.finish(m, &Solution{Status: StatusUnknown}, begin)
		if err := ctx.Err(); err != nil {
			return sol, err
		}
		if limited {
			e.log.Infof("search exhausted its branch budget without conclusion")
		} else {
			e.log.Infof("search reached its time limit without conclusion")
		}
		return sol, nil
	}
	sol := &Solution{Status: result.status, values: result.values, Stats: result.stats}
	return e.finish(m, sol, begin), nil
}

func (e *Engine) finish(m *Model, sol *Solution, begin time.Time) *Solution {
	sol.Stats.WallTime = time.Since(begin)
	sol.Stats.Workers = e.cfg.Workers
	sol.Stats.Variables = m.NumVars()
	e.log.Debugw("search finished", map[string]any{
		"status":   sol.Status.String(),
		"branches": sol.Stats.Branches,
		"failures": sol.Stats.Failures,
		"worker":   sol.Stats.Worker,
		"wall_ms":  sol.Stats.WallTime.Milliseconds(),
	})
	return sol
}

type worker struct {
	id          int
	m           *Model
	ctx         context.Context
	maxBranches int64
	rng         *rand.Rand

	branches int64
	failures int64
	solution []int64
}

func (w *worker) search(s *store) (bool, error) {
	v, ok := w.pick(s)
	if !ok {
		w.solution = s.values()
		return true, nil
	}
	for _, val := range w.order(s.dom(v)) {
		if err := w.step(); err != nil {
			return false, err
		}
		child := s.clone()
		if !child.set(v, DomainFromValues(val)) || !child.fixpoint() {
			w.failures++
			continue
		}
		found, err := w.search(child)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

func (w *worker) step() error {
	w.branches++
	if w.maxBranches > 0 && w.branches > w.maxBranches {
		return errBranchLimit
	}
	if w.branches&0xff == 0 && w.ctx.Err() != nil {
		return errStopped
	}
	return nil
}

// pick returns the first unfixed decision variable, then the unfixed variable
// with the smallest domain.
func (w *worker) pick(s *store) (IntVar, bool) {
	for _, v := range w.m.strategy {
		if !s.dom(v).IsFixed() {
			return v, true
		}
	}
	best, bestSize := -1, 0
	for i, d := range s.doms {
		if n := d.Size(); n > 1 && (best < 0 || n < bestSize) {
			best, bestSize = i, n
		}
	}
	if best < 0 {
		return IntVar{}, false
	}
	return IntVar{index: best}, true
}

// order gives each worker its own value ordering.
func (w *worker) order(d Domain) []int64 {
	vals := d.Values()
	switch w.id {
	case 0:
	case 1:
		for i, j := 0, len(vals)-1; i < j; i, j = i+1, j-1 {
			vals[i], vals[j] = vals[j], vals[i]
		}
	default:
		w.rng.Shuffle(len(vals), func(i, j int) { vals[i], vals[j] = vals[j], vals[i] })
	}
	return vals
}
