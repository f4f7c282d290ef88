package formulation

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/maintsched/core/cp"
)

// Assignment is the solved schedule of one intervention.
type Assignment struct {
	Start    int `json:"start" yaml:"start"`
	Duration int `json:"duration" yaml:"duration"`
	End      int `json:"end" yaml:"end"`
}

// Result is the outcome of a single solve attempt. Schedule is empty unless
// Status carries a solution.
type Result struct {
	Status   cp.Status
	Schedule map[string]Assignment
	Stats    cp.Stats
}

// Solve hands the model to solver once. An infeasible model is reported
// through Result.Status; only failures of the solver itself are errors.
func (f *Formulation) Solve(ctx context.Context, solver cp.Solver) (Result, error) {
	res := Result{Status: cp.StatusUnknown, Schedule: map[string]Assignment{}}
	if solver == nil {
		return res, cp.ErrSolverUnavailable
	}
	begin := time.Now()
	sol, err := solver.Solve(ctx, f.Model)
	if err != nil {
		if ctx.Err() != nil {
			f.log.Warnf("solve interrupted: %v", err)
			if sol != nil {
				res.Stats = sol.Stats
			}
			return res, err
		}
		var se *cp.SolverError
		if errors.As(err, &se) || errors.Is(err, cp.ErrSolverUnavailable) {
			return res, err
		}
		return res, &cp.SolverError{Op: "solve", Err: err}
	}
	if sol == nil {
		return res, &cp.SolverError{Op: "solve", Err: errors.New("no solution returned")}
	}
	res.Status = sol.Status
	res.Stats = sol.Stats
	if sol.Status.HasSolution() {
		for _, name := range f.names {
			v := f.vars[name]
			res.Schedule[name] = Assignment{
				Start:    int(sol.Value(v.Start)),
				Duration: int(sol.Value(v.Duration)),
				End:      int(sol.Value(v.End)),
			}
		}
	}
	f.log.Infof("solve finished with status %s in %s", res.Status, time.Since(begin).Round(time.Millisecond))
	return res, nil
}
