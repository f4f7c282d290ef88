package formulation

import (
	"fmt"

	"github.com/kilianp07/maintsched/core/cp"
	"github.com/kilianp07/maintsched/core/model"
)

// Projection is an intervention's active interval clamped into a window. It
// has zero length when the intervention does not reach the window.
type Projection struct {
	Start    cp.IntVar
	End      cp.IntVar
	Duration cp.IntVar
	Interval cp.Interval
}

// ProjectedExclusion is the no-overlap posted for one exclusion on one
// contiguous run of its season.
type ProjectedExclusion struct {
	Exclusion model.Exclusion
	Run       model.Run
	// A is intervention A clamped into [Run.First, Run.Last+1).
	A Projection
	// B is the full active interval of intervention B.
	B cp.Interval
}

// Window returns the run as the half-open range [first, last+1).
func (pe ProjectedExclusion) Window() (int64, int64) {
	return int64(pe.Run.First), int64(pe.Run.Last) + 1
}

func (f *Formulation) projectExclusions() {
	for _, name := range f.Problem.ExclusionNames() {
		ex := f.Problem.Exclusions[name]
		ex.Name = name
		runs := f.Problem.Seasons[ex.Season].Runs()
		if len(runs) == 0 {
			f.log.Debugf("exclusion %s: season %q has no period", name, ex.Season)
			continue
		}
		for _, run := range runs {
			f.exclusions = append(f.exclusions, f.projectRun(ex, run))
		}
	}
}

// projectRun clamps A into the run window with
// start' = min(max(start, first), last+1) and end' = max(min(end, last+1), first)
// and forbids the clamped interval from overlapping B.
func (f *Formulation) projectRun(ex model.Exclusion, run model.Run) ProjectedExclusion {
	m := f.Model
	a := f.vars[ex.A]
	ws, we := int64(run.First), int64(run.Last)+1
	tag := fmt.Sprintf("%s_from%d_to%d", ex.Name, run.First, run.Last)
	tmax := int64(f.Problem.Interventions[ex.A].TMax)

	lower := m.NewIntVar(ws, max(tmax, ws), "ov_lower_a_"+tag)
	m.AddMaxEquality(lower, a.Start, m.NewConstant(ws))
	start := m.NewIntVar(ws, we, "ov_start_a_"+tag)
	m.AddMinEquality(start, lower, m.NewConstant(we))

	upper := m.NewIntVar(min(1, ws), we, "ov_upper_a_"+tag)
	m.AddMinEquality(upper, a.End, m.NewConstant(we))
	end := m.NewIntVar(ws, we, "ov_end_a_"+tag)
	m.AddMaxEquality(end, upper, m.NewConstant(ws))

	dur := m.NewIntVar(0, we-ws, "ov_dur_a_"+tag)
	projected := m.NewInterval(start, dur, end, "interval_a_in_f_"+tag)

	b := f.activeInterval(ex.B)
	m.AddNoOverlap(projected, b)
	return ProjectedExclusion{
		Exclusion: ex,
		Run:       run,
		A:         Projection{Start: start, End: end, Duration: dur, Interval: projected},
		B:         b,
	}
}
