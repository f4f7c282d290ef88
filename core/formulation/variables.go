package formulation

import (
	"github.com/kilianp07/maintsched/core/cp"
	"github.com/kilianp07/maintsched/core/model"
)

// InterventionVars are the decision variables of one intervention. The
// intervention is active over the half-open range [Start, End).
type InterventionVars struct {
	Name     string
	Start    cp.IntVar
	Duration cp.IntVar
	End      cp.IntVar
	// DurationLookup ties Duration to Delta[Start-1].
	DurationLookup Lookup
}

// endValues lists the end periods reachable from a valid start that complete
// by horizon+1.
func endValues(horizon int, iv model.Intervention) []int64 {
	var ends []int64
	for i, delta := range iv.Delta {
		if i >= iv.TMax {
			break
		}
		if end := i + delta + 1; end <= horizon+1 {
			ends = append(ends, int64(end))
		}
	}
	return ends
}

func buildInterventionVars(m *cp.Model, horizon int, iv model.Intervention) (InterventionVars, error) {
	if err := model.ValidateIntervention(iv); err != nil {
		return InterventionVars{}, err
	}
	start := m.NewIntVar(1, int64(iv.TMax), "start_time_"+iv.Name)
	end := m.NewIntVarFromDomain(cp.DomainFromValues(endValues(horizon, iv)...), "end_time_"+iv.Name)

	delta := make([]int64, len(iv.Delta))
	for i, d := range iv.Delta {
		delta[i] = int64(d)
	}
	dur := lookup(m, start, 1, delta, "duration_"+iv.Name)

	m.AddEquality(cp.Sum(start, dur.Result).AddTerm(end, -1), 0)
	return InterventionVars{
		Name:           iv.Name,
		Start:          start,
		Duration:       dur.Result,
		End:            end,
		DurationLookup: dur,
	}, nil
}
