package formulation

import (
	"fmt"
	"sort"

	"github.com/kilianp07/maintsched/core/cp"
	"github.com/kilianp07/maintsched/core/model"
)

// Contribution is the workload one intervention puts on a resource at a
// period, as a function of its start.
type Contribution struct {
	Intervention string
	Lookup       Lookup
}

// Workload returns the variable holding the contributed amount.
func (c Contribution) Workload() cp.IntVar { return c.Lookup.Result }

type periodLoad struct {
	sum           cp.LinearExpr
	lo, hi        int64
	contributions []Contribution
}

// WorkloadTable holds, per resource and period, the summed workload
// expression and its bounds in model units. It is built once by Build and
// read-only afterwards.
type WorkloadTable struct {
	horizon int
	loads   map[string][]periodLoad
}

// Resources returns the resource names in sorted order.
func (w *WorkloadTable) Resources() []string {
	return sortedKeys(w.loads)
}

func (w *WorkloadTable) at(resource string, t model.Period) (periodLoad, bool) {
	loads, ok := w.loads[resource]
	if !ok || t < 1 || int(t) > w.horizon {
		return periodLoad{}, false
	}
	return loads[t-1], true
}

// Sum returns the summed workload expression of resource at period t.
func (w *WorkloadTable) Sum(resource string, t model.Period) (cp.LinearExpr, bool) {
	l, ok := w.at(resource, t)
	return l.sum, ok
}

// Bounds returns the scaled inclusive bounds posted on Sum(resource, t).
func (w *WorkloadTable) Bounds(resource string, t model.Period) (lo, hi int64, ok bool) {
	l, ok := w.at(resource, t)
	return l.lo, l.hi, ok
}

// Contributions lists the interventions that may load resource at period t.
func (w *WorkloadTable) Contributions(resource string, t model.Period) []Contribution {
	l, _ := w.at(resource, t)
	return append([]Contribution(nil), l.contributions...)
}

// NumContributions counts every per-intervention workload variable.
func (w *WorkloadTable) NumContributions() int {
	n := 0
	for _, loads := range w.loads {
		for _, l := range loads {
			n += len(l.contributions)
		}
	}
	return n
}

// startTable lays out the workload of one (resource, period) pair over every
// start 1..tmax. Starts with no declared workload contribute zero.
func startTable(iv model.Intervention, byStart map[model.StartPeriod]float64, opts Options) []int64 {
	table := make([]int64, iv.TMax)
	for s := 1; s <= iv.TMax; s++ {
		table[s-1] = opts.scaleAmount(byStart[model.StartPeriod(s)])
	}
	return table
}

func aggregateWorkload(m *cp.Model, p *model.Problem, names []string, vars map[string]InterventionVars, opts Options) *WorkloadTable {
	w := &WorkloadTable{horizon: p.T, loads: make(map[string][]periodLoad, len(p.Resources))}
	resources := p.ResourceNames()
	for _, c := range resources {
		w.loads[c] = make([]periodLoad, p.T)
	}
	for t := 1; t <= p.T; t++ {
		period := model.Period(t)
		for _, c := range resources {
			var (
				contributions []Contribution
				terms         []cp.IntVar
			)
			for _, name := range names {
				iv := p.Interventions[name]
				byStart, ok := iv.Workload[c][period]
				if !ok {
					continue
				}
				lk := lookup(m, vars[name].Start, 1, startTable(iv, byStart, opts),
					fmt.Sprintf("workload_%s_%s_%d", name, c, t))
				contributions = append(contributions, Contribution{Intervention: name, Lookup: lk})
				terms = append(terms, lk.Result)
			}
			sum := cp.Sum(terms...)
			lo, hi := opts.scaleBounds(p.Resources[c].Bounds(period))
			m.AddLinear(sum, lo, hi)
			w.loads[c][t-1] = periodLoad{sum: sum, lo: lo, hi: hi, contributions: contributions}
		}
	}
	return w
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
