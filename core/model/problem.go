package model

import "sort"

// Period is an absolute scheduling period in 1..T.
type Period int

// StartPeriod is the period at which an intervention starts. Workload and
// risk tables are keyed first by Period, then by StartPeriod.
type StartPeriod int

// Problem is a maintenance-scheduling instance.
type Problem struct {
	// T is the horizon. Periods run 1..T and every intervention must be
	// completed by T+1.
	T             int
	Resources     map[string]Resource
	Seasons       map[string]Season
	Interventions map[string]Intervention
	Exclusions    map[string]Exclusion
	// ScenariosNumber gives the number of risk scenarios of period t at t-1.
	ScenariosNumber []int
	Quantile        float64
	Alpha           float64
}

// Resource is a capacity shared by interventions. Min and Max are indexed by
// t-1.
type Resource struct {
	Name string
	Min  []float64
	Max  []float64
}

// Bounds returns the inclusive workload bounds of period t.
func (r Resource) Bounds(t Period) (lo, hi float64) {
	return r.Min[t-1], r.Max[t-1]
}

// Season is a labelled, possibly discontiguous set of periods.
type Season struct {
	Name    string
	Periods []Period
}

// Run is a maximal contiguous range [First, Last] of season periods.
type Run struct {
	First Period `json:"first"`
	Last  Period `json:"last"`
}

// Runs partitions the season into its maximal contiguous runs, in increasing
// order. Duplicate periods are ignored.
func (s Season) Runs() []Run {
	if len(s.Periods) == 0 {
		return nil
	}
	periods := append([]Period(nil), s.Periods...)
	sort.Slice(periods, func(i, j int) bool { return periods[i] < periods[j] })
	runs := []Run{{First: periods[0], Last: periods[0]}}
	for _, p := range periods[1:] {
		cur := &runs[len(runs)-1]
		switch {
		case p <= cur.Last:
		case p == cur.Last+1:
			cur.Last = p
		default:
			runs = append(runs, Run{First: p, Last: p})
		}
	}
	return runs
}

// Intervention is a schedulable maintenance task.
type Intervention struct {
	Name string
	// TMax is the latest permissible start period.
	TMax int
	// Delta[i] is the duration when starting at period i+1.
	Delta []int
	// Workload maps resource -> period -> start period -> amount.
	Workload map[string]map[Period]map[StartPeriod]float64
	// Risk maps period -> start period -> per-scenario risk.
	Risk map[Period]map[StartPeriod][]float64
}

// Duration returns the duration when starting at start, if defined.
func (iv Intervention) Duration(start StartPeriod) (int, bool) {
	i := int(start) - 1
	if i < 0 || i >= len(iv.Delta) {
		return 0, false
	}
	return iv.Delta[i], true
}

// WorkloadAt returns the amount of resource consumed at period t when the
// intervention starts at start. Undeclared entries consume nothing.
func (iv Intervention) WorkloadAt(resource string, t Period, start StartPeriod) float64 {
	return iv.Workload[resource][t][start]
}

// Exclusion forbids A and B from being active together inside any run of
// Season.
type Exclusion struct {
	Name   string
	A      string
	B      string
	Season string
}

// InterventionNames returns the intervention names in sorted order.
func (p *Problem) InterventionNames() []string {
	return sortedKeys(p.Interventions)
}

// ResourceNames returns the resource names in sorted order.
func (p *Problem) ResourceNames() []string {
	return sortedKeys(p.Resources)
}

// ExclusionNames returns the exclusion names in sorted order.
func (p *Problem) ExclusionNames() []string {
	return sortedKeys(p.Exclusions)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
