package formulation

import (
	"fmt"
	"math"

	"github.com/kilianp07/maintsched/core/cp"
	"github.com/kilianp07/maintsched/core/logger"
	"github.com/kilianp07/maintsched/core/model"
)

// Options tunes how the problem is turned into integers.
type Options struct {
	// WorkloadScale multiplies workloads and resource bounds before rounding
	// them to integers. 100 keeps two decimals.
	WorkloadScale float64 `json:"workload_scale"`
}

// SetDefaults applies sane defaults.
func (o *Options) SetDefaults() {
	if o.WorkloadScale == 0 {
		o.WorkloadScale = 1
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.WorkloadScale <= 0 || math.IsInf(o.WorkloadScale, 0) || math.IsNaN(o.WorkloadScale) {
		return fmt.Errorf("workload_scale must be a positive number, got %g", o.WorkloadScale)
	}
	return nil
}

// scaleAmount converts a workload amount to model units.
func (o Options) scaleAmount(v float64) int64 {
	return int64(math.Round(v * o.WorkloadScale))
}

// scaleBounds converts resource bounds to model units without widening them.
func (o Options) scaleBounds(lo, hi float64) (int64, int64) {
	const eps = 1e-9
	return int64(math.Ceil(lo*o.WorkloadScale - eps)), int64(math.Floor(hi*o.WorkloadScale + eps))
}

// Formulation owns a constraint model built from a problem together with the
// variables a caller needs to read a schedule back.
type Formulation struct {
	Problem *model.Problem
	Model   *cp.Model
	Options Options

	names      []string
	vars       map[string]InterventionVars
	active     map[string]cp.Interval
	workload   *WorkloadTable
	exclusions []ProjectedExclusion
	log        logger.Logger
}

// Build validates p and assembles the model. A malformed problem fails before
// any variable is created.
func Build(p *model.Problem, opts Options, log logger.Logger) (*Formulation, error) {
	if log == nil {
		log = logger.NopLogger{}
	}
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	f := &Formulation{
		Problem: p,
		Model:   cp.NewModel(),
		Options: opts,
		names:   p.InterventionNames(),
		vars:    make(map[string]InterventionVars, len(p.Interventions)),
		active:  make(map[string]cp.Interval),
		log:     log,
	}
	starts := make([]cp.IntVar, 0, len(f.names))
	for _, name := range f.names {
		iv := p.Interventions[name]
		iv.Name = name
		v, err := buildInterventionVars(f.Model, p.T, iv)
		if err != nil {
			return nil, fmt.Errorf("intervention %s: %w", name, err)
		}
		f.vars[name] = v
		starts = append(starts, v.Start)
	}
	f.Model.AddDecisionStrategy(starts...)
	log.Debugf("built variables for %d interventions", len(f.names))

	f.workload = aggregateWorkload(f.Model, p, f.names, f.vars, opts)
	log.Debugf("posted %d workload bounds", p.T*len(p.Resources))

	f.projectExclusions()
	log.Debugf("projected %d exclusion windows", len(f.exclusions))

	if err := f.Model.Validate(); err != nil {
		return nil, fmt.Errorf("assemble model: %w", err)
	}
	log.Infof("model ready: %d variables, %d constraints, %d intervals",
		f.Model.NumVars(), f.Model.NumConstraints(), f.Model.NumIntervals())
	return f, nil
}

// Interventions returns the intervention names in model order.
func (f *Formulation) Interventions() []string { return append([]string(nil), f.names...) }

// Vars returns the variables of the named intervention.
func (f *Formulation) Vars(name string) (InterventionVars, bool) {
	v, ok := f.vars[name]
	return v, ok
}

// Workload exposes the per-resource, per-period sums.
func (f *Formulation) Workload() *WorkloadTable { return f.workload }

// Exclusions returns every projected exclusion window, in exclusion then run
// order.
func (f *Formulation) Exclusions() []ProjectedExclusion {
	return append([]ProjectedExclusion(nil), f.exclusions...)
}

// Stats summarises the size of the model.
type Stats struct {
	Interventions int `json:"interventions"`
	Variables     int `json:"variables"`
	Constraints   int `json:"constraints"`
	Intervals     int `json:"intervals"`
	Contributions int `json:"workload_contributions"`
	Windows       int `json:"exclusion_windows"`
}

// Stats reports the size of the assembled model.
func (f *Formulation) Stats() Stats {
	return Stats{
		Interventions: len(f.names),
		Variables:     f.Model.NumVars(),
		Constraints:   f.Model.NumConstraints(),
		Intervals:     f.Model.NumIntervals(),
		Contributions: f.workload.NumContributions(),
		Windows:       len(f.exclusions),
	}
}

// activeInterval returns the shared [Start, End) interval of an intervention.
func (f *Formulation) activeInterval(name string) cp.Interval {
	if iv, ok := f.active[name]; ok {
		return iv
	}
	v := f.vars[name]
	iv := f.Model.NewInterval(v.Start, v.Duration, v.End, "interval_"+name)
	f.active[name] = iv
	return iv
}
