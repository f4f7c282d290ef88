package formulation

import (
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/maintsched/core/model"
)

// Violation is one broken rule found by Verify.
type Violation struct {
	Kind    string `json:"kind"`
	Subject string `json:"subject"`
	Period  int    `json:"period,omitempty"`
	Detail  string `json:"detail"`
}

func (v Violation) String() string {
	if v.Period > 0 {
		return fmt.Sprintf("%s %s at %d: %s", v.Kind, v.Subject, v.Period, v.Detail)
	}
	return fmt.Sprintf("%s %s: %s", v.Kind, v.Subject, v.Detail)
}

// Violation kinds.
const (
	KindMissing   = "missing"
	KindStart     = "start"
	KindDuration  = "duration"
	KindEnd       = "end"
	KindWorkload  = "workload"
	KindExclusion = "exclusion"
	KindBounds    = "bounds"
)

// Load is the workload of a resource at one period, in input units.
type Load struct {
	Resource string  `json:"resource"`
	Period   int     `json:"period"`
	Amount   float64 `json:"amount"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// Report is the outcome of Verify.
type Report struct {
	Violations []Violation `json:"violations"`
	Loads      []Load      `json:"loads"`
}

// OK reports whether the schedule satisfies every rule.
func (r Report) OK() bool { return len(r.Violations) == 0 }

// Verify checks schedule against p without a solver. Workload bounds are
// compared in the same scaled integer units the model uses. p should have
// passed Problem.Validate; a resource without bounds for a period is reported
// as a KindBounds violation instead of being checked.
func Verify(p *model.Problem, schedule map[string]Assignment, opts Options) Report {
	opts.SetDefaults()
	var r Report
	names := p.InterventionNames()
	for _, name := range names {
		a, ok := schedule[name]
		if !ok {
			r.add(KindMissing, name, 0, "not scheduled")
			continue
		}
		r.checkAssignment(p, p.Interventions[name], name, a)
	}
	for _, c := range p.ResourceNames() {
		res := p.Resources[c]
		for t := 1; t <= p.T; t++ {
			r.checkLoad(p, names, schedule, res, c, model.Period(t), opts)
		}
	}
	for _, exName := range p.ExclusionNames() {
		ex := p.Exclusions[exName]
		a, okA := schedule[ex.A]
		b, okB := schedule[ex.B]
		if !okA || !okB {
			continue
		}
		for _, run := range p.Seasons[ex.Season].Runs() {
			ws, we := int(run.First), int(run.Last)+1
			if overlap := min(a.End, b.End, we) - max(a.Start, b.Start, ws); overlap > 0 {
				r.add(KindExclusion, exName, int(run.First),
					"%s and %s overlap for %d periods in [%d,%d]", ex.A, ex.B, overlap, run.First, run.Last)
			}
		}
	}
	return r
}

func (r *Report) add(kind, subject string, period int, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Kind: kind, Subject: subject, Period: period, Detail: fmt.Sprintf(format, args...),
	})
}

func (r *Report) checkAssignment(p *model.Problem, iv model.Intervention, name string, a Assignment) {
	if a.Start < 1 || a.Start > iv.TMax {
		r.add(KindStart, name, a.Start, "start outside 1..%d", iv.TMax)
	}
	if d, ok := iv.Duration(model.StartPeriod(a.Start)); !ok || d != a.Duration {
		r.add(KindDuration, name, a.Start, "duration %d does not match Delta", a.Duration)
	}
	if a.Start+a.Duration != a.End {
		r.add(KindEnd, name, a.Start, "start %d + duration %d != end %d", a.Start, a.Duration, a.End)
	}
	if a.End > p.T+1 {
		r.add(KindEnd, name, a.Start, "end %d after %d", a.End, p.T+1)
	}
}

func (r *Report) checkLoad(p *model.Problem, names []string, schedule map[string]Assignment, res model.Resource, c string, t model.Period, opts Options) {
	if int(t) > len(res.Min) || int(t) > len(res.Max) {
		r.add(KindBounds, c, int(t), "no workload bounds for period %d", t)
		return
	}
	var (
		amounts []float64
		scaled  int64
	)
	for _, name := range names {
		a, ok := schedule[name]
		if !ok {
			continue
		}
		iv := p.Interventions[name]
		if _, declared := iv.Workload[c][t]; !declared || a.Start < 1 || a.Start > iv.TMax {
			continue
		}
		amount := iv.WorkloadAt(c, t, model.StartPeriod(a.Start))
		amounts = append(amounts, amount)
		scaled += opts.scaleAmount(amount)
	}
	lo, hi := res.Bounds(t)
	r.Loads = append(r.Loads, Load{Resource: c, Period: int(t), Amount: floats.Sum(amounts), Min: lo, Max: hi})
	slo, shi := opts.scaleBounds(lo, hi)
	if scaled < slo || scaled > shi {
		r.add(KindWorkload, c, int(t), "load %g outside [%g,%g]", floats.Sum(amounts), lo, hi)
	}
}
