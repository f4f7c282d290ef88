package model

import "go.uber.org/multierr"

// Validate checks the semantic invariants of the problem and returns every
// violation found, combined. It returns nil for a well-formed problem.
func (p *Problem) Validate() error {
	if p == nil {
		return malformed("problem", "", "missing")
	}
	var err error
	if p.T < 1 {
		err = multierr.Append(err, malformed("horizon", "", "T must be at least 1, got %d", p.T))
		return err
	}
	for _, name := range p.ResourceNames() {
		err = multierr.Append(err, p.validateResource(name, p.Resources[name]))
	}
	for _, name := range sortedKeys(p.Seasons) {
		for _, t := range p.Seasons[name].Periods {
			if t < 1 || int(t) > p.T {
				err = multierr.Append(err, malformed("season", name, "period %d outside 1..%d", t, p.T))
			}
		}
	}
	for _, name := range p.InterventionNames() {
		err = multierr.Append(err, p.validateIntervention(name, p.Interventions[name]))
	}
	for _, name := range p.ExclusionNames() {
		err = multierr.Append(err, p.validateExclusion(name, p.Exclusions[name]))
	}
	return err
}

func (p *Problem) validateResource(name string, r Resource) error {
	if len(r.Min) < p.T || len(r.Max) < p.T {
		return malformed("resource", name, "bounds cover %d/%d periods, need %d", len(r.Min), len(r.Max), p.T)
	}
	var err error
	for t := 0; t < p.T; t++ {
		if r.Min[t] > r.Max[t] {
			err = multierr.Append(err, malformed("resource", name, "min %g > max %g at period %d", r.Min[t], r.Max[t], t+1))
		}
	}
	return err
}

// ValidateIntervention checks the invariants needed before variables can be
// built for iv.
func ValidateIntervention(iv Intervention) error {
	var err error
	if iv.TMax < 1 {
		err = multierr.Append(err, malformed("intervention", iv.Name, "tmax must be at least 1, got %d", iv.TMax))
	}
	if len(iv.Delta) == 0 {
		err = multierr.Append(err, malformed("intervention", iv.Name, "empty Delta"))
	}
	for i, d := range iv.Delta {
		if d < 0 {
			err = multierr.Append(err, malformed("intervention", iv.Name, "negative duration %d at start %d", d, i+1))
		}
	}
	return err
}

func (p *Problem) validateIntervention(name string, iv Intervention) error {
	err := ValidateIntervention(iv)
	for _, res := range sortedKeys(iv.Workload) {
		if _, ok := p.Resources[res]; !ok {
			err = multierr.Append(err, malformed("intervention", name, "workload on unknown resource %q", res))
			continue
		}
		for t := range iv.Workload[res] {
			if t < 1 || int(t) > p.T {
				err = multierr.Append(err, malformed("intervention", name, "workload of %q at period %d outside 1..%d", res, t, p.T))
			}
		}
	}
	return err
}

func (p *Problem) validateExclusion(name string, ex Exclusion) error {
	var err error
	for _, ref := range []string{ex.A, ex.B} {
		if _, ok := p.Interventions[ref]; !ok {
			err = multierr.Append(err, malformed("exclusion", name, "unknown intervention %q", ref))
		}
	}
	if ex.A == ex.B {
		err = multierr.Append(err, malformed("exclusion", name, "intervention %q excluded with itself", ex.A))
	}
	if _, ok := p.Seasons[ex.Season]; !ok {
		err = multierr.Append(err, malformed("exclusion", name, "unknown season %q", ex.Season))
	}
	return err
}
