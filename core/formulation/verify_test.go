package formulation

import (
	"testing"

	"github.com/kilianp07/maintsched/core/model"
)

func kinds(r Report) map[string]int {
	out := map[string]int{}
	for _, v := range r.Violations {
		out[v.Kind]++
	}
	return out
}

func TestVerifyFindsViolations(t *testing.T) {
	p := exclusionProblem([]model.Period{3, 4, 5, 7, 8})
	p.Resources["c"] = flatResource("c", 10, 0, 1)
	iv := p.Interventions["B"]
	iv.Workload = map[string]map[model.Period]map[model.StartPeriod]float64{"c": {8: {8: 3}}}
	p.Interventions["B"] = iv

	rep := Verify(p, map[string]Assignment{
		"A": {Start: 7, Duration: 1, End: 8},
		"B": {Start: 8, Duration: 1, End: 9},
	}, Options{})
	got := kinds(rep)
	if got[KindDuration] != 1 || got[KindEnd] != 0 {
		t.Fatalf("unexpected violations %v", rep.Violations)
	}
	if got[KindWorkload] != 1 {
		t.Fatalf("expected workload violation, got %v", rep.Violations)
	}
	if len(rep.Loads) != 10 || rep.Loads[7].Amount != 3 {
		t.Fatalf("unexpected loads %+v", rep.Loads)
	}

	rep = Verify(p, map[string]Assignment{
		"A": {Start: 7, Duration: 2, End: 9},
		"B": {Start: 8, Duration: 1, End: 9},
	}, Options{})
	if kinds(rep)[KindExclusion] != 1 {
		t.Fatalf("expected exclusion violation, got %v", rep.Violations)
	}
}

func TestVerifyMissingAndOutOfRange(t *testing.T) {
	p := exclusionProblem(nil)
	rep := Verify(p, map[string]Assignment{"A": {Start: 10, Duration: 1, End: 11}}, Options{})
	got := kinds(rep)
	if got[KindMissing] != 1 || got[KindStart] != 1 || got[KindDuration] != 1 {
		t.Fatalf("unexpected violations %v", rep.Violations)
	}
	if rep.OK() {
		t.Fatalf("report must not be OK")
	}
}

func TestVerifyKeepsNamesVerbatim(t *testing.T) {
	p := exclusionProblem([]model.Period{3, 4, 5, 7, 8})
	p.Interventions["A%v"] = p.Interventions["A"]
	delete(p.Interventions, "A")
	p.Exclusions = map[string]model.Exclusion{"E%d": {A: "A%v", B: "B", Season: "summer"}}

	rep := Verify(p, map[string]Assignment{
		"A%v": {Start: 7, Duration: 2, End: 9},
		"B":   {Start: 8, Duration: 1, End: 9},
	}, Options{})
	if len(rep.Violations) != 1 {
		t.Fatalf("expected one violation, got %v", rep.Violations)
	}
	v := rep.Violations[0]
	if v.Kind != KindExclusion || v.Subject != "E%d" {
		t.Fatalf("unexpected violation %+v", v)
	}
	if want := "A%v and B overlap for 1 periods in [7,8]"; v.Detail != want {
		t.Fatalf("detail %q, want %q", v.Detail, want)
	}
}

func TestVerifyShortResourceBounds(t *testing.T) {
	p := exclusionProblem(nil)
	p.Resources["c"] = flatResource("c", 4, 0, 1)

	rep := Verify(p, map[string]Assignment{
		"A": {Start: 1, Duration: 1, End: 2},
		"B": {Start: 1, Duration: 1, End: 2},
	}, Options{})
	got := kinds(rep)
	if got[KindBounds] != 6 {
		t.Fatalf("expected a bounds violation for periods 5..10, got %v", rep.Violations)
	}
	if len(rep.Loads) != 4 {
		t.Fatalf("expected loads for the 4 bounded periods, got %d", len(rep.Loads))
	}
}
