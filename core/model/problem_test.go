package model

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestSeasonRuns(t *testing.T) {
	cases := []struct {
		name    string
		periods []Period
		want    []Run
	}{
		{"empty", nil, nil},
		{"single", []Period{4}, []Run{{4, 4}}},
		{"two runs", []Period{3, 4, 5, 7, 8}, []Run{{3, 5}, {7, 8}}},
		{"unsorted with duplicates", []Period{8, 3, 5, 4, 7, 4}, []Run{{3, 5}, {7, 8}}},
		{"three runs", []Period{1, 3, 5, 6}, []Run{{1, 1}, {3, 3}, {5, 6}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := Season{Name: c.name, Periods: c.periods}.Runs()
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("runs %v want %v", got, c.want)
			}
		})
	}
}

func validProblem() *Problem {
	return &Problem{
		T: 3,
		Resources: map[string]Resource{
			"c1": {Name: "c1", Min: []float64{0, 0, 0}, Max: []float64{5, 5, 5}},
		},
		Seasons: map[string]Season{"winter": {Name: "winter", Periods: []Period{1, 2}}},
		Interventions: map[string]Intervention{
			"I1": {Name: "I1", TMax: 2, Delta: []int{1, 1},
				Workload: map[string]map[Period]map[StartPeriod]float64{"c1": {1: {1: 2}}}},
			"I2": {Name: "I2", TMax: 3, Delta: []int{1, 1, 1}},
		},
		Exclusions: map[string]Exclusion{"E1": {Name: "E1", A: "I1", B: "I2", Season: "winter"}},
	}
}

func TestValidateAcceptsWellFormedProblem(t *testing.T) {
	if err := validProblem().Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	p := validProblem()
	p.Resources["c1"] = Resource{Name: "c1", Min: []float64{0, 6, 0}, Max: []float64{5, 5, 5}}
	p.Interventions["I3"] = Intervention{Name: "I3", TMax: 0}
	p.Interventions["I4"] = Intervention{Name: "I4", TMax: 1, Delta: []int{-1},
		Workload: map[string]map[Period]map[StartPeriod]float64{"ghost": {1: {1: 1}}, "c1": {9: {1: 1}}}}
	p.Seasons["bad"] = Season{Name: "bad", Periods: []Period{0}}
	p.Exclusions["E2"] = Exclusion{Name: "E2", A: "I1", B: "nobody", Season: "spring"}
	p.Exclusions["E3"] = Exclusion{Name: "E3", A: "I2", B: "I2", Season: "winter"}

	err := p.Validate()
	if !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected ErrMalformedInput got %v", err)
	}
	msg := err.Error()
	for _, want := range []string{
		"min 6 > max 5",
		"tmax must be at least 1",
		"empty Delta",
		"negative duration",
		"unknown resource \"ghost\"",
		"period 9 outside",
		"season \"bad\"",
		"unknown intervention \"nobody\"",
		"unknown season \"spring\"",
		"excluded with itself",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("missing %q in %s", want, msg)
		}
	}
	var mie *MalformedInputError
	if !errors.As(err, &mie) {
		t.Fatalf("expected a MalformedInputError in the chain")
	}
}

func TestValidateHorizon(t *testing.T) {
	p := validProblem()
	p.T = 0
	if err := p.Validate(); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected malformed horizon, got %v", err)
	}
}

func TestValidateShortResourceBounds(t *testing.T) {
	p := validProblem()
	p.Resources["c1"] = Resource{Name: "c1", Min: []float64{0}, Max: []float64{1}}
	if err := p.Validate(); !errors.Is(err, ErrMalformedInput) {
		t.Fatalf("expected malformed bounds, got %v", err)
	}
}

func TestInterventionLookups(t *testing.T) {
	iv := validProblem().Interventions["I1"]
	if d, ok := iv.Duration(2); !ok || d != 1 {
		t.Fatalf("duration(2) = %d, %v", d, ok)
	}
	if _, ok := iv.Duration(3); ok {
		t.Fatalf("duration beyond Delta must be undefined")
	}
	if w := iv.WorkloadAt("c1", 1, 1); w != 2 {
		t.Fatalf("workload got %g", w)
	}
	if w := iv.WorkloadAt("c1", 1, 2); w != 0 {
		t.Fatalf("undeclared workload must be zero, got %g", w)
	}
}
