// Package evaluation scores a solved schedule against the risk scenarios of
// its problem. The score is reported alongside a schedule; it is not used to
// steer the search.
package evaluation

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/maintsched/core/formulation"
	"github.com/kilianp07/maintsched/core/model"
)

// PeriodRisk summarises the scenario risks of one period.
type PeriodRisk struct {
	Period    int     `json:"period"`
	Scenarios int     `json:"scenarios"`
	Mean      float64 `json:"mean"`
	Quantile  float64 `json:"quantile"`
	Excess    float64 `json:"excess"`
}

// Score is the risk evaluation of a schedule.
type Score struct {
	// MeanRisk is the average over periods of the mean scenario risk.
	MeanRisk float64 `json:"mean_risk"`
	// Excess is the average over periods of max(0, quantile - mean).
	Excess float64 `json:"expected_excess"`
	// Objective is Alpha*MeanRisk + (1-Alpha)*Excess.
	Objective float64      `json:"objective"`
	Periods   []PeriodRisk `json:"periods"`
}

// Evaluate computes the risk score of schedule. Interventions missing from the
// schedule contribute no risk. It returns a zero score when the problem
// carries no risk data.
func Evaluate(p *model.Problem, schedule map[string]formulation.Assignment) (Score, error) {
	if p.Quantile < 0 || p.Quantile > 1 {
		return Score{}, fmt.Errorf("quantile %g outside [0,1]", p.Quantile)
	}
	if p.Alpha < 0 || p.Alpha > 1 {
		return Score{}, fmt.Errorf("alpha %g outside [0,1]", p.Alpha)
	}
	if !hasRisk(p) {
		return Score{}, nil
	}
	names := p.InterventionNames()
	var sc Score
	means := make([]float64, 0, p.T)
	excesses := make([]float64, 0, p.T)
	for t := 1; t <= p.T; t++ {
		risks := periodRisks(p, names, schedule, t)
		pr := PeriodRisk{Period: t, Scenarios: len(risks)}
		if len(risks) > 0 {
			pr.Mean = stat.Mean(risks, nil)
			sort.Float64s(risks)
			pr.Quantile = stat.Quantile(p.Quantile, stat.Empirical, risks, nil)
			pr.Excess = max(0, pr.Quantile-pr.Mean)
		}
		sc.Periods = append(sc.Periods, pr)
		means = append(means, pr.Mean)
		excesses = append(excesses, pr.Excess)
	}
	sc.MeanRisk = stat.Mean(means, nil)
	sc.Excess = stat.Mean(excesses, nil)
	sc.Objective = p.Alpha*sc.MeanRisk + (1-p.Alpha)*sc.Excess
	return sc, nil
}

func hasRisk(p *model.Problem) bool {
	for _, iv := range p.Interventions {
		if len(iv.Risk) > 0 {
			return true
		}
	}
	return false
}

// scenarios returns the scenario count of period t. Without an explicit count
// the widest risk vector declared for t is used.
func scenarios(p *model.Problem, names []string, t int) int {
	if t-1 < len(p.ScenariosNumber) {
		return p.ScenariosNumber[t-1]
	}
	n := 0
	for _, name := range names {
		for _, v := range p.Interventions[name].Risk[model.Period(t)] {
			n = max(n, len(v))
		}
	}
	return n
}

func periodRisks(p *model.Problem, names []string, schedule map[string]formulation.Assignment, t int) []float64 {
	n := scenarios(p, names, t)
	if n <= 0 {
		return nil
	}
	risks := make([]float64, n)
	for _, name := range names {
		a, ok := schedule[name]
		if !ok {
			continue
		}
		for s, v := range p.Interventions[name].Risk[model.Period(t)][model.StartPeriod(a.Start)] {
			if s < n {
				risks[s] += v
			}
		}
	}
	return risks
}
