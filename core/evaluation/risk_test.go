package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/maintsched/core/formulation"
	"github.com/kilianp07/maintsched/core/model"
)

func riskProblem() *model.Problem {
	return &model.Problem{
		T:               2,
		ScenariosNumber: []int{4, 2},
		Quantile:        0.75,
		Alpha:           0.5,
		Interventions: map[string]model.Intervention{
			"I1": {TMax: 2, Delta: []int{1, 1}, Risk: map[model.Period]map[model.StartPeriod][]float64{
				1: {1: {1, 2, 3, 10}},
				2: {1: {4, 4}, 2: {1, 1}},
			}},
			"I2": {TMax: 1, Delta: []int{2}, Risk: map[model.Period]map[model.StartPeriod][]float64{
				1: {1: {1, 1, 1, 1}},
			}},
		},
	}
}

func TestEvaluate(t *testing.T) {
	p := riskProblem()
	sc, err := Evaluate(p, map[string]formulation.Assignment{
		"I1": {Start: 1, Duration: 1, End: 2},
		"I2": {Start: 1, Duration: 2, End: 3},
	})
	require.NoError(t, err)
	require.Len(t, sc.Periods, 2)

	// period 1 scenarios: 2 3 4 11, mean 5, 75% quantile 4, no excess
	p1 := sc.Periods[0]
	assert.Equal(t, 4, p1.Scenarios)
	assert.InDelta(t, 5.0, p1.Mean, 1e-9)
	assert.InDelta(t, 4.0, p1.Quantile, 1e-9)
	assert.InDelta(t, 0.0, p1.Excess, 1e-9)

	// period 2 scenarios: 4 4
	p2 := sc.Periods[1]
	assert.InDelta(t, 4.0, p2.Mean, 1e-9)
	assert.InDelta(t, 0.0, p2.Excess, 1e-9)

	assert.InDelta(t, 4.5, sc.MeanRisk, 1e-9)
	assert.InDelta(t, 2.25, sc.Objective, 1e-9)
}

func TestEvaluateExcess(t *testing.T) {
	p := riskProblem()
	p.Quantile = 1
	sc, err := Evaluate(p, map[string]formulation.Assignment{"I1": {Start: 1}})
	require.NoError(t, err)
	// period 1 scenarios: 1 2 3 10, mean 4, max 10
	assert.InDelta(t, 6.0, sc.Periods[0].Excess, 1e-9)
	assert.InDelta(t, 3.0, sc.Excess, 1e-9)
	assert.False(t, math.IsNaN(sc.Objective))
}

func TestEvaluateWithoutRisk(t *testing.T) {
	p := &model.Problem{T: 3, Interventions: map[string]model.Intervention{"I1": {TMax: 1, Delta: []int{1}}}}
	sc, err := Evaluate(p, nil)
	require.NoError(t, err)
	assert.Empty(t, sc.Periods)
	assert.Zero(t, sc.Objective)
}

func TestEvaluateRejectsBadParameters(t *testing.T) {
	p := riskProblem()
	p.Quantile = 1.5
	_, err := Evaluate(p, nil)
	assert.Error(t, err)

	p = riskProblem()
	p.Alpha = -0.1
	_, err = Evaluate(p, nil)
	assert.Error(t, err)
}
