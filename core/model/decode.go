package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"go.uber.org/multierr"
)

// flexNumber decodes a JSON number or a string holding a number.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		b = []byte(s)
	}
	v, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid number %s", b)
	}
	*n = flexNumber(v)
	return nil
}

func (n flexNumber) int() (int, bool) {
	v := float64(n)
	if v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

type rawResource struct {
	Min []float64 `json:"min"`
	Max []float64 `json:"max"`
}

type rawIntervention struct {
	TMax     flexNumber                                `json:"tmax"`
	Delta    []flexNumber                              `json:"Delta"`
	Workload map[string]map[string]map[string]float64 `json:"workload"`
	Risk     map[string]map[string][]float64          `json:"risk"`
}

type rawProblem struct {
	Resources       map[string]rawResource     `json:"Resources"`
	Seasons         map[string][]flexNumber    `json:"Seasons"`
	Interventions   map[string]rawIntervention `json:"Interventions"`
	Exclusions      map[string][]string        `json:"Exclusions"`
	T               flexNumber                 `json:"T"`
	ScenariosNumber []flexNumber               `json:"Scenarios_number"`
	Quantile        flexNumber                 `json:"Quantile"`
	Alpha           flexNumber                 `json:"Alpha"`
}

// Load reads a problem from a JSON file.
func Load(path string) (*Problem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open problem: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f)
}

// Decode reads a problem in the challenge JSON layout. Integers may be given
// as numbers or numeric strings. The result is not validated; call
// Problem.Validate before use.
func Decode(r io.Reader) (*Problem, error) {
	var raw rawProblem
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode problem: %w", err)
	}
	return raw.convert()
}

func (raw rawProblem) convert() (*Problem, error) {
	var err error
	t, ok := raw.T.int()
	if !ok {
		err = multierr.Append(err, malformed("horizon", "", "T %g is not an integer", float64(raw.T)))
	}
	p := &Problem{
		T:             t,
		Resources:     make(map[string]Resource, len(raw.Resources)),
		Seasons:       make(map[string]Season, len(raw.Seasons)),
		Interventions: make(map[string]Intervention, len(raw.Interventions)),
		Exclusions:    make(map[string]Exclusion, len(raw.Exclusions)),
		Quantile:      float64(raw.Quantile),
		Alpha:         float64(raw.Alpha),
	}
	for _, n := range raw.ScenariosNumber {
		v, ok := n.int()
		if !ok {
			err = multierr.Append(err, malformed("scenarios", "", "count %g is not an integer", float64(n)))
		}
		p.ScenariosNumber = append(p.ScenariosNumber, v)
	}
	for name, r := range raw.Resources {
		p.Resources[name] = Resource{Name: name, Min: r.Min, Max: r.Max}
	}
	for name, periods := range raw.Seasons {
		s := Season{Name: name, Periods: make([]Period, 0, len(periods))}
		for _, n := range periods {
			v, ok := n.int()
			if !ok {
				err = multierr.Append(err, malformed("season", name, "period %g is not an integer", float64(n)))
				continue
			}
			s.Periods = append(s.Periods, Period(v))
		}
		p.Seasons[name] = s
	}
	for name, ri := range raw.Interventions {
		iv, ierr := ri.convert(name)
		err = multierr.Append(err, ierr)
		p.Interventions[name] = iv
	}
	for name, refs := range raw.Exclusions {
		if len(refs) != 3 {
			err = multierr.Append(err, malformed("exclusion", name, "expected [A, B, season], got %d entries", len(refs)))
			continue
		}
		p.Exclusions[name] = Exclusion{Name: name, A: refs[0], B: refs[1], Season: refs[2]}
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (ri rawIntervention) convert(name string) (Intervention, error) {
	var err error
	tmax, ok := ri.TMax.int()
	if !ok {
		err = multierr.Append(err, malformed("intervention", name, "tmax %g is not an integer", float64(ri.TMax)))
	}
	iv := Intervention{
		Name:     name,
		TMax:     tmax,
		Delta:    make([]int, 0, len(ri.Delta)),
		Workload: make(map[string]map[Period]map[StartPeriod]float64, len(ri.Workload)),
		Risk:     make(map[Period]map[StartPeriod][]float64, len(ri.Risk)),
	}
	for i, d := range ri.Delta {
		v, ok := d.int()
		if !ok {
			err = multierr.Append(err, malformed("intervention", name, "duration %g at start %d is not an integer", float64(d), i+1))
		}
		iv.Delta = append(iv.Delta, v)
	}
	for res, byPeriod := range ri.Workload {
		table := make(map[Period]map[StartPeriod]float64, len(byPeriod))
		for tk, byStart := range byPeriod {
			t, terr := strconv.Atoi(tk)
			if terr != nil {
				err = multierr.Append(err, malformed("intervention", name, "workload period key %q", tk))
				continue
			}
			row := make(map[StartPeriod]float64, len(byStart))
			for sk, amount := range byStart {
				s, serr := strconv.Atoi(sk)
				if serr != nil {
					err = multierr.Append(err, malformed("intervention", name, "workload start key %q", sk))
					continue
				}
				row[StartPeriod(s)] = amount
			}
			table[Period(t)] = row
		}
		iv.Workload[res] = table
	}
	for tk, byStart := range ri.Risk {
		t, terr := strconv.Atoi(tk)
		if terr != nil {
			err = multierr.Append(err, malformed("intervention", name, "risk period key %q", tk))
			continue
		}
		row := make(map[StartPeriod][]float64, len(byStart))
		for sk, scenarios := range byStart {
			s, serr := strconv.Atoi(sk)
			if serr != nil {
				err = multierr.Append(err, malformed("intervention", name, "risk start key %q", sk))
				continue
			}
			row[StartPeriod(s)] = scenarios
		}
		iv.Risk[Period(t)] = row
	}
	return iv, err
}
