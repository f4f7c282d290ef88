package cp

import (
	"fmt"
)

// IntVar is a handle on an integer variable owned by a Model.
type IntVar struct {
	index int
}

// Index returns the position of the variable inside its model.
func (v IntVar) Index() int { return v.index }

// Interval couples start, size and end variables with start + size == end.
type Interval struct {
	Name  string
	Start IntVar
	Size  IntVar
	End   IntVar
}

type varInfo struct {
	name   string
	domain Domain
}

// Model collects variables and constraints. It is built once and must not be
// modified while a solver is running on it.
type Model struct {
	vars        []varInfo
	constraints []constraint
	watchers    [][]int
	intervals   []Interval
	constants   map[int64]IntVar
	strategy    []IntVar
	err         error
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{constants: make(map[int64]IntVar)}
}

// NewIntVar creates a variable with domain [lo, hi].
func (m *Model) NewIntVar(lo, hi int64, name string) IntVar {
	return m.NewIntVarFromDomain(NewDomain(lo, hi), name)
}

// NewIntVarFromDomain creates a variable restricted to d. An empty domain is
// accepted and makes the model infeasible.
func (m *Model) NewIntVarFromDomain(d Domain, name string) IntVar {
	m.vars = append(m.vars, varInfo{name: name, domain: d})
	m.watchers = append(m.watchers, nil)
	return IntVar{index: len(m.vars) - 1}
}

// NewConstant returns a fixed variable. Constants are shared per value.
func (m *Model) NewConstant(v int64) IntVar {
	if c, ok := m.constants[v]; ok {
		return c
	}
	c := m.NewIntVarFromDomain(DomainFromValues(v), fmt.Sprintf("const_%d", v))
	m.constants[v] = c
	return c
}

// NumVars returns the number of variables, constants included.
func (m *Model) NumVars() int { return len(m.vars) }

// NumConstraints returns the number of posted constraints.
func (m *Model) NumConstraints() int { return len(m.constraints) }

// NumIntervals returns the number of interval records.
func (m *Model) NumIntervals() int { return len(m.intervals) }

// Name returns the variable name.
func (m *Model) Name(v IntVar) string {
	if !m.owns(v) {
		return ""
	}
	return m.vars[v.index].name
}

// Domain returns the initial domain of v.
func (m *Model) Domain(v IntVar) Domain {
	if !m.owns(v) {
		return Domain{}
	}
	return m.vars[v.index].domain
}

// Err returns the first construction error recorded on the model.
func (m *Model) Err() error { return m.err }

// AddDecisionStrategy marks variables to branch on first, in order.
func (m *Model) AddDecisionStrategy(vars ...IntVar) {
	for _, v := range vars {
		if !m.check(v, "decision strategy") {
			return
		}
	}
	m.strategy = append(m.strategy, vars...)
}

// AddElement posts target == table[index - offset].
func (m *Model) AddElement(index IntVar, offset int64, table []int64, target IntVar) {
	if !m.check(index, "element index") || !m.check(target, "element target") {
		return
	}
	if len(table) == 0 {
		m.fail(fmt.Errorf("element on %s: empty table", m.Name(target)))
		return
	}
	m.post(&elementConstraint{
		index:  index,
		offset: offset,
		table:  append([]int64(nil), table...),
		target: target,
	})
}

// AddLinear posts lo <= expr <= hi.
func (m *Model) AddLinear(expr LinearExpr, lo, hi int64) {
	for _, t := range expr.terms {
		if !m.check(t.Var, "linear term") {
			return
		}
	}
	m.post(&linearConstraint{terms: expr.Terms(), constant: expr.constant, lo: lo, hi: hi})
}

// AddEquality posts expr == v.
func (m *Model) AddEquality(expr LinearExpr, v int64) {
	m.AddLinear(expr, v, v)
}

// AddMaxEquality posts target == max(args).
func (m *Model) AddMaxEquality(target IntVar, args ...IntVar) {
	m.addExtremum(target, args, true)
}

// AddMinEquality posts target == min(args).
func (m *Model) AddMinEquality(target IntVar, args ...IntVar) {
	m.addExtremum(target, args, false)
}

func (m *Model) addExtremum(target IntVar, args []IntVar, isMax bool) {
	if !m.check(target, "min/max target") {
		return
	}
	if len(args) == 0 {
		m.fail(fmt.Errorf("min/max on %s: no arguments", m.Name(target)))
		return
	}
	for _, a := range args {
		if !m.check(a, "min/max argument") {
			return
		}
	}
	m.post(&extremumConstraint{target: target, args: append([]IntVar(nil), args...), isMax: isMax})
}

// NewInterval creates an interval and posts start + size == end.
func (m *Model) NewInterval(start, size, end IntVar, name string) Interval {
	iv := Interval{Name: name, Start: start, Size: size, End: end}
	if !m.check(start, "interval start") || !m.check(size, "interval size") || !m.check(end, "interval end") {
		return iv
	}
	m.AddEquality(Sum(start, size).AddTerm(end, -1), 0)
	m.intervals = append(m.intervals, iv)
	return iv
}

// AddNoOverlap forbids any two intervals from sharing a time unit.
// Intervals of size zero never conflict.
func (m *Model) AddNoOverlap(intervals ...Interval) {
	for _, iv := range intervals {
		if !m.check(iv.Start, "no-overlap start") || !m.check(iv.Size, "no-overlap size") || !m.check(iv.End, "no-overlap end") {
			return
		}
	}
	if len(intervals) < 2 {
		return
	}
	m.post(&noOverlapConstraint{intervals: append([]Interval(nil), intervals...)})
}

// Validate reports whether the model can be handed to a solver.
func (m *Model) Validate() error {
	if m == nil {
		return fmt.Errorf("nil model")
	}
	return m.err
}

func (m *Model) post(c constraint) {
	idx := len(m.constraints)
	m.constraints = append(m.constraints, c)
	seen := make(map[int]bool)
	for _, v := range c.scope() {
		if seen[v.index] {
			continue
		}
		seen[v.index] = true
		m.watchers[v.index] = append(m.watchers[v.index], idx)
	}
}

func (m *Model) owns(v IntVar) bool {
	return v.index >= 0 && v.index < len(m.vars)
}

func (m *Model) check(v IntVar, what string) bool {
	if m.owns(v) {
		return true
	}
	m.fail(fmt.Errorf("%s: variable %d does not belong to the model", what, v.index))
	return false
}

func (m *Model) fail(err error) {
	if m.err == nil {
		m.err = err
	}
}

// Term is one coefficient-variable product of a linear expression.
type Term struct {
	Var  IntVar
	Coef int64
}

// LinearExpr is sum(coef * var) + constant. Methods return new expressions.
type LinearExpr struct {
	terms    []Term
	constant int64
}

// Sum returns the expression v1 + v2 + ... .
func Sum(vars ...IntVar) LinearExpr {
	e := LinearExpr{terms: make([]Term, 0, len(vars))}
	for _, v := range vars {
		e.terms = append(e.terms, Term{Var: v, Coef: 1})
	}
	return e
}

// AddTerm returns e + coef*v.
func (e LinearExpr) AddTerm(v IntVar, coef int64) LinearExpr {
	out := LinearExpr{terms: make([]Term, len(e.terms), len(e.terms)+1), constant: e.constant}
	copy(out.terms, e.terms)
	out.terms = append(out.terms, Term{Var: v, Coef: coef})
	return out
}

// AddConstant returns e + c.
func (e LinearExpr) AddConstant(c int64) LinearExpr {
	out := LinearExpr{terms: e.Terms(), constant: e.constant + c}
	return out
}

// Terms returns a copy of the expression terms.
func (e LinearExpr) Terms() []Term { return append([]Term(nil), e.terms...) }

// Constant returns the constant offset.
func (e LinearExpr) Constant() int64 { return e.constant }

// Len returns the number of terms.
func (e LinearExpr) Len() int { return len(e.terms) }

// Eval computes the expression under the given assignment.
func (e LinearExpr) Eval(value func(IntVar) int64) int64 {
	sum := e.constant
	for _, t := range e.terms {
		sum += t.Coef * value(t.Var)
	}
	return sum
}
