package cp

// constraint narrows domains in the store. propagate returns false when the
// constraint cannot be satisfied by the current domains.
type constraint interface {
	scope() []IntVar
	propagate(s *store) bool
}

type linearConstraint struct {
	terms    []Term
	constant int64
	lo, hi   int64
}

func (c *linearConstraint) scope() []IntVar {
	out := make([]IntVar, len(c.terms))
	for i, t := range c.terms {
		out[i] = t.Var
	}
	return out
}

func termBounds(t Term, d Domain) (int64, int64) {
	if t.Coef >= 0 {
		return t.Coef * d.Min(), t.Coef * d.Max()
	}
	return t.Coef * d.Max(), t.Coef * d.Min()
}

func (c *linearConstraint) propagate(s *store) bool {
	minSum, maxSum := c.constant, c.constant
	for _, t := range c.terms {
		lo, hi := termBounds(t, s.dom(t.Var))
		minSum += lo
		maxSum += hi
	}
	if minSum > c.hi || maxSum < c.lo {
		return false
	}
	for _, t := range c.terms {
		if t.Coef == 0 {
			continue
		}
		d := s.dom(t.Var)
		lo, hi := termBounds(t, d)
		// bounds on coef*x given the other terms
		low := c.lo - (maxSum - hi)
		high := c.hi - (minSum - lo)
		var xlo, xhi int64
		if t.Coef > 0 {
			xlo, xhi = ceilDiv(low, t.Coef), floorDiv(high, t.Coef)
		} else {
			xlo, xhi = ceilDiv(high, t.Coef), floorDiv(low, t.Coef)
		}
		if !s.set(t.Var, d.IntersectRange(xlo, xhi)) {
			return false
		}
		nlo, nhi := termBounds(t, s.dom(t.Var))
		minSum += nlo - lo
		maxSum += nhi - hi
	}
	return true
}

type elementConstraint struct {
	index  IntVar
	offset int64
	table  []int64
	target IntVar
}

func (c *elementConstraint) scope() []IntVar { return []IntVar{c.index, c.target} }

func (c *elementConstraint) entry(v int64) (int64, bool) {
	k := v - c.offset
	if k < 0 || k >= int64(len(c.table)) {
		return 0, false
	}
	return c.table[k], true
}

func (c *elementConstraint) propagate(s *store) bool {
	target := s.dom(c.target)
	index := s.dom(c.index).Filter(func(v int64) bool {
		val, ok := c.entry(v)
		return ok && target.Contains(val)
	})
	if !s.set(c.index, index) {
		return false
	}
	reachable := make([]int64, 0, index.Size())
	for _, v := range index.values {
		val, _ := c.entry(v)
		reachable = append(reachable, val)
	}
	return s.set(c.target, target.Intersect(DomainFromValues(reachable...)))
}

type extremumConstraint struct {
	target IntVar
	args   []IntVar
	isMax  bool
}

func (c *extremumConstraint) scope() []IntVar {
	return append([]IntVar{c.target}, c.args...)
}

func (c *extremumConstraint) propagate(s *store) bool {
	if !c.isMax {
		return c.propagateMin(s)
	}
	lo, hi := s.dom(c.args[0]).Min(), s.dom(c.args[0]).Max()
	for _, a := range c.args[1:] {
		d := s.dom(a)
		lo = max(lo, d.Min())
		hi = max(hi, d.Max())
	}
	if !s.set(c.target, s.dom(c.target).IntersectRange(lo, hi)) {
		return false
	}
	t := s.dom(c.target)
	var support []IntVar
	for _, a := range c.args {
		if !s.set(a, s.dom(a).IntersectRange(minInt64, t.Max())) {
			return false
		}
		if s.dom(a).Max() >= t.Min() {
			support = append(support, a)
		}
	}
	switch len(support) {
	case 0:
		return false
	case 1:
		return s.set(support[0], s.dom(support[0]).IntersectRange(t.Min(), maxInt64))
	}
	return true
}

func (c *extremumConstraint) propagateMin(s *store) bool {
	lo, hi := s.dom(c.args[0]).Min(), s.dom(c.args[0]).Max()
	for _, a := range c.args[1:] {
		d := s.dom(a)
		lo = min(lo, d.Min())
		hi = min(hi, d.Max())
	}
	if !s.set(c.target, s.dom(c.target).IntersectRange(lo, hi)) {
		return false
	}
	t := s.dom(c.target)
	var support []IntVar
	for _, a := range c.args {
		if !s.set(a, s.dom(a).IntersectRange(t.Min(), maxInt64)) {
			return false
		}
		if s.dom(a).Min() <= t.Max() {
			support = append(support, a)
		}
	}
	switch len(support) {
	case 0:
		return false
	case 1:
		return s.set(support[0], s.dom(support[0]).IntersectRange(minInt64, t.Max()))
	}
	return true
}

type noOverlapConstraint struct {
	intervals []Interval
}

func (c *noOverlapConstraint) scope() []IntVar {
	out := make([]IntVar, 0, 3*len(c.intervals))
	for _, iv := range c.intervals {
		out = append(out, iv.Start, iv.Size, iv.End)
	}
	return out
}

func (c *noOverlapConstraint) propagate(s *store) bool {
	for i := 0; i < len(c.intervals); i++ {
		for j := i + 1; j < len(c.intervals); j++ {
			if !c.propagatePair(s, c.intervals[i], c.intervals[j]) {
				return false
			}
		}
	}
	return true
}

// propagatePair only reasons on pairs that are both known to have a positive
// size; pairs with a possible zero size are decided once their sizes are fixed.
func (c *noOverlapConstraint) propagatePair(s *store, a, b Interval) bool {
	if s.dom(a.Size).Min() <= 0 || s.dom(b.Size).Min() <= 0 {
		return true
	}
	aFirst := s.dom(a.End).Min() <= s.dom(b.Start).Max()
	bFirst := s.dom(b.End).Min() <= s.dom(a.Start).Max()
	switch {
	case !aFirst && !bFirst:
		return false
	case aFirst && !bFirst:
		return precede(s, a, b)
	case bFirst && !aFirst:
		return precede(s, b, a)
	}
	return true
}

// precede enforces first.End <= second.Start.
func precede(s *store, first, second Interval) bool {
	if !s.set(second.Start, s.dom(second.Start).IntersectRange(s.dom(first.End).Min(), maxInt64)) {
		return false
	}
	return s.set(first.End, s.dom(first.End).IntersectRange(minInt64, s.dom(second.Start).Max()))
}

const (
	minInt64 = -1 << 63
	maxInt64 = 1<<63 - 1
)

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}
