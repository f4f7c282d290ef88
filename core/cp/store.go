package cp

// store holds the current domains of a search node and the propagation queue.
type store struct {
	m       *Model
	doms    []Domain
	queue   []int
	inQueue []bool
}

func newStore(m *Model) *store {
	s := &store{
		m:       m,
		doms:    make([]Domain, len(m.vars)),
		inQueue: make([]bool, len(m.constraints)),
	}
	for i, v := range m.vars {
		s.doms[i] = v.domain
	}
	return s
}

func (s *store) clone() *store {
	return &store{
		m:       s.m,
		doms:    append([]Domain(nil), s.doms...),
		inQueue: make([]bool, len(s.m.constraints)),
	}
}

func (s *store) dom(v IntVar) Domain { return s.doms[v.index] }

// set narrows v to d. Domains only shrink, so a size change is a change.
func (s *store) set(v IntVar, d Domain) bool {
	if d.IsEmpty() {
		return false
	}
	if d.Size() == s.doms[v.index].Size() {
		return true
	}
	s.doms[v.index] = d
	for _, c := range s.m.watchers[v.index] {
		s.enqueue(c)
	}
	return true
}

func (s *store) enqueue(c int) {
	if s.inQueue[c] {
		return
	}
	s.inQueue[c] = true
	s.queue = append(s.queue, c)
}

func (s *store) enqueueAll() {
	for c := range s.m.constraints {
		s.enqueue(c)
	}
}

// fixpoint runs queued propagators until nothing changes.
func (s *store) fixpoint() bool {
	for len(s.queue) > 0 {
		c := s.queue[0]
		s.queue = s.queue[1:]
		s.inQueue[c] = false
		if !s.m.constraints[c].propagate(s) {
			s.queue = nil
			return false
		}
	}
	return true
}

func (s *store) hasEmpty() bool {
	for _, d := range s.doms {
		if d.IsEmpty() {
			return true
		}
	}
	return false
}

func (s *store) values() []int64 {
	out := make([]int64, len(s.doms))
	for i, d := range s.doms {
		out[i] = d.Min()
	}
	return out
}
