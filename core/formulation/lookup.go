package formulation

import "github.com/kilianp07/maintsched/core/cp"

// Lookup records a functional dependency Result == Table[Index - Offset]
// between two model variables.
type Lookup struct {
	Index  cp.IntVar
	Offset int64
	Table  []int64
	Result cp.IntVar
}

// lookup creates the result variable, restricted to the distinct table
// values, and posts the element constraint tying it to index.
func lookup(m *cp.Model, index cp.IntVar, offset int64, table []int64, name string) Lookup {
	result := m.NewIntVarFromDomain(cp.DomainFromValues(table...), name)
	m.AddElement(index, offset, table, result)
	return Lookup{Index: index, Offset: offset, Table: table, Result: result}
}

// At returns the entry selected when the index variable takes value v.
func (l Lookup) At(v int64) (int64, bool) {
	k := v - l.Offset
	if k < 0 || k >= int64(len(l.Table)) {
		return 0, false
	}
	return l.Table[k], true
}
