package cp

import (
	"sort"
	"strconv"
	"strings"
)

// Domain is an immutable sorted set of integer values.
type Domain struct {
	values []int64
}

// NewDomain returns the domain [lo, hi]. It is empty when lo > hi.
func NewDomain(lo, hi int64) Domain {
	if lo > hi {
		return Domain{}
	}
	vals := make([]int64, 0, hi-lo+1)
	for v := lo; v <= hi; v++ {
		vals = append(vals, v)
	}
	return Domain{values: vals}
}

// DomainFromValues builds a domain from arbitrary values. Duplicates collapse.
func DomainFromValues(vals ...int64) Domain {
	if len(vals) == 0 {
		return Domain{}
	}
	sorted := append([]int64(nil), vals...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return Domain{values: out}
}

func (d Domain) Size() int { return len(d.values) }

func (d Domain) IsEmpty() bool { return len(d.values) == 0 }

func (d Domain) IsFixed() bool { return len(d.values) == 1 }

// Min panics on an empty domain.
func (d Domain) Min() int64 { return d.values[0] }

// Max panics on an empty domain.
func (d Domain) Max() int64 { return d.values[len(d.values)-1] }

// Values returns a copy of the domain values in ascending order.
func (d Domain) Values() []int64 { return append([]int64(nil), d.values...) }

// Contains reports whether v belongs to the domain.
func (d Domain) Contains(v int64) bool {
	i := sort.Search(len(d.values), func(i int) bool { return d.values[i] >= v })
	return i < len(d.values) && d.values[i] == v
}

// IntersectRange keeps the values in [lo, hi].
func (d Domain) IntersectRange(lo, hi int64) Domain {
	if d.IsEmpty() || (lo <= d.Min() && hi >= d.Max()) {
		return d
	}
	i := sort.Search(len(d.values), func(i int) bool { return d.values[i] >= lo })
	j := sort.Search(len(d.values), func(i int) bool { return d.values[i] > hi })
	if i >= j {
		return Domain{}
	}
	return Domain{values: d.values[i:j]}
}

// Filter keeps the values for which keep returns true.
func (d Domain) Filter(keep func(int64) bool) Domain {
	for i, v := range d.values {
		if keep(v) {
			continue
		}
		out := append(make([]int64, 0, len(d.values)-1), d.values[:i]...)
		for _, w := range d.values[i+1:] {
			if keep(w) {
				out = append(out, w)
			}
		}
		return Domain{values: out}
	}
	return d
}

// Intersect returns the values present in both domains.
func (d Domain) Intersect(o Domain) Domain {
	return d.Filter(o.Contains)
}

func (d Domain) String() string {
	if d.IsEmpty() {
		return "{}"
	}
	if int64(len(d.values)) == d.Max()-d.Min()+1 && len(d.values) > 2 {
		return "[" + strconv.FormatInt(d.Min(), 10) + ".." + strconv.FormatInt(d.Max(), 10) + "]"
	}
	parts := make([]string, len(d.values))
	for i, v := range d.values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return "{" + strings.Join(parts, ",") + "}"
}
