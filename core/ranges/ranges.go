// Package ranges implements interval overlap and subtraction over any type
// ordered by a comparator that may report two values as incomparable.
package ranges

import "cmp"

// Compare returns -1, 0 or 1, or ok=false when a and b cannot be ordered
// (for example two addresses that no longer resolve).
type Compare[T any] func(a, b T) (c int, ok bool)

// Range is an interval between two values in either order.
type Range[T any] struct {
	Start T `json:"start"`
	End   T `json:"end"`
}

// Ops binds the range operations to a comparator.
type Ops[T any] struct {
	cmp Compare[T]
}

// New returns range operations for cmp.
func New[T any](cmp Compare[T]) *Ops[T] {
	return &Ops[T]{cmp: cmp}
}

// Ordered returns a comparator for naturally ordered types.
func Ordered[T cmp.Ordered]() Compare[T] {
	return func(a, b T) (int, bool) {
		return cmp.Compare(a, b), true
	}
}

// Normalize returns r with Start <= End. ok is false when the endpoints are
// incomparable.
func (o *Ops[T]) Normalize(r Range[T]) (Range[T], bool) {
	c, ok := o.cmp(r.Start, r.End)
	if !ok {
		return r, false
	}
	if c > 0 {
		return Range[T]{Start: r.End, End: r.Start}, true
	}
	return r, true
}

// Overlaps reports whether r1 and r2 share at least one point; touching
// endpoints overlap. ok is false when any comparison is incomparable.
func (o *Ops[T]) Overlaps(r1, r2 Range[T]) (overlap, ok bool) {
	a, ok1 := o.Normalize(r1)
	b, ok2 := o.Normalize(r2)
	if !ok1 || !ok2 {
		return false, false
	}
	c1, ok1 := o.cmp(a.End, b.Start)
	c2, ok2 := o.cmp(b.End, a.Start)
	if !ok1 || !ok2 {
		return false, false
	}
	return !(c1 < 0 || c2 < 0), true
}

// Contains reports whether v lies within r, endpoints included.
func (o *Ops[T]) Contains(r Range[T], v T) (contains, ok bool) {
	n, ok := o.Normalize(r)
	if !ok {
		return false, false
	}
	c1, ok1 := o.cmp(n.Start, v)
	c2, ok2 := o.cmp(v, n.End)
	if !ok1 || !ok2 {
		return false, false
	}
	return c1 <= 0 && c2 <= 0, true
}

// Subtract removes rm from r and returns the remaining pieces in order.
// Disjoint inputs return the normalized r; incomparable inputs return r as
// given.
func (o *Ops[T]) Subtract(r, rm Range[T]) []Range[T] {
	a, ok1 := o.Normalize(r)
	b, ok2 := o.Normalize(rm)
	if !ok1 || !ok2 {
		return []Range[T]{r}
	}
	overlap, ok := o.Overlaps(a, b)
	if !ok {
		return []Range[T]{r}
	}
	if !overlap {
		return []Range[T]{a}
	}

	startBefore, ok1 := o.cmp(a.Start, b.Start)
	startBeforeEnd, ok2 := o.cmp(a.Start, b.End)
	rmInside, ok3 := o.cmp(b.Start, a.End)
	endAfter, ok4 := o.cmp(b.End, a.End)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return []Range[T]{r}
	}

	var out []Range[T]
	if startBefore < 0 && startBeforeEnd < 0 && rmInside <= 0 {
		out = append(out, Range[T]{Start: a.Start, End: b.Start})
	}
	if endAfter < 0 {
		out = append(out, Range[T]{Start: b.End, End: a.End})
	}
	return out
}
