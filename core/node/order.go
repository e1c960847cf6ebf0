package node

// Ordinals records the document position of every node of a parsed tree.
// Static backends have no native document-order operator, so they number
// nodes in pre-order while parsing and compare those numbers instead.
type Ordinals[N comparable] map[N]int

// Record numbers root and its descendants in pre-order, starting at 0.
func (o Ordinals[N]) Record(root N, children func(N) []N) {
	next := 0
	var walk func(n N)
	walk = func(n N) {
		o[n] = next
		next++
		for _, c := range children(n) {
			walk(c)
		}
	}
	walk(root)
}

// Position returns the recorded ordinal of n; unknown nodes sort first.
func (o Ordinals[N]) Position(n N) int {
	return o[n]
}

// Before reports whether a precedes b in document order.
func (o Ordinals[N]) Before(a, b N) bool {
	return o.Position(a) < o.Position(b)
}

// After reports whether a follows b in document order.
func (o Ordinals[N]) After(a, b N) bool {
	return o.Position(a) > o.Position(b)
}

// Same reports whether a and b occupy the same document position.
func (o Ordinals[N]) Same(a, b N) bool {
	return o.Position(a) == o.Position(b)
}

// IsAncestorOf walks b's parents looking for a.
func IsAncestorOf[N comparable](parent func(N) (N, bool), a, b N) bool {
	for p, ok := parent(b); ok; p, ok = parent(p) {
		if p == a {
			return true
		}
	}
	return false
}
