package node

// FirstChild returns the first child of n accepted by f.
func FirstChild[N any](t Tree[N], n N, f Filter[N]) (N, bool) {
	for _, c := range t.Children(n) {
		if f.Accept(c) {
			return c, true
		}
	}
	var zero N
	return zero, false
}

// LastChild returns the last child of n accepted by f.
func LastChild[N any](t Tree[N], n N, f Filter[N]) (N, bool) {
	children := t.Children(n)
	for i := len(children) - 1; i >= 0; i-- {
		if f.Accept(children[i]) {
			return children[i], true
		}
	}
	var zero N
	return zero, false
}

// Descendants returns every node under root in document order, root excluded.
func Descendants[N any](t Tree[N], root N) []N {
	var out []N
	var walk func(n N)
	walk = func(n N) {
		for _, c := range t.Children(n) {
			out = append(out, c)
			walk(c)
		}
	}
	walk(root)
	return out
}

// LeafNodes returns the nodes under root accepted by f that have no children
// accepted by f, in document order.
func LeafNodes[N any](t Tree[N], root N, f Filter[N]) []N {
	var out []N
	var walk func(n N)
	walk = func(n N) {
		children := FilterNodes(t.Children(n), f)
		if len(children) == 0 {
			out = append(out, n)
			return
		}
		for _, c := range children {
			walk(c)
		}
	}
	for _, c := range FilterNodes(t.Children(root), f) {
		walk(c)
	}
	return out
}

// ElementsWithAttr returns the elements under root, root included, that carry
// the named attribute.
func ElementsWithAttr[N any](t Tree[N], root N, name string) []N {
	var out []N
	if t.NodeType(root) == Element {
		if _, ok := t.Attr(root, name); ok {
			out = append(out, root)
		}
	}
	for _, n := range Descendants(t, root) {
		if t.NodeType(n) != Element {
			continue
		}
		if _, ok := t.Attr(n, name); ok {
			out = append(out, n)
		}
	}
	return out
}

// PeersBetween returns the siblings strictly between a and b under parent.
// It returns nil when either is not a child or b does not follow a.
func PeersBetween[N any](t Tree[N], parent, a, b N, f Filter[N]) []N {
	children := FilterNodes(t.Children(parent), f)
	i, j := IndexOf(t, children, a), IndexOf(t, children, b)
	if i < 0 || j < 0 || j <= i {
		return nil
	}
	return children[i+1 : j]
}

// PeersAfter returns the siblings following n.
func PeersAfter[N any](t Tree[N], n N, f Filter[N]) []N {
	parent, ok := t.Parent(n)
	if !ok {
		return nil
	}
	children := FilterNodes(t.Children(parent), f)
	i := IndexOf(t, children, n)
	if i < 0 {
		return nil
	}
	return children[i+1:]
}

// PeersBefore returns the siblings preceding n.
func PeersBefore[N any](t Tree[N], n N, f Filter[N]) []N {
	parent, ok := t.Parent(n)
	if !ok {
		return nil
	}
	children := FilterNodes(t.Children(parent), f)
	i := IndexOf(t, children, n)
	if i < 0 {
		return nil
	}
	return children[:i]
}
