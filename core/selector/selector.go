// Package selector converts between tree nodes and structural addresses and
// extracts text between two addresses. It works over any node.Tree backend
// and never holds on to nodes between calls; addresses are re-resolved from
// the root every time.
package selector

import (
	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/node"
	"github.com/anthonytopper/customer-web-xp/core/ranges"
)

// Options customise which nodes count for addressing and extraction.
type Options[N any] struct {
	// TraversalFilter selects the siblings that are counted when computing
	// steps. Nodes it rejects are invisible to addressing.
	TraversalFilter node.Filter[N]

	// ExtractFilter selects the nodes whose text contributes to extraction.
	ExtractFilter node.Filter[N]

	// Extractor overrides text extraction for a node. end is -1 for "to the
	// end of the node". Returning false falls back to the node's text.
	Extractor func(n N, start, end int) (string, bool)
}

// Selector is bound to a root node of a tree.
type Selector[N any] struct {
	root N
	tree node.Tree[N]
	opts Options[N]

	// Ranges provides overlap and subtraction on full addresses, ordered by
	// Compare.
	Ranges *ranges.Ops[address.Full]
}

// New returns a selector rooted at root. opts may be nil.
func New[N any](root N, tree node.Tree[N], opts *Options[N]) *Selector[N] {
	s := &Selector[N]{root: root, tree: tree}
	if opts != nil {
		s.opts = *opts
	}
	s.Ranges = ranges.New(s.compareRange)
	return s
}

// Sub returns a selector with the same tree and options rooted at n.
func (s *Selector[N]) Sub(n N) *Selector[N] {
	return New(n, s.tree, &s.opts)
}

// Root returns the node the selector is bound to.
func (s *Selector[N]) Root() N { return s.root }

// Tree returns the backend the selector runs on.
func (s *Selector[N]) Tree() node.Tree[N] { return s.tree }

// Options returns the selector's options.
func (s *Selector[N]) Options() Options[N] { return s.opts }

func (s *Selector[N]) children(n N) []N {
	return node.FilterNodes(s.tree.Children(n), s.opts.TraversalFilter)
}

// AddressFromNode returns the steps leading from the root to n. The root
// itself has an empty address. ok is false when n is not under the root, is
// rejected by the traversal filter, or is neither text nor element.
func (s *Selector[N]) AddressFromNode(n N) (address.Steps, bool) {
	steps := address.Steps{}
	cur := n
	for !s.tree.IsSameNode(cur, s.root) {
		parent, ok := s.tree.Parent(cur)
		if !ok {
			return nil, false
		}
		kind := s.tree.NodeType(cur)
		if kind == node.Other {
			return nil, false
		}
		index := -1
		k := 0
		for _, c := range s.children(parent) {
			if s.tree.NodeType(c) != kind {
				continue
			}
			if s.tree.IsSameNode(c, cur) {
				index = k
				break
			}
			k++
		}
		if index < 0 {
			return nil, false
		}
		if kind == node.Element {
			steps = append(steps, address.ElementStep(index))
		} else {
			steps = append(steps, address.TextStep(index))
		}
		cur = parent
	}
	for i, j := 0, len(steps)-1; i < j; i, j = i+1, j-1 {
		steps[i], steps[j] = steps[j], steps[i]
	}
	return steps, true
}

// AddressWithOffset returns the full address of n terminated by offset.
func (s *Selector[N]) AddressWithOffset(n N, offset int) (address.Full, bool) {
	steps, ok := s.AddressFromNode(n)
	if !ok {
		return address.Full{}, false
	}
	return address.At(steps, offset), true
}

// FromTextRange converts a backend range (container node plus offset at each
// end) to a pair of full addresses.
func (s *Selector[N]) FromTextRange(start N, startOffset int, end N, endOffset int) (address.Full, address.Full, bool) {
	a, ok1 := s.AddressWithOffset(start, startOffset)
	b, ok2 := s.AddressWithOffset(end, endOffset)
	if !ok1 || !ok2 {
		return address.Full{}, address.Full{}, false
	}
	return a, b, true
}

// NodeFromAddress resolves steps from the root. It stops at the first step
// that is out of range for its level.
func (s *Selector[N]) NodeFromAddress(steps address.Steps) (N, bool) {
	cur := s.root
	for _, step := range steps {
		next, ok := s.child(cur, step)
		if !ok {
			var zero N
			return zero, false
		}
		cur = next
	}
	return cur, true
}

func (s *Selector[N]) child(parent N, step int) (N, bool) {
	var zero N
	if step <= 0 {
		return zero, false
	}
	kind := node.Text
	if address.IsElementStep(step) {
		kind = node.Element
	}
	index := address.StepIndex(step)
	k := 0
	for _, c := range s.children(parent) {
		if s.tree.NodeType(c) != kind {
			continue
		}
		if k == index {
			return c, true
		}
		k++
	}
	return zero, false
}

// Compare orders two full addresses in document order. Addresses that
// resolve to the same node are ordered by offset, a missing offset counting
// as 0. If either address does not resolve the result is 0.
func (s *Selector[N]) Compare(a, b address.Full) int {
	c, _ := s.compareRange(a, b)
	return c
}

func (s *Selector[N]) compareRange(a, b address.Full) (int, bool) {
	n1, ok1 := s.NodeFromAddress(a.Steps)
	n2, ok2 := s.NodeFromAddress(b.Steps)
	if !ok1 || !ok2 {
		return 0, true
	}
	if s.tree.IsSamePosition(n1, n2) {
		switch {
		case a.Offset < b.Offset:
			return -1, true
		case a.Offset > b.Offset:
			return 1, true
		}
		return 0, true
	}
	if s.tree.IsBefore(n1, n2) {
		return -1, true
	}
	return 1, true
}
