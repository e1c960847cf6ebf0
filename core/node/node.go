// Package node defines the capability set every document tree backend
// supplies so that addressing, range and viewport algorithms run the same way
// over a live browser document and a statically parsed one.
package node

import "strings"

// Type is the broad category of a node as seen by the addressing scheme.
type Type int

const (
	// Other covers comments, processing instructions, doctypes and documents.
	Other Type = iota
	// Text covers text and character-data nodes.
	Text
	// Element covers element nodes.
	Element
)

// String returns the lower-case name of the type.
func (t Type) String() string {
	switch t {
	case Text:
		return "text"
	case Element:
		return "element"
	default:
		return "other"
	}
}

// Tree is implemented by each backend for its node type N.
//
// The order predicates follow DOM document order: an ancestor is before its
// descendants. Implementations must not panic on nodes they cannot resolve;
// they report false or the zero value instead.
type Tree[N any] interface {
	Parent(n N) (N, bool)
	// Children returns the child nodes of n in document order.
	Children(n N) []N
	NodeType(n N) Type
	TextContent(n N) string

	Attr(n N, name string) (string, bool)
	SetAttr(n N, name, value string)
	RemoveAttr(n N, name string)

	IsBefore(a, b N) bool
	IsAfter(a, b N) bool
	IsSamePosition(a, b N) bool
	IsAncestorOf(a, b N) bool
	IsDescendantOf(a, b N) bool
	IsSameNode(a, b N) bool
}

// Filter reports whether a node takes part in an operation.
type Filter[N any] func(n N) bool

// Accept applies f, treating a nil filter as accepting everything.
func (f Filter[N]) Accept(n N) bool {
	return f == nil || f(n)
}

// FilterNodes returns the nodes accepted by f, preserving order.
func FilterNodes[N any](nodes []N, f Filter[N]) []N {
	if f == nil {
		return nodes
	}
	out := make([]N, 0, len(nodes))
	for _, n := range nodes {
		if f(n) {
			out = append(out, n)
		}
	}
	return out
}

// IndexOf returns the position of n in nodes using the tree's identity test.
func IndexOf[N any](t Tree[N], nodes []N, n N) int {
	for i, c := range nodes {
		if t.IsSameNode(c, n) {
			return i
		}
	}
	return -1
}

// IsContentful reports whether n is an element or a text node with
// non-whitespace content.
func IsContentful[N any](t Tree[N], n N) bool {
	switch t.NodeType(n) {
	case Element:
		return true
	case Text:
		return !isBlank(t.TextContent(n))
	default:
		return false
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
