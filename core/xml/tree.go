package xml

import (
	"strings"

	"github.com/antchfx/xmlquery"

	"github.com/anthonytopper/customer-web-xp/core/node"
)

// Tree implements node.Tree over xmlquery nodes. Document order comes from
// ordinals recorded at parse time since the parsed tree has no native
// comparison operator.
type Tree struct {
	order node.Ordinals[*xmlquery.Node]
}

// NewTree records document order for the tree under root.
func NewTree(root *xmlquery.Node) *Tree {
	t := &Tree{order: node.Ordinals[*xmlquery.Node]{}}
	if root != nil {
		t.order.Record(root, t.Children)
	}
	return t
}

func (t *Tree) Parent(n *xmlquery.Node) (*xmlquery.Node, bool) {
	if n == nil || n.Parent == nil {
		return nil, false
	}
	return n.Parent, true
}

func (t *Tree) Children(n *xmlquery.Node) []*xmlquery.Node {
	if n == nil {
		return nil
	}
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// NodeType maps CDATA sections to text: they carry character content and
// are addressed like text nodes.
func (t *Tree) NodeType(n *xmlquery.Node) node.Type {
	if n == nil {
		return node.Other
	}
	switch n.Type {
	case xmlquery.ElementNode:
		return node.Element
	case xmlquery.TextNode, xmlquery.CharDataNode:
		return node.Text
	default:
		return node.Other
	}
}

func (t *Tree) TextContent(n *xmlquery.Node) string {
	if n == nil {
		return ""
	}
	switch n.Type {
	case xmlquery.TextNode, xmlquery.CharDataNode, xmlquery.CommentNode:
		return n.Data
	}
	var sb strings.Builder
	var walk func(*xmlquery.Node)
	walk = func(p *xmlquery.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case xmlquery.TextNode, xmlquery.CharDataNode:
				sb.WriteString(c.Data)
			case xmlquery.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

func (t *Tree) Attr(n *xmlquery.Node, name string) (string, bool) {
	if n == nil || n.Type != xmlquery.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if attrName(a, name) {
			return a.Value, true
		}
	}
	return "", false
}

func (t *Tree) SetAttr(n *xmlquery.Node, name, value string) {
	if n == nil || n.Type != xmlquery.ElementNode {
		return
	}
	for i := range n.Attr {
		if attrName(n.Attr[i], name) {
			n.Attr[i].Value = value
			return
		}
	}
	n.Attr = append(n.Attr, newAttr(name, value))
}

func (t *Tree) RemoveAttr(n *xmlquery.Node, name string) {
	if n == nil || n.Type != xmlquery.ElementNode {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if !attrName(a, name) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func (t *Tree) IsBefore(a, b *xmlquery.Node) bool       { return t.order.Before(a, b) }
func (t *Tree) IsAfter(a, b *xmlquery.Node) bool        { return t.order.After(a, b) }
func (t *Tree) IsSamePosition(a, b *xmlquery.Node) bool { return t.order.Same(a, b) }
func (t *Tree) IsSameNode(a, b *xmlquery.Node) bool     { return a == b }

// IsAncestorOf reports whether a is an ancestor of b.
func (t *Tree) IsAncestorOf(a, b *xmlquery.Node) bool {
	return node.IsAncestorOf(t.Parent, a, b)
}

// IsDescendantOf reports whether a is a descendant of b.
func (t *Tree) IsDescendantOf(a, b *xmlquery.Node) bool {
	return node.IsAncestorOf(t.Parent, b, a)
}
