package html

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/anthonytopper/customer-web-xp/core/node"
)

// Tree implements node.Tree over x/net/html nodes, ordering them by
// ordinals recorded at parse time.
type Tree struct {
	order node.Ordinals[*html.Node]
}

// NewTree records document order for the tree under root.
func NewTree(root *html.Node) *Tree {
	t := &Tree{order: node.Ordinals[*html.Node]{}}
	if root != nil {
		t.order.Record(root, t.Children)
	}
	return t
}

func (t *Tree) Parent(n *html.Node) (*html.Node, bool) {
	if n == nil || n.Parent == nil {
		return nil, false
	}
	return n.Parent, true
}

func (t *Tree) Children(n *html.Node) []*html.Node {
	if n == nil {
		return nil
	}
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

func (t *Tree) NodeType(n *html.Node) node.Type {
	if n == nil {
		return node.Other
	}
	switch n.Type {
	case html.ElementNode:
		return node.Element
	case html.TextNode:
		return node.Text
	default:
		return node.Other
	}
}

func (t *Tree) TextContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	if n.Type == html.TextNode || n.Type == html.CommentNode {
		return n.Data
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				walk(c)
			}
		}
	}
	walk(n)
	return sb.String()
}

// Attr looks up an attribute by key. The parser lower-cases attribute keys,
// so name is matched case-insensitively.
func (t *Tree) Attr(n *html.Node, name string) (string, bool) {
	if n == nil || n.Type != html.ElementNode {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, name) {
			return a.Val, true
		}
	}
	return "", false
}

func (t *Tree) SetAttr(n *html.Node, name, value string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && strings.EqualFold(n.Attr[i].Key, name) {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: strings.ToLower(name), Val: value})
}

func (t *Tree) RemoveAttr(n *html.Node, name string) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Namespace != "" || !strings.EqualFold(a.Key, name) {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

func (t *Tree) IsBefore(a, b *html.Node) bool       { return t.order.Before(a, b) }
func (t *Tree) IsAfter(a, b *html.Node) bool        { return t.order.After(a, b) }
func (t *Tree) IsSamePosition(a, b *html.Node) bool { return t.order.Same(a, b) }
func (t *Tree) IsSameNode(a, b *html.Node) bool     { return a == b }

func (t *Tree) IsAncestorOf(a, b *html.Node) bool {
	return node.IsAncestorOf(t.Parent, a, b)
}

func (t *Tree) IsDescendantOf(a, b *html.Node) bool {
	return node.IsAncestorOf(t.Parent, b, a)
}
