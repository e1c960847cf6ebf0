// Package xml is the statically parsed document backend. It parses XHTML
// with xmlquery, answers XPath queries, and exposes the parsed nodes through
// node.Tree so the addressing algorithms can run over them.
//
// Security Notes:
//   - xmlquery parses with Go's encoding/xml, which never fetches external
//     entities.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/anthonytopper/customer-web-xp/core/node"
)

// Document represents a parsed XML document.
type Document struct {
	root *xmlquery.Node
	tree *Tree
}

// Parse parses XML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses XML from r and records document order for every node.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := xmlquery.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root, tree: NewTree(root)}, nil
}

// Node returns the document node.
func (d *Document) Node() *xmlquery.Node { return d.root }

// Tree returns the node.Tree backend for this document.
func (d *Document) Tree() *Tree { return d.tree }

// Root returns the document element.
func (d *Document) Root() *xmlquery.Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return child
		}
	}
	return nil
}

// Body returns the first element named body, matched without regard to
// namespace prefix or case.
func (d *Document) Body() *xmlquery.Node {
	return d.FindElement("body")
}

// FindElement returns the first element in document order with the given
// local name.
func (d *Document) FindElement(name string) *xmlquery.Node {
	if d.root == nil {
		return nil
	}
	var found *xmlquery.Node
	var walk func(n *xmlquery.Node) bool
	walk = func(n *xmlquery.Node) bool {
		if n.Type == xmlquery.ElementNode && strings.EqualFold(n.Data, name) {
			found = n
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}
	walk(d.root)
	return found
}

// XPath executes an XPath query and returns matching nodes.
func (d *Document) XPath(expr string) ([]*xmlquery.Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes, err := xmlquery.QueryAll(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	return nodes, nil
}

// XPathFirst executes an XPath query and returns the first matching node,
// or nil when nothing matches.
func (d *Document) XPathFirst(expr string) (*xmlquery.Node, error) {
	if _, err := xpath.Compile(expr); err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	n, err := xmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("xpath query failed: %w", err)
	}
	return n, nil
}

// attrName matches "local" or "prefix:local".
func attrName(a xmlquery.Attr, name string) bool {
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		return a.Name.Space == prefix && a.Name.Local == local
	}
	return a.Name.Local == name && a.Name.Space == ""
}

func newAttr(name, value string) xmlquery.Attr {
	if prefix, local, ok := strings.Cut(name, ":"); ok {
		return xmlquery.Attr{Name: xml.Name{Space: prefix, Local: local}, Value: value}
	}
	return xmlquery.Attr{Name: xml.Name{Local: name}, Value: value}
}

// ensure the backend satisfies the capability set
var _ node.Tree[*xmlquery.Node] = (*Tree)(nil)
