// Package html is the lenient static document backend. It parses tag-soup
// HTML with golang.org/x/net/html the way a browser repairs it, exposes the
// nodes through node.Tree and re-serializes the repaired tree as XHTML.
package html

import (
	"bytes"
	"fmt"
	"io"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML document.
type Document struct {
	root *html.Node
	tree *Tree
}

// Parse parses HTML data and returns a Document.
func Parse(data []byte) (*Document, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses HTML from r. The parser repairs malformed markup, so
// errors only come from reading r.
func ParseReader(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}
	return &Document{root: root, tree: NewTree(root)}, nil
}

// Tree returns the node.Tree backend for this document.
func (d *Document) Tree() *Tree { return d.tree }

// Body returns the body element. The parser always synthesizes one.
func (d *Document) Body() *html.Node {
	return htmlquery.FindOne(d.root, "/html/body")
}
