package node_test

import (
	"slices"
	"testing"

	"github.com/antchfx/xmlquery"

	"github.com/anthonytopper/customer-web-xp/core/node"
	"github.com/anthonytopper/customer-web-xp/core/xml"
)

const fixture = `<body>` +
	`<p id="one">a<b>x</b>c</p>` +
	`<!--note-->` +
	`<p><!--empty--></p>` +
	`<div id="d"><p>y</p></div>` +
	`</body>`

func setup(t *testing.T) (node.Tree[*xmlquery.Node], *xmlquery.Node) {
	t.Helper()
	doc, err := xml.Parse([]byte(fixture))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return doc.Tree(), doc.Body()
}

// label names an element by tag and any other node by its data.
func label(n *xmlquery.Node) string {
	if n.Type == xmlquery.ElementNode {
		return "<" + n.Data + ">"
	}
	return n.Data
}

func labels(nodes []*xmlquery.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = label(n)
	}
	return out
}

func elements(tree node.Tree[*xmlquery.Node]) node.Filter[*xmlquery.Node] {
	return func(n *xmlquery.Node) bool { return tree.NodeType(n) == node.Element }
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		typ  node.Type
		want string
	}{
		{node.Element, "element"},
		{node.Text, "text"},
		{node.Other, "other"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestFilter(t *testing.T) {
	tree, body := setup(t)
	children := tree.Children(body)
	if got := node.FilterNodes(children, nil); len(got) != len(children) {
		t.Errorf("FilterNodes(nil) kept %d of %d", len(got), len(children))
	}
	got := labels(node.FilterNodes(children, elements(tree)))
	if want := []string{"<p>", "<p>", "<div>"}; !slices.Equal(got, want) {
		t.Errorf("FilterNodes(elements) = %v, want %v", got, want)
	}
	var f node.Filter[*xmlquery.Node]
	if !f.Accept(body) {
		t.Error("nil Filter.Accept() = false")
	}
	if i := node.IndexOf(tree, children, children[2]); i != 2 {
		t.Errorf("IndexOf() = %d, want 2", i)
	}
	if i := node.IndexOf(tree, children, body); i != -1 {
		t.Errorf("IndexOf(body) = %d, want -1", i)
	}
}

func TestIsContentful(t *testing.T) {
	tree, body := setup(t)
	children := tree.Children(body)
	p1 := children[0]
	tests := []struct {
		name string
		n    *xmlquery.Node
		want bool
	}{
		{"element", p1, true},
		{"text", tree.Children(p1)[0], true},
		{"comment", children[1], false},
	}
	for _, tt := range tests {
		if got := node.IsContentful(tree, tt.n); got != tt.want {
			t.Errorf("IsContentful(%s) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestWalk(t *testing.T) {
	tree, body := setup(t)

	got := labels(node.Descendants(tree, body))
	want := []string{"<p>", "a", "<b>", "x", "c", "note", "<p>", "empty", "<div>", "<p>", "y"}
	if !slices.Equal(got, want) {
		t.Errorf("Descendants() = %v, want %v", got, want)
	}

	if n, ok := node.FirstChild(tree, body, elements(tree)); !ok || label(n) != "<p>" {
		t.Errorf("FirstChild() = %v, %v", n, ok)
	}
	if n, ok := node.LastChild(tree, body, elements(tree)); !ok || label(n) != "<div>" {
		t.Errorf("LastChild() = %v, %v", n, ok)
	}
	never := node.Filter[*xmlquery.Node](func(*xmlquery.Node) bool { return false })
	if _, ok := node.FirstChild(tree, body, never); ok {
		t.Error("FirstChild() with a rejecting filter ok = true")
	}

	contentful := node.Filter[*xmlquery.Node](func(n *xmlquery.Node) bool { return node.IsContentful(tree, n) })
	got = labels(node.LeafNodes(tree, body, contentful))
	want = []string{"a", "x", "c", "<p>", "y"}
	if !slices.Equal(got, want) {
		t.Errorf("LeafNodes() = %v, want %v", got, want)
	}

	withID := node.ElementsWithAttr(tree, body, "id")
	if len(withID) != 2 || withID[0].SelectAttr("id") != "one" || withID[1].SelectAttr("id") != "d" {
		t.Errorf("ElementsWithAttr(id) = %v", labels(withID))
	}
}

func TestPeers(t *testing.T) {
	tree, body := setup(t)
	f := elements(tree)
	kids := node.FilterNodes(tree.Children(body), f)
	p1, p2, div := kids[0], kids[1], kids[2]

	if got := node.PeersBetween(tree, body, p1, div, f); len(got) != 1 || got[0] != p2 {
		t.Errorf("PeersBetween(p1, div) = %v, want [p2]", labels(got))
	}
	if got := node.PeersBetween(tree, body, div, p1, f); got != nil {
		t.Errorf("PeersBetween(div, p1) = %v, want nil", labels(got))
	}
	if got := node.PeersAfter(tree, p2, f); len(got) != 1 || got[0] != div {
		t.Errorf("PeersAfter(p2) = %v, want [div]", labels(got))
	}
	if got := node.PeersBefore(tree, p2, f); len(got) != 1 || got[0] != p1 {
		t.Errorf("PeersBefore(p2) = %v, want [p1]", labels(got))
	}
	if got := node.PeersAfter(tree, tree.Children(p1)[0], f); got != nil {
		t.Errorf("PeersAfter(text) = %v, want nil", labels(got))
	}
}

func TestOrdinals(t *testing.T) {
	children := map[string][]string{
		"root": {"a", "b"},
		"a":    {"a1", "a2"},
	}
	parents := map[string]string{"a": "root", "b": "root", "a1": "a", "a2": "a"}
	parent := func(n string) (string, bool) {
		p, ok := parents[n]
		return p, ok
	}

	order := node.Ordinals[string]{}
	order.Record("root", func(n string) []string { return children[n] })

	tests := []struct {
		n    string
		want int
	}{
		{"root", 0}, {"a", 1}, {"a1", 2}, {"a2", 3}, {"b", 4},
	}
	for _, tt := range tests {
		if got := order.Position(tt.n); got != tt.want {
			t.Errorf("Position(%s) = %d, want %d", tt.n, got, tt.want)
		}
	}
	if !order.Before("a2", "b") || order.Before("b", "a2") {
		t.Error("Before(a2, b) wrong")
	}
	if !order.After("b", "a") || !order.Same("a1", "a1") {
		t.Error("After/Same wrong")
	}
	if !node.IsAncestorOf(parent, "root", "a2") || node.IsAncestorOf(parent, "b", "a2") {
		t.Error("IsAncestorOf wrong")
	}
	if node.IsAncestorOf(parent, "a2", "a2") {
		t.Error("IsAncestorOf(n, n) = true")
	}
}

func TestUTF16Offsets(t *testing.T) {
	if got := node.TextLength("a\U0001F600b"); got != 4 {
		t.Errorf("TextLength() = %d, want 4", got)
	}
	tests := []struct {
		s          string
		start, end int
		want       string
	}{
		{"a\U0001F600b", 1, 3, "\U0001F600"},
		{"abc", -1, -1, "abc"},
		{"abc", 1, 99, "bc"},
		{"abc", 2, 1, "b"},
		{"abc", 3, 0, "abc"},
		{"abc", 2, 2, ""},
		{"abc", 9, 1, "bc"},
		{"élan", 0, 1, "é"},
	}
	for _, tt := range tests {
		if got := node.Substring(tt.s, tt.start, tt.end); got != tt.want {
			t.Errorf("Substring(%q, %d, %d) = %q, want %q", tt.s, tt.start, tt.end, got, tt.want)
		}
	}
}
