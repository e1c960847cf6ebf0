package browser

import (
	"github.com/anthonytopper/customer-web-xp/core/node"
)

// Tree implements node.Tree over the live DOM. Document order comes from
// compareDocumentPosition.
type Tree struct {
	doc *Document
}

var _ node.Tree[Node] = (*Tree)(nil)

func (t *Tree) Parent(n Node) (Node, bool) {
	return t.doc.node("parent", script("i", "return R.id(R.node(i)?.parentNode);"), n)
}

func (t *Tree) Children(n Node) []Node {
	var ids []Node
	t.doc.decode("children", script("i", "return JSON.stringify(Array.from(R.node(i)?.childNodes ?? [], c => R.id(c)));"), &ids, n)
	return ids
}

// NodeType maps DOM nodeType values: 1 is an element, 3 and 4 (CDATA) are
// text.
func (t *Tree) NodeType(n Node) node.Type {
	res, ok := t.doc.eval("nodeType", script("i", "return R.node(i)?.nodeType ?? 0;"), n)
	if !ok {
		return node.Other
	}
	switch res.Value.Int() {
	case 1:
		return node.Element
	case 3, 4:
		return node.Text
	default:
		return node.Other
	}
}

func (t *Tree) TextContent(n Node) string {
	res, ok := t.doc.eval("textContent", script("i", `return R.node(i)?.textContent ?? "";`), n)
	if !ok {
		return ""
	}
	return res.Value.Str()
}

func (t *Tree) Attr(n Node, name string) (string, bool) {
	res, ok := t.doc.eval("getAttribute", script("i, name", "const e = R.node(i); return e?.hasAttribute?.(name) ? e.getAttribute(name) : null;"), n, name)
	if !ok || res.Value.Nil() {
		return "", false
	}
	return res.Value.Str(), true
}

func (t *Tree) SetAttr(n Node, name, value string) {
	t.doc.eval("setAttribute", script("i, name, value", "R.node(i)?.setAttribute?.(name, value);"), n, name, value)
}

func (t *Tree) RemoveAttr(n Node, name string) {
	t.doc.eval("removeAttribute", script("i, name", "R.node(i)?.removeAttribute?.(name);"), n, name)
}

// position evaluates a.compareDocumentPosition(b) masked with bit. Unknown
// nodes never match.
func (t *Tree) position(op string, a, b Node, bit int) bool {
	return t.doc.truth(op, script("a, b, bit", `
		const x = R.node(a), y = R.node(b);
		if (!x || !y) return false;
		const p = x.compareDocumentPosition(y);
		return bit === 0 ? p === 0 : (p & bit) !== 0;`), a, b, bit)
}

// IsBefore reports whether a precedes b: b follows a.
func (t *Tree) IsBefore(a, b Node) bool { return t.position("isBefore", a, b, 4) }

// IsAfter reports whether a follows b: b precedes a.
func (t *Tree) IsAfter(a, b Node) bool { return t.position("isAfter", a, b, 2) }

func (t *Tree) IsSamePosition(a, b Node) bool { return t.position("isSamePosition", a, b, 0) }

// IsAncestorOf reports whether b is contained by a.
func (t *Tree) IsAncestorOf(a, b Node) bool { return t.position("isAncestorOf", a, b, 16) }

// IsDescendantOf reports whether a is contained by b.
func (t *Tree) IsDescendantOf(a, b Node) bool { return t.position("isDescendantOf", a, b, 8) }

func (t *Tree) IsSameNode(a, b Node) bool { return a == b && a != NoNode }
