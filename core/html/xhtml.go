package html

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"

	"github.com/anthonytopper/customer-web-xp/core/xml"
)

// XHTML serializes the repaired tree as well-formed XML. The doctype is
// dropped, childless elements are self-closed and attributes whose names
// are not XML names are skipped. Text and element structure are kept node
// for node, so addresses computed against the repaired tree still hold.
func (d *Document) XHTML() []byte {
	var buf bytes.Buffer
	for c := d.root.FirstChild; c != nil; c = c.NextSibling {
		writeXHTML(&buf, c)
	}
	return buf.Bytes()
}

func writeXHTML(w *bytes.Buffer, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.WriteString(xml.EscapeText(n.Data))
	case html.CommentNode:
		w.WriteString("<!--" + strings.ReplaceAll(n.Data, "--", "- -") + "-->")
	case html.ElementNode:
		if !xmlName(n.Data) {
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				writeXHTML(w, c)
			}
			return
		}
		w.WriteString("<" + n.Data)
		if n.Data == "html" && attr(n.Attr, "xmlns") == "" {
			w.WriteString(` xmlns="http://www.w3.org/1999/xhtml"`)
		}
		for _, a := range n.Attr {
			if a.Namespace != "" || !xmlName(a.Key) {
				continue
			}
			w.WriteString(" " + a.Key + `="` + xml.EscapeAttr(a.Val) + `"`)
		}
		if n.FirstChild == nil {
			w.WriteString("/>")
			return
		}
		w.WriteString(">")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeXHTML(w, c)
		}
		w.WriteString("</" + n.Data + ">")
	}
}

func attr(attrs []html.Attribute, key string) string {
	for _, a := range attrs {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// xmlName reports whether s is usable as an unprefixed XML name.
func xmlName(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case unicode.IsLetter(r), r == '_':
		case i > 0 && (unicode.IsDigit(r) || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
