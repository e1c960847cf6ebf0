package selector

import (
	"strings"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/node"
)

// ExtractText returns the text of n between the UTF-16 offsets start and end
// (end -1 for the rest of the node), or "" when the extract filter rejects n.
func (s *Selector[N]) ExtractText(n N, start, end int) string {
	if !s.opts.ExtractFilter.Accept(n) {
		return ""
	}
	if s.opts.Extractor != nil {
		if text, ok := s.opts.Extractor(n, start, end); ok {
			return text
		}
	}
	return node.Substring(s.tree.TextContent(n), start, end)
}

// extractAll concatenates the text of nodes, skipping comments and other
// non-content nodes.
func (s *Selector[N]) extractAll(nodes []N) string {
	var sb strings.Builder
	for _, n := range nodes {
		if s.tree.NodeType(n) == node.Other {
			continue
		}
		sb.WriteString(s.ExtractText(n, 0, -1))
	}
	return sb.String()
}

// ExtractTextRange returns the text between start and end. An empty start
// means the beginning of the root and an empty end means its end. Offsets are
// honoured on the terminal step only. Unresolvable addresses yield "".
func (s *Selector[N]) ExtractTextRange(start, end address.Full) string {
	switch {
	case start.IsEmpty() && end.IsEmpty():
		return s.ExtractText(s.root, 0, -1)
	case start.IsEmpty():
		return s.extractRelative(end, false)
	case end.IsEmpty():
		return s.extractRelative(start, true)
	}

	common := address.CommonPrefix(start.Steps, end.Steps)
	if len(common) > 0 {
		commonNode, ok := s.NodeFromAddress(common)
		if !ok {
			return ""
		}
		return s.Sub(commonNode).ExtractTextRange(start.Relative(len(common)), end.Relative(len(common)))
	}

	// Both addresses terminate on the root itself.
	startOnRoot, endOnRoot := len(start.Steps) == 0, len(end.Steps) == 0
	switch {
	case startOnRoot && endOnRoot:
		return s.ExtractText(s.root, start.Offset, end.Offset)
	case startOnRoot || endOnRoot:
		return ""
	}

	startNode, ok1 := s.NodeFromAddress(start.Steps[:1])
	endNode, ok2 := s.NodeFromAddress(end.Steps[:1])
	if !ok1 || !ok2 {
		return ""
	}
	startText := s.Sub(startNode).ExtractTextRange(start.Relative(1), address.Full{})
	endText := s.Sub(endNode).ExtractTextRange(address.Full{}, end.Relative(1))
	between := s.extractAll(node.PeersBetween(s.tree, s.root, startNode, endNode, s.opts.TraversalFilter))
	return startText + between + endText
}

// extractRelative returns the text from addr to the end of the root (after)
// or from the beginning of the root to addr.
func (s *Selector[N]) extractRelative(addr address.Full, after bool) string {
	if addr.IsEmpty() {
		return s.ExtractText(s.root, 0, -1)
	}
	if len(addr.Steps) == 0 {
		if after {
			return s.ExtractText(s.root, addr.Offset, -1)
		}
		return s.ExtractText(s.root, 0, addr.Offset)
	}
	child, ok := s.NodeFromAddress(addr.Steps[:1])
	if !ok {
		return ""
	}
	text := s.Sub(child).extractRelative(addr.Relative(1), after)
	if after {
		return text + s.extractAll(node.PeersAfter(s.tree, child, nil))
	}
	return s.extractAll(node.PeersBefore(s.tree, child, nil)) + text
}

func (s *Selector[N]) isContentful(n N) bool {
	return s.opts.TraversalFilter.Accept(n) && node.IsContentful(s.tree, n)
}

func (s *Selector[N]) firstContentful(n N) (N, bool) {
	return node.FirstChild(s.tree, n, s.isContentful)
}

func (s *Selector[N]) lastContentful(n N) (N, bool) {
	return node.LastChild(s.tree, n, s.isContentful)
}

// StartAddress descends through the first contentful child at every level
// and returns the address of the first leaf under the root.
func (s *Selector[N]) StartAddress() address.Steps {
	return s.edgeAddress(s.firstContentful)
}

// EndAddress is StartAddress for the last leaf.
func (s *Selector[N]) EndAddress() address.Steps {
	return s.edgeAddress(s.lastContentful)
}

func (s *Selector[N]) edgeAddress(pick func(N) (N, bool)) address.Steps {
	steps := address.Steps{}
	cur := s.root
	for {
		child, ok := pick(cur)
		if !ok {
			return steps
		}
		sub := s.Sub(cur)
		rel, ok := sub.AddressFromNode(child)
		if !ok {
			return steps
		}
		steps = append(steps, rel...)
		cur = child
	}
}

// StartAddressWithOffset is StartAddress terminated by :0 when the leaf is
// a text node.
func (s *Selector[N]) StartAddressWithOffset() address.Full {
	steps := s.StartAddress()
	if n, ok := s.NodeFromAddress(steps); ok && s.tree.NodeType(n) == node.Text {
		return address.At(steps, 0)
	}
	return address.Full{Steps: steps}
}

// EndAddressWithOffset is EndAddress terminated by the text length when the
// leaf is a text node.
func (s *Selector[N]) EndAddressWithOffset() address.Full {
	steps := s.EndAddress()
	if n, ok := s.NodeFromAddress(steps); ok && s.tree.NodeType(n) == node.Text {
		return address.At(steps, node.TextLength(s.tree.TextContent(n)))
	}
	return address.Full{Steps: steps}
}
