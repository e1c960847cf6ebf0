package cfi

import (
	"github.com/anthonytopper/customer-web-xp/core/address"
)

// Equal reports whether c and o address the same document slot and cover
// the same start and end positions. Identical text is always equal; an
// invalid identifier is never equal to a valid one.
func (c CFI) Equal(o CFI) bool {
	if c.raw == o.raw {
		return true
	}
	if !c.Valid() || !o.Valid() {
		return false
	}
	return c.opf == o.opf &&
		c.spine == o.spine &&
		c.Start().Compare(o.Start()) == 0 &&
		c.End().Compare(o.End()) == 0
}

// Less orders identifiers by package slot, spine step, start position and
// then end position. Invalid identifiers sort before valid ones and among
// themselves by text.
func (c CFI) Less(o CFI) bool {
	switch cv, ov := c.Valid(), o.Valid(); {
	case !cv && ov:
		return true
	case cv && !ov:
		return false
	case !cv && !ov:
		return c.raw < o.raw
	}
	if c.opf != o.opf {
		return c.opf < o.opf
	}
	if c.spine != o.spine {
		return c.spine < o.spine
	}
	if cmp := c.Start().Compare(o.Start()); cmp != 0 {
		return cmp < 0
	}
	return c.End().Compare(o.End()) < 0
}

// Greater reports whether c sorts after o.
func (c CFI) Greater(o CFI) bool {
	return !c.Less(o) && !c.Equal(o)
}

// Compare returns -1, 0 or 1 for use with slices.SortFunc.
func Compare(a, b CFI) int {
	switch {
	case a.Equal(b):
		return 0
	case a.Less(b):
		return -1
	}
	return 1
}

func (c CFI) sameDocument(o CFI) bool {
	return c.Valid() && o.Valid() && c.opf == o.opf && c.spine == o.spine
}

// IsWithinRange reports whether c lies entirely inside o. A single position
// is treated as a range whose start and end coincide.
func (c CFI) IsWithinRange(o CFI) bool {
	if !c.sameDocument(o) {
		return false
	}
	return c.Start().Compare(o.Start()) >= 0 && c.End().Compare(o.End()) <= 0
}

// OverlapsRange reports whether c and o share a position in reading order.
func (c CFI) OverlapsRange(o CFI) bool {
	if !c.sameDocument(o) {
		return false
	}
	return c.Start().Compare(o.End()) <= 0 && c.End().Compare(o.Start()) >= 0
}

// IsDescendantOf reports whether c's base path extends parent's, either by
// more steps or by adding an offset to the same steps.
func (c CFI) IsDescendantOf(parent CFI) bool {
	if !c.sameDocument(parent) {
		return false
	}
	if !c.base.Steps.HasPrefix(parent.base.Steps) {
		return false
	}
	if len(c.base.Steps) > len(parent.base.Steps) {
		return true
	}
	return !parent.base.HasOffset && c.base.HasOffset
}

// StepForward moves the last base step to the next sibling of the same
// kind. Ranges and invalid identifiers report false; an empty base path is
// returned unchanged.
func (c CFI) StepForward() (CFI, bool) {
	if !c.Valid() || c.isRange {
		return CFI{}, false
	}
	n := len(c.base.Steps)
	if n == 0 {
		return c, true
	}
	base := clone(c.base)
	base.Steps[n-1] += 2
	return construct(c.opf, c.spine, base), true
}

// StepBackward moves the last base step to the previous sibling of the same
// kind. It is a fixed point at the first sibling (step 1 for text, 2 for
// elements).
func (c CFI) StepBackward() (CFI, bool) {
	if !c.Valid() || c.isRange {
		return CFI{}, false
	}
	n := len(c.base.Steps)
	if n == 0 {
		return c, true
	}
	last := c.base.Steps[n-1]
	minimum := 2
	if !address.IsElementStep(last) {
		minimum = 1
	}
	if last-2 < minimum {
		return c, true
	}
	base := clone(c.base)
	base.Steps[n-1] = last - 2
	return construct(c.opf, c.spine, base), true
}

// StepRemove drops the last base step and the base offset.
func (c CFI) StepRemove() (CFI, bool) {
	if !c.Valid() || c.isRange {
		return CFI{}, false
	}
	n := len(c.base.Steps)
	if n == 0 {
		return c, true
	}
	return construct(c.opf, c.spine, address.Full{Steps: c.base.Steps[:n-1].Clone()}), true
}

// AddStep appends step to the path, keeping any offset after it. On a range
// the step is appended to the end diff.
func (c CFI) AddStep(step int) (CFI, bool) {
	if !c.Valid() || step < 0 {
		return CFI{}, false
	}
	if c.isRange {
		end := clone(c.end)
		end.Steps = append(end.Steps, step)
		return constructRange(c.opf, c.spine, c.base, c.start, end), true
	}
	base := clone(c.base)
	base.Steps = append(base.Steps, step)
	return construct(c.opf, c.spine, base), true
}

// SelectorAddress converts the base path to an address relative to the body
// element when omitBody is set (dropping the first step), or to the
// document element otherwise.
func (c CFI) SelectorAddress(omitBody bool) address.Full {
	return relative(c.base, omitBody)
}

// SelectorRange returns the start and end positions as selector addresses.
// For a single position both ends are the same.
func (c CFI) SelectorRange(omitBody bool) (start, end address.Full) {
	return relative(c.Start(), omitBody), relative(c.End(), omitBody)
}

func relative(f address.Full, omitBody bool) address.Full {
	if omitBody {
		return f.Relative(1)
	}
	return clone(f)
}

// BuildParams describes a single position.
type BuildParams struct {
	Spine int
	// OPF defaults to DefaultOPF when zero.
	OPF  int
	Path address.Full
}

// Build constructs a single-position identifier. An explicit zero offset is
// kept.
func Build(p BuildParams) CFI {
	if p.OPF == 0 {
		p.OPF = DefaultOPF
	}
	return construct(p.OPF, p.Spine, p.Path)
}

// FromRange combines two single positions in the same spine item into a
// range over their longest common path. Missing offsets become 0.
func FromRange(start, end string) (CFI, bool) {
	return FromPositions(Parse(start), Parse(end))
}

// FromPositions is FromRange for parsed identifiers.
func FromPositions(a, b CFI) (CFI, bool) {
	if !a.Valid() || !b.Valid() || a.isRange || b.isRange {
		return CFI{}, false
	}
	if a.opf != b.opf || a.spine != b.spine {
		return CFI{}, false
	}
	sa, sb := a.base.Steps, b.base.Steps
	n := 0
	for n < min(len(sa), len(sb))-1 && sa[n] == sb[n] {
		n++
	}
	common := address.Full{Steps: sa[:n].Clone()}
	start := address.At(sa[n:], a.base.Offset)
	end := address.At(sb[n:], b.base.Offset)
	return constructRange(a.opf, a.spine, common, start, end), true
}
