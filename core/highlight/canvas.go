package highlight

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/core/xml"
)

// MemoryCanvas keeps drawn shapes in memory in drawing order. It backs the
// command line renderer and tests.
type MemoryCanvas struct {
	next    int
	handles []string
	shapes  map[string]Shape
}

// NewMemoryCanvas returns an empty canvas.
func NewMemoryCanvas() *MemoryCanvas {
	return &MemoryCanvas{shapes: make(map[string]Shape)}
}

func (c *MemoryCanvas) Draw(s Shape) (string, error) {
	c.next++
	h := "shape-" + strconv.Itoa(c.next)
	s.Classes = slices.Clone(s.Classes)
	c.shapes[h] = s
	c.handles = append(c.handles, h)
	return h, nil
}

func (c *MemoryCanvas) Remove(handle string) error {
	if _, ok := c.shapes[handle]; !ok {
		return errors.NewNotFound("overlay element", handle)
	}
	delete(c.shapes, handle)
	c.handles = slices.DeleteFunc(c.handles, func(h string) bool { return h == handle })
	return nil
}

func (c *MemoryCanvas) RemoveClass(class string) error {
	c.handles = slices.DeleteFunc(c.handles, func(h string) bool {
		if slices.Contains(c.shapes[h].Classes, class) {
			delete(c.shapes, h)
			return true
		}
		return false
	})
	return nil
}

// Shapes returns the drawn shapes in drawing order.
func (c *MemoryCanvas) Shapes() []Shape {
	out := make([]Shape, 0, len(c.handles))
	for _, h := range c.handles {
		out = append(out, c.shapes[h])
	}
	return out
}

// Len returns the number of drawn shapes.
func (c *MemoryCanvas) Len() int { return len(c.handles) }

// SVG renders the canvas as a standalone SVG document of the given size.
// Box shapes become rect elements and polygon shapes become nested svg
// elements positioned at their box, matching how overlays are placed on a
// page.
func (c *MemoryCanvas) SVG(width, height float64) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="0 0 %s %s">`+"\n",
		num(width), num(height), num(width), num(height))
	for _, s := range c.Shapes() {
		attrs := fmt.Sprintf(`class="%s" data-id="%s" style="%s"`,
			xml.EscapeAttr(strings.Join(s.Classes, " ")), xml.EscapeAttr(s.ID), OverlayStyle)
		r := s.Rect
		if s.Path == nil {
			fmt.Fprintf(&buf, `  <rect %s x="%s" y="%s" width="%s" height="%s" fill="%s"/>`+"\n",
				attrs, num(r.X), num(r.Y), num(r.Width), num(r.Height), xml.EscapeAttr(s.Color))
			continue
		}
		fmt.Fprintf(&buf, `  <svg %s x="%s" y="%s" width="%s" height="%s" viewBox="0 0 %s %s" preserveAspectRatio="none">`+"\n",
			attrs, num(r.X), num(r.Y), num(r.Width), num(r.Height), num(r.Width), num(r.Height))
		fmt.Fprintf(&buf, `    <path d="%s" fill="%s" stroke="none"/>`+"\n", s.SVGPath(), xml.EscapeAttr(s.Color))
		buf.WriteString("  </svg>\n")
	}
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
