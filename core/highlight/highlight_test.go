package highlight

import (
	"errors"
	"strings"
	"testing"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/geometry"
)

// lineLayout measures a range as full-width lines between the first steps
// of its two addresses, one line per step value.
type lineLayout struct {
	calls int
	shift float64
}

func (l *lineLayout) RectsForRange(start, end address.Full) []geometry.Rect {
	l.calls++
	if len(start.Steps) == 0 || len(end.Steps) == 0 {
		return nil
	}
	var out []geometry.Rect
	for line := start.Steps[0]; line <= end.Steps[0]; line++ {
		left, right := 0.0, 100.0
		if line == start.Steps[0] {
			left = float64(start.Offset)
		}
		if line == end.Steps[0] {
			right = float64(end.Offset)
		}
		out = append(out, geometry.NewRect(left, float64(line)*10+l.shift, right, float64(line+1)*10+l.shift))
	}
	return out
}

func params(id string, startLine, startOff, endLine, endOff int) Params {
	return Params{
		ID:           id,
		StartAddress: address.At(address.Steps{startLine}, startOff),
		EndAddress:   address.At(address.Steps{endLine}, endOff),
		Color:        "yellow",
	}
}

func TestAddAndRemove(t *testing.T) {
	canvas := NewMemoryCanvas()
	m := NewManager(&lineLayout{}, canvas, nil)

	if _, err := m.Add(params("a", 0, 30, 2, 60)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if canvas.Len() != 3 {
		t.Errorf("canvas has %d shapes, want 3", canvas.Len())
	}
	for _, s := range canvas.Shapes() {
		if s.ID != "a" || s.Color != "yellow" || s.Classes[0] != DefaultClassName {
			t.Errorf("shape = %+v", s)
		}
	}

	if _, err := m.Add(params("b", 4, 0, 4, 20)); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := m.Remove("a"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if canvas.Len() != 1 {
		t.Errorf("canvas has %d shapes after Remove, want 1", canvas.Len())
	}
	recs := m.Records()
	if len(recs) != 1 || recs[0].ID != "b" {
		t.Errorf("Records() = %+v, want only b", recs)
	}
}

// flakyCanvas refuses to draw the third line of highlight "a" while armed.
type flakyCanvas struct {
	*MemoryCanvas
	armed bool
}

func (c *flakyCanvas) Draw(s Shape) (string, error) {
	if c.armed && s.ID == "a" && s.Rect.Top() >= 20 {
		return "", errors.New("canvas detached")
	}
	return c.MemoryCanvas.Draw(s)
}

func TestAddFailureLeavesNoShapes(t *testing.T) {
	canvas := &flakyCanvas{MemoryCanvas: NewMemoryCanvas(), armed: true}
	m := NewManager(&lineLayout{}, canvas, nil)

	if _, err := m.Add(params("a", 0, 30, 2, 60)); err == nil {
		t.Fatal("Add() succeeded on a failing canvas")
	}
	if canvas.Len() != 0 {
		t.Errorf("canvas has %d shapes after a failed Add, want 0", canvas.Len())
	}
	if len(m.Records()) != 0 {
		t.Errorf("Records() = %+v, want none", m.Records())
	}
}

func TestReflowFailureDrawsTheRest(t *testing.T) {
	canvas := &flakyCanvas{MemoryCanvas: NewMemoryCanvas()}
	m := NewManager(&lineLayout{}, canvas, nil)
	for _, p := range []Params{params("a", 0, 30, 2, 60), params("b", 4, 0, 4, 20)} {
		if _, err := m.Add(p); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	canvas.armed = true
	if err := m.Reflow(); err == nil {
		t.Fatal("Reflow() succeeded on a failing canvas")
	}
	if canvas.Len() != 1 {
		t.Errorf("canvas has %d shapes, want only b's 1", canvas.Len())
	}
	if n := len(m.Shapes("a")); n != 0 {
		t.Errorf("Shapes(a) = %d, want 0", n)
	}
	if n := len(m.Shapes("b")); n != 1 {
		t.Errorf("Shapes(b) = %d, want 1", n)
	}
	if len(m.Records()) != 2 {
		t.Errorf("Records() = %d, want both kept", len(m.Records()))
	}
}

func TestAddIfNotExists(t *testing.T) {
	canvas := NewMemoryCanvas()
	m := NewManager(&lineLayout{}, canvas, nil)

	id, added, err := m.AddIfNotExists(params("a", 0, 0, 0, 10))
	if err != nil || !added || id != "a" {
		t.Fatalf("AddIfNotExists() = %q, %v, %v", id, added, err)
	}
	id, added, err = m.AddIfNotExists(params("other", 0, 0, 0, 10))
	if err != nil || added || id != "a" {
		t.Errorf("AddIfNotExists() duplicate = %q, %v, %v, want a, false", id, added, err)
	}
	if _, err := m.Add(params("again", 0, 0, 0, 10)); err != nil {
		t.Fatal(err)
	}
	if got := len(m.Records()); got != 2 {
		t.Errorf("len(Records()) = %d, want 2", got)
	}
}

func TestDerivedID(t *testing.T) {
	m := NewManager(&lineLayout{}, NewMemoryCanvas(), nil)
	p := params("", 1, 2, 3, 4)
	id, err := m.Add(p)
	if err != nil {
		t.Fatal(err)
	}
	if id == "" || id != DeriveID(p.StartAddress, p.EndAddress) {
		t.Errorf("Add() id = %q, want DeriveID", id)
	}
	if other := DeriveID(p.StartAddress, p.StartAddress); other == id {
		t.Error("DeriveID() collides for different ranges")
	}
}

func TestReflowPreservesOrder(t *testing.T) {
	layout := &lineLayout{}
	canvas := NewMemoryCanvas()
	m := NewManager(layout, canvas, nil)
	for _, id := range []string{"x", "y", "z"} {
		if _, err := m.Add(params(id, 1, 0, 1, 50)); err != nil {
			t.Fatal(err)
		}
	}

	layout.shift = 100
	if err := m.Reflow(); err != nil {
		t.Fatalf("Reflow() error = %v", err)
	}
	if layout.calls != 6 {
		t.Errorf("layout queried %d times, want 6", layout.calls)
	}
	var order []string
	for _, r := range m.Records() {
		order = append(order, r.ID)
	}
	if strings.Join(order, ",") != "x,y,z" {
		t.Errorf("order after Reflow = %v", order)
	}
	if canvas.Len() != 3 {
		t.Errorf("canvas has %d shapes, want 3", canvas.Len())
	}
	for _, s := range canvas.Shapes() {
		if s.Rect.Y != 110 {
			t.Errorf("shape not redrawn: %+v", s.Rect)
		}
	}
}

func TestRemoveAllSweepsStrays(t *testing.T) {
	canvas := NewMemoryCanvas()
	stray := Shape{ID: "old", Classes: []string{DefaultClassName}}
	other := Shape{ID: "keep", Classes: []string{"unrelated"}}
	for _, s := range []Shape{stray, other} {
		if _, err := canvas.Draw(s); err != nil {
			t.Fatal(err)
		}
	}

	m := NewManager(&lineLayout{}, canvas, nil)
	if _, err := m.Add(params("a", 0, 0, 1, 10)); err != nil {
		t.Fatal(err)
	}
	if err := m.RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() error = %v", err)
	}
	if len(m.Records()) != 0 {
		t.Errorf("Records() not empty")
	}
	shapes := canvas.Shapes()
	if len(shapes) != 1 || shapes[0].ID != "keep" {
		t.Errorf("canvas after RemoveAll = %+v, want only the unrelated shape", shapes)
	}
}

func TestHighlightAt(t *testing.T) {
	for _, strategy := range []Strategy{RectStrategy{}, PathStrategy{}} {
		m := NewManager(&lineLayout{}, NewMemoryCanvas(), &Options{Strategy: strategy})
		// three lines: 30..100, 0..100, 0..60
		if _, err := m.Add(params("a", 0, 30, 2, 60)); err != nil {
			t.Fatal(err)
		}

		id, bounds, ok := m.HighlightAt(geometry.Point{X: 50, Y: 15})
		if !ok || id != "a" {
			t.Errorf("%T: HighlightAt(inside) = %q, %v", strategy, id, ok)
		}
		if bounds != geometry.NewRect(0, 0, 100, 30) {
			t.Errorf("%T: bounds = %v", strategy, bounds)
		}

		// inside the bounding box but outside the highlighted area
		if _, _, ok := m.HighlightAt(geometry.Point{X: 10, Y: 5}); ok {
			t.Errorf("%T: HighlightAt(first line gutter) ok = true", strategy)
		}
		if _, _, ok := m.HighlightAt(geometry.Point{X: 80, Y: 25}); ok {
			t.Errorf("%T: HighlightAt(last line tail) ok = true", strategy)
		}
	}
}

func TestStrategies(t *testing.T) {
	rects := []geometry.Rect{
		geometry.NewRect(30, 0, 100, 10),
		geometry.NewRect(30, 0, 100, 10),
		geometry.NewRect(0, 10, 100, 20),
	}
	if got := (RectStrategy{}).Shapes(rects); len(got) != 2 {
		t.Errorf("RectStrategy.Shapes() = %d shapes, want 2", len(got))
	}
	got := (PathStrategy{}).Shapes(rects)
	if len(got) != 1 {
		t.Fatalf("PathStrategy.Shapes() = %d shapes, want 1", len(got))
	}
	if got[0].Rect != geometry.NewRect(0, 0, 100, 20) {
		t.Errorf("polygon bounds = %v", got[0].Rect)
	}
}

func TestCustomClasses(t *testing.T) {
	canvas := NewMemoryCanvas()
	m := NewManager(&lineLayout{}, canvas, &Options{ClassName: "hl"})
	p := params("a", 0, 0, 0, 10)
	p.ClassNames = []string{"note"}
	if _, err := m.Add(p); err != nil {
		t.Fatal(err)
	}
	s := canvas.Shapes()[0]
	if strings.Join(s.Classes, " ") != "hl note" {
		t.Errorf("Classes = %v, want [hl note]", s.Classes)
	}
}

func TestMemoryCanvasSVG(t *testing.T) {
	canvas := NewMemoryCanvas()
	m := NewManager(&lineLayout{}, canvas, &Options{Strategy: PathStrategy{}})
	if _, err := m.Add(params("v1", 0, 30, 1, 60)); err != nil {
		t.Fatal(err)
	}
	out := string(canvas.SVG(200, 100))
	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="200" height="100"`,
		`data-id="v1"`,
		`class="__highlight_region__"`,
		`fill="yellow"`,
		`d="M `,
		` Z"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG() missing %q:\n%s", want, out)
		}
	}

	if err := canvas.Remove("missing"); err == nil {
		t.Error("Remove(missing) error = nil")
	}
}
