// Package highlight keeps a registry of highlighted address ranges and the
// overlay shapes drawn for them.
package highlight

import (
	"encoding/hex"
	"slices"

	"github.com/zeebo/blake3"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/core/geometry"
)

// DefaultClassName marks every overlay element the manager draws.
const DefaultClassName = "__highlight_region__"

// OverlayStyle is the inline style canvases apply to overlay elements.
const OverlayStyle = "position:absolute;z-index:1000;pointer-events:none;mix-blend-mode:multiply"

// Params registers a highlight.
type Params struct {
	ID           string       `json:"id"`
	StartAddress address.Full `json:"startAddress"`
	EndAddress   address.Full `json:"endAddress"`
	Color        string       `json:"color"`
	ClassNames   []string     `json:"classNames,omitempty"`
}

// DeriveID returns a stable id for a range, used when Params.ID is empty.
func DeriveID(start, end address.Full) string {
	sum := blake3.Sum256([]byte(start.String() + "," + end.String()))
	return hex.EncodeToString(sum[:8])
}

// Layout measures address ranges in document coordinates.
// *display.View satisfies it.
type Layout interface {
	RectsForRange(start, end address.Full) []geometry.Rect
}

// Canvas draws overlay shapes into the document.
type Canvas interface {
	// Draw renders s and returns a handle for removing it.
	Draw(s Shape) (string, error)
	Remove(handle string) error
	// RemoveClass deletes every element carrying class, including ones
	// left behind by an earlier session.
	RemoveClass(class string) error
}

// Options configure a Manager.
type Options struct {
	// ClassName defaults to DefaultClassName.
	ClassName string
	// Strategy defaults to RectStrategy.
	Strategy Strategy
}

func (o *Options) defaults() {
	if o.ClassName == "" {
		o.ClassName = DefaultClassName
	}
	if o.Strategy == nil {
		o.Strategy = RectStrategy{}
	}
}

type record struct {
	Params
	shapes  []Shape
	handles []string
}

// Manager owns the overlay elements of the highlights registered with it.
// It is not safe for concurrent use.
type Manager struct {
	layout  Layout
	canvas  Canvas
	opts    Options
	records []*record
}

// NewManager returns a manager drawing onto canvas. opts may be nil.
func NewManager(layout Layout, canvas Canvas, opts *Options) *Manager {
	m := &Manager{layout: layout, canvas: canvas}
	if opts != nil {
		m.opts = *opts
	}
	m.opts.defaults()
	return m
}

// ClassName returns the marker class of the manager's overlay elements.
func (m *Manager) ClassName() string { return m.opts.ClassName }

// Add draws p and registers it, even if an identical range is already
// registered. It returns the highlight id.
func (m *Manager) Add(p Params) (string, error) {
	if p.ID == "" {
		p.ID = DeriveID(p.StartAddress, p.EndAddress)
	}
	p.ClassNames = slices.Clone(p.ClassNames)
	r := &record{Params: p}
	if err := m.draw(r); err != nil {
		return "", err
	}
	m.records = append(m.records, r)
	return p.ID, nil
}

// AddIfNotExists adds p unless a highlight with the same start and end
// addresses exists, in which case it returns that highlight's id and false.
func (m *Manager) AddIfNotExists(p Params) (string, bool, error) {
	for _, r := range m.records {
		if r.StartAddress.Equal(p.StartAddress) && r.EndAddress.Equal(p.EndAddress) {
			return r.ID, false, nil
		}
	}
	id, err := m.Add(p)
	return id, err == nil, err
}

// draw renders r. On failure the shapes already drawn for r are removed
// again, so r owns nothing on the canvas.
func (m *Manager) draw(r *record) error {
	rects := m.layout.RectsForRange(r.StartAddress, r.EndAddress)
	classes := append([]string{m.opts.ClassName}, r.ClassNames...)
	for _, s := range m.opts.Strategy.Shapes(rects) {
		s.ID, s.Color, s.Classes = r.ID, r.Color, classes
		h, err := m.canvas.Draw(s)
		if err != nil {
			m.erase(r)
			return errors.Wrapf(err, "failed to draw highlight %s", r.ID)
		}
		r.shapes = append(r.shapes, s)
		r.handles = append(r.handles, h)
	}
	return nil
}

func (m *Manager) erase(r *record) error {
	for _, h := range r.handles {
		if err := m.canvas.Remove(h); err != nil {
			return errors.Wrapf(err, "failed to remove highlight %s", r.ID)
		}
	}
	r.shapes, r.handles = nil, nil
	return nil
}

// Remove deletes every highlight registered under id.
func (m *Manager) Remove(id string) error {
	kept := m.records[:0]
	var firstErr error
	for _, r := range m.records {
		if r.ID != id {
			kept = append(kept, r)
			continue
		}
		if err := m.erase(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	clear(m.records[len(kept):])
	m.records = kept
	return firstErr
}

// Reflow redraws every registered highlight in registration order. Call it
// after the document changes shape. A highlight that fails to draw stays
// registered without shapes; the first error is returned after the rest
// are drawn.
func (m *Manager) Reflow() error {
	for _, r := range m.records {
		if err := m.erase(r); err != nil {
			return err
		}
	}
	var firstErr error
	for _, r := range m.records {
		if err := m.draw(r); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RemoveAll unregisters every highlight and sweeps any overlay elements
// still carrying the marker class.
func (m *Manager) RemoveAll() error {
	for _, r := range m.records {
		if err := m.erase(r); err != nil {
			return err
		}
	}
	m.records = nil
	return m.canvas.RemoveClass(m.opts.ClassName)
}

// HighlightAt returns the id of the highlight whose drawn geometry contains
// p, together with the bounds of all of that highlight's shapes. p is in
// document coordinates. Later highlights win.
func (m *Manager) HighlightAt(p geometry.Point) (string, geometry.Rect, bool) {
	for i := len(m.records) - 1; i >= 0; i-- {
		r := m.records[i]
		for _, s := range r.shapes {
			if s.Contains(p) {
				return r.ID, m.bounds(r.ID), true
			}
		}
	}
	return "", geometry.Rect{}, false
}

func (m *Manager) bounds(id string) geometry.Rect {
	var rects []geometry.Rect
	for _, r := range m.records {
		if r.ID != id {
			continue
		}
		for _, s := range r.shapes {
			rects = append(rects, s.Rect)
		}
	}
	b, _ := geometry.Bounds(rects)
	return b
}

// Records returns the registered highlights in registration order.
func (m *Manager) Records() []Params {
	out := make([]Params, len(m.records))
	for i, r := range m.records {
		out[i] = r.Params
		out[i].ClassNames = slices.Clone(r.ClassNames)
	}
	return out
}

// Shapes returns the shapes currently drawn for id.
func (m *Manager) Shapes(id string) []Shape {
	var out []Shape
	for _, r := range m.records {
		if r.ID == id {
			out = append(out, r.shapes...)
		}
	}
	return out
}
