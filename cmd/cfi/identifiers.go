package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/anthonytopper/customer-web-xp/core/address"
	"github.com/anthonytopper/customer-web-xp/core/cfi"
	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/core/geometry"
)

func parseCFI(field, s string) (cfi.CFI, error) {
	c := cfi.Parse(s)
	if !c.Valid() {
		return c, errors.Wrapf(c.Err(), "%s", field)
	}
	return c, nil
}

// ParseCmd prints the parts of an identifier.
type ParseCmd struct {
	CFI string `arg:"" help:"Identifier, e.g. epubcfi(/6/4!/4/2/1:5)"`
}

type parseOutput struct {
	CFI        string       `json:"cfi"`
	Range      bool         `json:"range"`
	OPF        int          `json:"opf"`
	Spine      int          `json:"spine"`
	SpineItem  int          `json:"spineItem"`
	Base       address.Full `json:"base"`
	Start      address.Full `json:"start"`
	End        address.Full `json:"end"`
	Pure       string       `json:"pure"`
	WithoutIDs string       `json:"withoutIds"`
	Selector   address.Full `json:"selector"`
}

func (c *ParseCmd) Run(ctx *kong.Context) error {
	id, err := parseCFI("cfi", c.CFI)
	if err != nil {
		return err
	}
	return writeJSON(ctx.Stdout, parseOutput{
		CFI:        id.String(),
		Range:      id.IsRange(),
		OPF:        id.OPF(),
		Spine:      id.Spine(),
		SpineItem:  id.SpineItem(),
		Base:       id.Base(),
		Start:      id.Start(),
		End:        id.End(),
		Pure:       id.Pure(),
		WithoutIDs: id.WithoutIDs().String(),
		Selector:   id.SelectorAddress(true),
	})
}

// StepCmd applies one of the pure step transformations.
type StepCmd struct {
	Op   string `arg:"" enum:"forward,backward,remove,add" help:"Transformation (forward, backward, remove, add)"`
	CFI  string `arg:"" help:"Identifier"`
	Step int    `help:"Step to append for add" default:"2"`
}

func (c *StepCmd) Run(ctx *kong.Context) error {
	id, err := parseCFI("cfi", c.CFI)
	if err != nil {
		return err
	}
	var (
		out cfi.CFI
		ok  bool
	)
	switch c.Op {
	case "forward":
		out, ok = id.StepForward()
	case "backward":
		out, ok = id.StepBackward()
	case "remove":
		out, ok = id.StepRemove()
	case "add":
		out, ok = id.AddStep(c.Step)
	}
	if !ok {
		return errors.NewValidation("cfi", fmt.Sprintf("%s does not apply to %s", c.Op, c.CFI))
	}
	fmt.Fprintln(ctx.Stdout, out)
	return nil
}

// RangeCmd combines two single positions into a range.
type RangeCmd struct {
	Start string `arg:"" help:"Start position"`
	End   string `arg:"" help:"End position"`
}

func (c *RangeCmd) Run(ctx *kong.Context) error {
	a, err := parseCFI("start", c.Start)
	if err != nil {
		return err
	}
	b, err := parseCFI("end", c.End)
	if err != nil {
		return err
	}
	r, ok := cfi.FromPositions(a, b)
	if !ok {
		return errors.NewValidation("range", "positions must be single positions in the same spine item")
	}
	fmt.Fprintln(ctx.Stdout, r)
	return nil
}

// CompareCmd reports ordering and containment between two identifiers.
type CompareCmd struct {
	A string `arg:"" help:"First identifier"`
	B string `arg:"" help:"Second identifier"`
}

type compareOutput struct {
	Compare    int  `json:"compare"`
	Equal      bool `json:"equal"`
	Less       bool `json:"less"`
	Greater    bool `json:"greater"`
	Within     bool `json:"within"`
	Overlaps   bool `json:"overlaps"`
	Descendant bool `json:"descendant"`
}

func (c *CompareCmd) Run(ctx *kong.Context) error {
	a, err := parseCFI("a", c.A)
	if err != nil {
		return err
	}
	b, err := parseCFI("b", c.B)
	if err != nil {
		return err
	}
	return writeJSON(ctx.Stdout, compareOutput{
		Compare:    cfi.Compare(a, b),
		Equal:      a.Equal(b),
		Less:       a.Less(b),
		Greater:    a.Greater(b),
		Within:     a.IsWithinRange(b),
		Overlaps:   a.OverlapsRange(b),
		Descendant: a.IsDescendantOf(b),
	})
}

// MergeCmd merges a JSON array of rectangles into outline polygons.
type MergeCmd struct {
	File string `arg:"" optional:"" default:"-" help:"JSON file of rectangles, or - for stdin"`
	SVG  bool   `name:"svg" help:"Print SVG path data instead of JSON points"`
}

func (c *MergeCmd) Run(ctx *kong.Context) error {
	var r io.Reader = os.Stdin
	if c.File != "-" {
		f, err := os.Open(c.File)
		if err != nil {
			return errors.NewIO("open", c.File, err)
		}
		defer f.Close()
		r = f
	}
	var rects []geometry.Rect
	if err := json.NewDecoder(r).Decode(&rects); err != nil {
		return errors.NewParse("json", c.File, err.Error())
	}
	paths := geometry.MergeRects(rects)
	if !c.SVG {
		if paths == nil {
			paths = []geometry.Path{}
		}
		return writeJSON(ctx.Stdout, paths)
	}
	for _, p := range paths {
		fmt.Fprintln(ctx.Stdout, p.SVG(geometry.Point{}))
	}
	return nil
}
