package main

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/go-rod/rod/lib/proto"

	"github.com/anthonytopper/customer-web-xp/core/display"
	"github.com/anthonytopper/customer-web-xp/core/epub"
	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/core/highlight"
	"github.com/anthonytopper/customer-web-xp/internal/browser"
	"github.com/anthonytopper/customer-web-xp/internal/logging"
)

// RenderCmd lays out one spine item in Chrome and renders the highlight
// overlays for a range as SVG.
type RenderCmd struct {
	Book       string        `arg:"" help:"Book: .epub file, unpacked directory or .tar.xz/.tar.gz bundle" type:"path"`
	Range      string        `arg:"" help:"Range identifier to highlight"`
	Output     string        `short:"o" help:"SVG output file (default stdout)" default:"-"`
	Strategy   string        `help:"Overlay strategy (rect, path)" enum:"rect,path" default:"rect"`
	Color      string        `help:"Highlight fill color" default:"rgba(255,230,0,0.4)"`
	Screenshot string        `help:"Also draw the overlays into the page and save a PNG screenshot" type:"path"`
	BrowserURL string        `name:"browser-url" help:"DevTools URL of a running Chrome" env:"CFI_BROWSER_URL"`
	ChromeBin  string        `name:"chrome-bin" help:"Chrome binary to launch" env:"CFI_CHROME_BIN"`
	Headful    bool          `help:"Show the browser window"`
	Timeout    time.Duration `help:"Timeout for each browser call" default:"10s"`
	Width      int           `help:"Viewport width in CSS pixels" default:"800"`
	Height     int           `help:"Viewport height in CSS pixels" default:"600"`
}

func (c *RenderCmd) strategy() highlight.Strategy {
	if c.Strategy == "path" {
		return highlight.PathStrategy{}
	}
	return highlight.RectStrategy{}
}

func (c *RenderCmd) Run(kctx *kong.Context, ctx context.Context) error {
	r, err := parseCFI("range", c.Range)
	if err != nil {
		return err
	}
	if !r.IsRange() {
		return errors.NewValidation("range", "not a range identifier")
	}

	book, err := epub.Open(c.Book)
	if err != nil {
		return err
	}
	defer book.Close()
	markup, err := book.SpineFile(r.SpineItem())
	if err != nil {
		return err
	}

	sess, err := browser.Launch(ctx, browser.Config{
		RemoteURL:      c.BrowserURL,
		Bin:            c.ChromeBin,
		Headful:        c.Headful,
		Timeout:        c.Timeout,
		ViewportWidth:  c.Width,
		ViewportHeight: c.Height,
	})
	if err != nil {
		return err
	}
	defer sess.Close()

	doc, err := sess.OpenHTML(ctx, string(markup))
	if err != nil {
		return err
	}
	defer doc.Close()

	sel, ok := doc.Selector(nil)
	if !ok {
		return errors.NewNotFound("body element", c.Book)
	}
	view := display.New(sel, doc.Surface(), &display.Options{
		RectHook: display.LineHeightHook(doc.Surface().LineHeight),
	})

	start, end := r.SelectorRange(true)
	params := highlight.Params{StartAddress: start, EndAddress: end, Color: c.Color}

	canvas := highlight.NewMemoryCanvas()
	mgr := highlight.NewManager(view, canvas, &highlight.Options{Strategy: c.strategy()})
	id, err := mgr.Add(params)
	if err != nil {
		return err
	}
	logging.HighlightEvent(ctx, "added", id, len(mgr.Shapes(id)), "range", c.Range)
	if len(mgr.Shapes(id)) == 0 {
		logging.AddressUnresolved(ctx, r.String(), "range has no rendered rectangles")
	}

	if c.Screenshot != "" {
		if err := c.screenshot(view, doc, params); err != nil {
			return err
		}
	}

	width, height := doc.Surface().ViewportSize()
	return c.write(kctx.Stdout, canvas.SVG(width, height))
}

func (c *RenderCmd) screenshot(view *display.View[browser.Node], doc *browser.Document, p highlight.Params) error {
	live := highlight.NewManager(view, doc.Canvas(), &highlight.Options{Strategy: c.strategy()})
	if _, err := live.Add(p); err != nil {
		return err
	}
	png, err := doc.Page().Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return errors.Wrap(err, "screenshot")
	}
	if err := os.WriteFile(c.Screenshot, png, 0644); err != nil {
		return errors.NewIO("write", c.Screenshot, err)
	}
	return nil
}

func (c *RenderCmd) write(stdout io.Writer, svg []byte) error {
	if c.Output == "-" {
		_, err := stdout.Write(svg)
		return err
	}
	if err := os.WriteFile(c.Output, svg, 0644); err != nil {
		return errors.NewIO("write", c.Output, err)
	}
	return nil
}
