// Package browser is the live document backend. It drives a Chrome page
// over the DevTools protocol with go-rod and exposes the page's DOM as a
// node.Tree, its layout as a display.Surface and an overlay layer as a
// highlight.Canvas.
package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/anthonytopper/customer-web-xp/internal/logging"
)

// Config configures a browser session.
type Config struct {
	// RemoteURL is the DevTools WebSocket URL of a running Chrome.
	// Empty launches a local Chrome via launcher.
	RemoteURL string

	// Bin is the Chrome binary to launch. Empty lets launcher find or
	// download one.
	Bin string

	// Headful shows the browser window.
	Headful bool

	// Timeout bounds every protocol call. Default: 10s.
	Timeout time.Duration

	// ViewportWidth and ViewportHeight size the page in CSS pixels.
	// Default: 800x600.
	ViewportWidth, ViewportHeight int
}

func (c *Config) defaults() {
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.ViewportWidth <= 0 {
		c.ViewportWidth = 800
	}
	if c.ViewportHeight <= 0 {
		c.ViewportHeight = 600
	}
}

// Session owns a browser connection and, when it launched one, the Chrome
// process.
type Session struct {
	cfg     Config
	browser *rod.Browser
	lnch    *launcher.Launcher
}

// Launch starts Chrome (or connects to cfg.RemoteURL) and returns a session.
func Launch(ctx context.Context, cfg Config) (*Session, error) {
	cfg.defaults()
	s := &Session{cfg: cfg}

	wsURL := cfg.RemoteURL
	if wsURL == "" {
		l := launcher.New().Headless(!cfg.Headful)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("browser: launch: %w", err)
		}
		wsURL = u
		s.lnch = l
		logging.DebugContext(ctx, "browser: launched local chrome", "url", wsURL)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.killLauncher()
		return nil, fmt.Errorf("browser: connect: %w", err)
	}
	s.browser = b
	return s, nil
}

// Open navigates a new tab to url and waits for it to load.
func (s *Session) Open(ctx context.Context, url string) (*Document, error) {
	page, err := s.newPage(ctx)
	if err != nil {
		return nil, err
	}
	navCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(url); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", url, err)
	}
	if err := page.Context(navCtx).WaitLoad(); err != nil {
		logging.WarnContext(ctx, "browser: wait load", "url", url, "error", err)
	}
	return Attach(ctx, page, s.cfg)
}

// OpenHTML loads markup into a new blank tab.
func (s *Session) OpenHTML(ctx context.Context, markup string) (*Document, error) {
	page, err := s.newPage(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.Context(ctx).SetDocumentContent(markup); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: set content: %w", err)
	}
	return Attach(ctx, page, s.cfg)
}

func (s *Session) newPage(ctx context.Context) (*rod.Page, error) {
	page, err := s.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("browser: create tab: %w", err)
	}
	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.cfg.ViewportWidth,
		Height:            s.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: viewport: %w", err)
	}
	return page, nil
}

// Close disconnects and stops a launched Chrome.
func (s *Session) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
	}
	s.killLauncher()
	return err
}

func (s *Session) killLauncher() {
	if s.lnch != nil {
		s.lnch.Kill()
		s.lnch.Cleanup()
		s.lnch = nil
	}
}

// Available reports whether a local Chrome can be found without
// downloading one.
func Available() bool {
	_, ok := launcher.LookPath()
	return ok
}
