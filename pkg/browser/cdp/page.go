// Package cdp drives Chrome over the DevTools protocol with rod. It is the
// alternative to the Playwright backend for a local Chrome, a remote one
// reached through its websocket URL, or pages that need stealth patches.
package cdp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"github.com/entrhq/fullshot/pkg/pageutil"
	"github.com/entrhq/fullshot/pkg/screenshot"
	"github.com/entrhq/fullshot/pkg/sizes"
)

// DefaultTimeout bounds navigation when Options leaves it zero.
const DefaultTimeout = 30 * time.Second

// Options configures Launch.
type Options struct {
	Headless bool

	// Stealth opens the page with anti-detection patches applied.
	Stealth bool

	// RemoteURL connects to an already running browser instead of
	// launching one.
	RemoteURL string

	// Viewport in CSS pixels. Zero keeps the browser's default.
	Viewport sizes.Size

	// DeviceScaleFactor emulates a high-density screen when above 0.
	DeviceScaleFactor float64

	Timeout time.Duration
}

// Page is one Chrome tab ready for capture.
type Page struct {
	target   target
	viewport sizes.Size
	scale    float64
	timeout  time.Duration
	closer   func() error
}

var _ screenshot.Browser = (*Page)(nil)

// Launch starts or connects to Chrome and opens a blank page.
func Launch(ctx context.Context, opts Options) (*Page, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	wsURL := opts.RemoteURL
	var l *launcher.Launcher
	if wsURL == "" {
		l = launcher.New().
			Headless(opts.Headless).
			Set("disable-blink-features", "AutomationControlled")
		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, fmt.Errorf("cdp: launch: %w", err)
		}
		wsURL = u
	}

	b := rod.New().ControlURL(wsURL)
	if err := b.Context(ctx).Connect(); err != nil {
		cleanupLauncher(l)
		return nil, fmt.Errorf("cdp: connect: %w", err)
	}

	var (
		rp  *rod.Page
		err error
	)
	if opts.Stealth {
		rp, err = stealth.Page(b)
	} else {
		rp, err = b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		b.Close()
		cleanupLauncher(l)
		return nil, fmt.Errorf("cdp: create page: %w", err)
	}

	p := newPage(rodTarget{page: rp}, opts, func() error {
		err := errors.Join(rp.Close(), closeBrowser(b, opts.RemoteURL != ""))
		cleanupLauncher(l)
		return err
	})

	if opts.Viewport.Width > 0 && opts.Viewport.Height > 0 {
		if err := p.ResizeViewport(ctx, opts.Viewport); err != nil {
			p.Close()
			return nil, err
		}
	}
	return p, nil
}

func newPage(t target, opts Options, closer func() error) *Page {
	return &Page{
		target:   t,
		viewport: opts.Viewport,
		scale:    opts.DeviceScaleFactor,
		timeout:  opts.Timeout,
		closer:   closer,
	}
}

// A remote browser outlives the capture; only a launched one is closed.
func closeBrowser(b *rod.Browser, remote bool) error {
	if remote {
		return nil
	}
	return b.Close()
}

func cleanupLauncher(l *launcher.Launcher) {
	if l == nil {
		return
	}
	l.Kill()
	l.Cleanup()
}

// Navigate loads url and waits for the load event. The dash URL keeps the
// current page.
func (p *Page) Navigate(ctx context.Context, url string) error {
	if !pageutil.IsURL(url) {
		return fmt.Errorf("%w: not a url: %q", sizes.ErrConfiguration, url)
	}
	if url == "-" {
		return nil
	}

	navCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.target.Navigate(navCtx, url); err != nil {
		return fmt.Errorf("cdp: navigate %s: %w", url, err)
	}
	return nil
}

// ResizeViewport overrides the device metrics to size.
func (p *Page) ResizeViewport(ctx context.Context, size sizes.Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("%w: viewport must be positive, got %s", sizes.ErrConfiguration, size)
	}
	if err := p.target.SetViewport(ctx, size.Width, size.Height, p.scale); err != nil {
		return fmt.Errorf("cdp: set viewport %s: %w", size, err)
	}
	p.viewport = size
	return nil
}

// InjectJavascript runs script as a function body and returns its result
// as a string.
func (p *Page) InjectJavascript(ctx context.Context, script string) (interface{}, error) {
	res, err := p.target.Eval(ctx, "function() {\n"+script+"\n}")
	if err != nil {
		return nil, fmt.Errorf("cdp: javascript execution failed: %w", err)
	}
	return res, nil
}

// SetCookie sets a "name=value; attr=..." cookie on the current document.
func (p *Page) SetCookie(ctx context.Context, cookie string) error {
	_, err := p.InjectJavascript(ctx, pageutil.CookieScript(cookie))
	return err
}

// MeasurePage reports the page heights and device pixel ratio.
func (p *Page) MeasurePage(ctx context.Context) (screenshot.PageMeasurement, error) {
	res, err := p.target.Eval(ctx, screenshot.MeasureScript)
	if err != nil {
		return screenshot.PageMeasurement{}, err
	}
	return screenshot.DecodeMeasurement([]byte(res))
}

// ScrollTo scrolls the window to offset.
func (p *Page) ScrollTo(ctx context.Context, offset int) error {
	_, err := p.target.Eval(ctx, screenshot.ScrollScript, offset)
	return err
}

// CaptureViewport returns a PNG of the visible viewport.
func (p *Page) CaptureViewport(ctx context.Context) ([]byte, error) {
	return p.target.Screenshot(ctx)
}

// URL returns the current page URL.
func (p *Page) URL() string {
	return p.target.URL()
}

// Viewport returns the last viewport set.
func (p *Page) Viewport() sizes.Size {
	return p.viewport
}

// Close closes the page, and the browser when it was launched here.
func (p *Page) Close() error {
	if p.closer == nil {
		return nil
	}
	closer := p.closer
	p.closer = nil
	return closer()
}
