package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/fullshot/pkg/pageutil"
	"github.com/entrhq/fullshot/pkg/screenshot"
	"github.com/entrhq/fullshot/pkg/sizes"
)

var _ screenshot.Browser = (*Session)(nil)

// Navigate loads url and waits for the load event. The dash URL keeps the
// current page.
func (s *Session) Navigate(ctx context.Context, url string) error {
	return s.NavigateWith(ctx, url, NavigateOptions{})
}

// NavigateWith is Navigate with an explicit wait condition.
func (s *Session) NavigateWith(ctx context.Context, url string, opts NavigateOptions) error {
	if !pageutil.IsURL(url) {
		return fmt.Errorf("%w: not a url: %q", sizes.ErrConfiguration, url)
	}
	if url == "-" {
		return nil
	}

	gotoOpts := playwright.PageGotoOptions{
		Timeout: playwright.Float(timeoutMillis(ctx, s.timeout)),
	}
	if opts.WaitUntil != "" {
		waitUntil := playwright.WaitUntilState(opts.WaitUntil)
		gotoOpts.WaitUntil = &waitUntil
	}

	_, err := call(ctx, s.calls, func() (playwright.Response, error) {
		return s.page.Goto(url, gotoOpts)
	})
	if err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}

	s.CurrentURL = s.page.URL()
	return nil
}

// ResizeViewport sets the viewport size in CSS pixels.
func (s *Session) ResizeViewport(ctx context.Context, size sizes.Size) error {
	if size.Width <= 0 || size.Height <= 0 {
		return fmt.Errorf("%w: viewport must be positive, got %s", sizes.ErrConfiguration, size)
	}
	_, err := call(ctx, s.calls, func() (struct{}, error) {
		return struct{}{}, s.page.SetViewportSize(size.Width, size.Height)
	})
	if err != nil {
		return fmt.Errorf("resize viewport to %s failed: %w", size, err)
	}
	s.viewport = size
	return nil
}

// InjectJavascript evaluates script in the page and returns its result.
func (s *Session) InjectJavascript(ctx context.Context, script string) (interface{}, error) {
	result, err := call(ctx, s.calls, func() (interface{}, error) {
		return s.page.Evaluate(script)
	})
	if err != nil {
		return nil, fmt.Errorf("javascript execution failed: %w", err)
	}
	return result, nil
}

// SetCookie sets a "name=value; attr=..." cookie on the current document.
func (s *Session) SetCookie(ctx context.Context, cookie string) error {
	_, err := s.InjectJavascript(ctx, pageutil.CookieScript(cookie))
	return err
}

// MeasurePage reports the page heights and device pixel ratio.
func (s *Session) MeasurePage(ctx context.Context) (screenshot.PageMeasurement, error) {
	result, err := call(ctx, s.calls, func() (interface{}, error) {
		return s.page.Evaluate(screenshot.MeasureScript)
	})
	if err != nil {
		return screenshot.PageMeasurement{}, err
	}

	switch v := result.(type) {
	case string:
		return screenshot.DecodeMeasurement([]byte(v))
	case nil:
		return screenshot.PageMeasurement{}, fmt.Errorf("%w: measure script returned nothing", screenshot.ErrMetrics)
	default:
		// Older drivers hand back the parsed object.
		raw, err := json.Marshal(v)
		if err != nil {
			return screenshot.PageMeasurement{}, fmt.Errorf("%w: unexpected measure result %T", screenshot.ErrMetrics, v)
		}
		return screenshot.DecodeMeasurement(raw)
	}
}

// ScrollTo scrolls the window to offset.
func (s *Session) ScrollTo(ctx context.Context, offset int) error {
	_, err := call(ctx, s.calls, func() (interface{}, error) {
		return s.page.Evaluate(screenshot.ScrollScript, offset)
	})
	return err
}

// CaptureViewport returns a PNG of the visible viewport.
func (s *Session) CaptureViewport(ctx context.Context) ([]byte, error) {
	opts := playwright.PageScreenshotOptions{
		Type:     playwright.ScreenshotTypePng,
		FullPage: playwright.Bool(false),
		Timeout:  playwright.Float(timeoutMillis(ctx, s.timeout)),
	}
	return call(ctx, s.calls, func() ([]byte, error) {
		return s.page.Screenshot(opts)
	})
}

// Viewport returns the current viewport size.
func (s *Session) Viewport() sizes.Size {
	return s.viewport
}

// Close releases the page, context and browser.
func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	closer := s.closer
	s.closer = nil
	return closer()
}

func newSession(name string, p page, viewport sizes.Size, timeout time.Duration, closer func() error) *Session {
	return &Session{
		Name:       name,
		page:       p,
		calls:      make(chan struct{}, 1),
		closer:     closer,
		viewport:   viewport,
		timeout:    timeout,
		CurrentURL: "about:blank",
		CreatedAt:  time.Now(),
	}
}
