package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/fullshot/pkg/sizes"
)

// Default values for sessions
const (
	DefaultTimeout     = 30 * time.Second
	DefaultMaxSessions = 5
)

// DefaultViewport is the viewport used when SessionOptions leaves it empty.
var DefaultViewport = sizes.Size{Width: 1280, Height: 800}

// page is the part of playwright.Page a Session uses.
type page interface {
	Evaluate(expression string, arg ...interface{}) (interface{}, error)
	Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error)
	Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error)
	SetViewportSize(width, height int) error
	URL() string
}

// Session is one launched browser with a single page.
type Session struct {
	// Name is the unique identifier for this session
	Name string

	Browser playwright.Browser
	Context playwright.BrowserContext

	page     page
	calls    chan struct{} // one driver call in flight at a time
	closer   func() error
	viewport sizes.Size
	timeout  time.Duration

	// CurrentURL is the URL of the page after the last navigation
	CurrentURL string
	CreatedAt  time.Time
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport is the initial viewport in CSS pixels. Zero means DefaultViewport.
	Viewport sizes.Size

	// DeviceScaleFactor emulates a high-density screen when above 0.
	DeviceScaleFactor float64

	// Timeout bounds navigation. Zero means DefaultTimeout.
	Timeout time.Duration
}

// NavigateOptions configures page navigation.
type NavigateOptions struct {
	// WaitUntil is "load", "domcontentloaded" or "networkidle". Empty means "load".
	WaitUntil string
}
