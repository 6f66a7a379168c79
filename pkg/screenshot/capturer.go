package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"time"

	"github.com/entrhq/fullshot/pkg/sizes"
)

// DefaultCallTimeout bounds every single request to the browser.
const DefaultCallTimeout = 30 * time.Second

// Logger is the logging surface a Capturer reports through.
type Logger interface {
	Debugf(format string, v ...interface{})
	Warnf(format string, v ...interface{})
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

// Shot is the result of a full-page capture.
type Shot struct {
	// Data is the encoded image. When Stitched is false it is the baseline
	// capture exactly as the browser returned it, otherwise a PNG.
	Data []byte

	// Format is the encoding of Data ("png", "jpeg", ...).
	Format string

	Width    int
	Height   int
	Stitched bool

	// Tiles is the number of viewport captures the image was built from.
	Tiles int

	Metrics PageMetrics
}

// Capturer takes full-page screenshots of one browser session.
type Capturer struct {
	mu sync.Mutex

	scroll  *ScrollDriver
	tiles   *TileCapturer
	probe   *Probe
	settler Settler
	logger  Logger

	tolerance   int
	settleDelay time.Duration
	callTimeout time.Duration
}

// CapturerOption configures a Capturer.
type CapturerOption func(*Capturer)

// WithTolerance sets the tiling tolerance in logical pixels.
func WithTolerance(px int) CapturerOption {
	return func(c *Capturer) {
		c.tolerance = px
	}
}

// WithSettleDelay sets the fixed wait between a scroll and its capture.
// It is ignored when WithSettler is also given.
func WithSettleDelay(delay time.Duration) CapturerOption {
	return func(c *Capturer) {
		c.settleDelay = delay
	}
}

// WithSettler replaces the fixed settle delay with a custom step.
func WithSettler(settler Settler) CapturerOption {
	return func(c *Capturer) {
		c.settler = settler
	}
}

// WithCallTimeout bounds each browser request. Zero disables the bound.
func WithCallTimeout(timeout time.Duration) CapturerOption {
	return func(c *Capturer) {
		c.callTimeout = timeout
	}
}

// WithLogger sets the logger.
func WithLogger(logger Logger) CapturerOption {
	return func(c *Capturer) {
		c.logger = logger
	}
}

// New creates a Capturer for browser.
func New(browser Browser, opts ...CapturerOption) (*Capturer, error) {
	if browser == nil {
		return nil, fmt.Errorf("%w: browser is required", sizes.ErrConfiguration)
	}

	c := &Capturer{
		logger:      nopLogger{},
		tolerance:   DefaultTolerance,
		settleDelay: DefaultSettleDelay,
		callTimeout: DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must not be negative, got %d", sizes.ErrConfiguration, c.tolerance)
	}
	if c.settleDelay < 0 {
		return nil, fmt.Errorf("%w: settle delay must not be negative, got %v", sizes.ErrConfiguration, c.settleDelay)
	}
	if c.callTimeout < 0 {
		return nil, fmt.Errorf("%w: call timeout must not be negative, got %v", sizes.ErrConfiguration, c.callTimeout)
	}
	if c.settler == nil {
		c.settler = SleepSettler{Delay: c.settleDelay}
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}

	c.tiles = NewTileCapturer(browser, c.callTimeout)
	c.scroll = NewScrollDriver(browser, c.callTimeout)
	c.probe = NewProbe(browser, c.tiles, c.callTimeout)
	return c, nil
}

// Capture takes a screenshot of the whole page. Any failure aborts the
// capture without a partial result. Once scrolling has started the page is
// scrolled back to the top before Capture returns, whatever the outcome.
func (c *Capturer) Capture(ctx context.Context) (shot *Shot, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	metrics, baseline, err := c.probe.Measure(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debugf("page metrics: scroll height %d, ratio %v, viewport %dx%d",
		metrics.ScrollHeight, metrics.DevicePixelRatio, metrics.CapturedWidth, metrics.CapturedHeight)

	plan, err := PlanTiles(metrics, c.tolerance)
	if err != nil {
		return nil, err
	}

	if !plan.Stitch {
		return &Shot{
			Data:    baseline.Data,
			Format:  baseline.Format,
			Width:   metrics.CapturedWidth,
			Height:  metrics.CapturedHeight,
			Tiles:   1,
			Metrics: metrics,
		}, nil
	}

	if plan.Scrolls() {
		defer func() {
			restoreErr := c.scroll.Restore(ctx)
			if restoreErr == nil {
				return
			}
			if err != nil {
				c.logger.Warnf("restore scroll position after failed capture: %v", restoreErr)
				return
			}
			shot, err = nil, fmt.Errorf("restore scroll position: %w", restoreErr)
		}()
	}

	tiles, err := c.captureTiles(ctx, plan, baseline)
	if err != nil {
		return nil, err
	}

	canvas := Assemble(tiles, plan.Width, plan.Height)

	var buf bytes.Buffer
	if err := png.Encode(&buf, canvas); err != nil {
		return nil, fmt.Errorf("encode stitched image: %w", err)
	}

	c.logger.Debugf("stitched %d tiles into %dx%d image", len(tiles), plan.Width, plan.Height)

	return &Shot{
		Data:     buf.Bytes(),
		Format:   "png",
		Width:    plan.Width,
		Height:   plan.Height,
		Stitched: true,
		Tiles:    len(tiles),
		Metrics:  metrics,
	}, nil
}

// captureTiles scrolls through plan and returns the captured tiles in order.
func (c *Capturer) captureTiles(ctx context.Context, plan TilePlan, baseline Frame) ([]Tile, error) {
	tiles := make([]Tile, 0, len(plan.Tiles))
	tiles = append(tiles, Tile{Image: baseline.Image})

	for _, planned := range plan.Tiles[1:] {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: aborted before offset %d: %w", ErrCapture, planned.Offset, err)
		}
		if err := c.scroll.ScrollTo(ctx, planned.Offset); err != nil {
			return nil, err
		}
		if err := c.settler.Settle(ctx, planned.Offset); err != nil {
			return nil, fmt.Errorf("%w: settle at offset %d: %w", ErrCapture, planned.Offset, err)
		}

		frame, err := c.tiles.CaptureViewport(ctx)
		if err != nil {
			return nil, fmt.Errorf("tile at offset %d: %w", planned.Offset, err)
		}

		tile := Tile{Image: frame.Image, DestY: planned.DestY}
		if planned.KeepRows > 0 {
			crop := bottomRows(frame.Image.Bounds(), planned.KeepRows)
			tile.Crop = &crop
		}
		tiles = append(tiles, tile)
	}

	return tiles, nil
}

// Decode decodes Data.
func (s *Shot) Decode() (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(s.Data))
	if err != nil {
		return nil, fmt.Errorf("decode shot: %w", err)
	}
	return img, nil
}
