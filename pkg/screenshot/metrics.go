package screenshot

import (
	"context"
	"fmt"
	"math"
	"time"
)

// PageMetrics describes the page and one baseline capture of its viewport.
type PageMetrics struct {
	// ScrollHeight is the page height in logical pixels.
	ScrollHeight int

	// DevicePixelRatio scales logical pixels to device pixels. Always > 0.
	DevicePixelRatio float64

	// CapturedWidth and CapturedHeight are the baseline capture dimensions
	// in device pixels.
	CapturedWidth  int
	CapturedHeight int

	// Heights are the raw readings ScrollHeight was derived from.
	Heights HeightReadings
}

// AdaptedCapturedHeight is the viewport height converted back to logical
// pixels, truncated towards zero.
func (m PageMetrics) AdaptedCapturedHeight() int {
	return int(float64(m.CapturedHeight) / m.DevicePixelRatio)
}

// CanvasHeight is the full page height in device pixels.
func (m PageMetrics) CanvasHeight() int {
	return int(math.Round(float64(m.ScrollHeight) * m.DevicePixelRatio))
}

// MaxScrollHeight is the largest page height, in logical pixels, a probe
// accepts.
const MaxScrollHeight = math.MaxInt32

// Probe measures a page once per capture.
type Probe struct {
	measurer PageMeasurer
	tiles    *TileCapturer
	timeout  time.Duration
}

// NewProbe creates a Probe that reads measurements from measurer and takes
// its baseline capture through tiles.
func NewProbe(measurer PageMeasurer, tiles *TileCapturer, timeout time.Duration) *Probe {
	return &Probe{measurer: measurer, tiles: tiles, timeout: timeout}
}

// Measure returns the page metrics and the baseline frame they were taken
// with.
//
// The scroll height is the maximum of the body and document element
// scrollHeight, offsetHeight and clientHeight. Engines disagree about which
// of these reflects the real document height, so no single reading is
// trusted.
func (p *Probe) Measure(ctx context.Context) (PageMetrics, Frame, error) {
	callCtx, cancel := bounded(ctx, p.timeout)
	measurement, err := p.measurer.MeasurePage(callCtx)
	cancel()
	if err != nil {
		return PageMetrics{}, Frame{}, fmt.Errorf("%w: %w", ErrMetrics, err)
	}

	height := measurement.Heights.Max()
	if math.IsNaN(height) || math.IsInf(height, 0) {
		return PageMetrics{}, Frame{}, fmt.Errorf("%w: scroll height is not a number", ErrMetrics)
	}
	if height < 0 {
		return PageMetrics{}, Frame{}, fmt.Errorf("%w: negative scroll height %v", ErrMetrics, height)
	}
	if height > MaxScrollHeight {
		return PageMetrics{}, Frame{}, fmt.Errorf("%w: scroll height %v out of range", ErrMetrics, height)
	}

	baseline, err := p.tiles.CaptureViewport(ctx)
	if err != nil {
		return PageMetrics{}, Frame{}, fmt.Errorf("baseline capture: %w", err)
	}

	return PageMetrics{
		ScrollHeight:     int(height),
		DevicePixelRatio: devicePixelRatio(measurement.DevicePixelRatio),
		CapturedWidth:    baseline.Width(),
		CapturedHeight:   baseline.Height(),
		Heights:          measurement.Heights,
	}, baseline, nil
}

// devicePixelRatio falls back to 1.0 for anything that is not a positive
// finite number.
func devicePixelRatio(reported *float64) float64 {
	if reported == nil {
		return 1.0
	}
	r := *reported
	if math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return 1.0
	}
	return r
}
