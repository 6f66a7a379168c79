package screenshot

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MeasureScript returns a JSON string with every height reading the probe
// combines and the device pixel ratio (null when the page does not expose one).
// Backends evaluate it verbatim and hand the result to DecodeMeasurement.
const MeasureScript = `() => {
	var b = document.body || {};
	var d = document.documentElement || {};
	var pr = window.devicePixelRatio;
	return JSON.stringify({
		bodyScrollHeight: b.scrollHeight,
		documentScrollHeight: d.scrollHeight,
		bodyOffsetHeight: b.offsetHeight,
		documentOffsetHeight: d.offsetHeight,
		bodyClientHeight: b.clientHeight,
		documentClientHeight: d.clientHeight,
		devicePixelRatio: (pr === undefined || pr === null) ? null : pr
	});
}`

// ScrollScript scrolls the window vertically to the offset passed as its
// single argument, in logical pixels.
const ScrollScript = `(y) => window.scrollTo(0, y)`

// PageMeasurer reports raw page measurements.
type PageMeasurer interface {
	MeasurePage(ctx context.Context) (PageMeasurement, error)
}

// Scroller scrolls the page vertically. It returns once the command is
// issued and does not wait for the page to re-render.
type Scroller interface {
	ScrollTo(ctx context.Context, offset int) error
}

// ViewportCapturer returns one encoded raster image (PNG, JPEG, WebP...) of
// the currently visible viewport.
type ViewportCapturer interface {
	CaptureViewport(ctx context.Context) ([]byte, error)
}

// Browser is the full set of capabilities a full-page capture needs.
type Browser interface {
	PageMeasurer
	Scroller
	ViewportCapturer
}

// HeightReadings are the page heights reported by the different engines'
// DOM properties, in logical pixels. They often disagree.
type HeightReadings struct {
	BodyScrollHeight     float64 `json:"bodyScrollHeight"`
	DocumentScrollHeight float64 `json:"documentScrollHeight"`
	BodyOffsetHeight     float64 `json:"bodyOffsetHeight"`
	DocumentOffsetHeight float64 `json:"documentOffsetHeight"`
	BodyClientHeight     float64 `json:"bodyClientHeight"`
	DocumentClientHeight float64 `json:"documentClientHeight"`
}

// Max returns the largest reading.
func (h HeightReadings) Max() float64 {
	return math.Max(
		math.Max(math.Max(h.BodyScrollHeight, h.DocumentScrollHeight), math.Max(h.BodyOffsetHeight, h.DocumentOffsetHeight)),
		math.Max(h.BodyClientHeight, h.DocumentClientHeight),
	)
}

// PageMeasurement is what a PageMeasurer reports. DevicePixelRatio is nil
// when the browser did not report a usable number.
type PageMeasurement struct {
	Heights          HeightReadings
	DevicePixelRatio *float64
}

// DecodeMeasurement parses the JSON produced by MeasureScript. A missing or
// non-numeric devicePixelRatio decodes as nil rather than failing.
func DecodeMeasurement(data []byte) (PageMeasurement, error) {
	var raw struct {
		HeightReadings
		DevicePixelRatio json.RawMessage `json:"devicePixelRatio"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return PageMeasurement{}, fmt.Errorf("%w: decode page measurement: %w", ErrMetrics, err)
	}

	m := PageMeasurement{Heights: raw.HeightReadings}
	if ratio, ok := parseRatio(raw.DevicePixelRatio); ok {
		m.DevicePixelRatio = &ratio
	}
	return m, nil
}

func parseRatio(raw json.RawMessage) (float64, bool) {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return 0, false
	}
	// Some drivers stringify numbers.
	text = strings.Trim(text, `"`)
	ratio, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false
	}
	return ratio, true
}

// FromHandle checks once that a generic driver handle provides every
// capability a capture needs, and returns it as a Browser.
func FromHandle(handle any) (Browser, error) {
	if handle == nil {
		return nil, fmt.Errorf("browser handle is nil")
	}
	if b, ok := handle.(Browser); ok {
		return b, nil
	}

	var missing []string
	if _, ok := handle.(PageMeasurer); !ok {
		missing = append(missing, "page measurement")
	}
	if _, ok := handle.(Scroller); !ok {
		missing = append(missing, "scrolling")
	}
	if _, ok := handle.(ViewportCapturer); !ok {
		missing = append(missing, "viewport capture")
	}
	return nil, fmt.Errorf("browser handle %T lacks capabilities: %s", handle, strings.Join(missing, ", "))
}
