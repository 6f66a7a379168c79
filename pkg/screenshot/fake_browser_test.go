package screenshot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeBrowser renders a synthetic page whose every device-pixel row has a
// distinct colour, and serves viewport captures the way a real browser does:
// scrolling clamps at the bottom of the page.
type fakeBrowser struct {
	page           *image.RGBA
	scrollHeight   int
	viewportHeight int // device px
	ratio          *float64
	heights        *HeightReadings

	scrollY  int
	scrolls  []int
	captures int

	measureErr   error
	failCaptures map[int]error // 1-based capture number -> error
	garbage      map[int]bool  // 1-based capture number -> return undecodable bytes
	failScrollTo map[int]error // offset -> error
}

func newFakeBrowser(t *testing.T, scrollHeight, viewportHeight, width int, ratio float64) *fakeBrowser {
	t.Helper()
	deviceHeight := int(float64(scrollHeight) * ratio)
	return &fakeBrowser{
		page:           pageImage(width, deviceHeight),
		scrollHeight:   scrollHeight,
		viewportHeight: viewportHeight,
		ratio:          &ratio,
	}
}

func pageImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		c := rowColor(y)
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func rowColor(y int) color.RGBA {
	return color.RGBA{R: uint8(y), G: uint8(y >> 8), B: 0x7f, A: 0xff}
}

func (f *fakeBrowser) deviceRatio() float64 {
	if f.ratio == nil {
		return 1
	}
	return *f.ratio
}

func (f *fakeBrowser) MeasurePage(ctx context.Context) (PageMeasurement, error) {
	if f.measureErr != nil {
		return PageMeasurement{}, f.measureErr
	}
	heights := HeightReadings{
		BodyScrollHeight:     float64(f.scrollHeight / 2),
		DocumentScrollHeight: float64(f.scrollHeight),
	}
	if f.heights != nil {
		heights = *f.heights
	}
	return PageMeasurement{Heights: heights, DevicePixelRatio: f.ratio}, nil
}

func (f *fakeBrowser) ScrollTo(ctx context.Context, offset int) error {
	f.scrolls = append(f.scrolls, offset)
	if err, ok := f.failScrollTo[offset]; ok {
		return err
	}

	maxScroll := f.scrollHeight - int(float64(f.viewportHeight)/f.deviceRatio())
	if maxScroll < 0 {
		maxScroll = 0
	}
	f.scrollY = min(max(offset, 0), maxScroll)
	return nil
}

func (f *fakeBrowser) CaptureViewport(ctx context.Context) ([]byte, error) {
	f.captures++
	if err, ok := f.failCaptures[f.captures]; ok {
		return nil, err
	}
	if f.garbage[f.captures] {
		return []byte("definitely not an image"), nil
	}

	top := int(float64(f.scrollY) * f.deviceRatio())
	bounds := f.page.Bounds()
	viewport := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), f.viewportHeight))
	for y := 0; y < f.viewportHeight; y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if top+y < bounds.Max.Y {
				viewport.SetRGBA(x, y, f.page.RGBAAt(x, top+y))
			}
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, viewport); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// lastScroll returns the final scroll command, or -1 when none was issued.
func (f *fakeBrowser) lastScroll() int {
	if len(f.scrolls) == 0 {
		return -1
	}
	return f.scrolls[len(f.scrolls)-1]
}

// recordingLogger keeps warnings for assertions.
type recordingLogger struct {
	mu       sync.Mutex
	warnings []string
}

func (l *recordingLogger) Debugf(string, ...interface{}) {}

func (l *recordingLogger) Warnf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warnings = append(l.warnings, fmt.Sprintf(format, v...))
}

// noSettle skips the settle delay in tests.
var noSettle = SettleFunc(func(context.Context, int) error { return nil })

// requireSamePixels checks got against want row by row.
func requireSamePixels(t *testing.T, want *image.RGBA, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size(), "image size")

	gb := got.Bounds()
	for y := 0; y < want.Bounds().Dy(); y++ {
		for x := 0; x < want.Bounds().Dx(); x++ {
			wr, wg, wb, wa := want.At(x, y).RGBA()
			gr, gg, gbl, ga := got.At(gb.Min.X+x, gb.Min.Y+y).RGBA()
			if wr != gr || wg != gg || wb != gbl || wa != ga {
				t.Fatalf("pixel (%d,%d) differs: want %v, got %v", x, y, want.At(x, y), got.At(gb.Min.X+x, gb.Min.Y+y))
			}
		}
	}
}

var errBoom = errors.New("boom")
