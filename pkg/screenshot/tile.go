package screenshot

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"time"

	// Registered decoders for the encodings drivers hand back.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Frame is one decoded viewport capture together with the bytes it was
// decoded from.
type Frame struct {
	Data   []byte
	Format string
	Image  image.Image
}

// Width returns the frame width in device pixels.
func (f Frame) Width() int { return f.Image.Bounds().Dx() }

// Height returns the frame height in device pixels.
func (f Frame) Height() int { return f.Image.Bounds().Dy() }

// TileCapturer requests viewport images and decodes them.
type TileCapturer struct {
	capturer ViewportCapturer
	timeout  time.Duration
}

// NewTileCapturer creates a TileCapturer. Each request is bounded by
// timeout when it is positive.
func NewTileCapturer(capturer ViewportCapturer, timeout time.Duration) *TileCapturer {
	return &TileCapturer{capturer: capturer, timeout: timeout}
}

// CaptureViewport captures and decodes the visible viewport.
func (t *TileCapturer) CaptureViewport(ctx context.Context) (Frame, error) {
	callCtx, cancel := bounded(ctx, t.timeout)
	defer cancel()

	data, err := t.capturer.CaptureViewport(callCtx)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrCapture, err)
	}
	if len(data) == 0 {
		return Frame{}, fmt.Errorf("%w: browser returned an empty image", ErrCapture)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Frame{}, fmt.Errorf("%w: decode %d bytes: %w", ErrCapture, len(data), err)
	}

	return Frame{Data: data, Format: format, Image: img}, nil
}
