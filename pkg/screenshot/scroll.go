package screenshot

import (
	"context"
	"fmt"
	"time"
)

// ScrollDriver issues vertical scroll commands and puts the page back at the
// top when a capture is done.
type ScrollDriver struct {
	scroller Scroller
	timeout  time.Duration
}

// NewScrollDriver creates a ScrollDriver. Each command is bounded by timeout
// when it is positive.
func NewScrollDriver(scroller Scroller, timeout time.Duration) *ScrollDriver {
	return &ScrollDriver{scroller: scroller, timeout: timeout}
}

// ScrollTo scrolls to offset (logical px). It does not wait for the page to
// settle.
func (d *ScrollDriver) ScrollTo(ctx context.Context, offset int) error {
	callCtx, cancel := bounded(ctx, d.timeout)
	defer cancel()

	if err := d.scroller.ScrollTo(callCtx, offset); err != nil {
		return fmt.Errorf("%w: scroll to %d: %w", ErrCapture, offset, err)
	}
	return nil
}

// Restore scrolls back to the top of the page. It ignores cancellation of
// ctx so it still runs when the capture was aborted.
func (d *ScrollDriver) Restore(ctx context.Context) error {
	return d.ScrollTo(context.WithoutCancel(ctx), 0)
}
