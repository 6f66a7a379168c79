package screenshot

import (
	"context"
	"time"
)

// DefaultSettleDelay is how long SleepSettler waits after a scroll.
const DefaultSettleDelay = 100 * time.Millisecond

// Settler runs between a scroll and the following capture and returns once
// the page is considered rendered at offset.
type Settler interface {
	Settle(ctx context.Context, offset int) error
}

// SettleFunc adapts a function to Settler. It is the hook for replacing the
// fixed delay with an active render-stability check.
type SettleFunc func(ctx context.Context, offset int) error

// Settle calls f.
func (f SettleFunc) Settle(ctx context.Context, offset int) error {
	return f(ctx, offset)
}

// SleepSettler waits a fixed delay.
type SleepSettler struct {
	Delay time.Duration
}

// Settle waits for s.Delay or until ctx is done.
func (s SleepSettler) Settle(ctx context.Context, _ int) error {
	if s.Delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
