package browser

import (
	"context"
	"time"
)

// call runs fn in the background and returns its result, or ctx's error as
// soon as ctx is done. A call abandoned this way keeps running until the
// driver returns, and keeps its slot in slots until then, so the next call
// on the same page is not issued while it is in flight.
func call[T any](ctx context.Context, slots chan struct{}, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	select {
	case slots <- struct{}{}:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		defer func() { <-slots }()
		v, err := fn()
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// timeoutMillis converts what is left of ctx into a Playwright timeout. It
// returns fallback when ctx has no deadline.
func timeoutMillis(ctx context.Context, fallback time.Duration) float64 {
	remaining := fallback
	if deadline, ok := ctx.Deadline(); ok {
		remaining = time.Until(deadline)
	}
	if remaining < time.Millisecond {
		remaining = time.Millisecond
	}
	return float64(remaining.Milliseconds())
}
