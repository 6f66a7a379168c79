package screenshot

import (
	"context"
	"time"
)

// bounded derives a context that expires after timeout. A non-positive
// timeout leaves ctx unbounded.
func bounded(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
