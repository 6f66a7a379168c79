package screenshot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSleepSettler(t *testing.T) {
	t.Run("waits for the delay", func(t *testing.T) {
		start := time.Now()
		err := SleepSettler{Delay: 20 * time.Millisecond}.Settle(context.Background(), 0)
		assert.NoError(t, err)
		assert.True(t, time.Since(start) >= 20*time.Millisecond)
	})

	t.Run("returns early when cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		err := SleepSettler{Delay: time.Minute}.Settle(ctx, 0)
		assert.ErrorIs(t, err, context.Canceled)
		assert.True(t, time.Since(start) < time.Second)
	})

	t.Run("zero delay", func(t *testing.T) {
		assert.NoError(t, SleepSettler{}.Settle(context.Background(), 0))
	})
}

func TestSettleFunc(t *testing.T) {
	var got int
	s := SettleFunc(func(_ context.Context, offset int) error {
		got = offset
		return nil
	})

	assert.NoError(t, s.Settle(context.Background(), 42))
	assert.Equal(t, 42, got)
}
