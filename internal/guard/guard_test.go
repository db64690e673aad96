package guard

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("allows up to limit", func(t *testing.T) {
		rl := NewRateLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			res := rl.Check(ctx, "1.2.3.4")
			assert.True(t, res.Allowed, "request %d should be allowed", i)
		}
	})

	t.Run("blocks over limit", func(t *testing.T) {
		rl := NewRateLimiter(2, time.Minute)
		rl.Check(ctx, "1.2.3.4")
		rl.Check(ctx, "1.2.3.4")

		res := rl.Check(ctx, "1.2.3.4")
		assert.False(t, res.Allowed)
		assert.Equal(t, "rate_limiter", res.Guard)
		assert.Contains(t, res.Reason, "rate limit exceeded")
	})

	t.Run("keys are independent", func(t *testing.T) {
		rl := NewRateLimiter(1, time.Minute)
		assert.True(t, rl.Check(ctx, "1.2.3.4").Allowed)
		assert.False(t, rl.Check(ctx, "1.2.3.4").Allowed)
		assert.True(t, rl.Check(ctx, "5.6.7.8").Allowed)
	})

	t.Run("window expires", func(t *testing.T) {
		rl := NewRateLimiter(1, 10*time.Millisecond)
		assert.True(t, rl.Check(ctx, "1.2.3.4").Allowed)
		assert.False(t, rl.Check(ctx, "1.2.3.4").Allowed)

		time.Sleep(15 * time.Millisecond)
		assert.True(t, rl.Check(ctx, "1.2.3.4").Allowed)
	})
}
