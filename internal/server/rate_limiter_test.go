package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRateLimiter_Burst_Then_Refill(t *testing.T) {
	req := require.New(t)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := newRateLimiterWithClock(RateLimitConfig{Burst: 3, RefillInterval: time.Second}, func() time.Time { return now })

	// Given a full bucket, the burst is allowed
	for i := 0; i < 3; i++ {
		req.True(limiter.allow())
	}
	// Then the next message is refused
	req.False(limiter.allow())

	// When a third of the interval passes, one token comes back
	now = now.Add(time.Second / 3)
	req.True(limiter.allow())
	req.False(limiter.allow())

	// When a long time passes, the bucket is capped at its capacity
	now = now.Add(time.Hour)
	for i := 0; i < 3; i++ {
		req.True(limiter.allow())
	}
	req.False(limiter.allow())
}

func TestRateLimiter_Invalid_Config(t *testing.T) {
	limiter := newRateLimiter(RateLimitConfig{})

	require.True(t, limiter.allow())
}
