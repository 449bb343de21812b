// Package server throttles each connection with a token bucket so one client
// cannot flood the coordinator.
package server

import (
	"sync"
	"time"
)

// rateLimiter is a token bucket holding up to burst tokens. One token comes
// back every perToken, so a full bucket refills in RefillInterval.
type rateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	burst    float64
	perToken time.Duration
	last     time.Time
	now      func() time.Time
}

func newRateLimiter(cfg RateLimitConfig) *rateLimiter {
	return newRateLimiterWithClock(cfg, time.Now)
}

func newRateLimiterWithClock(cfg RateLimitConfig, now func() time.Time) *rateLimiter {
	burst := max(cfg.Burst, 1)
	interval := cfg.RefillInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &rateLimiter{
		tokens:   float64(burst),
		burst:    float64(burst),
		perToken: max(interval/time.Duration(burst), time.Nanosecond),
		last:     now(),
		now:      now,
	}
}

// allow takes a token when one is available.
func (rl *rateLimiter) allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if elapsed := now.Sub(rl.last); elapsed > 0 {
		rl.tokens = min(rl.burst, rl.tokens+float64(elapsed)/float64(rl.perToken))
		rl.last = now
	}
	if rl.tokens < 1 {
		return false
	}
	rl.tokens--
	return true
}
