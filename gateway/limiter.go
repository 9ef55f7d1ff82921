// Package gateway holds exchange-facing transport helpers: request pacing
// and the market-data feed client.
package gateway

import (
	"sync"
	"time"
)

// RateLimiter paces outbound exchange requests so the session stays under
// the venue's request-frequency limit.
type RateLimiter interface {
	Wait()
}

// TokenBucket is a blocking token-bucket limiter. A rate of 10 with burst 1
// reproduces the classic "sleep 100ms between instrument updates" pacing.
type TokenBucket struct {
	mu     sync.Mutex
	rate   float64 // tokens per second
	burst  float64
	tokens float64
	last   time.Time
}

func NewTokenBucket(rate float64, burst int) *TokenBucket {
	if rate <= 0 {
		rate = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &TokenBucket{
		rate:   rate,
		burst:  float64(burst),
		tokens: float64(burst),
		last:   time.Now(),
	}
}

// Wait blocks until a token is available, then consumes it.
func (b *TokenBucket) Wait() {
	b.mu.Lock()
	b.refill()
	if b.tokens >= 1 {
		b.tokens--
		b.mu.Unlock()
		return
	}
	wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	b.mu.Unlock()

	time.Sleep(wait)

	b.mu.Lock()
	b.refill()
	if b.tokens > 0 {
		b.tokens--
	}
	b.mu.Unlock()
}

// refill must be called with the lock held.
func (b *TokenBucket) refill() {
	now := time.Now()
	b.tokens += now.Sub(b.last).Seconds() * b.rate
	if b.tokens > b.burst {
		b.tokens = b.burst
	}
	b.last = now
}

// NopLimiter never blocks; tests inject it to keep cycles fast.
type NopLimiter struct{}

func (NopLimiter) Wait() {}
