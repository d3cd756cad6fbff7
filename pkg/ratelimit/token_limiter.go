package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenLimiter caps the number of tokens spent per minute. It is used in
// front of the Gemini API, which enforces a tokens-per-minute quota in
// addition to a requests-per-minute quota.
type TokenLimiter struct {
	mu        sync.Mutex
	capacity  int
	remaining int
	resetAt   time.Time
}

// NewTokenLimiter creates a limiter with the given per-minute capacity.
func NewTokenLimiter(tokensPerMinute int) *TokenLimiter {
	return &TokenLimiter{
		capacity:  tokensPerMinute,
		remaining: tokensPerMinute,
		resetAt:   time.Now().Add(time.Minute),
	}
}

// Wait blocks until the given number of tokens can be spent, or the context
// is canceled. Requests larger than the full capacity are let through after
// a window reset rather than blocking forever.
func (l *TokenLimiter) Wait(ctx context.Context, tokens int) error {
	for {
		l.mu.Lock()
		now := time.Now()
		if !now.Before(l.resetAt) {
			l.remaining = l.capacity
			l.resetAt = now.Add(time.Minute)
		}
		if l.remaining >= tokens || tokens >= l.capacity {
			l.remaining -= tokens
			l.mu.Unlock()
			return nil
		}
		wait := time.Until(l.resetAt)
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// GetRemaining returns the tokens left in the current window.
func (l *TokenLimiter) GetRemaining() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !time.Now().Before(l.resetAt) {
		return l.capacity
	}
	return l.remaining
}
