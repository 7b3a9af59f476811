package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

// TokenBucket allows bursts of up to burst calls and refills at a
// requests-per-minute budget.
type TokenBucket struct {
	perSecond float64
	burst     float64

	mu       sync.Mutex
	tokens   float64
	refilled time.Time
}

// PerMinute returns a full bucket. A non-positive rpm never refills.
func PerMinute(rpm, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{
		perSecond: math.Max(float64(rpm), 0) / 60,
		burst:     float64(burst),
		tokens:    float64(burst),
		refilled:  time.Now(),
	}
}

func (b *TokenBucket) Wait(ctx context.Context) error {
	for {
		d, ok := b.take(time.Now())
		if ok {
			return nil
		}
		if err := sleep(ctx, d); err != nil {
			return err
		}
	}
}

// take spends a token, or reports how long until the next one.
func (b *TokenBucket) take(now time.Time) (time.Duration, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if elapsed := now.Sub(b.refilled); elapsed > 0 {
		b.tokens = math.Min(b.burst, b.tokens+elapsed.Seconds()*b.perSecond)
		b.refilled = now
	}
	if b.tokens >= 1 {
		b.tokens--
		return 0, true
	}
	if b.perSecond == 0 {
		return time.Hour, false
	}
	d := time.Duration((1 - b.tokens) / b.perSecond * float64(time.Second))
	return max(d, time.Millisecond), false
}
