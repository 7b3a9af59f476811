package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"goldcatalog/internal/provider"
)

// Limiter paces calls to a metered upstream.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Guard holds every Fetch of P until L admits it.
// A caller whose context ends while queued never reaches the upstream.
type Guard struct {
	P provider.Provider
	L Limiter
}

func (g *Guard) Name() string { return g.P.Name() }

func (g *Guard) Fetch(ctx context.Context) (provider.Quote, error) {
	if err := g.L.Wait(ctx); err != nil {
		return provider.Quote{}, fmt.Errorf("%s: waiting for rate limit: %w", g.P.Name(), err)
	}
	return g.P.Fetch(ctx)
}

// Interval admits one call per Every. Each caller reserves the next free
// slot, so concurrent callers are spaced out rather than released together.
type Interval struct {
	Every time.Duration

	mu   sync.Mutex
	next time.Time
}

func (l *Interval) Wait(ctx context.Context) error {
	if l.Every <= 0 {
		return nil
	}
	l.mu.Lock()
	slot := time.Now()
	if l.next.After(slot) {
		slot = l.next
	}
	l.next = slot.Add(l.Every)
	l.mu.Unlock()

	if err := sleep(ctx, time.Until(slot)); err != nil {
		l.mu.Lock()
		// hand the slot back if nobody queued behind it
		if l.next.Equal(slot.Add(l.Every)) {
			l.next = slot
		}
		l.mu.Unlock()
		return err
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
