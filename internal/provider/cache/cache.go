package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"goldcatalog/internal/provider"
)

// DefaultTTL is how long a fetched price is served before refreshing.
const DefaultTTL = 5 * time.Minute

// Provider caches the last successful quote of P for TTL.
// Concurrent misses are coalesced into one upstream call.
// Failures are never cached.
type Provider struct {
	P   provider.Provider
	TTL time.Duration
	// Now is the clock; nil means time.Now.
	Now func() time.Time

	mu     sync.RWMutex
	quote  provider.Quote
	stored time.Time
	ok     bool

	sf singleflight.Group
}

func New(p provider.Provider, ttl time.Duration) *Provider {
	return &Provider{P: p, TTL: ttl}
}

func (c *Provider) Name() string { return c.P.Name() }

// Fetch returns the cached quote while it is younger than TTL,
// otherwise it refreshes from P.
func (c *Provider) Fetch(ctx context.Context) (provider.Quote, error) {
	if c.TTL <= 0 {
		return c.P.Fetch(ctx)
	}
	if q, ok := c.fresh(); ok {
		return q, nil
	}

	ch := c.sf.DoChan("quote", func() (any, error) {
		// Another flight may have refilled the slot while we waited.
		if q, ok := c.fresh(); ok {
			return q, nil
		}
		fctx, cancel := flightContext(ctx)
		defer cancel()
		q, err := c.P.Fetch(fctx)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.quote, c.stored, c.ok = q, c.now(), true
		c.mu.Unlock()
		return q, nil
	})
	select {
	case <-ctx.Done():
		return provider.Quote{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return provider.Quote{}, res.Err
		}
		return res.Val.(provider.Quote), nil
	}
}

// flightContext detaches the shared call from the caller's cancellation
// but keeps its deadline, so upstream guards still give up in time.
func flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	fctx := context.WithoutCancel(ctx)
	if dl, ok := ctx.Deadline(); ok {
		return context.WithDeadline(fctx, dl)
	}
	return context.WithCancel(fctx)
}

func (c *Provider) fresh() (provider.Quote, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ok || c.now().Sub(c.stored) >= c.TTL {
		return provider.Quote{}, false
	}
	return c.quote, true
}

func (c *Provider) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
