package provider

import (
	"sync"
	"time"

	"stocklens/internal/domain"
)

// QuoteCache is a TTL cache in front of a Fetcher's Quote path. Dashboard
// clients poll on 10-second auto-refresh cycles, so a short TTL absorbs
// most of the upstream load without making prices visibly stale.
type QuoteCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]cachedQuote
	now     func() time.Time
}

type cachedQuote struct {
	quote   domain.Quote
	fetched time.Time
}

// NewQuoteCache creates a cache with the given TTL. A zero or negative TTL
// disables caching entirely.
func NewQuoteCache(ttl time.Duration) *QuoteCache {
	return &QuoteCache{
		ttl:     ttl,
		entries: make(map[string]cachedQuote),
		now:     time.Now,
	}
}

// Get returns a cached quote younger than the TTL.
func (c *QuoteCache) Get(symbol string) (domain.Quote, bool) {
	if c.ttl <= 0 {
		return domain.Quote{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[symbol]
	if !ok || c.now().Sub(e.fetched) > c.ttl {
		return domain.Quote{}, false
	}
	return e.quote, true
}

// Put stores a freshly fetched quote.
func (c *QuoteCache) Put(symbol string, q domain.Quote) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.entries[symbol] = cachedQuote{quote: q, fetched: c.now()}
	c.mu.Unlock()
}

// Purge drops entries older than the TTL. Called opportunistically; the
// cache stays correct without it since Get checks age.
func (c *QuoteCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := c.now().Add(-c.ttl)
	for sym, e := range c.entries {
		if e.fetched.Before(cutoff) {
			delete(c.entries, sym)
		}
	}
}
