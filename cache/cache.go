package cache

import (
	"sync"
	"time"

	"github.com/gamalabs/agentpool/core"
)

const (
	// DefaultMaxEntries bounds the cache when no size is configured.
	DefaultMaxEntries = 100
	// DefaultTTL is the time-to-live applied when neither the cache nor the
	// caller specifies one.
	DefaultTTL = 30 * time.Minute
	// DefaultMaxValueBytes caps stored payload size; longer payloads are
	// truncated on insert to bound memory.
	DefaultMaxValueBytes = 16 * 1024
)

// entry is a cached task result plus its bookkeeping timestamps.
type entry struct {
	result     core.TaskResult
	createdAt  time.Time
	expiresAt  time.Time
	lastAccess time.Time
}

// Options configure a ResultCache.
type Options struct {
	// MaxEntries is the hard entry-count bound.
	MaxEntries int
	// DefaultTTL applies when Set is called with ttl <= 0.
	DefaultTTL time.Duration
	// MaxValueBytes truncates stored payloads past this budget.
	MaxValueBytes int
}

// ResultCache is a bounded key→result store with per-entry TTL and LRU
// eviction. It is safe for concurrent use.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]*entry
	opts    Options
	now     func() time.Time
}

// New constructs a ResultCache with optional overrides.
func New(optFns ...func(o *Options)) *ResultCache {
	opts := Options{
		MaxEntries:    DefaultMaxEntries,
		DefaultTTL:    DefaultTTL,
		MaxValueBytes: DefaultMaxValueBytes,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = DefaultMaxEntries
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = DefaultTTL
	}
	if opts.MaxValueBytes <= 0 {
		opts.MaxValueBytes = DefaultMaxValueBytes
	}
	return &ResultCache{
		entries: make(map[string]*entry),
		opts:    opts,
		now:     time.Now,
	}
}

// Set stores a defensively size-capped copy of the result under key. When
// the cache is full the single entry with the oldest access timestamp is
// evicted first. A non-positive ttl falls back to the cache default.
func (c *ResultCache) Set(key string, result *core.TaskResult, ttl time.Duration) {
	if result == nil {
		return
	}
	if ttl <= 0 {
		ttl = c.opts.DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.opts.MaxEntries {
		c.evictOldestLocked()
	}

	stored := *result
	if len(stored.Payload) > c.opts.MaxValueBytes {
		stored.Payload = stored.Payload[:c.opts.MaxValueBytes]
	}

	now := c.now()
	c.entries[key] = &entry{
		result:     stored,
		createdAt:  now,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
}

// Get returns a copy of the stored result and refreshes its access
// timestamp. An expired entry is purged and reported absent (lazy
// expiration).
func (c *ResultCache) Get(key string) (*core.TaskResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}

	now := c.now()
	if now.After(e.expiresAt) {
		delete(c.entries, key)
		return nil, false
	}

	e.lastAccess = now
	result := e.result
	return &result, true
}

// Delete removes a key if present.
func (c *ResultCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Cleanup sweeps all entries and purges any past expiry, returning the
// number removed. Intended to be invoked on a timer (see Sweeper).
func (c *ResultCache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for key, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Stats summarizes the cache for observability.
type Stats struct {
	Entries int           `json:"entries"`
	AvgAge  time.Duration `json:"avg_age"`
}

// Stats returns the entry count and average entry age.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.entries) == 0 {
		return Stats{}
	}
	now := c.now()
	var total time.Duration
	for _, e := range c.entries {
		total += now.Sub(e.createdAt)
	}
	return Stats{
		Entries: len(c.entries),
		AvgAge:  total / time.Duration(len(c.entries)),
	}
}

// evictOldestLocked removes the entry with the oldest last-access
// timestamp. The linear scan is fine at the bounded sizes this cache
// targets; a list+map LRU would be the move for much larger bounds.
func (c *ResultCache) evictOldestLocked() {
	var oldestKey string
	var oldest time.Time
	first := true
	for key, e := range c.entries {
		if first || e.lastAccess.Before(oldest) {
			oldestKey = key
			oldest = e.lastAccess
			first = false
		}
	}
	if oldestKey != "" {
		delete(c.entries, oldestKey)
	}
}
