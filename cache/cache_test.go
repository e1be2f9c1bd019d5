package cache

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gamalabs/agentpool/core"
)

func testResult(payload string) *core.TaskResult {
	return &core.TaskResult{
		TaskID:  "t-1",
		AgentID: "valuer-1",
		Name:    "appraise",
		Payload: payload,
	}
}

// fakeClock lets tests advance time without sleeping.
type fakeClock struct {
	t time.Time
}

func (f *fakeClock) now() time.Time            { return f.t }
func (f *fakeClock) advance(d time.Duration)   { f.t = f.t.Add(d) }
func newFakeClock() *fakeClock                 { return &fakeClock{t: time.Unix(1700000000, 0)} }
func withClock(c *ResultCache, fc *fakeClock)  { c.now = fc.now }

func TestSetGetRoundTrip(t *testing.T) {
	c := New()

	c.Set("k1", testResult("42 Main St: $310,000"), time.Minute)

	got, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "42 Main St: $310,000", got.Payload)

	// The cache hands out copies, not aliases.
	got.Payload = "mutated"
	again, ok := c.Get("k1")
	require.True(t, ok)
	assert.Equal(t, "42 Main St: $310,000", again.Payload)
}

func TestGetAbsent(t *testing.T) {
	c := New()
	_, ok := c.Get("missing")
	assert.False(t, ok)
}

func TestLRUEvictionAtBound(t *testing.T) {
	fc := newFakeClock()
	c := New(func(o *Options) { o.MaxEntries = 2 })
	withClock(c, fc)

	c.Set("k1", testResult("r1"), time.Hour)
	fc.advance(time.Second)
	c.Set("k2", testResult("r2"), time.Hour)
	fc.advance(time.Second)

	// k1 has the oldest access timestamp; the third insert evicts it.
	c.Set("k3", testResult("r3"), time.Hour)

	_, ok := c.Get("k1")
	assert.False(t, ok)
	_, ok = c.Get("k2")
	assert.True(t, ok)
	_, ok = c.Get("k3")
	assert.True(t, ok)
}

func TestLRUEvictionRespectsAccessRefresh(t *testing.T) {
	fc := newFakeClock()
	c := New(func(o *Options) { o.MaxEntries = 2 })
	withClock(c, fc)

	c.Set("k1", testResult("r1"), time.Hour)
	fc.advance(time.Second)
	c.Set("k2", testResult("r2"), time.Hour)
	fc.advance(time.Second)

	// Touch k1 so k2 becomes least recently used.
	_, ok := c.Get("k1")
	require.True(t, ok)
	fc.advance(time.Second)

	c.Set("k3", testResult("r3"), time.Hour)

	_, ok = c.Get("k2")
	assert.False(t, ok)
	_, ok = c.Get("k1")
	assert.True(t, ok)
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	c := New(func(o *Options) { o.MaxEntries = 2 })

	c.Set("k1", testResult("r1"), time.Hour)
	c.Set("k2", testResult("r2"), time.Hour)
	c.Set("k2", testResult("r2b"), time.Hour)

	_, ok := c.Get("k1")
	assert.True(t, ok)
	got, ok := c.Get("k2")
	require.True(t, ok)
	assert.Equal(t, "r2b", got.Payload)
}

func TestTTLExpiryIsLazy(t *testing.T) {
	fc := newFakeClock()
	c := New()
	withClock(c, fc)

	c.Set("k", testResult("r"), 50*time.Millisecond)

	_, ok := c.Get("k")
	assert.True(t, ok)

	fc.advance(80 * time.Millisecond)

	_, ok = c.Get("k")
	assert.False(t, ok)
	// The expired entry was purged, not just hidden.
	assert.Equal(t, 0, c.Stats().Entries)
}

func TestCleanupSweepsExpired(t *testing.T) {
	fc := newFakeClock()
	c := New()
	withClock(c, fc)

	c.Set("short", testResult("r"), 10*time.Millisecond)
	c.Set("long", testResult("r"), time.Hour)

	fc.advance(time.Second)

	removed := c.Cleanup()
	assert.Equal(t, 1, removed)
	assert.Equal(t, 1, c.Stats().Entries)

	_, ok := c.Get("long")
	assert.True(t, ok)
}

func TestPayloadTruncation(t *testing.T) {
	c := New(func(o *Options) { o.MaxValueBytes = 8 })

	c.Set("k", testResult("0123456789abcdef"), time.Minute)

	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "01234567", got.Payload)
}

func TestStats(t *testing.T) {
	fc := newFakeClock()
	c := New()
	withClock(c, fc)

	assert.Equal(t, Stats{}, c.Stats())

	c.Set("k1", testResult("r1"), time.Hour)
	fc.advance(4 * time.Second)
	c.Set("k2", testResult("r2"), time.Hour)
	fc.advance(2 * time.Second)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Entries)
	// Ages are 6s and 2s: the mean is 4s.
	assert.Equal(t, 4*time.Second, stats.AvgAge)
}

func TestKeyStableAcrossInputOrder(t *testing.T) {
	a := map[string]any{"parcel": "12-34", "year": 2024, "features": []any{"pool", "garage"}}
	b := map[string]any{"year": 2024, "features": []any{"pool", "garage"}, "parcel": "12-34"}

	assert.Equal(t, Key("valuer-1", "appraise", a), Key("valuer-1", "appraise", b))
}

func TestKeyDiscriminates(t *testing.T) {
	inputs := map[string]any{"parcel": "12-34"}

	base := Key("valuer-1", "appraise", inputs)
	assert.NotEqual(t, base, Key("valuer-2", "appraise", inputs))
	assert.NotEqual(t, base, Key("valuer-1", "enrich", inputs))
	assert.NotEqual(t, base, Key("valuer-1", "appraise", map[string]any{"parcel": "99-99"}))
	assert.True(t, len(base) == 32 && !strings.Contains(base, " "))
}
