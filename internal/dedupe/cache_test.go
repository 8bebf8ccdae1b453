package dedupe_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/DeafMist/news-scraper/internal/dedupe"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestCacheSeenAfterMark(t *testing.T) {
	cache := dedupe.NewCache(10, time.Minute)
	require.False(t, cache.Seen("https://livemint.com/a"))
	cache.Mark("https://livemint.com/a")
	require.True(t, cache.Seen("https://livemint.com/a"))
	require.Equal(t, 1, cache.Len())
}

func TestCacheTTLExpiry(t *testing.T) {
	clk := &clock{t: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	cache := dedupe.NewCacheWithClock(10, time.Minute, clk.now)

	cache.Mark("beta")
	clk.advance(59 * time.Second)
	require.True(t, cache.Seen("beta"))

	clk.advance(2 * time.Second)
	require.False(t, cache.Seen("beta"))

	// Marking something else compacts the expired entry away.
	cache.Mark("gamma")
	require.Equal(t, 1, cache.Len())
}

func TestCacheCapacityEvictsOldest(t *testing.T) {
	clk := &clock{t: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	cache := dedupe.NewCacheWithClock(1, time.Hour, clk.now)

	cache.Mark("first")
	clk.advance(time.Second)
	cache.Mark("second")

	require.False(t, cache.Seen("first"))
	require.True(t, cache.Seen("second"))
}

func TestCacheRemarkKeepsLatest(t *testing.T) {
	clk := &clock{t: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	cache := dedupe.NewCacheWithClock(2, time.Minute, clk.now)

	cache.Mark("a")
	clk.advance(50 * time.Second)
	cache.Mark("a")
	clk.advance(20 * time.Second)
	cache.Mark("b")

	// the first mark of "a" expired but the second one is still live
	require.True(t, cache.Seen("a"))
	require.True(t, cache.Seen("b"))
}
