package nws

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetAndGet(t *testing.T) {
	cache := NewCache()
	cache.Set("key", []byte(`{"a":1}`), time.Minute)

	body, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), body)
}

func TestCache_Expiry(t *testing.T) {
	fake := clockwork.NewFakeClock()
	cache := NewCacheWithClock(fake)

	cache.Set("key", []byte("value"), 10*time.Second)

	_, ok := cache.Get("key")
	assert.True(t, ok)

	fake.Advance(11 * time.Second)

	_, ok = cache.Get("key")
	assert.False(t, ok, "entry should be expired")
	assert.Equal(t, 0, cache.Len(), "expired entry should be evicted by Get")
}

func TestCache_ZeroAndNegativeTTL(t *testing.T) {
	// A ttl <= 0 produces an entry that is already expired: any Get, however
	// soon, is a miss.
	fake := clockwork.NewFakeClock()
	cache := NewCacheWithClock(fake)

	cache.Set("zero", []byte("v"), 0)
	cache.Set("negative", []byte("v"), -time.Second)
	assert.Equal(t, 2, cache.Len())

	_, ok := cache.Get("zero")
	assert.False(t, ok)
	_, ok = cache.Get("negative")
	assert.False(t, ok)
	assert.Equal(t, 0, cache.Len())
}

func TestCache_GetEvictionAlsoCoversCleanExpired(t *testing.T) {
	fake := clockwork.NewFakeClock()
	cache := NewCacheWithClock(fake)

	cache.Set("stale", []byte("v"), -time.Second)
	cache.Set("live", []byte("v"), time.Hour)

	_, ok := cache.Get("stale")
	assert.False(t, ok)
	assert.Equal(t, 1, cache.Len(), "Get should have evicted the stale key")

	// The evicted key is gone for good; CleanExpired has nothing left to do.
	cache.CleanExpired()
	assert.Equal(t, 1, cache.Len())
	_, ok = cache.Get("live")
	assert.True(t, ok)
}

func TestCache_Overwrite(t *testing.T) {
	cache := NewCache()
	cache.Set("key", []byte("old"), time.Minute)
	cache.Set("key", []byte("new"), time.Minute)

	body, ok := cache.Get("key")
	require.True(t, ok)
	assert.Equal(t, []byte("new"), body)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_Clear(t *testing.T) {
	cache := NewCache()
	cache.Set("a", []byte("1"), time.Minute)
	cache.Set("b", []byte("2"), time.Minute)

	cache.Clear()

	assert.Equal(t, 0, cache.Len())
	_, ok := cache.Get("a")
	assert.False(t, ok)
	_, ok = cache.Get("b")
	assert.False(t, ok)
}

func TestCache_CleanExpired(t *testing.T) {
	fake := clockwork.NewFakeClock()
	cache := NewCacheWithClock(fake)

	cache.Set("short", []byte("v"), 5*time.Second)
	cache.Set("long", []byte("v"), time.Hour)
	cache.Set("expired", []byte("v"), -time.Second)

	fake.Advance(10 * time.Second)
	cache.CleanExpired()

	assert.Equal(t, 1, cache.Len())
	_, ok := cache.Get("long")
	assert.True(t, ok)
	_, ok = cache.Get("short")
	assert.False(t, ok)
}
