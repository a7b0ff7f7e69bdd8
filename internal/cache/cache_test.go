// internal/cache/cache_test.go
package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/clipsense/clipsense/pkg/types"
)

func testResult(url string) *types.DetectionResult {
	return &types.DetectionResult{
		URL:           url,
		NormalizedURL: url,
		Platform:      types.PlatformYouTube,
		ContentType:   types.ContentTypeVideo,
		Confidence:    0.95,
		DetectedAt:    time.Now(),
	}
}

func TestCacheRoundTrip(t *testing.T) {
	store := NewStore(WithSweepInterval(0))
	defer store.Close()

	key := "https://www.youtube.com/watch?v=abc"
	store.Set(key, testResult(key))

	got, ok := store.Get(key)
	if !ok {
		t.Fatal("expected cache hit after set")
	}
	if got.Platform != types.PlatformYouTube {
		t.Errorf("expected platform youtube, got %s", got.Platform)
	}
	if got.Confidence != 0.95 {
		t.Errorf("expected confidence 0.95, got %f", got.Confidence)
	}
}

func TestCacheMissOnAbsent(t *testing.T) {
	store := NewStore(WithSweepInterval(0))
	defer store.Close()

	if _, ok := store.Get("https://example.com/missing"); ok {
		t.Error("expected miss for absent key")
	}

	stats := store.Stats()
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
}

func TestCacheExpiry(t *testing.T) {
	store := NewStore(WithSweepInterval(0))
	defer store.Close()

	key := "https://example.com/short-lived"
	store.SetWithTTL(key, testResult(key), 20*time.Millisecond)

	if _, ok := store.Get(key); !ok {
		t.Fatal("entry should be visible before expiry")
	}

	time.Sleep(40 * time.Millisecond)

	if _, ok := store.Get(key); ok {
		t.Error("entry should be absent after TTL elapses")
	}
}

func TestCacheReturnsCopies(t *testing.T) {
	store := NewStore(WithSweepInterval(0))
	defer store.Close()

	key := "https://example.com/copy"
	original := testResult(key)
	original.Warnings = []string{"original"}
	store.Set(key, original)

	// Mutating the value we stored must not affect the cache
	original.Warnings[0] = "mutated after set"

	first, _ := store.Get(key)
	if first.Warnings[0] != "original" {
		t.Error("cache entry was aliased to the caller's value on set")
	}

	// Mutating a returned copy must not affect later reads
	first.Warnings[0] = "mutated after get"
	first.Confidence = 0.01

	second, _ := store.Get(key)
	if second.Warnings[0] != "original" || second.Confidence != 0.95 {
		t.Error("cache entry was corrupted by mutating a returned copy")
	}
}

func TestCacheBatchEviction(t *testing.T) {
	store := NewStore(WithMaxSize(10), WithSweepInterval(0))
	defer store.Close()

	for i := 0; i < 10; i++ {
		key := fmt.Sprintf("https://example.com/page-%d", i)
		store.Set(key, testResult(key))
		time.Sleep(time.Millisecond)
	}

	// Inserting one more should evict a batch of the oldest entries,
	// leaving room beyond a single slot
	store.Set("https://example.com/overflow", testResult("https://example.com/overflow"))

	stats := store.Stats()
	if stats.Size >= 11 {
		t.Errorf("store exceeded max size: %d", stats.Size)
	}
	if stats.Evictions == 0 {
		t.Error("expected evictions to be recorded")
	}

	// The newest entry must survive
	if _, ok := store.Get("https://example.com/overflow"); !ok {
		t.Error("newly inserted entry should be present after eviction")
	}

	// The oldest entry must be gone
	if _, ok := store.Get("https://example.com/page-0"); ok {
		t.Error("oldest entry should have been evicted")
	}
}

func TestCacheEvictLRU(t *testing.T) {
	store := NewStore(WithSweepInterval(0))
	defer store.Close()

	for i := 0; i < 5; i++ {
		key := fmt.Sprintf("https://example.com/lru-%d", i)
		store.Set(key, testResult(key))
	}

	// Touch everything except lru-0 so it is the coldest entry
	for i := 1; i < 5; i++ {
		store.Get(fmt.Sprintf("https://example.com/lru-%d", i))
	}

	removed := store.EvictLRU(1)
	if removed != 1 {
		t.Fatalf("expected 1 entry removed, got %d", removed)
	}

	if _, ok := store.Get("https://example.com/lru-0"); ok {
		t.Error("least-recently-used entry should have been evicted")
	}
	if _, ok := store.Get("https://example.com/lru-3"); !ok {
		t.Error("recently used entry should have survived")
	}
}

func TestCacheClearResetsCounters(t *testing.T) {
	store := NewStore(WithSweepInterval(0))
	defer store.Close()

	store.Set("k", testResult("k"))
	store.Get("k")
	store.Get("absent")

	store.Clear()

	stats := store.Stats()
	if stats.Size != 0 || stats.Hits != 0 || stats.Misses != 0 {
		t.Errorf("clear should reset size and counters, got %+v", stats)
	}
}

func TestCacheStats(t *testing.T) {
	store := NewStore(WithSweepInterval(0))
	defer store.Close()

	store.Set("a", testResult("a"))
	store.Get("a")
	store.Get("a")
	store.Get("missing")

	stats := store.Stats()
	if stats.Hits != 2 {
		t.Errorf("expected 2 hits, got %d", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", stats.Misses)
	}
	expectedRate := 2.0 / 3.0
	if stats.HitRate < expectedRate-0.001 || stats.HitRate > expectedRate+0.001 {
		t.Errorf("expected hit rate ~%f, got %f", expectedRate, stats.HitRate)
	}
	if stats.MemoryEstimate <= 0 {
		t.Error("memory estimate should be positive for a non-empty store")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	store := NewStore(WithMaxSize(50), WithSweepInterval(0))
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("https://example.com/c-%d", j%20)
				store.Set(key, testResult(key))
				store.Get(key)
			}
		}(i)
	}
	wg.Wait()

	stats := store.Stats()
	if stats.Size > 50 {
		t.Errorf("store exceeded max size under concurrency: %d", stats.Size)
	}
}

func TestCacheSweepRemovesExpired(t *testing.T) {
	store := NewStore(WithSweepInterval(10 * time.Millisecond))
	defer store.Close()

	store.SetWithTTL("gone", testResult("gone"), 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	// Expired entry should have been removed by the sweep without a Get
	stats := store.Stats()
	if stats.Size != 0 {
		t.Errorf("sweep should have removed expired entry, size=%d", stats.Size)
	}
}
