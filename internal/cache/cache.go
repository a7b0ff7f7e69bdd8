// internal/cache/cache.go
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/clipsense/clipsense/pkg/types"
)

// Default configuration constants
const (
	DefaultTTL           = 30 * time.Minute
	DefaultMaxSize       = 1000
	DefaultSweepInterval = 5 * time.Minute

	// EvictionBatchRatio is the fraction of MaxSize removed per capacity
	// eviction, amortizing eviction cost across many inserts.
	EvictionBatchRatio = 0.1

	// entryOverheadBytes is the rough fixed cost per cache entry used for
	// the memory estimate in Stats.
	entryOverheadBytes = 256
)

// entry wraps a cached result with its bookkeeping.
type entry struct {
	result      *types.DetectionResult
	createdAt   time.Time
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int64
}

// Store is a TTL-bounded cache of detection results keyed by normalized URL.
// Operations never return errors; a miss is reported as absent.
type Store struct {
	mu        sync.Mutex
	entries   map[string]*entry
	defaultTTL time.Duration
	maxSize   int

	hits      int64
	misses    int64
	evictions int64

	sweepInterval time.Duration
	stopSweep     chan struct{}
	sweepOnce     sync.Once
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the default entry TTL.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.defaultTTL = ttl
		}
	}
}

// WithMaxSize sets the maximum number of entries.
func WithMaxSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.maxSize = size
		}
	}
}

// WithSweepInterval sets how often the background sweep removes expired
// entries. A non-positive interval disables the sweep.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Store) {
		s.sweepInterval = interval
	}
}

// NewStore creates a cache store and starts its background sweep.
func NewStore(opts ...Option) *Store {
	s := &Store{
		entries:       make(map[string]*entry),
		defaultTTL:    DefaultTTL,
		maxSize:       DefaultMaxSize,
		sweepInterval: DefaultSweepInterval,
		stopSweep:     make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.sweepInterval > 0 {
		go s.sweepLoop()
	}

	return s
}

// Get returns a copy of the cached result for key, or absent. Expired entries
// are removed lazily on access.
func (s *Store) Get(key string) (*types.DetectionResult, bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		return nil, false
	}

	if now.After(e.expiresAt) {
		delete(s.entries, key)
		s.misses++
		return nil, false
	}

	e.accessCount++
	e.lastAccess = now
	s.hits++

	return e.result.Clone(), true
}

// Set stores a copy of the result under key with the default TTL.
func (s *Store) Set(key string, result *types.DetectionResult) {
	s.SetWithTTL(key, result, 0)
}

// SetWithTTL stores a copy of the result under key. A non-positive ttl uses
// the store default. When the store is full a batch of the oldest entries by
// creation time is evicted first.
func (s *Store) SetWithTTL(key string, result *types.DetectionResult, ttl time.Duration) {
	if result == nil {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.evictOldestLocked(s.evictionBatchSize())
	}

	s.entries[key] = &entry{
		result:     result.Clone(),
		createdAt:  now,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
}

// Invalidate removes a single key.
func (s *Store) Invalidate(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
}

// Clear removes all entries and resets the hit/miss counters.
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = make(map[string]*entry)
	s.hits = 0
	s.misses = 0
	s.evictions = 0
	s.mu.Unlock()
}

// EvictLRU removes up to n entries with the lowest access count, for explicit
// pressure relief.
func (s *Store) EvictLRU(n int) int {
	if n <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	type candidate struct {
		key         string
		accessCount int64
		lastAccess  time.Time
	}

	candidates := make([]candidate, 0, len(s.entries))
	for k, e := range s.entries {
		candidates = append(candidates, candidate{k, e.accessCount, e.lastAccess})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].accessCount != candidates[j].accessCount {
			return candidates[i].accessCount < candidates[j].accessCount
		}
		return candidates[i].lastAccess.Before(candidates[j].lastAccess)
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		delete(s.entries, candidates[i].key)
		s.evictions++
	}

	return n
}

// Stats returns a snapshot of the cache counters.
func (s *Store) Stats() types.CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := types.CacheStats{
		Size:      len(s.entries),
		MaxSize:   s.maxSize,
		Hits:      s.hits,
		Misses:    s.misses,
		Evictions: s.evictions,
	}

	total := s.hits + s.misses
	if total > 0 {
		stats.HitRate = float64(s.hits) / float64(total)
	}

	var memory int64
	for key, e := range s.entries {
		memory += int64(len(key)) + estimateResultSize(e.result) + entryOverheadBytes
	}
	stats.MemoryEstimate = memory

	return stats
}

// Close stops the background sweep.
func (s *Store) Close() {
	s.sweepOnce.Do(func() {
		close(s.stopSweep)
	})
}

// sweepLoop eagerly removes expired entries on a fixed interval.
func (s *Store) sweepLoop() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.removeExpired()
		case <-s.stopSweep:
			return
		}
	}
}

// removeExpired deletes all entries past their expiry.
func (s *Store) removeExpired() {
	now := time.Now()

	s.mu.Lock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
	s.mu.Unlock()
}

// evictionBatchSize returns how many entries a capacity eviction removes.
func (s *Store) evictionBatchSize() int {
	batch := int(float64(s.maxSize) * EvictionBatchRatio)
	if batch < 1 {
		batch = 1
	}
	return batch
}

// evictOldestLocked removes the n oldest entries by creation time. Caller
// must hold s.mu.
func (s *Store) evictOldestLocked(n int) {
	type candidate struct {
		key       string
		createdAt time.Time
	}

	candidates := make([]candidate, 0, len(s.entries))
	for k, e := range s.entries {
		candidates = append(candidates, candidate{k, e.createdAt})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].createdAt.Before(candidates[j].createdAt)
	})

	if n > len(candidates) {
		n = len(candidates)
	}
	for i := 0; i < n; i++ {
		delete(s.entries, candidates[i].key)
		s.evictions++
	}
}

// estimateResultSize roughly accounts for the variable-size parts of a
// cached result.
func estimateResultSize(r *types.DetectionResult) int64 {
	if r == nil {
		return 0
	}

	size := int64(len(r.URL) + len(r.NormalizedURL) + len(r.MatchedPattern) + len(r.Error))
	for _, w := range r.Warnings {
		size += int64(len(w))
	}

	if m := r.Metadata; m != nil {
		size += int64(len(m.PlatformID) + len(m.Title) + len(m.Description) + len(m.Thumbnail) + len(m.Author) + len(m.Language))
		for _, tag := range m.Tags {
			size += int64(len(tag))
		}
		size += int64(len(m.Raw)) * 64
	}

	return size
}
