package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/user/docker-version-fetcher/pkg/types"
)

// Entry represents a cached registry tag listing
type Entry struct {
	Records   []types.TagRecord
	Timestamp time.Time
	TTL       time.Duration
}

// IsExpired checks if the cache entry has expired
func (e *Entry) IsExpired() bool {
	return time.Since(e.Timestamp) > e.TTL
}

// Stats holds statistics about cache usage
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Evicted int64 `json:"evicted"`
	Size    int64 `json:"size"`
}

// HitRate returns the cache hit rate as a percentage
func (s *Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0.0
	}
	return float64(s.Hits) / float64(total) * 100.0
}

// TagCache provides in-memory caching of per-repository tag listings. It is
// only worthwhile in watch mode, where consecutive passes would otherwise
// repeat the same registry queries.
type TagCache struct {
	cache       sync.Map
	defaultTTL  time.Duration
	stats       Stats
	cleanupTick *time.Ticker
	stopCleanup chan struct{}
}

// Config holds cache configuration
type Config struct {
	DefaultTTL      time.Duration
	CleanupInterval time.Duration
}

// DefaultConfig returns sensible default cache configuration
func DefaultConfig() Config {
	return Config{
		DefaultTTL:      15 * time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewTagCache creates a new tag cache with the given configuration
func NewTagCache(config Config) *TagCache {
	cache := &TagCache{
		defaultTTL:  config.DefaultTTL,
		stopCleanup: make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		cache.cleanupTick = time.NewTicker(config.CleanupInterval)
		go cache.cleanupLoop()
	}

	return cache
}

// Get retrieves the cached tag records for a repository
func (c *TagCache) Get(repository string) ([]types.TagRecord, bool) {
	if value, ok := c.cache.Load(repository); ok {
		entry := value.(*Entry)

		if !entry.IsExpired() {
			atomic.AddInt64(&c.stats.Hits, 1)
			return entry.Records, true
		}

		// Entry expired, remove it
		c.cache.Delete(repository)
		atomic.AddInt64(&c.stats.Evicted, 1)
		atomic.AddInt64(&c.stats.Size, -1)
	}

	atomic.AddInt64(&c.stats.Misses, 1)
	return nil, false
}

// Set caches the tag records for a repository
func (c *TagCache) Set(repository string, records []types.TagRecord) {
	c.SetWithTTL(repository, records, c.defaultTTL)
}

// SetWithTTL caches the tag records for a repository with a custom TTL
func (c *TagCache) SetWithTTL(repository string, records []types.TagRecord, ttl time.Duration) {
	entry := &Entry{
		Records:   make([]types.TagRecord, len(records)), // copy to avoid external modifications
		Timestamp: time.Now(),
		TTL:       ttl,
	}
	copy(entry.Records, records)

	if _, existed := c.cache.LoadOrStore(repository, entry); !existed {
		atomic.AddInt64(&c.stats.Size, 1)
	} else {
		c.cache.Store(repository, entry)
	}
}

// Clear removes all entries from the cache
func (c *TagCache) Clear() {
	c.cache.Range(func(key, value interface{}) bool {
		c.cache.Delete(key)
		return true
	})
	atomic.StoreInt64(&c.stats.Size, 0)
}

// Stats returns current cache statistics
func (c *TagCache) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadInt64(&c.stats.Hits),
		Misses:  atomic.LoadInt64(&c.stats.Misses),
		Evicted: atomic.LoadInt64(&c.stats.Evicted),
		Size:    atomic.LoadInt64(&c.stats.Size),
	}
}

// Close stops the cache cleanup goroutine
func (c *TagCache) Close() {
	if c.cleanupTick != nil {
		c.cleanupTick.Stop()
		close(c.stopCleanup)
	}
}

// cleanupLoop runs in the background to remove expired entries
func (c *TagCache) cleanupLoop() {
	for {
		select {
		case <-c.cleanupTick.C:
			c.cleanupExpired()
		case <-c.stopCleanup:
			return
		}
	}
}

// cleanupExpired removes all expired entries from the cache
func (c *TagCache) cleanupExpired() {
	var keysToDelete []interface{}

	c.cache.Range(func(key, value interface{}) bool {
		entry := value.(*Entry)
		if entry.IsExpired() {
			keysToDelete = append(keysToDelete, key)
		}
		return true
	})

	for _, key := range keysToDelete {
		c.cache.Delete(key)
		atomic.AddInt64(&c.stats.Evicted, 1)
		atomic.AddInt64(&c.stats.Size, -1)
	}
}

// CachedRegistryClient wraps a registry client with tag listing caching
type CachedRegistryClient struct {
	client types.RegistryClient
	cache  *TagCache
}

// digestResolver is the optional on-demand digest capability of a registry
// client.
type digestResolver interface {
	ResolveDigest(ctx context.Context, repository, tag string) (map[string]string, error)
}

// NewCachedRegistryClient creates a new cached registry client. When the
// wrapped client resolves digests on demand, the returned client exposes that
// capability too; otherwise it does not, so callers probing for it with a
// type assertion see the same answer they would get from the wrapped client.
func NewCachedRegistryClient(client types.RegistryClient, cache *TagCache) types.RegistryClient {
	wrapped := newCachedRegistryClient(client, cache)
	if resolver, ok := client.(digestResolver); ok {
		return &cachedDigestResolver{CachedRegistryClient: wrapped, resolver: resolver}
	}
	return wrapped
}

func newCachedRegistryClient(client types.RegistryClient, cache *TagCache) *CachedRegistryClient {
	return &CachedRegistryClient{
		client: client,
		cache:  cache,
	}
}

// Name returns the name of the underlying registry client
func (c *CachedRegistryClient) Name() string {
	return c.client.Name()
}

// RepositoryExists is passed through to the underlying client
func (c *CachedRegistryClient) RepositoryExists(ctx context.Context, repository string) (bool, error) {
	return c.client.RepositoryExists(ctx, repository)
}

// ListTags lists tags with caching
func (c *CachedRegistryClient) ListTags(ctx context.Context, repository string) ([]types.TagRecord, error) {
	if records, found := c.cache.Get(repository); found {
		return records, nil
	}

	records, err := c.client.ListTags(ctx, repository)
	if err != nil {
		return nil, err
	}

	c.cache.Set(repository, records)
	return records, nil
}

// cachedDigestResolver wraps a digest-capable client. Digests are not
// cached: a cached digest would mask exactly the drift the checker is
// looking for.
type cachedDigestResolver struct {
	*CachedRegistryClient
	resolver digestResolver
}

// ResolveDigest delegates on-demand digest resolution to the underlying client
func (c *cachedDigestResolver) ResolveDigest(ctx context.Context, repository, tag string) (map[string]string, error) {
	return c.resolver.ResolveDigest(ctx, repository, tag)
}
