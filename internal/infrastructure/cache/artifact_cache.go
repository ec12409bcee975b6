package cache

import (
	"context"
	"sync"
	"time"
)

// ArtifactCache keeps generated PDFs keyed by the sha256 of their page HTML.
// Equal HTML renders to the same pixels, so a hit can be served without a
// capture.
type ArtifactCache interface {
	// Get returns the cached PDF and true, or nil and false on a miss
	Get(ctx context.Context, hash string) ([]byte, bool, error)
	// Set stores data under hash for ttl
	Set(ctx context.Context, hash string, data []byte, ttl time.Duration) error
	// Close releases resources
	Close() error
}

type artifactEntry struct {
	data      []byte
	expiresAt time.Time
}

// InMemoryArtifactCache implements ArtifactCache with a bounded map.
// Suitable for single-instance deployments and tests.
type InMemoryArtifactCache struct {
	mu         sync.RWMutex
	entries    map[string]artifactEntry
	maxEntries int
	stopChan   chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

// NewInMemoryArtifactCache creates a cache holding at most maxEntries PDFs
// and starts its expiry loop
func NewInMemoryArtifactCache(maxEntries int) *InMemoryArtifactCache {
	if maxEntries <= 0 {
		maxEntries = 128
	}
	c := &InMemoryArtifactCache{
		entries:    make(map[string]artifactEntry),
		maxEntries: maxEntries,
		stopChan:   make(chan struct{}),
	}

	c.wg.Add(1)
	go c.cleanupLoop(time.Minute)

	return c
}

// Get returns a copy of the cached PDF
func (c *InMemoryArtifactCache) Get(_ context.Context, hash string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[hash]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false, nil
	}
	return append([]byte(nil), e.data...), true, nil
}

// Set stores a copy of data. When full, the entry closest to expiry is
// evicted first.
func (c *InMemoryArtifactCache) Set(_ context.Context, hash string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[hash]; !exists && len(c.entries) >= c.maxEntries {
		c.evictOne()
	}
	c.entries[hash] = artifactEntry{
		data:      append([]byte(nil), data...),
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// evictOne drops the entry that expires soonest. Caller holds the lock.
func (c *InMemoryArtifactCache) evictOne() {
	var victim string
	var soonest time.Time
	for k, e := range c.entries {
		if victim == "" || e.expiresAt.Before(soonest) {
			victim, soonest = k, e.expiresAt
		}
	}
	delete(c.entries, victim)
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryArtifactCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryArtifactCache) cleanupLoop(every time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryArtifactCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

// Size returns the number of entries, expired ones included
func (c *InMemoryArtifactCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ ArtifactCache = (*InMemoryArtifactCache)(nil)
