package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/schoolfin/voucher/internal/domain/voucher"
)

// InMemoryDraftStore implements voucher.DraftStore. Drafts idle for longer
// than the TTL are evicted by a background loop.
type InMemoryDraftStore struct {
	mu        sync.RWMutex
	drafts    map[uuid.UUID]*voucher.Draft
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryDraftStore creates a store evicting drafts idle for ttl,
// checked every interval
func NewInMemoryDraftStore(ttl, interval time.Duration) *InMemoryDraftStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	s := &InMemoryDraftStore{
		drafts:   make(map[uuid.UUID]*voucher.Draft),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}

	s.wg.Add(1)
	go s.cleanupLoop(interval)

	return s
}

// Put stores or replaces a draft
func (s *InMemoryDraftStore) Put(_ context.Context, d *voucher.Draft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[d.ID()] = d
	return nil
}

// Get returns a live draft or voucher.ErrDraftNotFound
func (s *InMemoryDraftStore) Get(_ context.Context, id uuid.UUID) (*voucher.Draft, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.drafts[id]
	if !ok || s.expired(d, time.Now()) {
		return nil, voucher.ErrDraftNotFound
	}
	return d, nil
}

// Delete removes a draft
func (s *InMemoryDraftStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.drafts, id)
	return nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryDraftStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

// Size returns the number of stored drafts
func (s *InMemoryDraftStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

func (s *InMemoryDraftStore) expired(d *voucher.Draft, now time.Time) bool {
	return now.Sub(d.UpdatedAt()) > s.ttl
}

func (s *InMemoryDraftStore) cleanupLoop(every time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryDraftStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, d := range s.drafts {
		if s.expired(d, now) {
			delete(s.drafts, id)
		}
	}
}

var _ voucher.DraftStore = (*InMemoryDraftStore)(nil)
