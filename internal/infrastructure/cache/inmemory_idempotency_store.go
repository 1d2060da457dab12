package cache

import (
	"context"
	"sync"
	"time"

	"github.com/unicef/etools-sub003/internal/domain/notification"
)

type entry struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements notification.IdempotencyStore with a
// map. Suitable for single-instance deployments and tests. A background
// goroutine evicts expired keys.
type InMemoryIdempotencyStore struct {
	mu        sync.Mutex
	entries   map[notification.Key]entry
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		entries:  make(map[notification.Key]entry),
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.cleanupLoop()
	return store
}

// MarkSent records the key and reports whether a live entry already
// existed for it.
func (s *InMemoryIdempotencyStore) MarkSent(ctx context.Context, key notification.Key, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, exists := s.entries[key]; exists && time.Now().Before(e.expiresAt) {
		return true, nil
	}
	s.entries[key] = entry{expiresAt: time.Now().Add(window)}
	return false, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(5 * time.Minute)
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

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Size returns the number of live entries, for tests.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

var _ notification.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
