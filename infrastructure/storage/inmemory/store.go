package inmemory

import (
	"context"
	"maps"
	"sync"

	"github.com/fllarpy/room-analytics/domain"
)

// Store is a thread-safe in-memory room counter store.
// It implements the domain.CounterStore interface.
var _ domain.CounterStore = (*Store)(nil)

type Store struct {
	mu     sync.RWMutex
	counts map[string]uint64
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		counts: make(map[string]uint64),
	}
}

// Increment advances the counter for roomID under the write lock.
// It never returns an error.
func (s *Store) Increment(_ context.Context, roomID string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counts[roomID]++
	return s.counts[roomID], nil
}

// Count returns the current counter for roomID.
func (s *Store) Count(_ context.Context, roomID string) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.counts[roomID], nil
}

// Snapshot returns a copy of all counters taken under the read lock.
func (s *Store) Snapshot(_ context.Context) (domain.RoomCounts, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := make(domain.RoomCounts, len(s.counts))
	maps.Copy(snapshot, s.counts)
	return snapshot, nil
}

// Close is a no-op; the counters live until the process exits.
func (s *Store) Close() error { return nil }
