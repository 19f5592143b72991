// Package actor implements a room counter store owned by a single goroutine.
// Callers never share the map; every operation is a message to the owner.
package actor

import (
	"context"
	"maps"
	"sync"

	"github.com/fllarpy/room-analytics/domain"
)

var _ domain.CounterStore = (*Store)(nil)

type incrementRequest struct {
	roomID string
	reply  chan uint64
}

type snapshotRequest struct {
	reply chan domain.RoomCounts
}

type countRequest struct {
	roomID string
	reply  chan uint64
}

// Store serializes all counter access through its owner goroutine.
type Store struct {
	increments chan incrementRequest
	counts     chan countRequest
	snapshots  chan snapshotRequest

	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewStore starts the owner goroutine. Close must be called to stop it.
func NewStore() *Store {
	s := &Store{
		// Unbuffered so a send only succeeds while the owner is running.
		increments: make(chan incrementRequest),
		counts:     make(chan countRequest),
		snapshots:  make(chan snapshotRequest),
		done:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
	go s.run()
	return s
}

func (s *Store) run() {
	defer close(s.stopped)

	counts := make(map[string]uint64)
	for {
		select {
		case req := <-s.increments:
			counts[req.roomID]++
			req.reply <- counts[req.roomID]
		case req := <-s.counts:
			req.reply <- counts[req.roomID]
		case req := <-s.snapshots:
			snapshot := make(domain.RoomCounts, len(counts))
			maps.Copy(snapshot, counts)
			req.reply <- snapshot
		case <-s.done:
			return
		}
	}
}

// Increment asks the owner to advance roomID. It blocks until the owner
// accepts the request, ctx is done, or the store is closed. Once accepted
// the increment is applied even if ctx is cancelled afterwards.
func (s *Store) Increment(ctx context.Context, roomID string) (uint64, error) {
	req := incrementRequest{roomID: roomID, reply: make(chan uint64, 1)}
	select {
	case s.increments <- req:
		return <-req.reply, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.done:
		return 0, domain.ErrStoreClosed
	}
}

// Count returns the current counter for roomID.
func (s *Store) Count(ctx context.Context, roomID string) (uint64, error) {
	req := countRequest{roomID: roomID, reply: make(chan uint64, 1)}
	select {
	case s.counts <- req:
		return <-req.reply, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-s.done:
		return 0, domain.ErrStoreClosed
	}
}

// Snapshot returns a copy of all counters.
func (s *Store) Snapshot(ctx context.Context) (domain.RoomCounts, error) {
	req := snapshotRequest{reply: make(chan domain.RoomCounts, 1)}
	select {
	case s.snapshots <- req:
		return <-req.reply, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-s.done:
		return nil, domain.ErrStoreClosed
	}
}

// Close stops the owner goroutine and waits for it to exit. Subsequent
// calls return domain.ErrStoreClosed. Close is idempotent.
func (s *Store) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
	return nil
}
