package domain

import (
	"context"
	"errors"
)

// ErrStoreClosed is returned by counter stores that have been shut down.
var ErrStoreClosed = errors.New("counter store closed")

// RoomCounts is a point-in-time copy of all room counters.
// Callers own the map and may modify it freely.
type RoomCounts map[string]uint64

// CounterReader defines the contract for reading room counters.
type CounterReader interface {
	// Count returns the counter for roomID, or 0 if the room was never seen.
	Count(ctx context.Context, roomID string) (uint64, error)
	Snapshot(ctx context.Context) (RoomCounts, error)
}

// CounterWriter defines the contract for advancing room counters.
type CounterWriter interface {
	// Increment adds one to the counter for roomID and returns the new value.
	// An unseen room starts at zero, so its first increment returns 1.
	// Any string is a valid room identifier, including the empty string.
	Increment(ctx context.Context, roomID string) (uint64, error)
}

// CounterStore is the combined interface for a room counter store.
type CounterStore interface {
	CounterReader
	CounterWriter
	Close() error
}
