// Package sqlite keeps room counters in an SQLite database. It is meant to
// run against an in-memory database, so counters are still lost on exit.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/fllarpy/room-analytics/domain"
	sqlinstrumentation "github.com/fllarpy/room-analytics/instrumentation/sql"
	_ "github.com/mattn/go-sqlite3"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// DefaultDSN names a shared-cache in-memory database.
const DefaultDSN = "file:room_counts?mode=memory&cache=shared"

const (
	schemaSQL = `CREATE TABLE IF NOT EXISTS room_counts (
		room_id TEXT PRIMARY KEY,
		count   INTEGER NOT NULL
	)`
	incrementSQL = `INSERT INTO room_counts (room_id, count) VALUES (?, 1)
		ON CONFLICT(room_id) DO UPDATE SET count = count + 1
		RETURNING count`
	countSQL    = `SELECT count FROM room_counts WHERE room_id = ?`
	snapshotSQL = `SELECT room_id, count FROM room_counts`
)

var _ domain.CounterStore = (*Store)(nil)

type Store struct {
	db *sql.DB
}

// Open connects to dsn and creates the counter table. The pool is limited
// to a single connection: an in-memory database lives only as long as its
// connections, and one connection also serializes every upsert.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	db, err := sqlinstrumentation.Open("sqlite3", dsn, semconv.DBSystemSqlite)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create room_counts table: %w", err)
	}

	return &Store{db: db}, nil
}

// Increment upserts roomID and returns its new count in one statement.
func (s *Store) Increment(ctx context.Context, roomID string) (uint64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, incrementSQL, roomID).Scan(&count); err != nil {
		return 0, fmt.Errorf("increment room %q: %w", roomID, err)
	}
	return uint64(count), nil
}

// Count returns the counter for roomID, or 0 if the room has no row.
func (s *Store) Count(ctx context.Context, roomID string) (uint64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, countSQL, roomID).Scan(&count)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("count room %q: %w", roomID, err)
	}
	return uint64(count), nil
}

func (s *Store) Snapshot(ctx context.Context) (domain.RoomCounts, error) {
	rows, err := s.db.QueryContext(ctx, snapshotSQL)
	if err != nil {
		return nil, fmt.Errorf("snapshot rooms: %w", err)
	}
	defer rows.Close()

	snapshot := make(domain.RoomCounts)
	for rows.Next() {
		var (
			roomID string
			count  int64
		)
		if err := rows.Scan(&roomID, &count); err != nil {
			return nil, fmt.Errorf("scan room row: %w", err)
		}
		snapshot[roomID] = uint64(count)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate room rows: %w", err)
	}
	return snapshot, nil
}

// Close releases the connection, which drops an in-memory database.
func (s *Store) Close() error {
	return s.db.Close()
}
