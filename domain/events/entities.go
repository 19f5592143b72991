package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Recognized event types. Any other value is accepted and ignored.
const (
	TypeMessage  = "message"
	TypeUserJoin = "user_join"
)

// MaxPayloadBytes bounds the size of one encoded event.
const MaxPayloadBytes = 32 << 10

var (
	ErrMissingField = errors.New("missing required field")
	ErrTrailingData = errors.New("unexpected data after event object")
)

// AnalyticsEvent is one decoded ingestion record.
type AnalyticsEvent struct {
	EventType string `json:"event_type"`
	RoomID    string `json:"room_id"`
	// Timestamp is carried through but not used for any computation.
	Timestamp int64 `json:"timestamp"`
}

// Counts reports whether the event advances its room's counter.
func (e AnalyticsEvent) Counts() bool {
	return e.EventType == TypeMessage
}

// wireEvent uses pointers so absent and null fields can be told apart from
// zero values.
type wireEvent struct {
	EventType *string `json:"event_type"`
	RoomID    *string `json:"room_id"`
	Timestamp *int64  `json:"timestamp"`
}

// Decode reads exactly one JSON event object from r. All three fields are
// required; unknown fields are ignored.
func Decode(r io.Reader) (AnalyticsEvent, error) {
	dec := json.NewDecoder(r)

	var w wireEvent
	if err := dec.Decode(&w); err != nil {
		return AnalyticsEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if dec.More() {
		return AnalyticsEvent{}, ErrTrailingData
	}

	switch {
	case w.EventType == nil:
		return AnalyticsEvent{}, fmt.Errorf("%w: event_type", ErrMissingField)
	case w.RoomID == nil:
		return AnalyticsEvent{}, fmt.Errorf("%w: room_id", ErrMissingField)
	case w.Timestamp == nil:
		return AnalyticsEvent{}, fmt.Errorf("%w: timestamp", ErrMissingField)
	}

	return AnalyticsEvent{
		EventType: *w.EventType,
		RoomID:    *w.RoomID,
		Timestamp: *w.Timestamp,
	}, nil
}
