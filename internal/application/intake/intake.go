// Package intake decides what a decoded analytics event does to room
// counter state.
package intake

import (
	"context"
	"fmt"
	"log"

	"github.com/fllarpy/room-analytics/domain"
	"github.com/fllarpy/room-analytics/domain/events"
)

// Recorder observes every handled event. telemetry.Metrics implements it.
type Recorder interface {
	ObserveEvent(eventType string, counted bool)
}

// Result describes the effect one event had on its room.
type Result struct {
	Counted bool
	// Count is the room's new value. Zero when Counted is false.
	Count uint64
}

type Option func(*Service)

// WithRecorder attaches a Recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithDebug makes the service log every received event, not just increments.
func WithDebug(debug bool) Option {
	return func(s *Service) { s.debug = debug }
}

// Service is stateless per call; all cross-call state lives in the store.
type Service struct {
	store    domain.CounterWriter
	recorder Recorder
	debug    bool
}

const errNilStore = "intake: store cannot be nil"

// NewService panics if store is nil.
func NewService(store domain.CounterWriter, opts ...Option) *Service {
	if store == nil {
		panic(errNilStore)
	}
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handle increments the room counter for "message" events and ignores every
// other type. Only a failing store produces an error; unknown types do not.
func (s *Service) Handle(ctx context.Context, evt events.AnalyticsEvent) (Result, error) {
	if s.debug {
		log.Printf("Intake: received event type=%q room=%q timestamp=%d", evt.EventType, evt.RoomID, evt.Timestamp)
	}

	if !evt.Counts() {
		s.observe(evt.EventType, false)
		return Result{}, nil
	}

	count, err := s.store.Increment(ctx, evt.RoomID)
	if err != nil {
		return Result{}, fmt.Errorf("increment room %q: %w", evt.RoomID, err)
	}

	log.Printf("Intake: room %q message count %d", evt.RoomID, count)
	s.observe(evt.EventType, true)
	return Result{Counted: true, Count: count}, nil
}

func (s *Service) observe(eventType string, counted bool) {
	if s.recorder != nil {
		s.recorder.ObserveEvent(eventType, counted)
	}
}
