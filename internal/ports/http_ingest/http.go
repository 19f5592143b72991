package http_ingest

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/fllarpy/room-analytics/domain/events"
	"github.com/fllarpy/room-analytics/internal/application/intake"
)

// EventHandler is satisfied by *intake.Service.
type EventHandler interface {
	Handle(ctx context.Context, evt events.AnalyticsEvent) (intake.Result, error)
}

type ack struct {
	Status string `json:"status"`
}

type errorBody struct {
	Error string `json:"error"`
}

var (
	recorded = ack{Status: "recorded"}
	failed   = ack{Status: "error"}
)

// NewHandler returns the POST /ingest handler.
func NewHandler(svc EventHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, events.MaxPayloadBytes)
		defer body.Close()

		evt, err := events.Decode(body)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				WriteJSON(w, http.StatusRequestEntityTooLarge, errorBody{Error: "payload exceeds 32 KiB"})
				return
			}
			WriteJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
			return
		}

		if _, err := svc.Handle(r.Context(), evt); err != nil {
			log.Printf("Ingest: failed to record event for room %q: %v", evt.RoomID, err)
			WriteJSON(w, http.StatusInternalServerError, failed)
			return
		}

		WriteJSON(w, http.StatusOK, recorded)
	})
}

// WriteJSON writes v with the given status. Encoding errors are logged only,
// since the status line has already been sent.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Ingest: failed to encode response: %v", err)
	}
}
