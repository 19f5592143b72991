package http_reporter

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/fllarpy/room-analytics/domain"
	"github.com/gorilla/mux"
)

// RoomIDVar is the route variable NewRoomHandler reads the room from.
const RoomIDVar = "room_id"

type roomCount struct {
	RoomID string `json:"room_id"`
	Count  uint64 `json:"count"`
}

// NewRoomsHandler serves a snapshot of every room counter.
func NewRoomsHandler(store domain.CounterReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot, err := store.Snapshot(r.Context())
		if err != nil {
			log.Printf("Reporter: snapshot failed: %v", err)
			http.Error(w, "Failed to read room counters", http.StatusInternalServerError)
			return
		}
		writeJSON(w, snapshot)
	})
}

// NewRoomHandler serves the counter of the room named by the {room_id}
// route variable. Unseen rooms report 0.
func NewRoomHandler(store domain.CounterReader) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		roomID := mux.Vars(r)[RoomIDVar]

		count, err := store.Count(r.Context(), roomID)
		if err != nil {
			log.Printf("Reporter: count for room %q failed: %v", roomID, err)
			http.Error(w, "Failed to read room counter", http.StatusInternalServerError)
			return
		}
		writeJSON(w, roomCount{RoomID: roomID, Count: count})
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode room counters to JSON", http.StatusInternalServerError)
	}
}
