package http_ingest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fllarpy/room-analytics/domain/events"
	"github.com/fllarpy/room-analytics/infrastructure/storage/inmemory"
	"github.com/fllarpy/room-analytics/internal/application/intake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingHandler struct{}

func (failingHandler) Handle(context.Context, events.AnalyticsEvent) (intake.Result, error) {
	return intake.Result{}, errors.New("store closed")
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return body
}

func TestIngestHandler(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantCount  uint64
	}{
		{"message", `{"event_type":"message","room_id":"room42","timestamp":1000}`, http.StatusOK, 1},
		{"user join", `{"event_type":"user_join","room_id":"room42","timestamp":1001}`, http.StatusOK, 0},
		{"unknown fields ignored", `{"event_type":"message","room_id":"room42","timestamp":1,"extra":true}`, http.StatusOK, 1},
		{"case sensitive type", `{"event_type":"Message","room_id":"room42","timestamp":1}`, http.StatusOK, 0},
		{"malformed json", `{"event_type":`, http.StatusBadRequest, 0},
		{"wrong field type", `{"event_type":"message","room_id":42,"timestamp":1}`, http.StatusBadRequest, 0},
		{"missing timestamp", `{"event_type":"message","room_id":"room42"}`, http.StatusBadRequest, 0},
		{"null room", `{"event_type":"message","room_id":null,"timestamp":1}`, http.StatusBadRequest, 0},
		{"empty body", ``, http.StatusBadRequest, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := inmemory.NewStore()
			h := NewHandler(intake.NewService(store))

			rr := post(t, h, tc.body)

			require.Equal(t, tc.wantStatus, rr.Code)
			assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
			body := decodeBody(t, rr)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, map[string]string{"status": "recorded"}, body)
			} else {
				assert.NotEmpty(t, body["error"])
			}

			n, _ := store.Count(context.Background(), "room42")
			assert.Equal(t, tc.wantCount, n)
		})
	}
}

func TestIngestHandler_PayloadTooLarge(t *testing.T) {
	store := inmemory.NewStore()
	h := NewHandler(intake.NewService(store))

	padding := strings.Repeat("x", events.MaxPayloadBytes)
	rr := post(t, h, `{"event_type":"message","room_id":"`+padding+`","timestamp":1}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	snapshot, _ := store.Snapshot(context.Background())
	assert.Empty(t, snapshot)
}

func TestIngestHandler_StoreFailure(t *testing.T) {
	rr := post(t, NewHandler(failingHandler{}), `{"event_type":"message","room_id":"a","timestamp":1}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, map[string]string{"status": "error"}, decodeBody(t, rr))
}

func TestIngestHandler_NotIdempotent(t *testing.T) {
	store := inmemory.NewStore()
	h := NewHandler(intake.NewService(store))
	payload := `{"event_type":"message","room_id":"room42","timestamp":1000}`

	post(t, h, payload)
	post(t, h, payload)

	n, _ := store.Count(context.Background(), "room42")
	assert.Equal(t, uint64(2), n)
}
