// Package http_router assembles the service's HTTP surface on a gorilla/mux
// router.
package http_router

import (
	"net/http"

	"github.com/fllarpy/room-analytics/domain"
	httpinstrumentation "github.com/fllarpy/room-analytics/instrumentation/http"
	"github.com/fllarpy/room-analytics/internal/ports/http_ingest"
	"github.com/fllarpy/room-analytics/internal/ports/http_middleware"
	"github.com/fllarpy/room-analytics/internal/ports/http_reporter"
	"github.com/gorilla/mux"
)

// Deps holds everything the routes need. Metrics may be nil, in which case
// no metrics route is mounted.
type Deps struct {
	Intake      http_ingest.EventHandler
	Store       domain.CounterReader
	Metrics     http.Handler
	MetricsPath string
	// Tracing wraps every route in a server span.
	Tracing bool
	// AccessLog logs one line per request.
	AccessLog bool
}

type health struct {
	Status string `json:"status"`
}

// New returns the routed handler. Unknown paths get 404 and known paths with
// the wrong method get 405.
func New(deps Deps) http.Handler {
	router := mux.NewRouter()

	handle := func(method, path string, h http.Handler) {
		h = http_middleware.Recover(h)
		if deps.Tracing {
			h = httpinstrumentation.NewMiddleware(h, method+" "+path)
		}
		router.Handle(path, h).Methods(method)
	}

	handle(http.MethodPost, "/ingest", http_ingest.NewHandler(deps.Intake))
	handle(http.MethodGet, "/health", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http_ingest.WriteJSON(w, http.StatusOK, health{Status: "ok"})
	}))
	handle(http.MethodGet, "/stats/rooms", http_reporter.NewRoomsHandler(deps.Store))
	handle(http.MethodGet, "/stats/rooms/{"+http_reporter.RoomIDVar+"}", http_reporter.NewRoomHandler(deps.Store))

	if deps.Metrics != nil {
		// Scrapes are not traced.
		router.Handle(deps.MetricsPath, deps.Metrics).Methods(http.MethodGet)
	}

	if deps.AccessLog {
		router.Use(http_middleware.AccessLog)
	}
	return router
}
