package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fllarpy/room-analytics/domain/events"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "room_analytics"

// Metrics holds the Prometheus collectors of the service.
type Metrics struct {
	registry *prometheus.Registry

	EventsIngested  *prometheus.CounterVec
	RoomIncrements  prometheus.Counter
	RoomsTracked    prometheus.Gauge
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors, plus the Go runtime and process
// collectors, on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		EventsIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_ingested_total",
			Help:      "Decoded events by kind (message, user_join, other).",
		}, []string{"kind"}),
		RoomIncrements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_increments_total",
			Help:      "Room counter increments applied.",
		}),
		RoomsTracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_tracked",
			Help:      "Distinct rooms with a counter, sampled periodically.",
		}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Server request latency by route and status code.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.EventsIngested,
		m.RoomIncrements,
		m.RoomsTracked,
		m.RequestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// eventKind keeps the label set bounded; event types are free text.
func eventKind(eventType string) string {
	switch eventType {
	case events.TypeMessage, events.TypeUserJoin:
		return eventType
	default:
		return "other"
	}
}

// ObserveEvent records one decoded event and whether it moved a counter.
func (m *Metrics) ObserveEvent(eventType string, counted bool) {
	m.EventsIngested.WithLabelValues(eventKind(eventType)).Inc()
	if counted {
		m.RoomIncrements.Inc()
	}
}

// ObserveRequest records one completed server request.
func (m *Metrics) ObserveRequest(route string, duration time.Duration, statusCode int) {
	m.RequestDuration.WithLabelValues(route, strconv.Itoa(statusCode)).Observe(duration.Seconds())
}

func (m *Metrics) SetRoomsTracked(n int) {
	m.RoomsTracked.Set(float64(n))
}
