package exporter

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Both the legacy and the current semconv status code keys are accepted,
// depending on which convention otelhttp emits.
const (
	legacyStatusCodeKey = "http.status_code"
	statusCodeKey       = "http.response.status_code"
)

// RequestRecorder receives one observation per finished server span.
// telemetry.Metrics is the production implementation.
type RequestRecorder interface {
	ObserveRequest(route string, duration time.Duration, statusCode int)
}

// SpanExporter turns finished spans into request metrics and log lines
// instead of shipping them to a collector.
type SpanExporter struct {
	recorder RequestRecorder
}

var _ sdktrace.SpanExporter = (*SpanExporter)(nil)

func NewSpanExporter(recorder RequestRecorder) *SpanExporter {
	log.Println("Initializing span exporter.")
	return &SpanExporter{recorder: recorder}
}

func (e *SpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		switch span.SpanKind() {
		case trace.SpanKindServer:
			e.processServerSpan(span)
		case trace.SpanKindClient:
			e.processClientSpan(span)
		}
	}
	return nil
}

func (e *SpanExporter) Shutdown(ctx context.Context) error {
	log.Println("Span exporter shut down.")
	return nil
}

func (e *SpanExporter) processServerSpan(span sdktrace.ReadOnlySpan) {
	duration := span.EndTime().Sub(span.StartTime())
	route := span.Name()

	var statusCode int
	for _, attr := range span.Attributes() {
		switch string(attr.Key) {
		case legacyStatusCodeKey, statusCodeKey:
			statusCode = int(attr.Value.AsInt64())
		}
	}

	if e.recorder != nil {
		e.recorder.ObserveRequest(route, duration, statusCode)
	}

	if statusCode >= 500 || span.Status().Code == codes.Error {
		log.Printf("SpanExporter: server span %s failed, Duration: %s, Status: %d", route, duration, statusCode)
	}
}

// processClientSpan only reports failed database calls; successful ones are
// already visible through the request latency of their parent.
func (e *SpanExporter) processClientSpan(span sdktrace.ReadOnlySpan) {
	if span.Status().Code != codes.Error {
		return
	}
	for _, attr := range span.Attributes() {
		if attr.Key == semconv.DBSystemKey {
			log.Printf("SpanExporter: db span %s failed: %s", span.Name(), span.Status().Description)
			return
		}
	}
	log.Printf("SpanExporter: client span %s failed", span.Name())
}
