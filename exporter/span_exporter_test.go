package exporter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	oteltrace "go.opentelemetry.io/otel/trace"
)

type observation struct {
	route      string
	duration   time.Duration
	statusCode int
}

type mockRecorder struct {
	observations []observation
}

func (m *mockRecorder) ObserveRequest(route string, duration time.Duration, statusCode int) {
	m.observations = append(m.observations, observation{route, duration, statusCode})
}

func TestSpanExporter_ExportSpans(t *testing.T) {
	start := time.Now()

	t.Run("server span is recorded", func(t *testing.T) {
		recorder := &mockRecorder{}
		exporter := NewSpanExporter(recorder)

		span := tracetest.SpanStub{
			Name:       "POST /ingest",
			SpanKind:   oteltrace.SpanKindServer,
			StartTime:  start,
			EndTime:    start.Add(10 * time.Millisecond),
			Attributes: []attribute.KeyValue{attribute.Int("http.status_code", 200)},
		}.Snapshot()
		require.NoError(t, exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{span}))

		require.Len(t, recorder.observations, 1)
		assert.Equal(t, observation{"POST /ingest", 10 * time.Millisecond, 200}, recorder.observations[0])
	})

	t.Run("current semconv status key is recognized", func(t *testing.T) {
		recorder := &mockRecorder{}
		exporter := NewSpanExporter(recorder)

		span := tracetest.SpanStub{
			Name:       "GET /stats/rooms",
			SpanKind:   oteltrace.SpanKindServer,
			StartTime:  start,
			EndTime:    start.Add(time.Millisecond),
			Attributes: []attribute.KeyValue{attribute.Int("http.response.status_code", 500)},
			Status:     sdktrace.Status{Code: codes.Error},
		}.Snapshot()
		_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{span})

		require.Len(t, recorder.observations, 1)
		assert.Equal(t, 500, recorder.observations[0].statusCode)
	})

	t.Run("client span is not recorded as a request", func(t *testing.T) {
		recorder := &mockRecorder{}
		exporter := NewSpanExporter(recorder)

		span := tracetest.SpanStub{
			Name:       "sql.conn.query",
			SpanKind:   oteltrace.SpanKindClient,
			StartTime:  start,
			EndTime:    start.Add(time.Millisecond),
			Attributes: []attribute.KeyValue{semconv.DBSystemSqlite},
			Status:     sdktrace.Status{Code: codes.Error, Description: "no such table"},
		}.Snapshot()
		_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{span})

		assert.Empty(t, recorder.observations)
	})

	t.Run("nil recorder is tolerated", func(t *testing.T) {
		exporter := NewSpanExporter(nil)
		span := tracetest.SpanStub{Name: "GET /health", SpanKind: oteltrace.SpanKindServer}.Snapshot()
		assert.NotPanics(t, func() {
			_ = exporter.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{span})
		})
	})
}
