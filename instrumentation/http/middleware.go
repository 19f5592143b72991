package http

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewMiddleware wraps handler in a server span named after route, e.g.
// "POST /ingest". Naming by route template keeps span names bounded when the
// path carries a room id.
func NewMiddleware(handler http.Handler, route string, opts ...otelhttp.Option) http.Handler {
	opts = append([]otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(string, *http.Request) string { return route }),
	}, opts...)
	return otelhttp.NewHandler(handler, route, opts...)
}
