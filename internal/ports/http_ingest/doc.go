// Package http_ingest provides the HTTP handler that accepts analytics events.
// It decodes the request body, hands the event to the intake service and
// answers with a fixed acknowledgment whether or not a counter changed.
package http_ingest
