// Package http_reporter provides HTTP handlers that expose the current room
// counters as JSON. The handlers only read from the store.
package http_reporter
