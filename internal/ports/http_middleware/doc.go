// Package http_middleware provides HTTP middleware shared by every route.
//
// Recover turns a panicking handler into a 500 JSON response. Counter store
// locks are released with defer, so a recovered panic leaves the store
// consistent and later requests keep working.
package http_middleware
