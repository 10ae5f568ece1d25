// Package httpserver owns the listening side of the proxy: a validated
// address, server timeouts and graceful shutdown.
package httpserver
