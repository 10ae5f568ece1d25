// Package handler implements the forwarding pipeline: pick a backend, relay
// the buffered request to it and mirror its response, turning any failure
// into a 500.
package handler
