// Package loadbalancer holds the fixed backend pool and hands out the next
// backend for each request.
package loadbalancer
