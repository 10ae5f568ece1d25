// Package backend describes the upstream servers requests are forwarded to.
// A Backend is an immutable base URL; it carries no health or load state.
package backend
