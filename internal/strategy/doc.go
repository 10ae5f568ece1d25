// Package strategy defines how the next backend is chosen for a request.
//
// The only strategy is round robin: a shared counter advanced with an atomic
// fetch-and-add, reduced modulo the pool size at read time. Selection never
// takes a lock and never looks at backend state.
package strategy
