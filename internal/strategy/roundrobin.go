package strategy

import (
	"sync/atomic"

	"github.com/proxyangel/load-balancer/internal/backend"
)

// RoundRobin hands out backends in cyclic order. Concurrent callers always
// receive distinct tickets, so every full cycle of len(backends) tickets
// covers each backend exactly once.
type RoundRobin struct {
	current uint64
}

func NewRoundRobinStrategy() *RoundRobin {
	return &RoundRobin{}
}

// Pick advances the counter once and returns the ticket it claimed together
// with the index that ticket maps to in a pool of size n. n must be positive.
func (rb *RoundRobin) Pick(n int) (ticket uint64, index int) {
	ticket = atomic.AddUint64(&rb.current, 1) - 1

	return ticket, int(ticket % uint64(n))
}

func (rb *RoundRobin) SelectBackend(backends []*backend.Backend) *backend.Backend {
	if len(backends) == 0 {
		return nil
	}

	_, index := rb.Pick(len(backends))

	return backends[index]
}

// Count returns how many tickets have been handed out.
func (rb *RoundRobin) Count() uint64 {
	return atomic.LoadUint64(&rb.current)
}
