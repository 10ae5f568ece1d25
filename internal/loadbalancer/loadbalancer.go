package loadbalancer

import (
	"errors"

	"github.com/proxyangel/load-balancer/internal/backend"
	"github.com/proxyangel/load-balancer/internal/strategy"
)

// ErrNoBackends is returned when a pool is created without backends.
var ErrNoBackends = errors.New("no backends configured")

// LoadBalancer is a fixed, ordered pool of backends. Membership never
// changes after New returns.
type LoadBalancer struct {
	strategy strategy.Strategy
	backends []*backend.Backend
}

func NewLoadBalancer(strategy strategy.Strategy, backends []*backend.Backend) (*LoadBalancer, error) {
	if len(backends) == 0 {
		return nil, ErrNoBackends
	}

	pool := make([]*backend.Backend, len(backends))
	copy(pool, backends)

	return &LoadBalancer{
		strategy: strategy,
		backends: pool,
	}, nil
}

// Next returns the backend for the next request.
func (lb *LoadBalancer) Next() *backend.Backend {
	return lb.strategy.SelectBackend(lb.backends)
}

func (lb *LoadBalancer) Backends() []*backend.Backend {
	out := make([]*backend.Backend, len(lb.backends))
	copy(out, lb.backends)
	return out
}

func (lb *LoadBalancer) Size() int {
	return len(lb.backends)
}
