package strategy

import (
	"github.com/proxyangel/load-balancer/internal/backend"
)

type Strategy interface {
	SelectBackend(backends []*backend.Backend) *backend.Backend
}
