package main

import (
	"log/slog"
	"net/http"

	"github.com/proxyangel/load-balancer/internal/handler"
)

// setupRouter sends every path to the forwarding pipeline; the proxy exposes
// no endpoints of its own.
func setupRouter(log *slog.Logger, loadBalancerHandler *handler.LoadBalancerHandler) http.Handler {
	return handler.Recover(log, loadBalancerHandler)
}
