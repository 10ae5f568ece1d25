package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/proxyangel/load-balancer/internal/backend"
	"github.com/proxyangel/load-balancer/internal/upstream"
	"github.com/proxyangel/load-balancer/pkg/logger"
)

// Balancer returns the backend for the next request.
type Balancer interface {
	Next() *backend.Backend
}

// Forwarder sends a buffered request to a backend.
type Forwarder interface {
	Do(ctx context.Context, req *upstream.Request) (*upstream.Response, error)
	Timeout() time.Duration
}

type LoadBalancerHandler struct {
	logger    *slog.Logger
	balancer  Balancer
	forwarder Forwarder
}

func NewLoadBalancerHandler(logger *slog.Logger, balancer Balancer, forwarder Forwarder) *LoadBalancerHandler {
	return &LoadBalancerHandler{
		logger:    logger,
		balancer:  balancer,
		forwarder: forwarder,
	}
}

func (lb *LoadBalancerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := lb.logger.With(slog.String("request_id", logger.RequestID()))

	log.Debug("Received request",
		slog.String("from", r.RemoteAddr),
		slog.String("method", r.Method),
		slog.String("target", requestTarget(r)),
		slog.String("proto", r.Proto),
		slog.String("host", r.Host))

	nextServer := lb.balancer.Next()

	resp, err := lb.forward(r, nextServer, log)
	if err != nil {
		log.Error("Forwarding failed",
			slog.String("backend", nextServer.String()),
			slog.String("kind", string(upstream.Classify(err))),
			logger.Err(err))
		writeError(w, err)
		return
	}

	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	} else {
		w.Header()["Content-Type"] = nil
	}
	if resp.ContentEncoding != "" {
		w.Header().Set("Content-Encoding", resp.ContentEncoding)
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := w.Write(resp.Body); err != nil {
		log.Warn("Writing response to client failed",
			slog.String("backend", nextServer.String()),
			logger.Err(err))
	}
}

func (lb *LoadBalancerHandler) forward(r *http.Request, nextServer *backend.Backend, log *slog.Logger) (*upstream.Response, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read request body")
	}

	out := &upstream.Request{
		Method: r.Method,
		URL:    nextServer.Target(requestTarget(r)),
		Host:   r.Host,
		Header: r.Header,
		Body:   body,
	}

	log.Info("Forwarding to backend",
		slog.String("method", out.Method),
		slog.String("url", out.URL))

	// The client going away does not cancel the backend call; only the
	// forwarder timeout does.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), lb.forwarder.Timeout())
	defer cancel()

	return lb.forwarder.Do(ctx, out)
}

// requestTarget returns the inbound path and query exactly as received.
func requestTarget(r *http.Request) string {
	if r.RequestURI != "" {
		return r.RequestURI
	}
	return r.URL.RequestURI()
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
