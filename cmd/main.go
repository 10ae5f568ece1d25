package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/proxyangel/load-balancer/config"
	"github.com/proxyangel/load-balancer/internal/backend"
	"github.com/proxyangel/load-balancer/internal/handler"
	"github.com/proxyangel/load-balancer/internal/httpserver"
	"github.com/proxyangel/load-balancer/internal/loadbalancer"
	"github.com/proxyangel/load-balancer/internal/strategy"
	"github.com/proxyangel/load-balancer/internal/upstream"
	"github.com/proxyangel/load-balancer/pkg/logger"
)

func main() {
	fs := config.Flags()
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("Load balancer stopped with error", logger.Err(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	backends, err := initializeBackends(cfg, log)
	if err != nil {
		return err
	}

	lb, err := loadbalancer.NewLoadBalancer(strategy.NewRoundRobinStrategy(), backends)
	if err != nil {
		return err
	}

	// The outbound client must exist before the listener accepts traffic.
	client := upstream.New(upstream.Options{
		Timeout:      cfg.ProxyTimeout(),
		MaxIdleConns: cfg.Proxy.MaxIdleConns,
	})
	defer client.Close()

	loadBalancerHandler := handler.NewLoadBalancerHandler(log, lb, client)

	srv, err := httpserver.New(cfg.Server.Address, setupRouter(log, loadBalancerHandler), log,
		httpserver.WithWriteTimeout(cfg.WriteTimeout()))
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ln, err := net.Listen("tcp", srv.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", srv.Addr(), err)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("Load balancer listening",
			slog.String("addr", ln.Addr().String()),
			slog.Int("backends", lb.Size()),
			slog.Duration("timeout", client.Timeout()),
			slog.Duration("write_timeout", srv.WriteTimeout()))
		return srv.Serve(ln)
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Info("Shutting down gracefully...")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

func initializeBackends(cfg *config.Config, log *slog.Logger) ([]*backend.Backend, error) {
	backends := make([]*backend.Backend, 0, len(cfg.Backends))

	for _, serverURL := range cfg.Backends {
		b, err := backend.Parse(serverURL)
		if err != nil {
			return nil, fmt.Errorf("backend %q: %w", serverURL, err)
		}

		log.Info("Registered backend",
			slog.Int("position", len(backends)),
			slog.String("url", b.String()))
		backends = append(backends, b)
	}

	if len(backends) == 0 {
		return nil, loadbalancer.ErrNoBackends
	}

	return backends, nil
}
