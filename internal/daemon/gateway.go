// Package daemon assembles the gateway: registry, connection pool, router,
// health monitor and API server, and manages their lifecycle from eager
// startup through graceful shutdown.
package daemon

import (
	"context"
	stdErrors "errors"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/toolgate/toolgate/internal/api"
	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/health"
	"github.com/toolgate/toolgate/internal/pool"
	"github.com/toolgate/toolgate/internal/router"
)

// Gateway owns one instance of every component. Nothing here is a process
// singleton; multiple independent gateways can coexist in one test process.
type Gateway struct {
	logger    hclog.Logger
	registry  *config.Registry
	pool      *pool.Pool
	router    *router.Router
	monitor   *health.Monitor
	tracker   *health.Tracker
	apiServer *APIServer
	opts      Options

	shutdownOnce sync.Once
}

// NewGateway wires the gateway components over the given registry. addr is
// the API bind address.
func NewGateway(logger hclog.Logger, registry *config.Registry, addr string, opt ...Option) (*Gateway, error) {
	if logger == nil || reflect.ValueOf(logger).IsNil() {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if registry == nil {
		return nil, fmt.Errorf("registry cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	logger = logger.Named("gateway")

	dial := opts.Dialer
	if dial == nil {
		dial = pool.StdioDialer(logger, opts.ConnectTimeout)
	}

	p := pool.New(logger, registry, dial)
	rt := router.New(logger, registry, p)
	monitor := health.NewMonitor(logger, registry, p)

	apiServer, err := NewAPIServer(logger, api.Dependencies{
		Dispatcher: rt,
		Prober:     monitor,
		Status:     p,
		Servers:    registry,
	}, addr, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create gateway API server: %w", err)
	}

	return &Gateway{
		logger:    logger,
		registry:  registry,
		pool:      p,
		router:    rt,
		monitor:   monitor,
		tracker:   health.NewTracker(registry.Names()),
		apiServer: apiServer,
		opts:      opts,
	}, nil
}

// Router exposes the dispatch surface for embedding callers.
func (g *Gateway) Router() *router.Router {
	return g.router
}

// Pool exposes the connection pool, mainly for status snapshots.
func (g *Gateway) Pool() *pool.Pool {
	return g.pool
}

// Monitor exposes the health monitor.
func (g *Gateway) Monitor() *health.Monitor {
	return g.monitor
}

// StartAndManage runs the gateway until ctx is canceled: eager servers are
// connected and verified in the background, the API serves requests and the
// health loop probes periodically. On return every live connection has been
// closed exactly once.
func (g *Gateway) StartAndManage(ctx context.Context) error {
	defer g.Shutdown()

	g.logger.Info("starting gateway", "servers", g.registry.Len(), "eager", len(g.registry.EagerNames()))

	// Startup verification must not block the API or lazy servers.
	go g.monitor.EagerInit(ctx, g.opts.EagerInitTimeout)

	ready := make(chan struct{})

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		return g.apiServer.Start(egCtx, ready)
	})
	eg.Go(func() error {
		g.healthCheckLoop(egCtx)
		return nil
	})

	<-ready

	return eg.Wait()
}

// Shutdown closes every open connection exactly once. Safe to call
// multiple times; repeated calls are no-ops.
func (g *Gateway) Shutdown() {
	g.shutdownOnce.Do(func() {
		g.logger.Info("shutting down, closing server connections")
		if err := g.pool.CloseAll(); err != nil {
			g.logger.Error("error during connection shutdown", "error", err)
		}
	})
}

// healthCheckLoop probes all servers on an interval and logs status
// transitions via the tracker. The first pass runs immediately.
func (g *Gateway) healthCheckLoop(ctx context.Context) {
	ticker := time.NewTicker(g.opts.HealthCheckInterval)
	defer ticker.Stop()

	g.checkOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("stopping health checks")
			return
		case <-ticker.C:
			g.checkOnce(ctx)
		}
	}
}

// checkOnce probes the servers that already have a connection. Lazy servers
// stay untouched until their first real use; probing them here would defeat
// lazy establishment.
func (g *Gateway) checkOnce(ctx context.Context) {
	var records []health.Record
	for _, name := range g.registry.Names() {
		if !g.pool.Connected(name) {
			continue
		}
		records = append(records, g.monitor.Probe(ctx, name, g.opts.HealthCheckTimeout))
	}
	if stdErrors.Is(ctx.Err(), context.Canceled) {
		return
	}

	for _, rec := range records {
		changed := g.tracker.Update(rec)
		if !changed {
			continue
		}
		switch rec.Status {
		case health.StatusHealthy:
			g.logger.Info("server healthy", "name", rec.Server)
		case health.StatusDegraded:
			g.logger.Warn("server degraded", "name", rec.Server, "error", rec.LastError)
		default:
			g.logger.Warn("server down", "name", rec.Server, "error", rec.LastError)
		}
	}
}
