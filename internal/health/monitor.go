package health

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/errors"
	"github.com/toolgate/toolgate/internal/pool"
)

// DefaultProbeTimeout bounds a single liveness probe when the caller does
// not specify its own.
const DefaultProbeTimeout = 5 * time.Second

// Monitor runs liveness probes against the configured servers through the
// connection pool.
type Monitor struct {
	logger   hclog.Logger
	registry *config.Registry
	pool     *pool.Pool
}

// NewMonitor creates a health monitor over the given registry and pool.
func NewMonitor(logger hclog.Logger, registry *config.Registry, p *pool.Pool) *Monitor {
	return &Monitor{
		logger:   logger.Named("health"),
		registry: registry,
		pool:     p,
	}
}

// Probe checks one server: acquire a connection, then list its tools. The
// whole sequence is hard-bounded by timeout. Probe never returns an error;
// failures are folded into the record's status and lastError. On timeout
// the underlying establishment is abandoned, not killed, so a spawned
// process can still be reused by a later acquire.
func (m *Monitor) Probe(ctx context.Context, name string, timeout time.Duration) Record {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := m.liveness(probeCtx, name)
	if err != nil && probeCtx.Err() == context.DeadlineExceeded {
		err = fmt.Errorf("%w: server '%s' did not respond within %s", errors.ErrHealthCheckTimeout, name, timeout)
	}

	return m.record(name, err, time.Since(start))
}

// liveness is the probe body: acquire and introspect. Every server must
// support the tools/list call, which makes it the liveness signal.
func (m *Monitor) liveness(ctx context.Context, name string) error {
	if _, ok := m.registry.Lookup(name); !ok {
		return fmt.Errorf("%w: '%s'", errors.ErrUnknownServer, name)
	}

	conn, err := m.pool.Acquire(ctx, name)
	if err != nil {
		return err
	}

	result, err := conn.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("%w: '%s': %w", errors.ErrToolListFailed, name, err)
	}
	if result == nil || len(result.Tools) == 0 {
		return fmt.Errorf("%w: '%s': server reported no tools", errors.ErrToolListFailed, name)
	}
	return nil
}

func (m *Monitor) record(name string, err error, elapsed time.Duration) Record {
	status := m.pool.Snapshot()[name]

	rec := Record{
		Server:          name,
		Status:          classify(err),
		Connected:       status.Connected,
		CallCount:       status.CallCount,
		CheckDurationMs: elapsed.Milliseconds(),
	}
	if err != nil {
		rec.LastError = err.Error()
	}
	return rec
}

// ProbeAll probes every configured server concurrently, one goroutine per
// server, and waits for all of them to settle. Individual failures never
// short-circuit the pass; the aggregate always covers every server.
func (m *Monitor) ProbeAll(ctx context.Context, timeoutPerServer time.Duration) CheckResult {
	names := m.registry.Names()
	records := make([]Record, len(names))

	var wg sync.WaitGroup
	wg.Add(len(names))
	for i, name := range names {
		go func(i int, name string) {
			defer wg.Done()
			records[i] = m.Probe(ctx, name, timeoutPerServer)
		}(i, name)
	}
	wg.Wait()

	return CheckResult{
		Records:   records,
		Summary:   summarize(records),
		Timestamp: time.Now().UTC(),
	}
}

// EagerInit connects and verifies every server configured as non-lazy, in
// two phases: spawn all of them concurrently, then run the liveness check
// for the ones that connected. Failures in either phase are logged with a
// remediation hint and never abort startup; the gateway stays usable for
// the servers that succeeded.
func (m *Monitor) EagerInit(ctx context.Context, timeoutPerServer time.Duration) {
	names := m.registry.EagerNames()
	if len(names) == 0 {
		m.logger.Debug("no eager servers configured")
		return
	}
	if timeoutPerServer <= 0 {
		timeoutPerServer = DefaultProbeTimeout
	}

	m.logger.Info("eagerly connecting servers", "count", len(names))

	// Phase 1: spawn.
	spawned := make([]bool, len(names))
	var wg sync.WaitGroup
	wg.Add(len(names))
	for i, name := range names {
		go func(i int, name string) {
			defer wg.Done()
			spawnCtx, cancel := context.WithTimeout(ctx, timeoutPerServer)
			defer cancel()
			if _, err := m.pool.Acquire(spawnCtx, name); err != nil {
				cfg, _ := m.registry.Lookup(name)
				m.logger.Error(
					"eager connect failed",
					"name", name,
					"error", err,
					"remediation", fmt.Sprintf("check the launch command ('%s') and try running it manually", cfg.CommandLine()),
				)
				return
			}
			spawned[i] = true
		}(i, name)
	}
	wg.Wait()

	// Phase 2: verify the ones that connected, reusing the open connection.
	for i, name := range names {
		if !spawned[i] {
			continue
		}
		rec := m.Probe(ctx, name, timeoutPerServer)
		switch rec.Status {
		case StatusHealthy:
			m.logger.Info("eager server verified", "name", name)
		case StatusDegraded:
			m.logger.Warn(
				"eager server connected but degraded",
				"name", name,
				"error", rec.LastError,
				"remediation", "the server appears to need credentials; check its env configuration",
			)
		default:
			m.logger.Error(
				"eager server failed verification",
				"name", name,
				"error", rec.LastError,
				"remediation", "the server connected but did not answer introspection; check its logs",
			)
		}
	}
}
