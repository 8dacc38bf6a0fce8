// Package pool owns one connection per configured MCP server, establishing
// connections lazily and de-duplicating concurrent establishment attempts.
package pool

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/hashicorp/go-hclog"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/errors"
)

// ServerStatus is a point-in-time, read-only view of one pool entry.
type ServerStatus struct {
	Connected bool   `json:"connected"`
	CallCount uint64 `json:"callCount"`
	LastError string `json:"lastError,omitempty"`
}

// Pool holds the per-server connection entries. Entries are created once
// from the registry and live for the process lifetime; only their connection
// state mutates. Safe for concurrent use.
type Pool struct {
	logger  hclog.Logger
	dial    DialFunc
	entries map[string]*entry
	closed  atomic.Bool
}

// entry is the mutable per-server state. The invariant: at any instant an
// entry has no connection and no attempt, or exactly one of a live
// connection or a single in-flight attempt.
type entry struct {
	cfg config.ServerConfig

	mu      sync.Mutex
	conn    Conn
	attempt *connectAttempt
	lastErr error

	calls atomic.Uint64
}

// connectAttempt is the shared deferred result all concurrent acquirers of
// one server wait on. done is closed exactly once, after conn/err settle.
type connectAttempt struct {
	done chan struct{}
	conn Conn
	err  error
}

// New creates a pool with one entry per server in the registry.
func New(logger hclog.Logger, registry *config.Registry, dial DialFunc) *Pool {
	entries := make(map[string]*entry, registry.Len())
	for _, name := range registry.Names() {
		cfg, _ := registry.Lookup(name)
		entries[name] = &entry{cfg: cfg}
	}

	return &Pool{
		logger:  logger.Named("pool"),
		dial:    dial,
		entries: entries,
	}
}

// Acquire returns the live connection for the named server, establishing it
// if necessary. Concurrent callers for a not-yet-connected server share a
// single establishment attempt and all receive its result. ctx bounds only
// this caller's wait; an abandoned wait does not cancel the establishment.
func (p *Pool) Acquire(ctx context.Context, name string) (Conn, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("%w: cannot acquire '%s'", errors.ErrPoolClosed, name)
	}

	e, ok := p.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", errors.ErrUnknownServer, name)
	}

	e.mu.Lock()
	if e.conn != nil {
		conn := e.conn
		e.mu.Unlock()
		return conn, nil
	}
	att := e.attempt
	if att == nil {
		att = &connectAttempt{done: make(chan struct{})}
		e.attempt = att

		// The establishment runs detached from the caller's context so that
		// an abandoned (e.g. timed out) waiter leaves the spawn to complete
		// and be reused by a later acquire.
		go p.establish(e, att)
	}
	e.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-att.done:
	}
	if att.err != nil {
		return nil, att.err
	}
	return att.conn, nil
}

func (p *Pool) establish(e *entry, att *connectAttempt) {
	name := e.cfg.Name
	conn, err := p.dial(context.Background(), e.cfg, func(exitErr error) {
		p.dropExited(name, exitErr)
	})

	e.mu.Lock()
	switch {
	case err != nil:
		att.err = fmt.Errorf("%w: server '%s' (launch command: %s): %w",
			errors.ErrConnectionFailed, name, e.cfg.CommandLine(), err)
		e.lastErr = att.err
		p.logger.Error("failed to establish connection", "name", name, "error", err)
	case p.closed.Load():
		// Shutdown began while the handshake was in flight. Nothing will
		// close this connection later, so fail the waiters cleanly.
		_ = conn.Close()
		att.err = fmt.Errorf("%w: cannot acquire '%s'", errors.ErrPoolClosed, name)
		e.lastErr = att.err
	default:
		att.conn = conn
		e.conn = conn
		e.lastErr = nil
		p.logger.Info("connection established", "name", name)
	}
	e.attempt = nil
	e.mu.Unlock()

	close(att.done)
}

// dropExited clears a server's connection after its subprocess exited, so
// the entry reverts to "no connection" and the next acquire re-establishes.
func (p *Pool) dropExited(name string, exitErr error) {
	e, ok := p.entries[name]
	if !ok {
		return
	}

	e.mu.Lock()
	conn := e.conn
	e.conn = nil
	if conn != nil {
		e.lastErr = fmt.Errorf("%w: server '%s' process exited", errors.ErrConnectionFailed, name)
	}
	e.mu.Unlock()

	if conn != nil {
		p.logger.Warn("server process exited, dropping connection", "name", name, "error", exitErr)
		_ = conn.Close()
	}
}

// RecordCall increments the forwarded-call counter for a server. The count
// is observability data only; nothing branches on it.
func (p *Pool) RecordCall(name string) {
	if e, ok := p.entries[name]; ok {
		e.calls.Add(1)
	}
}

// Connected reports whether a live connection currently exists for name,
// without triggering establishment.
func (p *Pool) Connected(name string) bool {
	e, ok := p.entries[name]
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.conn != nil
}

// Snapshot returns the per-server status map. It performs no I/O and never
// blocks on establishment.
func (p *Pool) Snapshot() map[string]ServerStatus {
	out := make(map[string]ServerStatus, len(p.entries))
	for name, e := range p.entries {
		e.mu.Lock()
		status := ServerStatus{
			Connected: e.conn != nil,
			CallCount: e.calls.Load(),
		}
		if e.lastErr != nil {
			status.LastError = e.lastErr.Error()
		}
		e.mu.Unlock()
		out[name] = status
	}
	return out
}

// CloseAll closes every live connection, best-effort: a failing close is
// logged and the remaining entries are still closed. After CloseAll no new
// establishment is initiated; already in-flight attempts settle naturally.
func (p *Pool) CloseAll() error {
	p.closed.Store(true)

	var failed []string
	for name, e := range p.entries {
		e.mu.Lock()
		conn := e.conn
		e.conn = nil
		e.mu.Unlock()

		if conn == nil {
			continue
		}
		p.logger.Info("closing connection to MCP server", "name", name)
		if err := conn.Close(); err != nil {
			p.logger.Error("error closing connection to MCP server", "name", name, "error", err)
			failed = append(failed, name)
		}
	}

	if len(failed) > 0 {
		return fmt.Errorf("failed to close connection(s): %s", strings.Join(failed, ", "))
	}
	return nil
}
