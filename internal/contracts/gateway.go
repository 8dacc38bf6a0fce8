// Package contracts holds the interfaces the API surface depends on, so
// handlers can be tested against fakes instead of live subprocesses.
package contracts

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgate/toolgate/internal/health"
	"github.com/toolgate/toolgate/internal/pool"
)

// ToolDispatcher forwards namespaced tool calls to downstream servers.
type ToolDispatcher interface {
	// Dispatch routes a namespaced address and forwards the opaque payload.
	Dispatch(ctx context.Context, address string, args map[string]any) (*mcp.CallToolResult, error)

	// ListTools lists the tools advertised by one registered server.
	ListTools(ctx context.Context, server string) (*mcp.ListToolsResult, error)
}

// HealthProber runs liveness probes against configured servers.
type HealthProber interface {
	// Probe checks a single server, bounded by timeout.
	Probe(ctx context.Context, name string, timeout time.Duration) health.Record

	// ProbeAll checks every configured server concurrently.
	ProbeAll(ctx context.Context, timeoutPerServer time.Duration) health.CheckResult
}

// StatusReporter exposes the pool's read-only status snapshot.
type StatusReporter interface {
	Snapshot() map[string]pool.ServerStatus
}

// ServerLister enumerates the configured server names.
type ServerLister interface {
	Names() []string
}
