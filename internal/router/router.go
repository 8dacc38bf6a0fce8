// Package router resolves namespaced tool addresses and forwards calls to
// pooled server connections. It is the only path that performs payload
// forwarding, and it interprets nothing about the payload itself.
package router

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/errors"
	"github.com/toolgate/toolgate/internal/pool"
)

// Namespace is the fixed prefix of every tool address in this deployment.
const Namespace = "mcp"

const addressPattern = Namespace + ":<server>:<tool>"

// Address identifies one tool on one server. Ephemeral; parsed per call.
type Address struct {
	Server string
	Tool   string
}

// String renders the address in its namespaced wire form.
func (a Address) String() string {
	return FormatAddress(a.Server, a.Tool)
}

// FormatAddress builds the namespaced form for a (server, tool) pair.
func FormatAddress(server, tool string) string {
	return fmt.Sprintf("%s:%s:%s", Namespace, server, tool)
}

// ParseAddress parses the three-part namespaced form. There are no partial
// matches: anything that is not exactly Namespace:server:tool with non-empty
// parts is rejected.
func ParseAddress(address string) (Address, error) {
	parts := strings.Split(address, ":")
	if len(parts) != 3 || parts[0] != Namespace || parts[1] == "" || parts[2] == "" {
		return Address{}, fmt.Errorf(
			"%w: '%s' (expected format: %s)",
			errors.ErrInvalidAddress, address, addressPattern,
		)
	}
	return Address{Server: parts[1], Tool: parts[2]}, nil
}

// Router dispatches namespaced tool calls through the connection pool.
type Router struct {
	logger   hclog.Logger
	registry *config.Registry
	pool     *pool.Pool
}

// New creates a router over the given registry and pool.
func New(logger hclog.Logger, registry *config.Registry, p *pool.Pool) *Router {
	return &Router{
		logger:   logger.Named("router"),
		registry: registry,
		pool:     p,
	}
}

// Route parses an address and validates that its server is registered.
// Unknown servers produce an error enumerating the valid names.
func (r *Router) Route(address string) (Address, error) {
	addr, err := ParseAddress(address)
	if err != nil {
		return Address{}, err
	}
	if _, ok := r.registry.Lookup(addr.Server); !ok {
		return Address{}, fmt.Errorf(
			"%w: '%s' (valid servers: %s)",
			errors.ErrUnknownServer, addr.Server, strings.Join(r.registry.Names(), ", "),
		)
	}
	return addr, nil
}

// Dispatch routes the address, acquires the server's connection and
// forwards the call. The payload is opaque to the gateway. There is no
// per-call timeout here; deadlines are owned by the caller's context.
func (r *Router) Dispatch(ctx context.Context, address string, args map[string]any) (*mcp.CallToolResult, error) {
	addr, err := r.Route(address)
	if err != nil {
		return nil, err
	}

	conn, err := r.pool.Acquire(ctx, addr.Server)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("dispatching tool call", "server", addr.Server, "tool", addr.Tool)

	result, err := conn.CallTool(ctx, addr.Tool, args)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrToolCallFailed, addr, err)
	}

	r.pool.RecordCall(addr.Server)

	return result, nil
}

// ListTools returns the tools advertised by one registered server,
// establishing its connection if needed.
func (r *Router) ListTools(ctx context.Context, server string) (*mcp.ListToolsResult, error) {
	if _, ok := r.registry.Lookup(server); !ok {
		return nil, fmt.Errorf(
			"%w: '%s' (valid servers: %s)",
			errors.ErrUnknownServer, server, strings.Join(r.registry.Names(), ", "),
		)
	}

	conn, err := r.pool.Acquire(ctx, server)
	if err != nil {
		return nil, err
	}

	result, err := conn.ListTools(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: '%s': %w", errors.ErrToolListFailed, server, err)
	}
	return result, nil
}
