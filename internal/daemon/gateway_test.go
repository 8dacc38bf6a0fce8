package daemon

import (
	"context"
	"testing"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/health"
	"github.com/toolgate/toolgate/internal/pool"
)

type gatewayConn struct{}

func (gatewayConn) ListTools(_ context.Context) (*mcp.ListToolsResult, error) {
	return &mcp.ListToolsResult{Tools: []mcp.Tool{{Name: "ping"}}}, nil
}

func (gatewayConn) CallTool(_ context.Context, _ string, _ map[string]any) (*mcp.CallToolResult, error) {
	return &mcp.CallToolResult{}, nil
}

func (gatewayConn) Close() error { return nil }

func fakeDial(_ context.Context, _ config.ServerConfig, _ func(error)) (pool.Conn, error) {
	return gatewayConn{}, nil
}

func gatewayRegistry(t *testing.T) *config.Registry {
	t.Helper()

	eager := false
	reg, err := config.NewRegistry(
		config.ServerConfig{Name: "startup", Command: "fake", Lazy: &eager},
		config.ServerConfig{Name: "ondemand", Command: "fake"},
		config.ServerConfig{Name: "other", Command: "fake"},
	)
	require.NoError(t, err)
	return reg
}

func TestNewGateway_Validation(t *testing.T) {
	t.Parallel()

	reg := gatewayRegistry(t)

	_, err := NewGateway(nil, reg, "localhost:8090")
	require.Error(t, err)

	_, err = NewGateway(hclog.NewNullLogger(), nil, "localhost:8090")
	require.Error(t, err)

	_, err = NewGateway(hclog.NewNullLogger(), reg, "not-an-address")
	require.Error(t, err)

	_, err = NewGateway(hclog.NewNullLogger(), reg, "localhost:8090", WithConnectTimeout(-1))
	require.Error(t, err)
}

func TestGateway_EagerInitConnectsOnlyNonLazyServers(t *testing.T) {
	t.Parallel()

	g, err := NewGateway(
		hclog.NewNullLogger(),
		gatewayRegistry(t),
		"127.0.0.1:0",
		WithDialer(fakeDial),
		WithHealthCheckInterval(time.Hour),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- g.StartAndManage(ctx)
	}()

	require.Eventually(t, func() bool {
		return g.Pool().Connected("startup")
	}, time.Second, time.Millisecond)

	require.False(t, g.Pool().Connected("ondemand"))
	require.False(t, g.Pool().Connected("other"))

	// First use connects a lazy server.
	_, err = g.Pool().Acquire(ctx, "ondemand")
	require.NoError(t, err)
	require.True(t, g.Pool().Connected("ondemand"))
	require.False(t, g.Pool().Connected("other"))

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestGateway_CheckOnceProbesOnlyConnectedServers(t *testing.T) {
	t.Parallel()

	g, err := NewGateway(
		hclog.NewNullLogger(),
		gatewayRegistry(t),
		"127.0.0.1:0",
		WithDialer(fakeDial),
	)
	require.NoError(t, err)

	_, err = g.Pool().Acquire(context.Background(), "startup")
	require.NoError(t, err)

	g.checkOnce(context.Background())

	require.False(t, g.tracker.LastChecked("startup").IsZero())
	require.True(t, g.tracker.LastChecked("ondemand").IsZero(), "unconnected servers must not be probed")

	rec, ok := g.tracker.Status("startup")
	require.True(t, ok)
	require.Equal(t, health.StatusHealthy, rec.Status)
}

func TestGateway_ShutdownIsIdempotent(t *testing.T) {
	t.Parallel()

	g, err := NewGateway(
		hclog.NewNullLogger(),
		gatewayRegistry(t),
		"127.0.0.1:0",
		WithDialer(fakeDial),
	)
	require.NoError(t, err)

	_, err = g.Pool().Acquire(context.Background(), "startup")
	require.NoError(t, err)

	g.Shutdown()
	g.Shutdown()

	_, err = g.Pool().Acquire(context.Background(), "startup")
	require.Error(t, err)
}
