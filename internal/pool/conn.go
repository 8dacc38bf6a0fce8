package pool

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgate/toolgate/internal/config"
)

// DefaultConnectTimeout bounds the spawn-and-handshake sequence for one server.
const DefaultConnectTimeout = 30 * time.Second

// Conn is an established duplex connection to one MCP server subprocess.
// The gateway treats call payloads as opaque; ListTools exists because it is
// the introspection call every server must support.
type Conn interface {
	// ListTools lists the tools the server advertises.
	ListTools(ctx context.Context) (*mcp.ListToolsResult, error)

	// CallTool forwards a tool call with opaque arguments.
	CallTool(ctx context.Context, tool string, args map[string]any) (*mcp.CallToolResult, error)

	// Close terminates the connection and the underlying subprocess.
	Close() error
}

// DialFunc spawns a server process and completes its protocol handshake.
// onExit is invoked at most once, when the subprocess's stderr stream ends,
// which means the process has exited. Implementations may ignore it.
type DialFunc func(ctx context.Context, cfg config.ServerConfig, onExit func(error)) (Conn, error)

// StdioDialer returns the production DialFunc: it launches the configured
// command with the merged environment and wires an MCP stdio client to it.
func StdioDialer(logger hclog.Logger, connectTimeout time.Duration) DialFunc {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}

	return func(ctx context.Context, cfg config.ServerConfig, onExit func(error)) (Conn, error) {
		logger.Info(
			"starting MCP server",
			"name", cfg.Name,
			"command", cfg.Command,
			"args", cfg.Args,
		)

		stdioClient, err := client.NewStdioMCPClient(cfg.Command, cfg.Environ(), cfg.Args...)
		if err != nil {
			return nil, fmt.Errorf("error starting MCP server '%s': %w", cfg.Name, err)
		}

		stderr, ok := client.GetStderr(stdioClient)
		if ok {
			go pipeStderr(logger, cfg.Name, stderr, onExit)
		}

		initCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		initResult, err := stdioClient.Initialize(initCtx, mcp.InitializeRequest{
			Params: mcp.InitializeParams{
				ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
				ClientInfo:      mcp.Implementation{Name: "toolgate", Version: "0.1.0"},
			},
		})
		if err != nil {
			_ = stdioClient.Close()
			return nil, fmt.Errorf("error initializing MCP server '%s': %w", cfg.Name, err)
		}

		logger.Info(
			"MCP server initialized",
			"name", cfg.Name,
			"server", fmt.Sprintf("%s@%s", initResult.ServerInfo.Name, initResult.ServerInfo.Version),
		)

		return &stdioConn{client: stdioClient}, nil
	}
}

// pipeStderr forwards the subprocess's stderr to the logger line by line.
// When the stream ends the process has exited, which is reported via onExit.
func pipeStderr(logger hclog.Logger, name string, stderr io.Reader, onExit func(error)) {
	reader := bufio.NewReader(stderr)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			logger.Debug("server stderr", "name", name, "line", line)
		}
		if err != nil {
			if err != io.EOF {
				logger.Error("error reading server stderr", "name", name, "error", err)
			}
			if onExit != nil {
				onExit(err)
			}
			return
		}
	}
}

type stdioConn struct {
	client *client.Client
}

func (c *stdioConn) ListTools(ctx context.Context) (*mcp.ListToolsResult, error) {
	return c.client.ListTools(ctx, mcp.ListToolsRequest{})
}

func (c *stdioConn) CallTool(ctx context.Context, tool string, args map[string]any) (*mcp.CallToolResult, error) {
	return c.client.CallTool(ctx, mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      tool,
			Arguments: args,
		},
	})
}

func (c *stdioConn) Close() error {
	return c.client.Close()
}
