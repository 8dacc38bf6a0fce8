package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/toolgate/toolgate/internal/router"
)

// ServersResponse represents the wrapped API response for a list of servers.
type ServersResponse struct {
	Body []string
}

// ServerToolsRequest represents the incoming API request for listing the tools of a server.
type ServerToolsRequest struct {
	Name string `doc:"Name of the server to lookup tools for" example:"time" path:"name"`
}

// ToolsResponse represents the wrapped API response for a server's tools.
type ToolsResponse struct {
	Body struct {
		Tools []mcp.Tool `doc:"Tools advertised by the server" json:"tools"`
	}
}

// ToolCallRequest represents the incoming API request to call a tool on a server.
type ToolCallRequest struct {
	Server string         `doc:"Name of the server"       example:"time"             path:"server"`
	Tool   string         `doc:"Name of the tool to call" example:"get_current_time" path:"tool"`
	Body   map[string]any `doc:"Arguments for the tool, forwarded verbatim"`
}

// ToolCallResponse represents the wrapped, unmodified downstream result.
type ToolCallResponse struct {
	Body *mcp.CallToolResult
}

// RegisterServerRoutes sets up server listing and tool dispatch endpoints.
func RegisterServerRoutes(routerAPI huma.API, deps Dependencies, apiPathPrefix string) {
	serversAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Servers"}

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listServers",
			Method:      http.MethodGet,
			Summary:     "List all servers",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ServersResponse, error) {
			return &ServersResponse{Body: deps.Servers.Names()}, nil
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "listTools",
			Method:      http.MethodGet,
			Path:        "/{name}/tools",
			Summary:     "List server tools",
			Tags:        append(tags, "Tools"),
		},
		func(ctx context.Context, input *ServerToolsRequest) (*ToolsResponse, error) {
			result, err := deps.Dispatcher.ListTools(ctx, input.Name)
			if err != nil {
				return nil, err
			}
			resp := &ToolsResponse{}
			resp.Body.Tools = result.Tools
			return resp, nil
		},
	)

	huma.Register(
		serversAPI,
		huma.Operation{
			OperationID: "callTool",
			Method:      http.MethodPost,
			Path:        "/{server}/tools/{tool}",
			Summary:     "Call a tool on a server",
			Tags:        append(tags, "Tools"),
		},
		func(ctx context.Context, input *ToolCallRequest) (*ToolCallResponse, error) {
			address := router.FormatAddress(input.Server, input.Tool)
			result, err := deps.Dispatcher.Dispatch(ctx, address, input.Body)
			if err != nil {
				return nil, err
			}
			return &ToolCallResponse{Body: result}, nil
		},
	)
}
