package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/toolgate/toolgate/internal/contracts"
	"github.com/toolgate/toolgate/internal/pool"
)

// StatusResponse is the read-only pool snapshot keyed by server name.
type StatusResponse struct {
	Body struct {
		Servers map[string]pool.ServerStatus `doc:"Per-server connection status" json:"servers"`
	}
}

// RegisterStatusRoutes sets up the pool snapshot endpoint. The snapshot is
// non-blocking and performs no downstream I/O.
func RegisterStatusRoutes(routerAPI huma.API, status contracts.StatusReporter, apiPathPrefix string) {
	statusAPI := huma.NewGroup(routerAPI, apiPathPrefix)

	huma.Register(
		statusAPI,
		huma.Operation{
			OperationID: "gatewayStatus",
			Method:      http.MethodGet,
			Summary:     "Connection status snapshot for all servers",
			Tags:        []string{"Status"},
		},
		func(ctx context.Context, _ *struct{}) (*StatusResponse, error) {
			resp := &StatusResponse{}
			resp.Body.Servers = status.Snapshot()
			return resp, nil
		},
	)
}
