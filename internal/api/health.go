package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/toolgate/toolgate/internal/contracts"
	"github.com/toolgate/toolgate/internal/health"
)

// HealthCheckRequest represents the incoming request for a full health check.
type HealthCheckRequest struct {
	Timeout int `default:"5000" doc:"Per-server probe timeout in milliseconds" query:"timeout"`
}

// HealthCheckResponse is the JSON response for GET /health.
type HealthCheckResponse struct {
	Body health.CheckResult
}

// HealthCheckTextResponse is the plain-text rendering served at /health/text.
type HealthCheckTextResponse struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// ServerHealthRequest represents the incoming request for probing one server.
type ServerHealthRequest struct {
	Name    string `doc:"Name of the server to probe"               example:"time" path:"name"`
	Timeout int    `default:"5000"                                  doc:"Probe timeout in milliseconds" query:"timeout"`
}

// ServerHealthResponse wraps a single probe record.
type ServerHealthResponse struct {
	Body health.Record
}

// RegisterHealthRoutes sets up health-related API endpoint routes.
// Every check runs fresh probes; nothing here serves cached state.
func RegisterHealthRoutes(routerAPI huma.API, prober contracts.HealthProber, apiPathPrefix string) {
	healthAPI := huma.NewGroup(routerAPI, apiPathPrefix)
	tags := []string{"Health"}

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "checkHealth",
			Method:      http.MethodGet,
			Summary:     "Probe the health of all servers",
			Tags:        tags,
		},
		func(ctx context.Context, input *HealthCheckRequest) (*HealthCheckResponse, error) {
			result := prober.ProbeAll(ctx, time.Duration(input.Timeout)*time.Millisecond)
			return &HealthCheckResponse{Body: result}, nil
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "checkHealthText",
			Method:      http.MethodGet,
			Path:        "/text",
			Summary:     "Probe the health of all servers, rendered as text",
			Tags:        tags,
		},
		func(ctx context.Context, input *HealthCheckRequest) (*HealthCheckTextResponse, error) {
			result := prober.ProbeAll(ctx, time.Duration(input.Timeout)*time.Millisecond)
			return &HealthCheckTextResponse{
				ContentType: "text/plain; charset=utf-8",
				Body:        []byte(health.Render(result)),
			}, nil
		},
	)

	huma.Register(
		healthAPI,
		huma.Operation{
			OperationID: "checkServerHealth",
			Method:      http.MethodGet,
			Path:        "/{name}",
			Summary:     "Probe the health of a single server",
			Tags:        tags,
		},
		func(ctx context.Context, input *ServerHealthRequest) (*ServerHealthResponse, error) {
			record := prober.Probe(ctx, input.Name, time.Duration(input.Timeout)*time.Millisecond)
			return &ServerHealthResponse{Body: record}, nil
		},
	)
}
