// Package api is the HTTP observability and dispatch surface of the
// gateway. It exposes the pool status snapshot, on-demand health checks and
// tool dispatch over a versioned REST API.
package api

import (
	"fmt"
	"net/url"
	"reflect"

	"github.com/danielgtaylor/huma/v2"

	"github.com/toolgate/toolgate/internal/contracts"
)

// APIVersion is the version used in the OpenAPI spec and URL paths.
const APIVersion = "v1"

// Dependencies carries everything the route handlers need.
type Dependencies struct {
	Dispatcher contracts.ToolDispatcher
	Prober     contracts.HealthProber
	Status     contracts.StatusReporter
	Servers    contracts.ServerLister
}

// Validate checks that all dependencies are present.
func (d Dependencies) Validate() error {
	if d.Dispatcher == nil || reflect.ValueOf(d.Dispatcher).IsNil() {
		return fmt.Errorf("dispatcher cannot be nil")
	}
	if d.Prober == nil || reflect.ValueOf(d.Prober).IsNil() {
		return fmt.Errorf("health prober cannot be nil")
	}
	if d.Status == nil || reflect.ValueOf(d.Status).IsNil() {
		return fmt.Errorf("status reporter cannot be nil")
	}
	if d.Servers == nil || reflect.ValueOf(d.Servers).IsNil() {
		return fmt.Errorf("server lister cannot be nil")
	}
	return nil
}

// RegisterRoutes registers all API routes on the provided Huma router.
// This is the single source of truth for the API route structure.
// Returns the API path prefix (e.g. "/api/v1") under which the routes live.
func RegisterRoutes(router huma.API, deps Dependencies) (string, error) {
	if router == nil || reflect.ValueOf(router).IsNil() {
		return "", fmt.Errorf("router cannot be nil")
	}
	if err := deps.Validate(); err != nil {
		return "", err
	}

	apiPathPrefix, err := url.JoinPath("/api", APIVersion)
	if err != nil {
		return "", fmt.Errorf("failed to construct API path prefix: %w", err)
	}

	versioned := huma.NewGroup(router, apiPathPrefix)
	RegisterServerRoutes(versioned, deps, "/servers")
	RegisterHealthRoutes(versioned, deps.Prober, "/health")
	RegisterStatusRoutes(versioned, deps.Status, "/status")

	return apiPathPrefix, nil
}
