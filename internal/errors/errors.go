// Package errors defines domain-level errors used throughout the application.
// These errors represent gateway failures and are mapped to appropriate HTTP status codes at the API boundary.
//
// NOTE: Important for developers
// When adding a new error here, you MUST consider how it should be handled when returned from API endpoints.
//
// Unmapped errors will default to HTTP 500 Internal Server Error.
package errors

import (
	"errors"
)

var (
	// ErrConfigLoad indicates the configuration source is missing or could not be decoded.
	// This error is startup-fatal; the gateway refuses to run without a valid config.
	ErrConfigLoad = errors.New("failed to load configuration")

	// ErrConfigInvalid indicates the configuration was decoded but a field failed validation.
	// Also startup-fatal. The wrapped message names the offending field.
	ErrConfigInvalid = errors.New("invalid configuration")

	// ErrUnknownServer indicates the caller referenced a server absent from the registry.
	// Recoverable; the wrapped message enumerates the valid server names.
	// Recommended to map to HTTP 404 Not Found.
	ErrUnknownServer = errors.New("unknown server")

	// ErrInvalidAddress indicates a tool address that does not match the namespaced form.
	// Recoverable. Recommended to map to HTTP 400 Bad Request.
	ErrInvalidAddress = errors.New("invalid tool address")

	// ErrConnectionFailed indicates a subprocess spawn or MCP handshake failed.
	// Recoverable per-server; other servers are unaffected.
	// Recommended to map to HTTP 502 Bad Gateway.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrToolCallFailed indicates a downstream call failed after a connection was established.
	// Recoverable. Recommended to map to HTTP 502 Bad Gateway.
	ErrToolCallFailed = errors.New("tool call failed")

	// ErrToolListFailed indicates listing tools from a connected server failed.
	// Recoverable. Recommended to map to HTTP 502 Bad Gateway.
	ErrToolListFailed = errors.New("tool list failed")

	// ErrHealthCheckTimeout indicates a liveness probe exceeded its bound.
	// Recoverable; the probe result is classified as down.
	ErrHealthCheckTimeout = errors.New("health check timed out")

	// ErrPoolClosed indicates an acquire was attempted after shutdown began.
	// No new connections are initiated once the pool is closing.
	ErrPoolClosed = errors.New("connection pool is closed")

	// ErrBadRequest indicates the client provided invalid input or made a malformed request.
	// Recommended to map to HTTP 400 Bad Request.
	ErrBadRequest = errors.New("bad request")
)
