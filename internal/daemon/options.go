package daemon

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/toolgate/toolgate/internal/pool"
)

// Options contains optional configuration for the gateway.
// NewOptions should be used to create instances of Options.
type Options struct {
	// ConnectTimeout specifies how long to wait for MCP server spawn and handshake.
	ConnectTimeout time.Duration

	// HealthCheckInterval specifies how often the background loop probes servers.
	HealthCheckInterval time.Duration

	// HealthCheckTimeout specifies the per-server bound for background probes.
	HealthCheckTimeout time.Duration

	// EagerInitTimeout specifies the per-server bound during startup verification.
	EagerInitTimeout time.Duration

	// CORS configuration for cross-origin API requests.
	CORS CORSConfig

	// APIShutdownTimeout specifies how long to wait for graceful API shutdown.
	APIShutdownTimeout time.Duration

	// Dialer overrides the transport used to establish server connections.
	// Nil selects the stdio subprocess dialer. Tests inject fakes here.
	Dialer pool.DialFunc
}

// CORSConfig defines Cross-Origin Resource Sharing settings for the API server.
type CORSConfig struct {
	// Enabled determines whether CORS headers are added to responses.
	Enabled bool

	// AllowCredentials indicates whether the request can include credentials.
	// Must be false when AllowOrigins contains "*".
	AllowCredentials bool

	// AllowedHeaders specifies which headers the client can include in requests.
	AllowedHeaders []string

	// AllowMethods specifies which HTTP methods are permitted.
	AllowMethods []string

	// AllowOrigins specifies which origins can access the API.
	AllowOrigins []string

	// ExposedHeaders specifies which response headers are accessible to the client.
	ExposedHeaders []string

	// MaxAge specifies how long browsers can cache preflight responses.
	MaxAge time.Duration
}

// Option defines a functional option for configuring Options.
// Options are applied in order, with later options overriding earlier ones.
type Option func(*Options) error

// NewOptions creates Options with optional configurations applied on top of
// defaults.
func NewOptions(opts ...Option) (Options, error) {
	options := defaultOptions()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithConnectTimeout configures how long to wait for server spawn and handshake.
func WithConnectTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("connect timeout must be positive, got %v", timeout)
		}
		o.ConnectTimeout = timeout
		return nil
	}
}

// WithHealthCheckInterval configures how often the background loop probes servers.
func WithHealthCheckInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval <= 0 {
			return fmt.Errorf("health check interval must be positive, got %v", interval)
		}
		o.HealthCheckInterval = interval
		return nil
	}
}

// WithHealthCheckTimeout configures the per-server bound for background probes.
func WithHealthCheckTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("health check timeout must be positive, got %v", timeout)
		}
		o.HealthCheckTimeout = timeout
		return nil
	}
}

// WithEagerInitTimeout configures the per-server bound for startup verification.
func WithEagerInitTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("eager init timeout must be positive, got %v", timeout)
		}
		o.EagerInitTimeout = timeout
		return nil
	}
}

// WithCORS replaces the CORS configuration.
func WithCORS(cfg CORSConfig) Option {
	return func(o *Options) error {
		o.CORS = cfg
		return nil
	}
}

// WithDialer overrides the connection transport. Intended for tests.
func WithDialer(dial pool.DialFunc) Option {
	return func(o *Options) error {
		if dial == nil {
			return fmt.Errorf("dialer cannot be nil")
		}
		o.Dialer = dial
		return nil
	}
}

// WithAPIShutdownTimeout configures the graceful API shutdown bound.
func WithAPIShutdownTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive, got %v", timeout)
		}
		o.APIShutdownTimeout = timeout
		return nil
	}
}

// DefaultConnectTimeout is the default time to wait for MCP server initialization.
func DefaultConnectTimeout() time.Duration {
	return 30 * time.Second
}

// DefaultHealthCheckInterval is the default interval for background health checks.
func DefaultHealthCheckInterval() time.Duration {
	return 10 * time.Second
}

// DefaultHealthCheckTimeout is the default per-server timeout for background probes.
func DefaultHealthCheckTimeout() time.Duration {
	return 3 * time.Second
}

// DefaultEagerInitTimeout is the default per-server bound for startup verification.
func DefaultEagerInitTimeout() time.Duration {
	return 10 * time.Second
}

// DefaultAPIShutdownTimeout is the default time allowed for API server graceful shutdown.
func DefaultAPIShutdownTimeout() time.Duration {
	return 5 * time.Second
}

func defaultOptions() Options {
	return Options{
		ConnectTimeout:      DefaultConnectTimeout(),
		HealthCheckInterval: DefaultHealthCheckInterval(),
		HealthCheckTimeout:  DefaultHealthCheckTimeout(),
		EagerInitTimeout:    DefaultEagerInitTimeout(),
		CORS: CORSConfig{
			Enabled:          false,
			AllowMethods:     DefaultCORSAllowMethods(),
			AllowedHeaders:   DefaultCORSAllowHeaders(),
			AllowCredentials: false,
			MaxAge:           DefaultCORSMaxAge(),
		},
		APIShutdownTimeout: DefaultAPIShutdownTimeout(),
	}
}

// DefaultCORSAllowHeaders returns standard headers required for API interaction.
func DefaultCORSAllowHeaders() []string {
	return []string{
		"Accept",
		"Accept-Language",
		"Content-Language",
		"Content-Type",
		"Range",
	}
}

// DefaultCORSAllowMethods returns standard HTTP methods for CORS.
func DefaultCORSAllowMethods() []string {
	return []string{
		http.MethodGet,
		http.MethodPost,
		http.MethodOptions,
	}
}

// DefaultCORSMaxAge returns the default time browsers can cache preflight responses.
func DefaultCORSMaxAge() time.Duration {
	return 5 * time.Minute
}

// IsValidAddr returns an error if the address is not a valid "host:port" string.
func IsValidAddr(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return fmt.Errorf("invalid address format: %w", err)
	}

	if port == "" {
		return fmt.Errorf("address missing port")
	}

	if _, err := strconv.Atoi(port); err != nil {
		if _, err := net.LookupPort("tcp", port); err != nil {
			return fmt.Errorf("invalid address port: %s", port)
		}
	}

	_ = host // an empty host listens on all interfaces

	return nil
}
