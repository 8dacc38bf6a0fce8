package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

var (
	_ Provider = (*DefaultLoader)(nil)
)

// Loader loads a server registry from a declarative configuration file.
type Loader interface {
	Load(path string) (*Registry, error)
}

// Initializer creates a skeleton configuration file.
type Initializer interface {
	Init(path string) error
}

// Provider combines loading and initialization of configuration.
type Provider interface {
	Initializer
	Loader
}

// DefaultLoader is the file-backed Provider implementation.
type DefaultLoader struct{}

// ServerConfig is the immutable launch description for a single MCP server.
// Instances are created once at registry load time and never mutated.
type ServerConfig struct {
	// Name is the unique identifier for the server, referenced in tool addresses.
	Name string `json:"name"`

	// Command is the executable used to launch the server process.
	Command string `json:"command"`

	// Args are passed to Command verbatim.
	Args []string `json:"args,omitempty"`

	// Env holds per-server environment overrides applied on top of the
	// gateway's own environment.
	Env map[string]string `json:"env,omitempty"`

	// Lazy controls whether the server is connected on first use (true,
	// the default) or eagerly at startup (false).
	Lazy *bool `json:"lazy,omitempty"`
}

// Eager reports whether the server should be connected and verified at startup.
func (s ServerConfig) Eager() bool {
	return s.Lazy != nil && !*s.Lazy
}

// Environ returns the gateway process environment with the server's
// overrides applied. Overridden keys replace inherited values rather than
// being appended after them.
func (s ServerConfig) Environ() []string {
	if len(s.Env) == 0 {
		return os.Environ()
	}

	env := make([]string, 0, len(os.Environ())+len(s.Env))
	for _, kv := range os.Environ() {
		key, _, ok := strings.Cut(kv, "=")
		if ok {
			if _, replace := s.Env[key]; replace {
				continue
			}
		}
		env = append(env, kv)
	}
	for k, v := range s.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}

	return env
}

// CommandLine renders the launch command for log and error messages.
func (s ServerConfig) CommandLine() string {
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " " + strings.Join(s.Args, " ")
}

// Registry is the immutable set of configured servers.
// It is safe for concurrent use; nothing mutates it after Load.
type Registry struct {
	servers map[string]ServerConfig
	names   []string
}

// NewRegistry builds a registry from the given server configurations.
// Exposed for tests and embedding; production code goes through a Loader.
func NewRegistry(servers ...ServerConfig) (*Registry, error) {
	byName := make(map[string]ServerConfig, len(servers))
	names := make([]string, 0, len(servers))
	for _, s := range servers {
		if err := s.validate(); err != nil {
			return nil, err
		}
		if _, dup := byName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate server name '%s'", s.Name)
		}
		byName[s.Name] = s
		names = append(names, s.Name)
	}
	sort.Strings(names)

	return &Registry{servers: byName, names: names}, nil
}

// Lookup returns the configuration for a server name.
// It returns a boolean to indicate whether the server was found.
func (r *Registry) Lookup(name string) (ServerConfig, bool) {
	s, ok := r.servers[name]
	return s, ok
}

// Names returns all configured server names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Len returns the number of configured servers.
func (r *Registry) Len() int {
	return len(r.servers)
}

// EagerNames returns the names of servers configured for startup connection.
func (r *Registry) EagerNames() []string {
	var eager []string
	for _, name := range r.names {
		if r.servers[name].Eager() {
			eager = append(eager, name)
		}
	}
	return eager
}
