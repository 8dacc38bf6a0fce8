package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/toolgate/toolgate/internal/errors"
)

// fileConfig is the on-disk shape: { servers: { <name>: { command, args, env, lazy } } }.
type fileConfig struct {
	Servers map[string]serverEntry `json:"servers" toml:"servers" yaml:"servers"`
}

type serverEntry struct {
	Command string            `json:"command"        toml:"command"        yaml:"command"`
	Args    []string          `json:"args,omitempty" toml:"args,omitempty" yaml:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"  toml:"env,omitempty"  yaml:"env,omitempty"`
	Lazy    *bool             `json:"lazy,omitempty" toml:"lazy,omitempty" yaml:"lazy,omitempty"`
}

// Init creates the base skeleton configuration file for a toolgate deployment.
func (d *DefaultLoader) Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	content := `# toolgate server registry.
#
# [servers.time]
# command = "uvx"
# args = ["mcp-server-time"]
# lazy = false
#
# [servers.github]
# command = "npx"
# args = ["-y", "@modelcontextprotocol/server-github"]
# [servers.github.env]
# GITHUB_TOKEN = "..."

[servers]
`

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Load reads, decodes and validates the configuration file at path and
// returns the resulting registry. The format is selected by file extension:
// .yaml/.yml and .json are supported, anything else is treated as TOML.
// Any failure here is startup-fatal for the gateway.
func (d *DefaultLoader) Load(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", errors.ErrConfigLoad)
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: config file cannot be found (%s), run: 'toolgate init'", errors.ErrConfigLoad, path)
		}
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", errors.ErrConfigLoad, path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file (%s): %w", errors.ErrConfigLoad, path, err)
	}

	doc, cfg, err := decode(path, data)
	if err != nil {
		return nil, err
	}

	if err := validateShape(doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrConfigInvalid, path, err)
	}

	servers := make([]ServerConfig, 0, len(cfg.Servers))
	for name, entry := range cfg.Servers {
		servers = append(servers, ServerConfig{
			Name:    name,
			Command: entry.Command,
			Args:    entry.Args,
			Env:     entry.Env,
			Lazy:    entry.Lazy,
		})
	}

	reg, err := NewRegistry(servers...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errors.ErrConfigInvalid, path, err)
	}

	return reg, nil
}

// decode unmarshals the raw file both generically (for schema validation)
// and into the typed structure.
func decode(path string, data []byte) (map[string]any, *fileConfig, error) {
	var doc map[string]any
	var cfg fileConfig

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, nil, decodeErr(path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, decodeErr(path, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, nil, decodeErr(path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, nil, decodeErr(path, err)
		}
	default:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, nil, decodeErr(path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, nil, decodeErr(path, err)
		}
	}

	if doc == nil {
		return nil, nil, fmt.Errorf("%w: config file is empty (%s)", errors.ErrConfigLoad, path)
	}

	return doc, &cfg, nil
}

func decodeErr(path string, err error) error {
	return fmt.Errorf("%w: failed to decode config file (%s): %w", errors.ErrConfigLoad, path, err)
}

func (s ServerConfig) validate() error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return fmt.Errorf("server name cannot be empty")
	}
	if strings.Contains(name, ":") {
		return fmt.Errorf("server name '%s' must not contain ':'", name)
	}
	if strings.TrimSpace(s.Command) == "" {
		return fmt.Errorf("server '%s': command cannot be empty", name)
	}
	for key := range s.Env {
		if strings.TrimSpace(key) == "" {
			return fmt.Errorf("server '%s': env variable name cannot be empty", name)
		}
	}
	return nil
}
