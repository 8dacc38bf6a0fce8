package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/toolgate/toolgate/internal/errors"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "gate.toml", `
[servers.time]
command = "uvx"
args = ["mcp-server-time"]
lazy = false

[servers.github]
command = "npx"
args = ["-y", "@modelcontextprotocol/server-github"]

[servers.github.env]
GITHUB_TOKEN = "secret"
`)

	loader := &DefaultLoader{}
	reg, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, 2, reg.Len())
	require.Equal(t, []string{"github", "time"}, reg.Names())

	timeCfg, ok := reg.Lookup("time")
	require.True(t, ok)
	require.Equal(t, "uvx", timeCfg.Command)
	require.Equal(t, []string{"mcp-server-time"}, timeCfg.Args)
	require.True(t, timeCfg.Eager())

	ghCfg, ok := reg.Lookup("github")
	require.True(t, ok)
	require.False(t, ghCfg.Eager(), "lazy should default to true")
	require.Equal(t, "secret", ghCfg.Env["GITHUB_TOKEN"])

	require.Equal(t, []string{"time"}, reg.EagerNames())
}

func TestLoad_YAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "gate.yaml", `
servers:
  echo:
    command: /usr/local/bin/echo-server
    args: ["--stdio"]
    lazy: false
`)

	loader := &DefaultLoader{}
	reg, err := loader.Load(path)
	require.NoError(t, err)

	cfg, ok := reg.Lookup("echo")
	require.True(t, ok)
	require.Equal(t, "/usr/local/bin/echo-server", cfg.Command)
	require.True(t, cfg.Eager())
}

func TestLoad_JSON(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "gate.json", `{
  "servers": {
    "echo": {"command": "echo-server", "env": {"MODE": "test"}}
  }
}`)

	loader := &DefaultLoader{}
	reg, err := loader.Load(path)
	require.NoError(t, err)

	cfg, ok := reg.Lookup("echo")
	require.True(t, ok)
	require.Equal(t, "test", cfg.Env["MODE"])
	require.False(t, cfg.Eager())
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		ext     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "malformed toml",
			content: "[servers\ncommand=",
			ext:     ".toml",
			wantErr: errors.ErrConfigLoad,
		},
		{
			name:    "missing servers key",
			content: `other = 1`,
			ext:     ".toml",
			wantErr: errors.ErrConfigInvalid,
			wantMsg: "servers",
		},
		{
			name:    "missing command",
			content: "[servers.time]\nargs = [\"x\"]",
			ext:     ".toml",
			wantErr: errors.ErrConfigInvalid,
			wantMsg: "command",
		},
		{
			name:    "unknown field",
			content: "[servers.time]\ncommand = \"uvx\"\nbogus = true",
			ext:     ".toml",
			wantErr: errors.ErrConfigInvalid,
			wantMsg: "bogus",
		},
		{
			name:    "non-string arg",
			content: `{"servers": {"t": {"command": "c", "args": [1]}}}`,
			ext:     ".json",
			wantErr: errors.ErrConfigLoad,
		},
		{
			name:    "empty file",
			content: "",
			ext:     ".yaml",
			wantErr: errors.ErrConfigLoad,
			wantMsg: "empty",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, "cfg"+tc.ext, tc.content)
			loader := &DefaultLoader{}
			_, err := loader.Load(path)
			require.Error(t, err)
			require.ErrorIs(t, err, tc.wantErr)
			if tc.wantMsg != "" {
				require.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	loader := &DefaultLoader{}
	_, err := loader.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.ErrorIs(t, err, errors.ErrConfigLoad)
	require.Contains(t, err.Error(), "toolgate init")
}

func TestNewRegistry_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		servers []ServerConfig
		wantErr string
	}{
		{
			name:    "empty name",
			servers: []ServerConfig{{Name: " ", Command: "c"}},
			wantErr: "name cannot be empty",
		},
		{
			name:    "name with colon",
			servers: []ServerConfig{{Name: "a:b", Command: "c"}},
			wantErr: "must not contain ':'",
		},
		{
			name:    "empty command",
			servers: []ServerConfig{{Name: "a", Command: " "}},
			wantErr: "command cannot be empty",
		},
		{
			name: "duplicate name",
			servers: []ServerConfig{
				{Name: "a", Command: "c"},
				{Name: "a", Command: "d"},
			},
			wantErr: "duplicate server name",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewRegistry(tc.servers...)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestServerConfig_Environ(t *testing.T) {
	t.Setenv("TOOLGATE_TEST_KEEP", "inherited")
	t.Setenv("TOOLGATE_TEST_OVERRIDE", "old")

	cfg := ServerConfig{
		Name:    "s",
		Command: "c",
		Env: map[string]string{
			"TOOLGATE_TEST_OVERRIDE": "new",
			"TOOLGATE_TEST_EXTRA":    "added",
		},
	}

	env := cfg.Environ()
	require.Contains(t, env, "TOOLGATE_TEST_KEEP=inherited")
	require.Contains(t, env, "TOOLGATE_TEST_OVERRIDE=new")
	require.Contains(t, env, "TOOLGATE_TEST_EXTRA=added")
	require.NotContains(t, env, "TOOLGATE_TEST_OVERRIDE=old")
}

func TestServerConfig_CommandLine(t *testing.T) {
	t.Parallel()

	require.Equal(t, "uvx", ServerConfig{Command: "uvx"}.CommandLine())
	require.Equal(
		t,
		"npx -y server",
		ServerConfig{Command: "npx", Args: []string{"-y", "server"}}.CommandLine(),
	)
}

func TestInit(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".toolgate.toml")
	loader := &DefaultLoader{}

	require.NoError(t, loader.Init(path))

	// The skeleton must itself be loadable.
	reg, err := loader.Load(path)
	require.NoError(t, err)
	require.Equal(t, 0, reg.Len())

	// Refuses to overwrite.
	err = loader.Init(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}
