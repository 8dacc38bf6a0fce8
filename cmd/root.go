package cmd

import (
	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/internal/cmd"
	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/flags"
)

var version = "dev" // Set at build time using -ldflags

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	base := &cmd.BaseCmd{}
	loader := &config.DefaultLoader{}

	rootCmd := &cobra.Command{
		Use:          "toolgate <command> [args]",
		Short:        "toolgate aggregates MCP tool servers behind one namespace",
		Long:         longDescription(),
		SilenceUsage: true,
		Version:      version,
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(NewInitCmd(base, loader))
	rootCmd.AddCommand(NewGatewayCmd(base, loader))

	return rootCmd
}

func longDescription() string {
	return `toolgate launches and supervises MCP tool servers (subprocesses speaking
JSON-RPC over stdio) and exposes every tool behind one uniform namespace,
so a caller can address any tool as 'mcp:<server>:<tool>' without knowing
how or when that server's process was started.`
}
