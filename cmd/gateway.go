package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/internal/cmd"
	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/daemon"
	"github.com/toolgate/toolgate/internal/flags"
)

// GatewayCmd represents the 'gateway' command.
type GatewayCmd struct {
	*cmd.BaseCmd
	Addr      string
	CORS      bool
	Origins   []string
	cfgLoader config.Loader
}

// NewGatewayCmd creates a newly configured (Cobra) command.
func NewGatewayCmd(baseCmd *cmd.BaseCmd, loader config.Loader) *cobra.Command {
	c := &GatewayCmd{
		BaseCmd:   baseCmd,
		cfgLoader: loader,
	}

	cobraCommand := &cobra.Command{
		Use:   "gateway [--addr]",
		Short: "Launches the toolgate gateway",
		Long:  "Launches the gateway, which starts the configured MCP servers and provides routing and health checks via an HTTP API",
		RunE:  c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.Addr,
		"addr",
		"localhost:8090",
		"Address for the gateway API to bind",
	)

	cobraCommand.Flags().BoolVar(
		&c.CORS,
		"cors",
		false,
		"Enable CORS for the gateway API",
	)

	cobraCommand.Flags().StringSliceVar(
		&c.Origins,
		"cors-origins",
		[]string{"*"},
		"Allowed origins when CORS is enabled",
	)

	return cobraCommand
}

// run is configured (via NewGatewayCmd) to be called by the Cobra framework
// when the command is executed.
func (c *GatewayCmd) run(_ *cobra.Command, _ []string) error {
	logger := c.Logger()

	addr := strings.TrimSpace(c.Addr)
	if err := daemon.IsValidAddr(addr); err != nil {
		return fmt.Errorf("invalid api address '%s': %w", addr, err)
	}

	registry, err := c.cfgLoader.Load(flags.ConfigFile)
	if err != nil {
		return err
	}
	logger.Info("loaded config", "servers", registry.Len())

	var opts []daemon.Option
	if c.CORS {
		cors := daemon.CORSConfig{
			Enabled:        true,
			AllowOrigins:   c.Origins,
			AllowMethods:   daemon.DefaultCORSAllowMethods(),
			AllowedHeaders: daemon.DefaultCORSAllowHeaders(),
			MaxAge:         daemon.DefaultCORSMaxAge(),
		}
		opts = append(opts, daemon.WithCORS(cors))
	}

	gw, err := daemon.NewGateway(logger, registry, addr, opts...)
	if err != nil {
		return fmt.Errorf("failed to create gateway instance: %w", err)
	}

	// Both SIGINT and SIGTERM trigger the shutdown sequence; a repeated
	// signal while shutdown is in progress is a no-op.
	ctx, cancel := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	fmt.Printf("toolgate gateway listening on http://%s/api/v1 (CTRL+C to shut down)\n", addr)

	if err := gw.StartAndManage(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
