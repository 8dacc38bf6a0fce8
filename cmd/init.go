package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/toolgate/toolgate/internal/cmd"
	"github.com/toolgate/toolgate/internal/config"
	"github.com/toolgate/toolgate/internal/flags"
)

// InitCmd represents the 'init' command.
type InitCmd struct {
	*cmd.BaseCmd
	initializer config.Initializer
}

// NewInitCmd creates a newly configured (Cobra) command.
func NewInitCmd(baseCmd *cmd.BaseCmd, initializer config.Initializer) *cobra.Command {
	c := &InitCmd{
		BaseCmd:     baseCmd,
		initializer: initializer,
	}

	return &cobra.Command{
		Use:   "init",
		Short: "Creates a skeleton configuration file",
		RunE:  c.run,
	}
}

func (c *InitCmd) run(_ *cobra.Command, _ []string) error {
	path := flags.ConfigFile

	if err := c.initializer.Init(path); err != nil {
		return err
	}

	fmt.Printf("Created %s, add your servers under [servers.<name>]\n", path)
	return nil
}
