package cmd

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	internalcmd "github.com/toolgate/toolgate/internal/cmd"
	"github.com/toolgate/toolgate/internal/config"
)

type failingLoader struct {
	err error
}

func (f *failingLoader) Load(_ string) (*config.Registry, error) {
	return nil, f.err
}

func TestNewRootCmd_Subcommands(t *testing.T) {
	t.Parallel()

	rootCmd := NewRootCmd()

	names := make([]string, 0, len(rootCmd.Commands()))
	for _, sub := range rootCmd.Commands() {
		names = append(names, sub.Name())
	}
	require.Contains(t, names, "init")
	require.Contains(t, names, "gateway")
}

func TestGatewayCmd_InvalidAddr(t *testing.T) {
	t.Parallel()

	loadErr := stderrors.New("should not be reached")
	cobraCmd := NewGatewayCmd(&internalcmd.BaseCmd{}, &failingLoader{err: loadErr})
	cobraCmd.SetArgs([]string{"--addr", "not-an-address"})

	err := cobraCmd.Execute()
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid api address")
	require.NotErrorIs(t, err, loadErr, "config must not be loaded for an invalid address")
}

func TestGatewayCmd_ConfigLoadFailure(t *testing.T) {
	t.Parallel()

	loadErr := stderrors.New("config exploded")
	cobraCmd := NewGatewayCmd(&internalcmd.BaseCmd{}, &failingLoader{err: loadErr})
	cobraCmd.SetArgs([]string{"--addr", "localhost:8090"})

	err := cobraCmd.Execute()
	require.ErrorIs(t, err, loadErr)
}
