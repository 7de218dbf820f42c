package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	clicommon "github.com/talves/gameservers/pkg/cli_common"
)

const DEFAULT_CONFIG_FILE = "gameservers.yaml"

var commonCfg struct {
	clicommon.CommonConfig
	configFile string
	context    []string
}

func cli() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rootCmd = &cobra.Command{
		Use:           "gameservers",
		Short:         "Synthesize and deploy the game server stacks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	clicommon.SetupRoot(rootCmd, &commonCfg.CommonConfig)
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&commonCfg.configFile, "config", "c", "", "Config file (yaml or toml), defaults to "+DEFAULT_CONFIG_FILE+" when it exists")
	flags.StringArrayVar(&commonCfg.context, "context", nil, "Override a config value, as key.path=value")

	rootCmd.AddCommand(newSynthCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newBootstrapCmd())
	rootCmd.AddCommand(newDeployCmd())
	rootCmd.AddCommand(newDiffCmd())
	rootCmd.AddCommand(newDestroyCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(cli())
}
