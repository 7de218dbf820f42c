package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/talves/gameservers/pkg/config"
	"github.com/talves/gameservers/pkg/deploy"
	"github.com/talves/gameservers/pkg/gameservers"
	"github.com/talves/gameservers/pkg/logging"
	"github.com/talves/gameservers/pkg/stack"
	"go.uber.org/zap"
)

func loadConfig() (config.Config, error) {
	fpath := commonCfg.configFile
	if fpath == "" {
		if _, err := os.Stat(DEFAULT_CONFIG_FILE); err == nil {
			fpath = DEFAULT_CONFIG_FILE
		} else if !errors.Is(err, os.ErrNotExist) {
			return config.Config{}, err
		}
	}
	return config.Load(fpath, commonCfg.context)
}

// synth builds the app from the config and writes the assembly to the output directory.
func synth(cmd *cobra.Command) (config.Config, *stack.Assembly, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig()
	if err != nil {
		return cfg, nil, err
	}
	app, err := gameservers.NewGameServersApp(cfg)
	if err != nil {
		return cfg, nil, err
	}
	asm, err := app.Synth(ctx)
	if err != nil {
		return cfg, nil, err
	}
	if err := asm.WriteTo(ctx, cfg.OutDir); err != nil {
		return cfg, nil, fmt.Errorf("could not write assembly: %w", err)
	}
	logging.GetLogger(ctx).Debug("wrote assembly", zap.String("dir", cfg.OutDir))
	return cfg, asm, nil
}

func newSynthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "synth",
		Short: "Write the stack templates, assets and manifest to the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, asm, err := synth(cmd)
			if err != nil {
				return err
			}
			for _, sm := range asm.Manifest.Stacks {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", cfg.OutDir, sm.TemplateFile)
			}
			return nil
		},
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the stacks with their dependencies",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			app, err := gameservers.NewGameServersApp(cfg)
			if err != nil {
				return err
			}
			asm, err := app.Synth(cmd.Context())
			if err != nil {
				return err
			}
			return deploy.PrintStacks(cmd.OutOrStdout(), asm.Manifest)
		},
	}
}
