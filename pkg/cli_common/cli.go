package clicommon

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/talves/gameservers/pkg/logging"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type CommonConfig struct {
	verbose LevelledFlag
	jsonLog bool
	color   string
}

// Verbosity is the number of times `--verbose` was given.
func (cfg *CommonConfig) Verbosity() int {
	return int(cfg.verbose)
}

func (cfg *CommonConfig) LogOpts() logging.LogOpts {
	opts := logging.LogOpts{
		Verbose: cfg.verbose > 0,
		Color:   cfg.color,
		DefaultLevels: map[string]zapcore.Level{
			"cloudformation": zap.InfoLevel,
			"synth":          zap.InfoLevel,
		},
	}
	if cfg.verbose > 1 {
		opts.DefaultLevels = nil
	}
	if cfg.jsonLog {
		opts.Encoding = "json"
	}
	return opts
}

func SetupRoot(root *cobra.Command, commonCfg *CommonConfig) {
	flags := root.PersistentFlags()
	flags.VarP(&commonCfg.verbose, "verbose", "v", "Enable verbose logging, twice to include AWS requests")
	flags.Lookup("verbose").NoOptDefVal = "true"
	flags.BoolVar(&commonCfg.jsonLog, "json-log", false, "Enable JSON logging")
	flags.StringVar(&commonCfg.color, "color", "auto", "Colorize output: auto, always or never")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		switch commonCfg.color {
		case "always", "on":
			color.NoColor = false
		case "never", "off":
			color.NoColor = true
		case "auto", "":
		default:
			return fmt.Errorf("invalid --color %q", commonCfg.color)
		}
		logger, err := commonCfg.LogOpts().NewLogger()
		if err != nil {
			return err
		}
		zap.ReplaceGlobals(logger)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		return nil
	}

	root.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		zap.L().Sync() //nolint:errcheck
	}
}

// FlagsChanged reports whether any of the named flags were set on the command line.
func FlagsChanged(flags *pflag.FlagSet, names ...string) bool {
	for _, name := range names {
		if f := flags.Lookup(name); f != nil && f.Changed {
			return true
		}
	}
	return false
}
