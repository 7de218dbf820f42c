package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/talves/gameservers/pkg/config"
	"github.com/talves/gameservers/pkg/deploy"
	"github.com/talves/gameservers/pkg/gameservers"
	"github.com/talves/gameservers/pkg/logging"
	"github.com/talves/gameservers/pkg/provider/aws/resources"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var deployConfig struct {
	exclusively bool
	progress    bool
}

// newDeployer connects to the configured account and region.
func newDeployer(cmd *cobra.Command, cfg config.Config) (*deploy.Deployer, error) {
	ctx := cmd.Context()
	clients, err := deploy.NewClients(ctx, cfg.Region, commonCfg.Verbosity())
	if err != nil {
		return nil, err
	}
	account, err := deploy.ResolveAccount(ctx, clients.Sts, cfg.Account)
	if err != nil {
		return nil, err
	}
	bucketFormat := cfg.AssetBucket
	if bucketFormat == "" {
		bucketFormat = resources.DEFAULT_ASSET_BUCKET
	}
	d := &deploy.Deployer{
		Clients: clients,
		Bucket:  deploy.BucketName(bucketFormat, account, clients.Region),
	}
	if deployConfig.progress && term.IsTerminal(int(os.Stderr.Fd())) {
		d.Out = os.Stderr
	}
	logging.GetLogger(ctx).Debug("using account", zap.String("account", account), zap.String("bucket", d.Bucket))
	return d, nil
}

func newBootstrapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Create the asset bucket",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			d, err := newDeployer(cmd, cfg)
			if err != nil {
				return err
			}
			created, err := deploy.Bootstrap(cmd.Context(), d.Clients.S3, d.Bucket, d.Clients.Region)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", d.Bucket)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", d.Bucket)
			}
			return nil
		},
	}
}

func newDeployCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deploy [stacks...]",
		Short: "Deploy the stacks, with the stacks they depend on",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, asm, err := synth(cmd)
			if err != nil {
				return err
			}
			d, err := newDeployer(cmd, cfg)
			if err != nil {
				return err
			}
			d.Images = []deploy.ImageCheck{{
				Stack:      gameservers.PARENT_STACK_NAME,
				Repository: gameservers.MINECRAFT_REPOSITORY,
				Tag:        imageTag(cfg.Minecraft),
			}}

			results, err := d.Deploy(cmd.Context(), asm, deploy.DeployOptions{
				Stacks:      args,
				Exclusively: deployConfig.exclusively,
			})
			for _, r := range results {
				printResult(cmd, r)
			}
			return err
		},
	}
	flags := cmd.Flags()
	flags.BoolVarP(&deployConfig.exclusively, "exclusively", "e", false, "Only deploy the named stacks, not their dependencies")
	flags.BoolVar(&deployConfig.progress, "progress", true, "Show the status of the stack being deployed")
	return cmd
}

func imageTag(s config.Server) string {
	if s.ImageTag == "" {
		return resources.DEFAULT_IMAGE_TAG
	}
	return s.ImageTag
}

func printResult(cmd *cobra.Command, r deploy.StackResult) {
	out := cmd.OutOrStdout()
	if r.Unchanged {
		fmt.Fprintf(out, "%s (no changes)\n", r.Stack)
	} else {
		fmt.Fprintf(out, "%s %s\n", r.Stack, r.Status)
	}
	keys := make([]string, 0, len(r.Outputs))
	for k := range r.Outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %s.%s = %s\n", r.Stack, k, r.Outputs[k])
	}
}

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff [stacks...]",
		Short: "Compare the deployed templates with the synthesized ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, asm, err := synth(cmd)
			if err != nil {
				return err
			}
			d, err := newDeployer(cmd, cfg)
			if err != nil {
				return err
			}
			diffs, err := d.Diff(cmd.Context(), asm, args)
			if err != nil {
				return err
			}
			return deploy.PrintDiff(cmd.OutOrStdout(), diffs)
		},
	}
}

var destroyConfig struct {
	exclusively bool
}

func newDestroyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "destroy [stacks...]",
		Short: "Delete the stacks, with the stacks that depend on them",
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
			d, err := newDeployer(cmd, cfg)
			if err != nil {
				return err
			}
			deleted, err := d.Destroy(cmd.Context(), asm.Manifest, deploy.DestroyOptions{
				Stacks:      args,
				Exclusively: destroyConfig.exclusively,
			})
			for _, name := range deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s deleted\n", name)
			}
			return err
		},
	}
	cmd.Flags().BoolVarP(&destroyConfig.exclusively, "exclusively", "e", false, "Only delete the named stacks, not the stacks depending on them")
	return cmd
}
