package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/internal/configloader"
	"github.com/yaklabco/mdpatch/internal/logging"
	"github.com/yaklabco/mdpatch/pkg/config"
)

// runFlags are the flags shared by the commands that execute operations.
type runFlags struct {
	format   string
	dryRun   bool
	force    bool
	noBackup bool
	failFast bool
	strict   bool
	context  int
}

func addRunFlags(cmd *cobra.Command, flags *runFlags) {
	cmd.Flags().StringVarP(&flags.format, "format", "F", "diff", "output format: diff, json, short")
	cmd.Flags().BoolVar(&flags.force, "force", false, "allow replace and delete without a fingerprint")
	cmd.Flags().BoolVar(&flags.noBackup, "no-backup", false, "do not write a .bak snapshot before changing a file")
	cmd.Flags().BoolVar(&flags.strict, "strict-content", false,
		"fail when content would add headings or several blocks")
	cmd.Flags().IntVar(&flags.context, "context", config.DefaultContextLines, "lines of context in diffs")
}

// overrides turns the flags the user actually set into a CLI layer.
func (f *runFlags) overrides(cmd *cobra.Command, globals *globalFlags) *configloader.Overrides {
	o := &configloader.Overrides{}
	changed := cmd.Flags().Changed

	if changed("format") {
		format := config.OutputFormat(f.format)
		o.Format = &format
	}
	if changed("dry-run") || f.dryRun {
		o.DryRun = &f.dryRun
	}
	if changed("force") {
		o.Force = &f.force
	}
	if changed("no-backup") {
		enabled := !f.noBackup
		o.Backup = &configloader.BackupOverrides{Enabled: &enabled}
	}
	if changed("fail-fast") {
		o.FailFast = &f.failFast
	}
	if changed("strict-content") {
		o.StrictContent = &f.strict
	}
	if changed("context") {
		o.ContextLines = &f.context
	}
	if changed("color") {
		color := config.ColorMode(globals.color)
		o.Color = &color
	}

	return o
}

// loadConfig resolves the layered configuration for a command.
func loadConfig(cmd *cobra.Command, globals *globalFlags, cli *configloader.Overrides) (*config.Config, error) {
	result, err := resolveConfig(cmd, globals, cli)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// resolveConfig loads the configuration and logs its warnings.
func resolveConfig(
	cmd *cobra.Command,
	globals *globalFlags,
	cli *configloader.Overrides,
) (*configloader.LoadResult, error) {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: globals.configPath,
		NoConfig:     globals.noConfig,
		CLI:          cli,
	})
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}

	logger.Debug("configuration loaded",
		"files", result.LoadedFrom,
		"format", result.Config.Format,
		"flavor", result.Config.Flavor,
		logging.FieldDryRun, result.Config.DryRun,
	)

	return result, nil
}

// commandContext returns the command's context, or Background.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
