// Package cli provides the Cobra command structure for mdpatch.
package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	verbose    bool
	quiet      bool
	configPath string
	noConfig   bool
	color      string
}

// NewRootCommand creates the root mdpatch command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	globals := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "mdpatch",
		Short: "Structural, idempotent edits to Markdown documents",
		Long: `mdpatch edits Markdown by structure rather than by line number.

Content is addressed by a heading path such as "# Guide ## Install" plus the
index of a block within that section. Edits append, replace or delete a block,
are idempotent, can be guarded by a fingerprint of the expected content, and
are written atomically with an optional backup.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if globals.verbose && globals.quiet {
				return errors.New("--verbose and --quiet are mutually exclusive")
			}
			switch {
			case globals.verbose:
				logging.SetLevel("debug")
			case globals.quiet:
				logging.SetLevel("error")
			}
			cmd.SetContext(logging.WithLogger(commandContext(cmd), logging.Default()))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	rootCmd.PersistentFlags().BoolVarP(&globals.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&globals.quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().StringVar(&globals.configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVar(&globals.noConfig, "no-config", false, "ignore configuration files")
	rootCmd.PersistentFlags().StringVar(&globals.color, "color", "auto",
		"colorize output: auto, always, never")

	// Add subcommands.
	rootCmd.AddCommand(withExitCodes(newPatchCommand(globals)))
	rootCmd.AddCommand(withExitCodes(newApplyCommand(globals)))
	rootCmd.AddCommand(withExitCodes(newPlanCommand(globals)))
	rootCmd.AddCommand(newInspectCommand(globals))
	rootCmd.AddCommand(newSchemaCommand())
	rootCmd.AddCommand(newConfigCommand(globals))
	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newVersionCommand(info))

	withExitCodes(rootCmd)

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(globals.color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
