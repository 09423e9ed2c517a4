package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/internal/configloader"
	"github.com/yaklabco/mdpatch/internal/logging"
	"github.com/yaklabco/mdpatch/pkg/config"
)

// initFlags holds the flags for the init command.
type initFlags struct {
	force  bool
	format string
	output string
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mdpatch configuration file",
		Long: `Create a new .mdpatch.yml configuration file in the current directory
holding the default settings, each documented.

YAML is a superset of JSON, so a JSON template is still read from .mdpatch.yml.`,
		Example: `  # Create .mdpatch.yml
  mdpatch init

  # Write the defaults as JSON
  mdpatch init --format json

  # Write to a custom file path
  mdpatch init --output mdpatch.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.force, "force", false, "Overwrite existing configuration file")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", configloader.ProjectConfigName, "Output file path")

	return cmd
}

func runInit(cmd *cobra.Command, flags *initFlags) error {
	logger := logging.NewWithWriter(cmd.ErrOrStderr(), logging.LevelFromEnv("info"), false)

	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("invalid format %q: must be yaml or json", flags.format)
	}

	absPath, err := filepath.Abs(flags.output)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{Format: flags.format})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := configloader.WriteConfig(absPath, content, flags.force); err != nil {
		if errors.Is(err, configloader.ErrConfigExists) {
			return fmt.Errorf("file %q already exists; use --force to overwrite", flags.output)
		}
		return err
	}

	logger.Info("created configuration file", logging.FieldPath, flags.output)
	logger.Info("run 'mdpatch inspect <file>' to see addressable headings and blocks")

	return nil
}
