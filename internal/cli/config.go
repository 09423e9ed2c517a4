package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/internal/configloader"
	"github.com/yaklabco/mdpatch/pkg/config"
)

func newConfigCommand(globals *globalFlags) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration that patch, apply and plan would use from the
current directory, after merging the configuration files, MDPATCH_*
environment variables and global flags.`,
		Example: `  mdpatch config
  MDPATCH_FORMAT=json mdpatch config --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var cli *configloader.Overrides
			if cmd.Flags().Changed("color") {
				color := config.ColorMode(globals.color)
				cli = &configloader.Overrides{Color: &color}
			}

			result, err := resolveConfig(cmd, globals, cli)
			if err != nil {
				return err
			}

			var out []byte
			if asJSON {
				out, err = result.Config.ToJSON()
			} else {
				out, err = result.Config.ToYAMLWithComments(configSources(result))
			}
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}

// configSources describes the layers behind a resolved configuration.
func configSources(result *configloader.LoadResult) string {
	sources := append([]string{"defaults"}, result.LoadedFrom...)

	var b strings.Builder
	b.WriteString("Effective mdpatch configuration, merged from:")
	for _, source := range sources {
		fmt.Fprintf(&b, "\n  %s", source)
	}
	return b.String()
}
