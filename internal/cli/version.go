package cli

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/internal/logging"
)

type versionInfo struct {
	BuildInfo

	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func newVersionCommand(info BuildInfo) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  `Print the version, commit hash, build date and toolchain of mdpatch.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v := versionInfo{
				BuildInfo: info,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(v); err != nil {
					return fmt.Errorf("encode version: %w", err)
				}
				return nil
			}

			logger := log.NewWithOptions(cmd.OutOrStdout(), log.Options{})
			logger.SetLevel(log.InfoLevel)
			logger.Info("mdpatch",
				logging.FieldVersion, v.Version,
				logging.FieldCommit, v.Commit,
				logging.FieldBuilt, v.Date,
				logging.FieldGo, v.GoVersion,
				logging.FieldPlatform, v.Platform,
			)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")

	return cmd
}
