package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/internal/logging"
	"github.com/yaklabco/mdpatch/pkg/batch"
	"github.com/yaklabco/mdpatch/pkg/config"
	"github.com/yaklabco/mdpatch/pkg/fsutil"
	goldmarkparser "github.com/yaklabco/mdpatch/pkg/parser/goldmark"
	"github.com/yaklabco/mdpatch/pkg/reporter"
	"github.com/yaklabco/mdpatch/pkg/runner"
)

// execute runs items under cfg, reports the result and maps failures to an
// exit code.
func execute(cmd *cobra.Command, cfg *config.Config, items []batch.Item) error {
	ctx := commandContext(cmd)
	logger := logging.FromContext(ctx)

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	format, err := reporter.ParseFormat(string(cfg.Format))
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	rep, err := reporter.New(reporter.Options{
		Writer:      cmd.OutOrStdout(),
		ErrorWriter: cmd.ErrOrStderr(),
		Format:      format,
		Color:       string(cfg.Color),
		ShowSummary: true,
		WorkingDir:  workDir,
	})
	if err != nil {
		return fmt.Errorf("create reporter: %w", err)
	}

	patchRunner := runner.New(
		fsutil.NewCommitter(cfg.Backup.Fsutil()),
		goldmarkparser.New(string(cfg.Flavor)),
	)

	logger.Debug("starting run",
		logging.FieldOperations, len(items),
		logging.FieldDryRun, cfg.DryRun,
		logging.FieldWorkingDir, workDir,
	)

	result, runErr := patchRunner.Run(ctx, items, runner.OptionsFromConfig(cfg))

	if result != nil {
		if err := rep.Report(ctx, result); err != nil {
			return fmt.Errorf("report results: %w", err)
		}
	}

	if runErr != nil {
		return errors.Join(errors.New("run interrupted"), runErr)
	}

	return exitCodeFromResult(result)
}
