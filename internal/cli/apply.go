package cli

import (
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/pkg/batch"
)

type applyFlags struct {
	runFlags
}

func newApplyCommand(globals *globalFlags) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "apply <batch.yml>",
		Short: "Apply every operation in a batch file",
		Long: `Apply the operations of a YAML batch file in declared order.

Each operation reads, patches and writes its file before the next one starts.
A failed operation does not undo earlier ones; later operations still run
unless --fail-fast is set. The exit code is that of the first failure.`,
		Example: `  mdpatch apply docs.yml
  mdpatch apply docs.yml --fail-fast --format json
  mdpatch apply docs.yml --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, globals, &flags.runFlags, args[0])
		},
	}

	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the diffs without writing")
	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "stop at the first failed operation")
	addRunFlags(cmd, &flags.runFlags)

	return cmd
}

func newPlanCommand(globals *globalFlags) *cobra.Command {
	flags := &applyFlags{}

	cmd := &cobra.Command{
		Use:   "plan <batch.yml>",
		Short: "Preview a batch file without writing",
		Long: `Show the diff of every operation in a batch file without writing.

Operations on the same file are chained in memory, so each diff is exactly
what apply would write at that point in the batch.`,
		Example: `  mdpatch plan docs.yml
  mdpatch plan docs.yml --format short`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.dryRun = true
			return runBatch(cmd, globals, &flags.runFlags, args[0])
		},
	}

	cmd.Flags().BoolVar(&flags.failFast, "fail-fast", false, "stop at the first failed operation")
	addRunFlags(cmd, &flags.runFlags)

	return cmd
}

func runBatch(cmd *cobra.Command, globals *globalFlags, flags *runFlags, path string) error {
	b, err := batch.Load(commandContext(cmd), path)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, globals, flags.overrides(cmd, globals))
	if err != nil {
		return err
	}

	return execute(cmd, cfg, b.Items)
}
