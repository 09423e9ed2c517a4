package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdpatch/pkg/batch"
)

type patchFlags struct {
	runFlags

	file        string
	headings    []string
	index       int
	operation   string
	content     string
	contentFile string
	fingerprint string
}

func newPatchCommand(globals *globalFlags) *cobra.Command {
	flags := &patchFlags{}

	cmd := &cobra.Command{
		Use:     "patch",
		Short:   "Apply a single operation to a Markdown file",
		Long:    patchLongDescription,
		Example: patchExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPatch(cmd, globals, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "Markdown file to edit")
	cmd.Flags().StringArrayVarP(&flags.headings, "heading", "H", nil,
		`heading path element, repeatable; a single value is split on markers ("# Guide ## Install")`)
	cmd.Flags().IntVarP(&flags.index, "index", "i", 0, "zero-based block index within the section")
	cmd.Flags().StringVar(&flags.operation, "op", "", "operation: append, replace, delete")
	cmd.Flags().StringVarP(&flags.content, "content", "c", "", "block content for append and replace")
	cmd.Flags().StringVar(&flags.contentFile, "content-file", "", `read content from a file ("-" for stdin)`)
	cmd.Flags().StringVarP(&flags.fingerprint, "fingerprint", "p", "",
		"regular expression the target block must match")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "show the diff without writing")
	addRunFlags(cmd, &flags.runFlags)

	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("heading")
	_ = cmd.MarkFlagRequired("op")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file")

	return cmd
}

const patchLongDescription = `Apply one append, replace or delete operation to a Markdown file.

The target is the section named by the heading path and the block at --index
within it. Replace and delete need a --fingerprint of the current block or
--force. Re-running an operation that is already applied changes nothing.
`

const patchExample = `  # Extend the first block of a nested section
  mdpatch patch -f README.md -H "# Project" -H "## Install" --op append -c "Run make."

  # Replace a block only while it still starts with "Download"
  mdpatch patch -f README.md -H "# Project ## Install" -i 1 --op replace -p "^Download" -c "Install with go install."

  # Preview a forced delete
  mdpatch patch -f CHANGELOG.md -H "# Changelog" -i 0 --op delete --force --dry-run`

func runPatch(cmd *cobra.Command, globals *globalFlags, flags *patchFlags) error {
	content := flags.content
	if flags.contentFile != "" {
		data, err := readContent(cmd.InOrStdin(), flags.contentFile)
		if err != nil {
			return err
		}
		content = data
	}

	heading := batch.HeadingList(flags.headings)
	if len(flags.headings) == 1 {
		heading = batch.SplitHeading(flags.headings[0])
	}

	item, err := batch.Entry{
		File:        flags.file,
		Heading:     heading,
		Index:       flags.index,
		Operation:   flags.operation,
		Content:     content,
		Fingerprint: flags.fingerprint,
	}.Resolve()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd, globals, flags.overrides(cmd, globals))
	if err != nil {
		return err
	}

	return execute(cmd, cfg, []batch.Item{item})
}

func readContent(stdin io.Reader, path string) (string, error) {
	if path == "-" {
		if stdin == nil {
			return "", errors.New("no standard input")
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read content from stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read content file: %w", err)
	}
	return string(data), nil
}
