// Package reporter renders run results as diffs, JSON or one-line summaries.
package reporter

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/mdpatch/pkg/runner"
)

// Reporter formats and writes run results.
type Reporter interface {
	// Report writes formatted output for the given result.
	Report(ctx context.Context, result *runner.Result) error
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	defaults := DefaultOptions()
	if opts.Writer == nil {
		opts.Writer = defaults.Writer
	}
	if opts.ErrorWriter == nil {
		opts.ErrorWriter = defaults.ErrorWriter
	}

	if opts.Format == "" {
		opts.Format = FormatDiff
	}

	build := opts.Format.constructor()
	if build == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, opts.Format)
	}
	return build(opts), nil
}

// displayPath makes path relative to workDir (or the process working
// directory). Paths that climb more than two levels fall back to the base name.
func displayPath(path, workDir string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return filepath.Base(path)
		}
		workDir = wd
	}
	rel, err := filepath.Rel(workDir, path)
	if err != nil {
		return filepath.Base(path)
	}
	if strings.Count(rel, "..") > 2 {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}

// address renders "file: # Title ## Section [2]".
func address(change *runner.Change, workDir string) string {
	return fmt.Sprintf("%s: %s [%d]", displayPath(change.File, workDir), change.Heading, change.Index)
}

// writeFailures lists failed operations on w.
func writeFailures(w io.Writer, result *runner.Result, render func(...string) string, workDir string) {
	for i := range result.Changes {
		change := &result.Changes[i]
		if !change.Failed() {
			continue
		}
		fmt.Fprintf(w, "%s %s %s: %s\n", render("error:"), change.Operation, address(change, workDir), change.Error)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
