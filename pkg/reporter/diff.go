package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/mdpatch/internal/ui/pretty"
	"github.com/yaklabco/mdpatch/pkg/diff"
	"github.com/yaklabco/mdpatch/pkg/runner"
)

// DiffReporter writes each change as a git-style unified diff.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Report implements Reporter. Failures go to the error writer so that the
// standard output stays a valid patch.
func (r *DiffReporter) Report(_ context.Context, result *runner.Result) error {
	if result == nil {
		return nil
	}

	var changed, additions, deletions int
	for i := range result.Changes {
		d := result.Changes[i].Diff
		if !d.HasChanges() {
			continue
		}

		changed++
		additions += d.Additions
		deletions += d.Deletions
		r.writeDiff(d)
	}

	writeFailures(r.errorWriter(), result, r.styles.Error.Render, r.opts.WorkingDir)

	if r.opts.ShowSummary && changed > 0 {
		r.writeSummary(result, changed, additions, deletions)
	}

	return nil
}

func (r *DiffReporter) errorWriter() io.Writer {
	if r.opts.ErrorWriter != nil {
		return r.opts.ErrorWriter
	}
	return r.out
}

// writeDiff outputs one change.
func (r *DiffReporter) writeDiff(d *diff.Diff) {
	path := displayPath(d.Path, r.opts.WorkingDir)

	fmt.Fprintln(r.out, r.styles.DiffHeader.Render(fmt.Sprintf("diff --git a/%s b/%s", path, path)))
	fmt.Fprintln(r.out, r.styles.DiffRemove.Render("--- a/"+path))
	fmt.Fprintln(r.out, r.styles.DiffAdd.Render("+++ b/"+path))

	for _, hunk := range d.Hunks {
		fmt.Fprintln(r.out, r.styles.DiffHunk.Render(hunk.Header()))
		for _, line := range hunk.Lines {
			r.writeDiffLine(line)
		}
	}
}

// writeDiffLine formats a single diff line with color.
func (r *DiffReporter) writeDiffLine(line diff.Line) {
	var styled string
	switch line.Kind {
	case diff.LineAdd:
		styled = r.styles.DiffAdd.Render(line.String())
	case diff.LineRemove:
		styled = r.styles.DiffRemove.Render(line.String())
	default:
		styled = r.styles.DiffContext.Render(line.String())
	}
	fmt.Fprintln(r.out, styled)

	if line.NoNewline {
		fmt.Fprintln(r.out, r.styles.Dim.Render(`\ No newline at end of file`))
	}
}

// writeSummary writes a git-style totals line, marked as planned in dry runs.
func (r *DiffReporter) writeSummary(result *runner.Result, changes, additions, deletions int) {
	parts := []string{fmt.Sprintf("%d %s", changes, plural(changes, "change", "changes"))}

	if additions > 0 {
		parts = append(parts, r.styles.DiffAdd.Render(
			fmt.Sprintf("%d %s(+)", additions, plural(additions, "insertion", "insertions"))))
	}
	if deletions > 0 {
		parts = append(parts, r.styles.DiffRemove.Render(
			fmt.Sprintf("%d %s(-)", deletions, plural(deletions, "deletion", "deletions"))))
	}

	line := strings.Join(parts, ", ")
	if result.DryRun {
		line += r.styles.Dim.Render(" (dry run, nothing written)")
	}

	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, line)
}
