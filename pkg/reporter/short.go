package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/yaklabco/mdpatch/internal/ui/pretty"
	"github.com/yaklabco/mdpatch/pkg/runner"
)

// ShortReporter writes one line per change:
//
//	Applied: +2 -1 (~14 chars) docs/guide.md: # Guide ## Install [0]
type ShortReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewShortReporter creates a new short reporter.
func NewShortReporter(opts Options) *ShortReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &ShortReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Report implements Reporter.
func (r *ShortReporter) Report(_ context.Context, result *runner.Result) error {
	if result == nil {
		return nil
	}

	for i := range result.Changes {
		r.writeChange(&result.Changes[i])
	}

	if r.opts.ShowSummary && len(result.Changes) > 1 {
		r.writeSummary(result)
	}

	return nil
}

func (r *ShortReporter) writeChange(change *runner.Change) {
	where := r.styles.Address.Render(address(change, r.opts.WorkingDir))

	switch change.Status {
	case runner.StatusApplied, runner.StatusDryRun:
		label := r.styles.Applied.Render("Applied")
		if change.Status == runner.StatusDryRun {
			label = r.styles.Planned.Render("Planned")
		}
		stats := change.Stats()
		fmt.Fprintf(r.out, "%s: %s %s %s %s\n", label,
			r.styles.DiffAdd.Render(fmt.Sprintf("+%d", stats.LinesAdded)),
			r.styles.DiffRemove.Render(fmt.Sprintf("-%d", stats.LinesRemoved)),
			r.styles.Dim.Render(fmt.Sprintf("(~%d chars)", stats.CharsInserted+stats.CharsDeleted)),
			where)
	case runner.StatusNoop:
		fmt.Fprintf(r.out, "%s %s\n", r.styles.Noop.Render("No changes:"), where)
	case runner.StatusError:
		fmt.Fprintf(r.out, "%s %s %s\n", r.styles.Error.Render("Failed:"), where, change.Error)
	}
}

// writeSummary writes "N applied, N unchanged, N failed" with zero counts
// omitted.
func (r *ShortReporter) writeSummary(result *runner.Result) {
	counts := result.Counts()

	var parts []string
	add := func(n int, label string, render func(...string) string) {
		if n > 0 {
			parts = append(parts, render(fmt.Sprintf("%d %s", n, label)))
		}
	}
	add(counts.Applied, "applied", r.styles.Applied.Render)
	add(counts.DryRun, "planned", r.styles.Planned.Render)
	add(counts.Noop, "unchanged", r.styles.Noop.Render)
	add(counts.Failed, "failed", r.styles.Failure.Render)
	add(counts.Skipped, "skipped", r.styles.Dim.Render)

	title := r.styles.SummaryTitle.Render(fmt.Sprintf("%d %s:", len(result.Changes)+counts.Skipped,
		plural(len(result.Changes)+counts.Skipped, "operation", "operations")))
	fmt.Fprintf(r.out, "%s %s\n", title, strings.Join(parts, ", "))
}
