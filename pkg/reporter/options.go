package reporter

import (
	"io"
	"os"
)

// Options configures a Reporter.
type Options struct {
	// Writer receives the report. Nil means os.Stdout.
	Writer io.Writer

	// ErrorWriter receives failed operations in the diff and short formats.
	// Nil means os.Stderr.
	ErrorWriter io.Writer

	// Format selects the reporter.
	Format Format

	// Color is "auto", "always" or "never".
	Color string

	// ShowSummary ends text reports with a totals line.
	ShowSummary bool

	// Compact writes the JSON document on one line.
	Compact bool

	// WorkingDir shortens file paths in text reports. Empty means the
	// process working directory.
	WorkingDir string
}

// DefaultOptions returns Options for a diff report on the standard streams.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		ErrorWriter: os.Stderr,
		Format:      FormatDiff,
		Color:       "auto",
		ShowSummary: true,
	}
}
