// Package runner executes patch operations in declared order and collects
// the per-operation results of a run.
package runner

import (
	"github.com/yaklabco/mdpatch/pkg/config"
	"github.com/yaklabco/mdpatch/pkg/diff"
)

// Options controls how a batch is executed.
type Options struct {
	// DryRun computes results and diffs without writing. Operations on the
	// same file are chained in memory.
	DryRun bool

	// Force authorizes destructive operations that carry no fingerprint.
	Force bool

	// FailFast stops the run after the first failed operation.
	FailFast bool

	// StrictContent fails append and replace operations whose content
	// contains headings or several top-level blocks.
	StrictContent bool

	// ContextLines is the number of unchanged lines around each diff hunk.
	ContextLines int
}

// DefaultOptions returns Options for a writing, best-effort run.
func DefaultOptions() Options {
	return Options{ContextLines: diff.DefaultContextLines}
}

// OptionsFromConfig extracts run options from a resolved configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		return DefaultOptions()
	}
	return Options{
		DryRun:        cfg.DryRun,
		Force:         cfg.Force,
		FailFast:      cfg.FailFast,
		StrictContent: cfg.StrictContent,
		ContextLines:  cfg.ContextLines,
	}
}
