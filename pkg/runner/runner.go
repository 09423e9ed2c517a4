package runner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/mdpatch/internal/logging"
	"github.com/yaklabco/mdpatch/pkg/batch"
	"github.com/yaklabco/mdpatch/pkg/diff"
	"github.com/yaklabco/mdpatch/pkg/fsutil"
	"github.com/yaklabco/mdpatch/pkg/parser"
	"github.com/yaklabco/mdpatch/pkg/parser/goldmark"
	"github.com/yaklabco/mdpatch/pkg/patch"
)

// ErrUnsafeContent is returned under StrictContent when append or replace
// content would not land as a single block.
var ErrUnsafeContent = errors.New("content would change document structure")

// Runner executes operations one at a time, in declared order. Each
// operation runs its own read, parse, locate, validate, patch and write
// cycle; a failure does not roll back earlier operations.
type Runner struct {
	// Committer writes changed files. Its FS is also used for reads.
	Committer *fsutil.Committer

	// Inspector checks append and replace content. Nil disables the guard.
	Inspector *goldmark.Inspector
}

// New creates a Runner. A nil committer writes to the OS file system
// without backups.
func New(committer *fsutil.Committer, inspector *goldmark.Inspector) *Runner {
	if committer == nil {
		committer = &fsutil.Committer{}
	}
	return &Runner{Committer: committer, Inspector: inspector}
}

// Run executes items and returns one Change per executed operation.
//
// With DryRun, operations on the same path see the bytes planned by the
// earlier ones, so each previewed diff equals the one a writing run would
// produce. With FailFast, the run stops after the first failure and the
// remaining operations are counted as skipped.
//
// The returned error is non-nil only when ctx is cancelled; the Result then
// holds the operations completed before cancellation.
func (r *Runner) Run(ctx context.Context, items []batch.Item, opts Options) (*Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	result := &Result{
		DryRun:  opts.DryRun,
		Changes: make([]Change, 0, len(items)),
	}
	planned := make(map[string][]byte)

	var runErr error
	for i, item := range items {
		select {
		case <-ctx.Done():
			runErr = fmt.Errorf("run cancelled: %w", ctx.Err())
		default:
		}
		if runErr != nil {
			result.Skipped = len(items) - i
			break
		}

		opCtx := logging.WithFields(ctx,
			logging.FieldFile, item.File,
			logging.FieldOperation, item.Operation.Kind.String(),
			logging.FieldHeading, item.Operation.Path.String(),
			logging.FieldIndex, item.Operation.Index,
		)

		change := r.runOne(opCtx, item, opts, planned)
		result.Changes = append(result.Changes, change)

		opLogger := logging.FromContext(opCtx)
		if change.Failed() {
			opLogger.Error("operation failed",
				logging.FieldStatus, change.Status,
				logging.FieldDuration, change.Duration,
				logging.FieldError, change.Err,
			)
			if opts.FailFast {
				result.Skipped = len(items) - i - 1
				break
			}
			continue
		}
		opLogger.Debug("operation finished",
			logging.FieldStatus, change.Status,
			logging.FieldDuration, change.Duration,
		)
	}

	result.Duration = time.Since(start)
	result.finish()

	counts := result.Counts()
	logger.Debug("run finished",
		logging.FieldOperations, len(items),
		logging.FieldApplied, counts.Applied,
		logging.FieldFailed, counts.Failed,
		logging.FieldDryRun, opts.DryRun,
		logging.FieldDuration, result.Duration,
	)

	return result, runErr
}

// runOne executes a single operation.
func (r *Runner) runOne(
	ctx context.Context,
	item batch.Item,
	opts Options,
	planned map[string][]byte,
) (change Change) {
	start := time.Now()
	change = newChange(item)
	defer func() { change.Duration = time.Since(start) }()

	warnings, err := r.guard(ctx, item, opts.StrictContent)
	change.Warnings = warnings
	if err != nil {
		change.fail(err)
		return change
	}

	key := filepath.Clean(item.File)

	original, base, err := r.load(ctx, key, opts.DryRun, planned)
	if err != nil {
		change.fail(err)
		return change
	}

	doc, err := parser.Parse(ctx, item.File, original)
	if err != nil {
		change.fail(fmt.Errorf("parse %s: %w", item.File, err))
		return change
	}

	outcome, err := patch.Apply(doc, item.Operation, patch.Options{Force: opts.Force})
	if err != nil {
		change.fail(fmt.Errorf("%s %q: %w", item.Operation.Kind, change.Heading, err))
		return change
	}

	if !outcome.Changed() {
		change.Status = StatusNoop
		return change
	}

	change.Diff = diff.GenerateWithContext(item.File, original, outcome.Content, opts.ContextLines)

	if opts.DryRun {
		planned[key] = outcome.Content
		change.Status = StatusDryRun
		return change
	}

	committed, err := r.Committer.Commit(ctx, base, outcome.Content)
	if committed != nil {
		change.Backup = committed.BackupPath
		if committed.BackupPath != "" {
			logging.FromContext(ctx).Debug("backup written", logging.FieldBackup, committed.BackupPath)
		}
	}
	if err != nil {
		change.fail(err)
		return change
	}

	change.Status = StatusApplied
	return change
}

// load returns the bytes an operation edits. A writing run always re-reads
// the file; a dry run prefers the bytes planned by earlier operations.
func (r *Runner) load(
	ctx context.Context,
	path string,
	dryRun bool,
	planned map[string][]byte,
) ([]byte, *fsutil.FileInfo, error) {
	if dryRun {
		if content, ok := planned[path]; ok {
			return content, nil, nil
		}
	}

	fsys := r.Committer.FS
	if fsys == nil {
		fsys = fsutil.OSFS{}
	}

	return fsutil.ReadFileFS(ctx, fsys, path)
}

// guard inspects append and replace content. Findings are warnings, or an
// ErrUnsafeContent failure when strict is set.
func (r *Runner) guard(ctx context.Context, item batch.Item, strict bool) ([]string, error) {
	if r.Inspector == nil || !item.Operation.Kind.NeedsContent() {
		return nil, nil
	}

	summary, err := r.Inspector.Inspect(ctx, []byte(item.Operation.Content))
	if err != nil {
		return nil, fmt.Errorf("inspect content: %w", err)
	}

	concerns := summary.ContentConcerns()
	if len(concerns) == 0 {
		return nil, nil
	}

	if strict {
		return concerns, fmt.Errorf("%w: %s", ErrUnsafeContent, strings.Join(concerns, "; "))
	}

	logger := logging.FromContext(ctx)
	for _, concern := range concerns {
		logger.Warn(concern)
	}

	return concerns, nil
}
