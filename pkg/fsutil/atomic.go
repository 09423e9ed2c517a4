package fsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultFileMode is the default permission mode for new files.
const DefaultFileMode os.FileMode = 0o644

// Step names a stage of an atomic write or a commit.
type Step string

// Commit steps, in the order they run.
const (
	StepVerify Step = "verify"
	StepBackup Step = "backup"
	StepCreate Step = "create"
	StepWrite  Step = "write"
	StepSync   Step = "sync"
	StepClose  Step = "close"
	StepChmod  Step = "chmod"
	StepRename Step = "rename"
)

// CommitError reports the step at which writing a file failed.
// TempPath is set only when a completed temp file was left on disk because
// the final rename failed; it holds the full new content.
type CommitError struct {
	Path     string
	Step     Step
	TempPath string
	Err      error
}

func (e *CommitError) Error() string {
	msg := fmt.Sprintf("%s %s: %v", e.Step, e.Path, e.Err)
	if e.TempPath != "" {
		msg += fmt.Sprintf(" (new content left in %s)", e.TempPath)
	}
	return msg
}

func (e *CommitError) Unwrap() error {
	return e.Err
}

// WriteAtomic writes content to path through a temp file in the same
// directory followed by a rename. The target either keeps its old bytes or
// holds exactly content. A zero mode means DefaultFileMode.
func WriteAtomic(ctx context.Context, path string, content []byte, mode os.FileMode) error {
	return WriteAtomicFS(ctx, OSFS{}, path, content, mode)
}

// WriteAtomicFS is WriteAtomic on an arbitrary FS.
//
// A failure before the rename removes the temp file. A failed rename leaves
// the temp file in place and reports its path in the returned *CommitError.
func WriteAtomicFS(ctx context.Context, fsys FS, path string, content []byte, mode os.FileMode) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("write atomic: %w", ctx.Err())
	default:
	}

	if mode == 0 {
		mode = DefaultFileMode
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)

	tmp, err := fsys.CreateTemp(dir, base+".tmp.*")
	if err != nil {
		return &CommitError{Path: path, Step: StepCreate, Err: err}
	}
	tmpPath := tmp.Name()

	fail := func(step Step, err error) error {
		_ = tmp.Close()
		_ = fsys.Remove(tmpPath)
		return &CommitError{Path: path, Step: step, Err: err}
	}

	if _, err := tmp.Write(content); err != nil {
		return fail(StepWrite, err)
	}

	if err := tmp.Sync(); err != nil {
		return fail(StepSync, err)
	}

	if err := tmp.Close(); err != nil {
		_ = fsys.Remove(tmpPath)
		return &CommitError{Path: path, Step: StepClose, Err: err}
	}

	if err := fsys.Chmod(tmpPath, mode); err != nil {
		_ = fsys.Remove(tmpPath)
		return &CommitError{Path: path, Step: StepChmod, Err: err}
	}

	if err := fsys.Rename(tmpPath, path); err != nil {
		return &CommitError{Path: path, Step: StepRename, TempPath: tmpPath, Err: err}
	}

	return nil
}

// FailedStep returns the step recorded in err, or "" if err carries no
// *CommitError.
func FailedStep(err error) Step {
	var commitErr *CommitError
	if errors.As(err, &commitErr) {
		return commitErr.Step
	}
	return ""
}
