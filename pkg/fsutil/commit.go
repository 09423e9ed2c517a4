package fsutil

import (
	"context"
	"fmt"
)

// Committer installs new content for files read with ReadFile or ReadFileFS.
// The zero value writes to the OS file system with backups disabled.
type Committer struct {
	FS     FS
	Backup BackupConfig
}

// NewCommitter returns a Committer on the OS file system.
func NewCommitter(backup BackupConfig) *Committer {
	return &Committer{FS: OSFS{}, Backup: backup}
}

// CommitResult describes a successful commit.
type CommitResult struct {
	// BackupPath is where the previous bytes were saved, or "" without a backup.
	BackupPath string
}

// Commit replaces the file described by base with content.
//
// The steps are:
//  1. Re-read the file and fail with ErrConcurrentModification if its bytes
//     differ from base.
//  2. Copy the current bytes to the backup path, unless disabled.
//  3. Write content to a temp file in the same directory, sync and close it.
//  4. Rename the temp file over the target.
//
// Failures in steps 1 to 3 leave the target untouched. Errors from steps 2 to 4
// are *CommitError values.
func (c *Committer) Commit(ctx context.Context, base *FileInfo, content []byte) (*CommitResult, error) {
	if base == nil {
		return nil, ErrNilFileInfo
	}

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("commit: %w", ctx.Err())
	default:
	}

	fsys := c.fs()

	current, err := fsys.ReadFile(base.Path)
	if err != nil {
		return nil, &CommitError{Path: base.Path, Step: StepVerify, Err: classifyPathError(base.Path, "re-read", err)}
	}

	if !base.Matches(current) {
		return nil, &CommitError{Path: base.Path, Step: StepVerify, Err: ErrConcurrentModification}
	}

	result := &CommitResult{}

	backupPath, err := CreateBackup(ctx, fsys, base.Path, current, c.Backup)
	if err != nil {
		return nil, &CommitError{Path: base.Path, Step: StepBackup, Err: err}
	}
	result.BackupPath = backupPath

	if err := WriteAtomicFS(ctx, fsys, base.Path, content, base.Mode.Perm()); err != nil {
		return result, err
	}

	return result, nil
}

func (c *Committer) fs() FS {
	if c.FS == nil {
		return OSFS{}
	}
	return c.FS
}
