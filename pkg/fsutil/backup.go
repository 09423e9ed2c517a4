package fsutil

import (
	"context"
	"fmt"
)

// DefaultBackupSuffix is appended to a file's path to name its backup.
const DefaultBackupSuffix = ".bak"

// BackupConfig controls backup behavior.
type BackupConfig struct {
	// Enabled indicates whether backups should be created.
	Enabled bool

	// Suffix is appended to the file path. Empty means DefaultBackupSuffix.
	Suffix string
}

// DefaultBackupConfig returns the default backup settings: enabled, ".bak".
func DefaultBackupConfig() BackupConfig {
	return BackupConfig{
		Enabled: true,
		Suffix:  DefaultBackupSuffix,
	}
}

// BackupPath returns the backup path for path, or "" when backups are disabled.
func (c BackupConfig) BackupPath(path string) string {
	if !c.Enabled {
		return ""
	}
	suffix := c.Suffix
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	return path + suffix
}

// CreateBackup writes content to the backup path of path, replacing any
// earlier backup. It returns the backup path, or "" when backups are disabled.
func CreateBackup(ctx context.Context, fsys FS, path string, content []byte, cfg BackupConfig) (string, error) {
	backupPath := cfg.BackupPath(path)
	if backupPath == "" {
		return "", nil
	}

	if err := WriteAtomicFS(ctx, fsys, backupPath, content, DefaultFileMode); err != nil {
		return "", fmt.Errorf("create backup %s: %w", backupPath, err)
	}

	return backupPath, nil
}
