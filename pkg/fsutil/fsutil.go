// Package fsutil reads Markdown files and commits edits to them safely.
// A commit re-reads the file to detect concurrent changes, keeps a sidecar
// backup of the previous bytes, and installs the new bytes with a temp file
// and a rename so readers never observe a partial write.
package fsutil

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Sentinel errors for error categorization via errors.Is.
var (
	// ErrNilFileInfo is returned when a nil FileInfo is passed.
	ErrNilFileInfo = errors.New("nil FileInfo")

	// ErrNotFound indicates the file does not exist.
	ErrNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIsDirectory indicates the path is a directory, not a file.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrConcurrentModification indicates the file changed between the read
	// that produced an edit and the commit of that edit.
	ErrConcurrentModification = errors.New("file was modified concurrently")
)

// FileInfo captures the state of a file at a point in time.
// It is the editing base that a commit compares against.
type FileInfo struct {
	// Path is the absolute or relative path to the file.
	Path string

	// Mode is the file's permission and mode bits.
	Mode os.FileMode

	// ModTime is the file's modification time.
	ModTime time.Time

	// Size is the file size in bytes.
	Size int64

	// Hash is the SHA-256 hash of the file content.
	Hash [32]byte
}

// Matches reports whether content is byte-identical to the recorded state.
func (fi *FileInfo) Matches(content []byte) bool {
	return fi != nil && int64(len(content)) == fi.Size && sha256.Sum256(content) == fi.Hash
}

// ReadFile reads a file from the OS file system and returns its content
// along with metadata.
func ReadFile(ctx context.Context, path string) ([]byte, *FileInfo, error) {
	return ReadFileFS(ctx, OSFS{}, path)
}

// ReadFileFS is ReadFile on an arbitrary FS.
func ReadFileFS(ctx context.Context, fsys FS, path string) ([]byte, *FileInfo, error) {
	select {
	case <-ctx.Done():
		return nil, nil, fmt.Errorf("read file: %w", ctx.Err())
	default:
	}

	stat, err := fsys.Stat(path)
	if err != nil {
		return nil, nil, classifyPathError(path, "stat", err)
	}

	if stat.IsDir() {
		return nil, nil, fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	content, err := fsys.ReadFile(path)
	if err != nil {
		return nil, nil, classifyPathError(path, "read", err)
	}

	info := &FileInfo{
		Path:    path,
		Mode:    stat.Mode(),
		ModTime: stat.ModTime(),
		Size:    int64(len(content)),
		Hash:    sha256.Sum256(content),
	}

	return content, info, nil
}

// CheckModified reports whether the file on disk differs from info.
// The bytes are always compared; a touched but unchanged file is not modified.
func CheckModified(ctx context.Context, info *FileInfo) (bool, error) {
	return CheckModifiedFS(ctx, OSFS{}, info)
}

// CheckModifiedFS is CheckModified on an arbitrary FS.
func CheckModifiedFS(ctx context.Context, fsys FS, info *FileInfo) (bool, error) {
	if info == nil {
		return false, ErrNilFileInfo
	}

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("check modified: %w", ctx.Err())
	default:
	}

	content, err := fsys.ReadFile(info.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// A deleted file counts as modified.
			return true, nil
		}
		return false, fmt.Errorf("re-read %s: %w", info.Path, err)
	}

	return !info.Matches(content), nil
}

func classifyPathError(path, op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s: %w", ErrPermissionDenied, path, err)
	default:
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
}
