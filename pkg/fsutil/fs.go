package fsutil

import (
	"io"
	"os"
)

// File is a writable temp file created by an FS.
type File interface {
	io.Writer
	Name() string
	Sync() error
	Close() error
}

// FS is the set of file system calls a commit makes. OSFS is the real one;
// tests substitute implementations that fail on chosen calls.
type FS interface {
	Stat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	CreateTemp(dir, pattern string) (File, error)
	Chmod(name string, mode os.FileMode) error
	Rename(oldpath, newpath string) error
	Remove(name string) error
}

// OSFS implements FS with the os package.
type OSFS struct{}

var _ FS = OSFS{}

// Stat calls os.Stat.
func (OSFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// ReadFile calls os.ReadFile.
func (OSFS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

// CreateTemp calls os.CreateTemp.
func (OSFS) CreateTemp(dir, pattern string) (File, error) {
	f, err := os.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// Chmod calls os.Chmod.
func (OSFS) Chmod(name string, mode os.FileMode) error { return os.Chmod(name, mode) }

// Rename calls os.Rename.
func (OSFS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }

// Remove calls os.Remove.
func (OSFS) Remove(name string) error { return os.Remove(name) }
