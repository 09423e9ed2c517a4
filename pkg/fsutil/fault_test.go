package fsutil_test

import (
	"errors"
	"os"
	"strings"

	"github.com/yaklabco/mdpatch/pkg/fsutil"
)

var errInjected = errors.New("injected failure")

// faultFS is the OS file system with one step failing for temp files whose
// name contains failPattern.
type faultFS struct {
	fsutil.OSFS

	failStep    fsutil.Step
	failPattern string

	// beforeVerify, if set, runs before the first ReadFile.
	beforeVerify func()
}

func (f *faultFS) hit(step fsutil.Step, name string) bool {
	return f.failStep == step && strings.Contains(name, f.failPattern)
}

func (f *faultFS) ReadFile(name string) ([]byte, error) {
	if f.beforeVerify != nil {
		hook := f.beforeVerify
		f.beforeVerify = nil
		hook()
	}
	return f.OSFS.ReadFile(name)
}

func (f *faultFS) CreateTemp(dir, pattern string) (fsutil.File, error) {
	if f.hit(fsutil.StepCreate, pattern) {
		return nil, errInjected
	}

	file, err := f.OSFS.CreateTemp(dir, pattern)
	if err != nil {
		return nil, err
	}

	return &faultFile{
		File:      file,
		failWrite: f.hit(fsutil.StepWrite, pattern),
		failSync:  f.hit(fsutil.StepSync, pattern),
	}, nil
}

func (f *faultFS) Chmod(name string, mode os.FileMode) error {
	if f.hit(fsutil.StepChmod, name) {
		return errInjected
	}
	return f.OSFS.Chmod(name, mode)
}

func (f *faultFS) Rename(oldpath, newpath string) error {
	if f.hit(fsutil.StepRename, oldpath) {
		return errInjected
	}
	return f.OSFS.Rename(oldpath, newpath)
}

type faultFile struct {
	fsutil.File

	failWrite bool
	failSync  bool
}

func (f *faultFile) Write(p []byte) (int, error) {
	if f.failWrite {
		// Leave a partial write behind before failing.
		n, _ := f.File.Write(p[:len(p)/2])
		return n, errInjected
	}
	return f.File.Write(p)
}

func (f *faultFile) Sync() error {
	if f.failSync {
		return errInjected
	}
	return f.File.Sync()
}
