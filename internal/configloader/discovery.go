package configloader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
)

// ProjectConfigName is the file name written by "mdpatch init".
const ProjectConfigName = ".mdpatch.yml"

// ConfigPaths holds the configuration files found for a working directory.
// A missing file is the empty string.
type ConfigPaths struct {
	// System is /etc/mdpatch/config.yaml, or %ProgramData%\mdpatch\config.yaml.
	System string

	// User is $XDG_CONFIG_HOME/mdpatch/config.yaml.
	User string

	// Project is the nearest .mdpatch.yml above the working directory.
	Project string

	// Explicit is the file named by --config. It replaces Project.
	Explicit string
}

// Files lists the files to load, lowest precedence first.
func (p *ConfigPaths) Files(skipSystem, skipUser bool) []string {
	var files []string
	if !skipSystem && p.System != "" {
		files = append(files, p.System)
	}
	if !skipUser && p.User != "" {
		files = append(files, p.User)
	}
	switch {
	case p.Explicit != "":
		files = append(files, p.Explicit)
	case p.Project != "":
		files = append(files, p.Project)
	}
	return files
}

// Project file names, in order of preference within one directory.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{ProjectConfigName, ".mdpatch.yaml", "mdpatch.yml", "mdpatch.yaml"}

// Names of the per-directory files under the system and user locations.
//
//nolint:gochecknoglobals // Read-only lookup table.
var sharedConfigFiles = []string{"config.yaml", "config.yml"}

// A directory holding one of these, as a directory or as a file (git
// worktrees and submodules), is a repository root.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// locator resolves configuration paths against an environment.
type locator struct {
	stat   func(string) (fs.FileInfo, error)
	getenv func(string) string
	home   string
	goos   string
}

func defaultLocator() locator {
	home, err := os.UserHomeDir()
	if err != nil {
		home = ""
	}
	return locator{stat: os.Stat, getenv: os.Getenv, home: home, goos: runtime.GOOS}
}

// DiscoverPaths finds the system, user and project configuration files for
// workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	return defaultLocator().discover(ctx, workDir)
}

// FindProjectConfig searches upward from startDir for a project file. The
// search stops after a repository root, the home directory, or the
// filesystem root. It returns "" when there is none.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	return defaultLocator().project(ctx, startDir)
}

func (l locator) discover(ctx context.Context, workDir string) (*ConfigPaths, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("discover config: %w", ctx.Err())
	default:
	}

	project, err := l.project(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  l.firstFile(l.systemDir(), sharedConfigFiles),
		User:    l.firstFile(l.userDir(), sharedConfigFiles),
		Project: project,
	}, nil
}

func (l locator) systemDir() string {
	if l.goos != "windows" {
		return "/etc/mdpatch"
	}
	if programData := l.getenv("ProgramData"); programData != "" {
		return filepath.Join(programData, "mdpatch")
	}
	return filepath.Join(`C:\ProgramData`, "mdpatch")
}

func (l locator) userDir() string {
	if configHome := l.getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, "mdpatch")
	}
	if l.home == "" {
		return ""
	}
	return filepath.Join(l.home, ".config", "mdpatch")
}

func (l locator) project(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		startDir = wd
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("find project config: %w", ctx.Err())
		default:
		}

		if path := l.firstFile(dir, projectConfigFiles); path != "" {
			return path, nil
		}

		parent := filepath.Dir(dir)
		if l.isRepoRoot(dir) || dir == l.home || parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// firstFile returns the first regular file named in names under dir, or "".
func (l locator) firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		path := filepath.Join(dir, name)
		if info, err := l.stat(path); err == nil && info.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

func (l locator) isRepoRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if _, err := l.stat(filepath.Join(dir, marker)); err == nil {
			return true
		}
	}
	return false
}
