package runner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
)

// DiscoverOptions selects the Markdown files that inspect reports on.
type DiscoverOptions struct {
	// Paths are files or directories. Empty means the working directory.
	Paths []string

	// WorkingDir resolves relative Paths and anchors ExcludeGlobs.
	// Empty means the process working directory.
	WorkingDir string

	// Extensions are lowercase suffixes with a leading dot. Empty means
	// DefaultExtensions.
	Extensions []string

	// ExcludeGlobs skip matching files and directories. "**" matches any
	// number of path segments.
	ExcludeGlobs []string

	// FollowSymlinks descends into symlinked directories.
	FollowSymlinks bool
}

// DefaultExtensions returns the default set of Markdown file extensions.
func DefaultExtensions() []string {
	return []string{".md", ".markdown"}
}

// Discover expands opts.Paths into a sorted, duplicate-free list of absolute
// Markdown file paths. Files named explicitly are kept even when hidden;
// hidden entries found while walking are skipped.
func Discover(ctx context.Context, opts DiscoverOptions) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{
		opts:       opts,
		workDir:    workDir,
		extensions: opts.Extensions,
		seen:       make(map[string]struct{}),
	}
	if len(d.extensions) == 0 {
		d.extensions = DefaultExtensions()
	}

	paths := opts.Paths
	if len(paths) == 0 {
		paths = []string{"."}
	}

	for _, input := range paths {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("discovery cancelled: %w", ctx.Err())
		default:
		}

		abs := input
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(workDir, abs)
		}
		abs = filepath.Clean(abs)

		info, err := os.Stat(abs)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if !info.IsDir() {
			if d.hasExtension(abs) && !d.excluded(abs) {
				d.add(abs)
			}
			continue
		}

		if err := d.walk(ctx, abs); err != nil {
			return nil, err
		}
	}

	slices.Sort(d.files)
	return d.files, nil
}

type discoverer struct {
	opts       DiscoverOptions
	workDir    string
	extensions []string
	seen       map[string]struct{}
	files      []string
}

func (d *discoverer) add(file string) {
	if _, ok := d.seen[file]; ok {
		return
	}
	d.seen[file] = struct{}{}
	d.files = append(d.files, file)
}

func (d *discoverer) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(current string, entry fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			if os.IsPermission(walkErr) {
				return nil
			}
			return walkErr
		}

		hidden := current != root && strings.HasPrefix(entry.Name(), ".")

		if entry.IsDir() {
			if hidden || d.excluded(current) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden {
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			return d.symlink(ctx, current)
		}

		if d.hasExtension(current) && !d.excluded(current) {
			d.add(current)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// symlink handles a link met during a walk. Broken links are skipped.
// Directory targets are walked through their resolved path so that a link
// to an ancestor cannot recurse forever through WalkDir's Lstat.
func (d *discoverer) symlink(ctx context.Context, link string) error {
	target, err := filepath.EvalSymlinks(link)
	if err != nil {
		return nil //nolint:nilerr // Broken symlinks are skipped.
	}
	info, err := os.Stat(target)
	if err != nil {
		return nil //nolint:nilerr // Unreadable targets are skipped.
	}

	if info.IsDir() {
		if !d.opts.FollowSymlinks {
			return nil
		}
		return d.walk(ctx, target)
	}

	if d.hasExtension(link) && !d.excluded(link) {
		d.add(link)
	}
	return nil
}

func (d *discoverer) hasExtension(file string) bool {
	ext := strings.ToLower(filepath.Ext(file))
	for _, e := range d.extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

func (d *discoverer) excluded(file string) bool {
	rel, err := filepath.Rel(d.workDir, file)
	if err != nil {
		rel = file
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range d.opts.ExcludeGlobs {
		if matchGlob(filepath.ToSlash(pattern), rel) {
			return true
		}
	}
	return false
}

// resolveWorkDir resolves the working directory, defaulting to os.Getwd().
func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return wd, nil
	}
	abs, err := filepath.Abs(workDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}

// matchGlob reports whether the slash-separated name matches pattern.
// A pattern without a slash is also tried against the last segment, so
// "*.tmp.md" excludes that file in any directory.
func matchGlob(pattern, name string) bool {
	if !strings.Contains(pattern, "/") && !strings.Contains(pattern, "**") {
		ok, _ := path.Match(pattern, path.Base(name))
		if ok {
			return true
		}
	}
	return matchSegments(strings.Split(pattern, "/"), strings.Split(name, "/"))
}

func matchSegments(pattern, name []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(name); i++ {
				if matchSegments(rest, name[i:]) {
					return true
				}
			}
			return false
		}

		if len(name) == 0 {
			return false
		}
		ok, err := path.Match(pattern[0], name[0])
		if err != nil || !ok {
			return false
		}
		pattern, name = pattern[1:], name[1:]
	}
	return len(name) == 0
}
