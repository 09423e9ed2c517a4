//go:build stave

package main

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

const (
	binary  = "bin/mdpatch"
	mainPkg = "./cmd/mdpatch"
)

// Default target runs build.
var Default = Build

// Aliases for common targets.
var Aliases = map[string]any{
	"b":   Build,
	"t":   Test.Default,
	"l":   Lint.Default,
	"c":   Check,
	"i":   Install,
	"fmt": Lint.Fmt,
	"fz":  Fuzz.Default,
	"s":   Smoke,
}

// Namespace types group related targets.
type (
	Test  st.Namespace
	Lint  st.Namespace
	CI    st.Namespace
	Bench st.Namespace
	Fuzz  st.Namespace
)

// Build compiles bin/mdpatch when its sources changed.
func Build() error {
	stale, err := target.Dir(binary, "cmd/", "pkg/", "internal/", "go.mod", "go.sum")
	if err != nil {
		return err
	}
	if !stale {
		fmt.Println(binary, "is up to date")
		return nil
	}
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binary, mainPkg)
}

// Check formats, lints and tests.
func Check() {
	st.SerialDeps(Lint.Fmt, Lint.Default, Test.Default)
}

// Clean removes the binary and coverage output.
func Clean() error {
	for _, path := range []string{"bin", "coverage.out", "coverage.html"} {
		if err := sh.Rm(path); err != nil {
			return err
		}
	}
	return nil
}

// Install runs go install with version info.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), mainPkg)
}

// Uninstall removes the binary that Install placed.
func Uninstall() error {
	path, err := installedBinary()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("mdpatch is not installed")
			return nil
		}
		return fmt.Errorf("remove %s: %w", path, err)
	}
	fmt.Println("Removed", path)
	return nil
}

// Deps downloads and tidies modules.
func Deps() error {
	if err := sh.RunV("go", "mod", "download"); err != nil {
		return err
	}
	return sh.RunV("go", "mod", "tidy")
}

// Coverage renders coverage.html from a full test run.
func Coverage() error {
	st.Deps(Test.Default)
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}

// Smoke builds the binary and patches a scratch document twice: the first
// run must apply and the second must report a no-op.
func Smoke() error {
	st.Deps(Build)

	dir, err := os.MkdirTemp("", "mdpatch-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	doc := filepath.Join(dir, "README.md")
	if err := os.WriteFile(doc, []byte("# Project\n\n## Install\n\n- go install\n"), 0o644); err != nil {
		return err
	}

	args := []string{"patch", "-f", doc, "-H", "# Project ## Install", "--op", "append", "-c", "- make", "--format", "json"}
	for run, want := range []string{`"applied": true`, `"is_noop": true`} {
		out, err := sh.Output(binary, args...)
		if err != nil {
			return fmt.Errorf("smoke run %d: %w", run+1, err)
		}
		if !strings.Contains(out, want) {
			return fmt.Errorf("smoke run %d: output lacks %s:\n%s", run+1, want, out)
		}
	}

	got, err := os.ReadFile(doc)
	if err != nil {
		return err
	}
	if want := "# Project\n\n## Install\n\n- go install\n- make\n"; string(got) != want {
		return fmt.Errorf("smoke: document is %q, want %q", got, want)
	}
	fmt.Println("✓ smoke test passed")
	return nil
}

// gotestsum runs the test suite with the given output format.
func gotestsum(format string, extra ...string) error {
	procs := cmp.Or(os.Getenv("STAVE_NUM_PROCESSORS"), "4")
	args := []string{"tool", "gotestsum", "-f", format, "--", "-race", "-p", procs, "-parallel", procs}
	args = append(args, extra...)
	args = append(args, "./...")
	return sh.RunV("go", args...)
}

// Default runs the tests with race detection and coverage.
func (Test) Default() error {
	return gotestsum("pkgname-and-test-fails", "-coverprofile=coverage.out", "-covermode=atomic")
}

// Verbose runs the tests with every test name printed.
func (Test) Verbose() error {
	return gotestsum("standard-verbose")
}

// Default runs golangci-lint with auto-fix.
func (Lint) Default() error {
	return sh.RunV("golangci-lint", "run", "--fix", "./...")
}

// CI runs golangci-lint without fixing.
func (Lint) CI() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats the tree.
func (Lint) Fmt() error {
	return sh.RunV("gofmt", "-w", ".")
}

// FmtCheck fails when a file is not gofmt-clean.
func (Lint) FmtCheck() error {
	out, err := sh.Output("gofmt", "-l", ".")
	if err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if out != "" {
		return fmt.Errorf("unformatted files:\n%s\nRun 'stave lint:fmt' to fix", out)
	}
	return nil
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Gate runs every check CI runs.
func (CI) Gate() error {
	st.SerialDeps(Lint.FmtCheck, Lint.Vet, Lint.CI, Build, Test.Default, Fuzz.Seeds, Smoke, CI.ModTidy, CI.Cross)
	fmt.Println("✓ CI gate passed")
	return nil
}

// ModTidy fails when go mod tidy would change go.mod or go.sum.
func (CI) ModTidy() error {
	files := []string{"go.mod", "go.sum"}

	before := make([][]byte, len(files))
	for i, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		before[i] = data
	}

	if err := sh.RunV("go", "mod", "tidy"); err != nil {
		return err
	}

	for i, name := range files {
		after, err := os.ReadFile(name)
		if err != nil {
			return err
		}
		if !bytes.Equal(before[i], after) {
			return fmt.Errorf("%s changed after go mod tidy; commit the result", name)
		}
	}
	return nil
}

// Release platforms.
//
//nolint:gochecknoglobals // Read-only lookup table.
var platforms = []string{
	"linux/amd64", "linux/arm64",
	"darwin/amd64", "darwin/arm64",
	"windows/amd64", "windows/arm64",
	"freebsd/amd64",
}

// Cross builds mdpatch for every release platform.
func (CI) Cross() error {
	for _, platform := range platforms {
		goos, goarch, _ := strings.Cut(platform, "/")
		env := map[string]string{"GOOS": goos, "GOARCH": goarch, "CGO_ENABLED": "0"}
		if err := sh.RunWith(env, "go", "build", "-o", os.DevNull, mainPkg); err != nil {
			return fmt.Errorf("build %s: %w", platform, err)
		}
	}
	return nil
}

// Default runs the benchmarks.
func (Bench) Default() error {
	return sh.RunV("go", "test", "-run", "^$", "-bench", ".", "-benchmem", "./...")
}

//nolint:gochecknoglobals // Read-only lookup table.
var fuzzTargets = []struct{ pkg, name string }{
	{"./pkg/parser", "FuzzParse"},
	{"./pkg/patch", "FuzzApply"},
	{"./pkg/diff", "FuzzGenerate"},
	{"./pkg/fsutil", "FuzzCommit"},
}

// Default fuzzes each target for FUZZTIME (15s unless set).
func (Fuzz) Default() error {
	fuzzTime := cmp.Or(os.Getenv("FUZZTIME"), "15s")
	for _, ft := range fuzzTargets {
		fmt.Printf("Fuzzing %s %s for %s\n", ft.pkg, ft.name, fuzzTime)
		if err := sh.RunV("go", "test", "-run", "^$", "-fuzz", "^"+ft.name+"$", "-fuzztime", fuzzTime, ft.pkg); err != nil {
			return fmt.Errorf("fuzz %s: %w", ft.name, err)
		}
	}
	return nil
}

// Seeds runs the fuzz targets over their seed corpora.
func (Fuzz) Seeds() error {
	for _, ft := range fuzzTargets {
		if err := sh.RunV("go", "test", "-run", "^"+ft.name+"$", ft.pkg); err != nil {
			return fmt.Errorf("seeds %s: %w", ft.name, err)
		}
	}
	return nil
}

// ldflags injects version, commit and build date into package main.
func ldflags() string {
	git := func(args ...string) string {
		out, err := sh.Output("git", args...)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(out)
	}
	return fmt.Sprintf("-X main.version=%s -X main.commit=%s -X main.date=%s",
		cmp.Or(git("describe", "--tags", "--always", "--dirty"), "dev"),
		cmp.Or(git("rev-parse", "--short", "HEAD"), "none"),
		time.Now().UTC().Format(time.RFC3339))
}

// installedBinary returns where go install puts mdpatch.
func installedBinary() (string, error) {
	if gobin := os.Getenv("GOBIN"); gobin != "" {
		return filepath.Join(gobin, "mdpatch"), nil
	}
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("home directory: %w", err)
		}
		gopath = filepath.Join(home, "go")
	}
	return filepath.Join(gopath, "bin", "mdpatch"), nil
}
