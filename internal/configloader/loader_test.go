package configloader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yaklabco/mdpatch/pkg/config"
)

// isolated returns options that see no system, user or process state.
func isolated(dir string) LoadOptions {
	return LoadOptions{
		WorkingDir:         dir,
		IgnoreSystemConfig: true,
		IgnoreUserConfig:   true,
		LookupEnv:          func(string) (string, bool) { return "", false },
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	// A VCS marker keeps the upward search inside the temp dir.
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config == nil {
		t.Fatal("Load() returned nil config")
	}

	want := config.NewConfig()
	if result.Config.Format != want.Format || result.Config.Flavor != want.Flavor {
		t.Errorf("expected defaults, got format %q flavor %q", result.Config.Format, result.Config.Flavor)
	}
	if !result.Config.Backup.Enabled || result.Config.Backup.Suffix != ".bak" {
		t.Errorf("expected backups enabled with .bak, got %+v", result.Config.Backup)
	}
	if len(result.LoadedFrom) != 0 {
		t.Errorf("expected no files loaded, got %v", result.LoadedFrom)
	}
}

func TestLoad_ProjectConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	if err := os.Mkdir(filepath.Join(tmpDir, ".git"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(tmpDir, ".mdpatch.yml"), `
format: short
backup:
  enabled: false
fail_fast: true
context_lines: 1
`)

	// Discovery walks upward from a nested directory.
	nested := filepath.Join(tmpDir, "docs", "guide")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	result, err := Load(context.Background(), isolated(nested))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Format != config.FormatShort {
		t.Errorf("format = %q, want short", cfg.Format)
	}
	if cfg.Backup.Enabled {
		t.Error("backup.enabled: false in file should disable backups")
	}
	if cfg.Backup.Suffix != ".bak" {
		t.Errorf("unset suffix should keep default, got %q", cfg.Backup.Suffix)
	}
	if !cfg.FailFast || cfg.ContextLines != 1 {
		t.Errorf("fail_fast/context_lines not applied: %+v", cfg)
	}
	if len(result.LoadedFrom) != 1 || filepath.Base(result.LoadedFrom[0]) != ".mdpatch.yml" {
		t.Errorf("LoadedFrom = %v", result.LoadedFrom)
	}
}

func TestLoad_ExplicitConfigSkipsProject(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdpatch.yml"), "format: short\n")
	explicit := filepath.Join(tmpDir, "other.yml")
	writeFile(t, explicit, "format: json\n")

	opts := isolated(tmpDir)
	opts.ExplicitPath = explicit

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if result.Config.Format != config.FormatJSON {
		t.Errorf("format = %q, want json", result.Config.Format)
	}
	if len(result.LoadedFrom) != 1 || result.LoadedFrom[0] != explicit {
		t.Errorf("LoadedFrom = %v, want only %s", result.LoadedFrom, explicit)
	}
}

func TestLoad_NoConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdpatch.yml"), "format: short\n")

	opts := isolated(tmpDir)
	opts.NoConfig = true

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if result.Config.Format != config.FormatDiff {
		t.Errorf("format = %q, want default diff", result.Config.Format)
	}
}

func TestLoad_Precedence(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdpatch.yml"), `
format: short
color: never
strict_content: true
ignore: ["vendor/**"]
`)

	env := map[string]string{
		"MDPATCH_FORMAT":         "JSON",
		"MDPATCH_STRICT_CONTENT": "false",
		"MDPATCH_IGNORE":         "build/**, node_modules/**",
	}

	opts := isolated(tmpDir)
	opts.LookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	format := config.FormatDiff
	force := true
	opts.CLI = &Overrides{Format: &format, Force: &force}

	result, err := Load(context.Background(), opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	cfg := result.Config
	if cfg.Format != config.FormatDiff {
		t.Errorf("CLI should win: format = %q", cfg.Format)
	}
	if cfg.Color != config.ColorNever {
		t.Errorf("file value should survive: color = %q", cfg.Color)
	}
	if cfg.StrictContent {
		t.Error("environment false should override file true")
	}
	if !cfg.Force {
		t.Error("CLI force not applied")
	}
	wantIgnore := []string{"vendor/**", "build/**", "node_modules/**"}
	if strings.Join(cfg.Ignore, ",") != strings.Join(wantIgnore, ",") {
		t.Errorf("ignore = %v, want %v", cfg.Ignore, wantIgnore)
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ".mdpatch.yml")
	writeFile(t, path, "format: diff\nflavor: wiki\n")

	_, err := Load(context.Background(), isolated(tmpDir))
	if err == nil {
		t.Fatal("expected error for invalid flavor")
	}

	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig: %v", err)
	}

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Field != "flavor" || verr.FilePath != path || verr.Line != 2 {
		t.Errorf("got field %q at %s:%d, want flavor at %s:2", verr.Field, verr.FilePath, verr.Line, path)
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()

	tests := map[string]string{
		"MDPATCH_FAIL_FAST":     "maybe",
		"MDPATCH_CONTEXT_LINES": "three",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			opts := isolated(tmpDir)
			opts.NoConfig = true
			opts.LookupEnv = func(k string) (string, bool) {
				if k == key {
					return value, true
				}
				return "", false
			}

			_, err := Load(context.Background(), opts)
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q should name %s", err, key)
			}
		})
	}
}

func TestLoad_EnvironmentValidationSource(t *testing.T) {
	t.Parallel()

	opts := isolated(t.TempDir())
	opts.NoConfig = true
	opts.LookupEnv = func(k string) (string, bool) {
		if k == "MDPATCH_BACKUP_SUFFIX" {
			return "dir/.bak", true
		}
		return "", false
	}

	_, err := Load(context.Background(), opts)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if verr.Field != "backup.suffix" || verr.FilePath != SourceEnvironment {
		t.Errorf("got %q from %q", verr.Field, verr.FilePath)
	}
}

func TestLoad_UnknownKeysWarn(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdpatch.yml"), "jobs: 4\nbackup:\n  mode: sidecar\n")

	result, err := Load(context.Background(), isolated(tmpDir))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(result.Warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", result.Warnings)
	}
	if !strings.Contains(result.Warnings[0], `"backup.mode"`) || !strings.Contains(result.Warnings[0], ":3:") {
		t.Errorf("unexpected warning %q", result.Warnings[0])
	}
	if !strings.Contains(result.Warnings[1], `"jobs"`) {
		t.Errorf("unexpected warning %q", result.Warnings[1])
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, ".mdpatch.yml"), "format: [\n")

	_, err := Load(context.Background(), isolated(tmpDir))
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoad_ContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, isolated(t.TempDir()))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFindProjectConfig_StopsAtVCSRoot(t *testing.T) {
	t.Parallel()

	outer := t.TempDir()
	writeFile(t, filepath.Join(outer, ".mdpatch.yml"), "format: short\n")

	repo := filepath.Join(outer, "repo")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0755); err != nil {
		t.Fatal(err)
	}

	path, err := FindProjectConfig(context.Background(), repo)
	if err != nil {
		t.Fatal(err)
	}
	if path != "" {
		t.Errorf("search should stop at the repository root, found %s", path)
	}
}

func TestWriteConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ProjectConfigName)

	if err := WriteConfig(path, []byte("format: diff\n"), false); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	err := WriteConfig(path, []byte("format: json\n"), false)
	if !errors.Is(err, ErrConfigExists) {
		t.Errorf("expected ErrConfigExists, got %v", err)
	}

	if err := WriteConfig(path, []byte("format: json\n"), true); err != nil {
		t.Fatalf("overwrite error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "format: json\n" {
		t.Errorf("content = %q", data)
	}
}
