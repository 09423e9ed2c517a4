package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdpatch/internal/cli"
)

const guideDoc = `# Guide

Intro.

## Install

Download it.
`

type jsonResult struct {
	Success bool `json:"success"`
	Applied bool `json:"applied"`
	IsNoop  bool `json:"is_noop"`
	Changes []struct {
		File      string `json:"file"`
		Operation string `json:"operation"`
		Heading   string `json:"heading"`
		Index     int    `json:"index"`
		Status    string `json:"status"`
		Error     string `json:"error"`
	} `json:"changes"`
}

// execute runs the CLI in isolation from configuration files.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "abc", Date: "today"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--no-config", "--color", "never"}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "guide.md")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func decodeResult(t *testing.T, stdout string) jsonResult {
	t.Helper()
	var result jsonResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result), "stdout: %s", stdout)
	return result
}

func TestIntegration_PatchAppendIsIdempotent(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)
	args := []string{"patch", "-f", doc, "-H", "# Guide", "-H", "## Install", "--op", "append", "-c", "Run make."}

	stdout, _, err := execute(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "+Run make.")
	assert.Contains(t, stdout, "1 change")

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Download it.\nRun make.\n", "append extends the target block")

	backup, err := os.ReadFile(doc + ".bak")
	require.NoError(t, err)
	assert.Equal(t, guideDoc, string(backup))

	stdout, _, err = execute(t, append(args, "--format", "json")...)
	require.NoError(t, err)

	result := decodeResult(t, stdout)
	assert.True(t, result.Success)
	assert.True(t, result.IsNoop)
	assert.False(t, result.Applied)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "noop", result.Changes[0].Status)
	assert.Equal(t, "# Guide ## Install", result.Changes[0].Heading)
}

func TestIntegration_PatchRepeatedHeadingKeepsHashInTitle(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, "# Issue # 42\n\n## Fix\n\n- a\n")

	_, _, err := execute(t, "patch", "-f", doc, "-H", "# Issue # 42", "-H", "## Fix", "--op", "append",
		"-c", "- b", "--no-backup")
	require.NoError(t, err)

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, "# Issue # 42\n\n## Fix\n\n- a\n- b\n", string(data))
}

func TestIntegration_PatchNoBackup(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)

	_, _, err := execute(t, "patch", "-f", doc, "-H", "# Guide ## Install", "--op", "append",
		"-c", "More.", "--no-backup", "-F", "short")
	require.NoError(t, err)

	_, err = os.Stat(doc + ".bak")
	assert.True(t, os.IsNotExist(err), "no backup expected")
}

func TestIntegration_PatchExitCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{
			name:     "replace without authorization",
			args:     []string{"-H", "# Guide ## Install", "--op", "replace", "-c", "New."},
			wantCode: cli.ExitGeneral,
		},
		{
			name:     "heading not found",
			args:     []string{"-H", "# Guide ## Usage", "--op", "replace", "-c", "New.", "--force"},
			wantCode: cli.ExitNotFound,
		},
		{
			name:     "fingerprint mismatch ignores force",
			args:     []string{"-H", "# Guide ## Install", "--op", "replace", "-c", "New.", "-p", "^Nope", "--force"},
			wantCode: cli.ExitFingerprintMismatch,
		},
		{
			name:     "index out of range",
			args:     []string{"-H", "# Guide ## Install", "-i", "5", "--op", "replace", "-c", "New.", "--force"},
			wantCode: cli.ExitGeneral,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := writeDoc(t, guideDoc)

			args := append([]string{"patch", "-f", doc, "--format", "json"}, tt.args...)
			stdout, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, cli.ExitCode(err))
			assert.True(t, cli.IsSilent(err))

			result := decodeResult(t, stdout)
			assert.False(t, result.Success)
			require.Len(t, result.Changes, 1)
			assert.Equal(t, "error", result.Changes[0].Status)
			assert.NotEmpty(t, result.Changes[0].Error)

			data, err := os.ReadFile(doc)
			require.NoError(t, err)
			assert.Equal(t, guideDoc, string(data), "failed operations must not write")
		})
	}
}

func TestIntegration_PatchReplaceWithFingerprint(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)

	stdout, _, err := execute(t, "patch", "-f", doc, "-H", "# Guide ## Install", "--op", "replace",
		"-p", "^Download", "-c", "Install with go install.", "-F", "short")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Applied:")

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "Download it.")
	assert.Contains(t, string(data), "Install with go install.\n")
}

func TestIntegration_PatchContentFromStdin(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test"})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("From stdin.\n"))
	cmd.SetArgs([]string{"--no-config", "patch", "-f", doc, "-H", "# Guide", "--op", "append",
		"--content-file", "-", "--dry-run"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "+From stdin.")
	assert.Contains(t, stdout.String(), "dry run, nothing written")

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, guideDoc, string(data), "dry run must not write")
}

func TestIntegration_PatchUsageErrors(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)

	tests := map[string][]string{
		"missing op":          {"patch", "-f", doc, "-H", "# Guide"},
		"append needs body":   {"patch", "-f", doc, "-H", "# Guide", "--op", "append"},
		"bad heading":         {"patch", "-f", doc, "-H", "Guide", "--op", "delete", "--force"},
		"bad output format":   {"patch", "-f", doc, "-H", "# Guide", "--op", "append", "-c", "x", "-F", "xml"},
		"verbose with quiet":  {"-v", "-q", "version"},
		"bad fingerprint":     {"patch", "-f", doc, "-H", "# Guide", "--op", "delete", "-p", "(unclosed"},
		"unknown subcommand":  {"lint"},
		"apply needs a batch": {"apply"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := execute(t, args...)
			require.Error(t, err)
			assert.Equal(t, cli.ExitGeneral, cli.ExitCode(err))
			assert.False(t, cli.IsSilent(err))
		})
	}
}

func TestIntegration_ApplyBatch(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)
	batchFile := filepath.Join(t.TempDir(), "ops.yml")
	require.NoError(t, os.WriteFile(batchFile, []byte(`operations:
  - file: `+doc+`
    heading: "# Guide ## Install"
    operation: append
    content: "Then run make."
  - file: `+doc+`
    heading: ["# Guide"]
    index: 0
    operation: replace
    fingerprint: "^(Intro|Welcome)"
    content: "Welcome."
`), 0644))

	stdout, _, err := execute(t, "apply", batchFile, "--format", "json", "--no-backup")
	require.NoError(t, err)

	result := decodeResult(t, stdout)
	assert.True(t, result.Success)
	assert.True(t, result.Applied)
	assert.False(t, result.IsNoop)
	require.Len(t, result.Changes, 2)
	assert.Equal(t, "applied", result.Changes[0].Status)
	assert.Equal(t, "applied", result.Changes[1].Status)
	assert.Equal(t, "replace", result.Changes[1].Operation)

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Welcome.")
	assert.Contains(t, string(data), "Then run make.")

	// Applying again changes nothing.
	stdout, _, err = execute(t, "apply", batchFile, "--format", "json", "--no-backup")
	require.NoError(t, err)
	assert.True(t, decodeResult(t, stdout).IsNoop)
}

func TestIntegration_ApplyReportsFirstFailure(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, "# A\n\n## Notes\n\nOne.\n\n# B\n\n## Notes\n\nTwo.\n")
	batchFile := filepath.Join(t.TempDir(), "ops.yml")
	require.NoError(t, os.WriteFile(batchFile, []byte(`operations:
  - {file: `+doc+`, heading: "## Notes", operation: append, content: "Ambiguous."}
  - {file: `+doc+`, heading: "# Missing", operation: replace, content: "x", fingerprint: "."}
  - {file: `+doc+`, heading: "# B ## Notes", operation: append, content: "Three."}
`), 0644))

	t.Run("best effort", func(t *testing.T) {
		stdout, _, err := execute(t, "plan", batchFile, "--format", "json")
		require.Error(t, err)
		assert.Equal(t, cli.ExitAmbiguous, cli.ExitCode(err))

		result := decodeResult(t, stdout)
		require.Len(t, result.Changes, 3)
		assert.Equal(t, "error", result.Changes[0].Status)
		assert.Equal(t, "error", result.Changes[1].Status)
		assert.Equal(t, "dry-run", result.Changes[2].Status)
	})

	t.Run("fail fast", func(t *testing.T) {
		stdout, _, err := execute(t, "plan", batchFile, "--format", "json", "--fail-fast")
		require.Error(t, err)
		assert.Equal(t, cli.ExitAmbiguous, cli.ExitCode(err))

		result := decodeResult(t, stdout)
		assert.Len(t, result.Changes, 1)
		assert.False(t, result.Success)
	})
}

func TestIntegration_ApplyInvalidBatch(t *testing.T) {
	t.Parallel()

	batchFile := filepath.Join(t.TempDir(), "ops.yml")
	require.NoError(t, os.WriteFile(batchFile, []byte("operations:\n  - {file: a.md, operation: insert}\n"), 0644))

	_, _, err := execute(t, "apply", batchFile)
	require.Error(t, err)
	assert.Equal(t, cli.ExitGeneral, cli.ExitCode(err))
	assert.Contains(t, err.Error(), "ops.yml")
}

func TestIntegration_PlanDoesNotWrite(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)
	batchFile := filepath.Join(t.TempDir(), "ops.yml")
	require.NoError(t, os.WriteFile(batchFile, []byte(`operations:
  - {file: `+doc+`, heading: "# Guide ## Install", operation: append, content: "Step one."}
  - {file: `+doc+`, heading: "# Guide ## Install", operation: append, content: "Step two."}
`), 0644))

	stdout, _, err := execute(t, "plan", batchFile)
	require.NoError(t, err)
	assert.Contains(t, stdout, "+Step one.")
	assert.Contains(t, stdout, "+Step two.")
	assert.Contains(t, stdout, "2 changes")

	data, err := os.ReadFile(doc)
	require.NoError(t, err)
	assert.Equal(t, guideDoc, string(data))

	_, err = os.Stat(doc + ".bak")
	assert.True(t, os.IsNotExist(err))
}

func TestIntegration_ConfigFile(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)
	cfgFile := filepath.Join(t.TempDir(), "mdpatch.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: json\nbackup:\n  enabled: false\n"), 0644))

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test"})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgFile, "patch", "-f", doc, "-H", "# Guide", "--op", "append", "-c", "Added."})
	require.NoError(t, cmd.Execute())

	result := decodeResult(t, stdout.String())
	assert.True(t, result.Applied)

	_, err := os.Stat(doc + ".bak")
	assert.True(t, os.IsNotExist(err), "config disabled backups")
}

func TestIntegration_ConfigCommand(t *testing.T) {
	t.Parallel()

	cfgFile := filepath.Join(t.TempDir(), "mdpatch.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: json\nbackup:\n  enabled: false\n"), 0644))

	run := func(args ...string) string {
		cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test"})
		var stdout bytes.Buffer
		cmd.SetOut(&stdout)
		cmd.SetErr(&bytes.Buffer{})
		cmd.SetArgs(append([]string{"--config", cfgFile, "--color", "never"}, args...))
		require.NoError(t, cmd.Execute())
		return stdout.String()
	}

	out := run("config")
	assert.Contains(t, out, "# Effective mdpatch configuration, merged from:\n#   defaults\n")
	assert.Contains(t, out, "#   "+cfgFile+"\n")
	assert.Contains(t, out, "format: json\n")
	assert.Contains(t, out, "color: never\n")
	assert.Contains(t, out, "  enabled: false\n")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(run("config", "--json")), &decoded))
	assert.Equal(t, "json", decoded["format"])
	assert.Equal(t, map[string]any{"enabled": false, "suffix": ".bak"}, decoded["backup"])
}

func TestIntegration_InvalidConfigFile(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)
	cfgFile := filepath.Join(t.TempDir(), "mdpatch.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("format: xml\n"), 0644))

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgFile, "patch", "-f", doc, "-H", "# Guide", "--op", "append", "-c", "x"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, cli.ExitGeneral, cli.ExitCode(err))
	assert.Contains(t, err.Error(), cfgFile+":1")
}

func TestIntegration_InspectJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	content := "---\ntitle: Guide\ntags: [a]\n---\n\n# Guide\n\nIntro.\n\n## Build\n\n```go\npackage main\n```\n\nSetext\n======\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "guide.md"), []byte(content), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("# Not markdown\n"), 0644))

	stdout, _, err := execute(t, "inspect", dir, "--format", "json")
	require.NoError(t, err)

	var outlines []struct {
		File        string   `json:"file"`
		FrontMatter []string `json:"front_matter"`
		Sections    []struct {
			Path   []string `json:"path"`
			Blocks []struct {
				Index    int    `json:"index"`
				Kind     string `json:"kind"`
				Language string `json:"language"`
			} `json:"blocks"`
		} `json:"sections"`
		Warnings []string `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &outlines), "stdout: %s", stdout)
	require.Len(t, outlines, 1, "only Markdown files are inspected")

	o := outlines[0]
	assert.Equal(t, []string{"tags", "title"}, o.FrontMatter)
	require.Len(t, o.Sections, 3)

	assert.Empty(t, o.Sections[0].Path)
	assert.Equal(t, "front_matter", o.Sections[0].Blocks[0].Kind)

	assert.Equal(t, []string{"# Guide"}, o.Sections[1].Path)
	assert.Equal(t, "paragraph", o.Sections[1].Blocks[0].Kind)

	build := o.Sections[2]
	assert.Equal(t, []string{"# Guide", "## Build"}, build.Path)
	require.Len(t, build.Blocks, 2)
	assert.Equal(t, "code_block", build.Blocks[0].Kind)
	assert.Equal(t, "go", build.Blocks[0].Language)
	assert.Equal(t, 1, build.Blocks[1].Index)

	require.Len(t, o.Warnings, 1)
	assert.Contains(t, o.Warnings[0], `setext heading "Setext"`)
	assert.Contains(t, o.Warnings[0], "line 16")
}

func TestIntegration_InspectText(t *testing.T) {
	t.Parallel()

	doc := writeDoc(t, guideDoc)

	stdout, _, err := execute(t, "inspect", doc)
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Guide")
	assert.Contains(t, stdout, "## Install")
	assert.Contains(t, stdout, "[0] paragraph")
	assert.Contains(t, stdout, "L7-7")
}

func TestIntegration_InitAndSchema(t *testing.T) {
	t.Parallel()

	target := filepath.Join(t.TempDir(), ".mdpatch.yml")

	_, _, err := execute(t, "init", "--output", target)
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "format: diff")

	_, _, err = execute(t, "init", "--output", target)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, _, err = execute(t, "init", "--output", target, "--force", "--format", "json")
	require.NoError(t, err)

	stdout, _, err := execute(t, "schema")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(stdout)))
}

func TestIntegration_Version(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "mdpatch")
	assert.Contains(t, stdout, "test")
	assert.Contains(t, stdout, "abc")

	stdout, _, err = execute(t, "version", "--json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &info), "stdout: %s", stdout)
	assert.Equal(t, "test", info["version"])
	assert.Equal(t, "abc", info["commit"])
	assert.Equal(t, "today", info["date"])
	assert.NotEmpty(t, info["go_version"])
	assert.Contains(t, info["platform"], "/")
}

func TestIntegration_Help(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "patch", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "Examples:")
	assert.Contains(t, stdout, "# Preview a forced delete")
	assert.Contains(t, stdout, "-H, --heading stringArray")
	assert.Contains(t, stdout, "--content-file string")
	assert.Contains(t, stdout, `(default "diff")`)
	assert.Contains(t, stdout, "Global Flags:")
	assert.Contains(t, stdout, "Exit Codes:")
	assert.Contains(t, stdout, "heading path matched more than one section")

	stdout, _, err = execute(t, "inspect", "--help")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Exit Codes:")
}
