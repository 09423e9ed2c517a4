// Package config defines core configuration types for mdpatch.
// These types are pure data structures; loading and layering live in
// internal/configloader.
package config

import "github.com/yaklabco/mdpatch/pkg/fsutil"

// OutputFormat specifies how results are written.
type OutputFormat string

const (
	FormatDiff  OutputFormat = "diff"
	FormatJSON  OutputFormat = "json"
	FormatShort OutputFormat = "short"
)

// ColorMode controls colorized output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Flavor specifies the Markdown flavor used to inspect patch content.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// DefaultContextLines is the number of unchanged lines shown around a change.
const DefaultContextLines = 3

// BackupsConfig controls the snapshot taken before a file is rewritten.
type BackupsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled" json:"enabled"`
	Suffix  string `mapstructure:"suffix"  yaml:"suffix"  json:"suffix"`
}

// Fsutil converts the backup settings for fsutil.Committer.
func (b BackupsConfig) Fsutil() fsutil.BackupConfig {
	return fsutil.BackupConfig{Enabled: b.Enabled, Suffix: b.Suffix}
}

// Config is the root configuration structure for mdpatch.
type Config struct {
	// Format selects the result output: diff, json or short.
	Format OutputFormat `mapstructure:"format" yaml:"format" json:"format"`

	// Color controls ANSI styling: auto, always or never.
	Color ColorMode `mapstructure:"color" yaml:"color" json:"color"`

	// Flavor is the dialect used when inspecting patch content.
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor" json:"flavor"`

	// Backup configures the pre-write snapshot.
	Backup BackupsConfig `mapstructure:"backup" yaml:"backup" json:"backup"`

	// FailFast stops a batch at the first failing operation.
	FailFast bool `mapstructure:"fail_fast" yaml:"fail_fast" json:"fail_fast"`

	// StrictContent turns content guard warnings into errors.
	StrictContent bool `mapstructure:"strict_content" yaml:"strict_content" json:"strict_content"`

	// ContextLines is the number of context lines in diffs.
	ContextLines int `mapstructure:"context_lines" yaml:"context_lines" json:"context_lines"`

	// Ignore holds glob patterns skipped when inspect walks directories.
	Ignore []string `mapstructure:"ignore" yaml:"ignore,omitempty" json:"ignore,omitempty"`

	// CLI-level options (not persisted to config files).

	// Force authorizes destructive operations that carry no fingerprint.
	Force bool `mapstructure:"-" yaml:"-" json:"-"`

	// DryRun computes results and diffs without writing.
	DryRun bool `mapstructure:"-" yaml:"-" json:"-"`
}

// NewConfig returns a Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Format: FormatDiff,
		Color:  ColorAuto,
		Flavor: FlavorGFM,
		Backup: BackupsConfig{
			Enabled: true,
			Suffix:  fsutil.DefaultBackupSuffix,
		},
		ContextLines: DefaultContextLines,
	}
}
