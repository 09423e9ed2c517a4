package configloader

import (
	"github.com/yaklabco/mdpatch/pkg/config"
)

// Overrides is a sparse configuration layer. A nil field leaves the value
// below it untouched, so a layer can set a boolean back to false.
type Overrides struct {
	Format        *config.OutputFormat `yaml:"format"`
	Color         *config.ColorMode    `yaml:"color"`
	Flavor        *config.Flavor       `yaml:"flavor"`
	Backup        *BackupOverrides     `yaml:"backup"`
	FailFast      *bool                `yaml:"fail_fast"`
	StrictContent *bool                `yaml:"strict_content"`
	ContextLines  *int                 `yaml:"context_lines"`
	Ignore        []string             `yaml:"ignore"`

	// Force and DryRun are only set from the command line.
	Force  *bool `yaml:"-"`
	DryRun *bool `yaml:"-"`
}

// BackupOverrides is the sparse form of config.BackupsConfig.
type BackupOverrides struct {
	Enabled *bool   `yaml:"enabled"`
	Suffix  *string `yaml:"suffix"`
}

// Apply writes every set field of o onto cfg. Ignore patterns accumulate
// across layers.
func (o *Overrides) Apply(cfg *config.Config) {
	if o == nil || cfg == nil {
		return
	}

	setIf(&cfg.Format, o.Format)
	setIf(&cfg.Color, o.Color)
	setIf(&cfg.Flavor, o.Flavor)
	setIf(&cfg.FailFast, o.FailFast)
	setIf(&cfg.StrictContent, o.StrictContent)
	setIf(&cfg.ContextLines, o.ContextLines)
	setIf(&cfg.Force, o.Force)
	setIf(&cfg.DryRun, o.DryRun)

	if o.Backup != nil {
		setIf(&cfg.Backup.Enabled, o.Backup.Enabled)
		setIf(&cfg.Backup.Suffix, o.Backup.Suffix)
	}

	if len(o.Ignore) > 0 {
		cfg.Ignore = appendUnique(cfg.Ignore, o.Ignore)
	}
}

// sets reports the dotted field names this layer sets.
func (o *Overrides) sets() []string {
	if o == nil {
		return nil
	}

	var fields []string
	add := func(set bool, name string) {
		if set {
			fields = append(fields, name)
		}
	}
	add(o.Format != nil, "format")
	add(o.Color != nil, "color")
	add(o.Flavor != nil, "flavor")
	add(o.FailFast != nil, "fail_fast")
	add(o.StrictContent != nil, "strict_content")
	add(o.ContextLines != nil, "context_lines")
	add(len(o.Ignore) > 0, "ignore")
	if o.Backup != nil {
		add(o.Backup.Enabled != nil, "backup.enabled")
		add(o.Backup.Suffix != nil, "backup.suffix")
	}
	return fields
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

// appendUnique appends the values of add not already present in base.
func appendUnique(base, add []string) []string {
	seen := make(map[string]bool, len(base))
	result := make([]string, 0, len(base)+len(add))
	for _, v := range base {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	for _, v := range add {
		if !seen[v] {
			seen[v] = true
			result = append(result, v)
		}
	}
	return result
}
