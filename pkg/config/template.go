package config

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Format is the output format: "yaml" or "json".
	Format string
}

// GenerateTemplate creates a configuration file template holding the defaults.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	return []byte(yamlTemplate), nil
}

const yamlTemplate = `# mdpatch configuration
# See: https://github.com/yaklabco/mdpatch

# Result output: diff, json, or short
format: diff

# Colorize output: auto, always, or never
color: auto

# Markdown flavor used to inspect patch content: commonmark or gfm
flavor: gfm

# Snapshot of the previous bytes, written next to the file before each write
backup:
  enabled: true
  suffix: .bak

# Stop a batch at the first failing operation
fail_fast: false

# Reject append/replace content that contains headings or several blocks
strict_content: false

# Unchanged lines shown around each change in diffs
context_lines: 3

# Glob patterns skipped when inspecting directories
# ignore:
#   - "vendor/**"
#   - "node_modules/**"
`

// templateToJSON renders the default configuration as indented JSON.
func templateToJSON() ([]byte, error) {
	return NewConfig().ToJSON()
}
