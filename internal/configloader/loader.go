// Package configloader provides configuration loading and resolution.
// It implements XDG-compliant configuration discovery, layered merging of
// sparse overrides, environment variable support and validation.
package configloader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdpatch/internal/logging"
	"github.com/yaklabco/mdpatch/pkg/config"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// Source labels for layers that do not come from a file.
const (
	SourceEnvironment = "environment"
	SourceCommandLine = "command line"
)

// ErrConfigExists is returned by WriteConfig when the target already exists.
var ErrConfigExists = errors.New("configuration file already exists")

// LoadOptions controls configuration loading behavior.
type LoadOptions struct {
	// WorkingDir is the directory to search from for project config.
	// Defaults to current working directory if empty.
	WorkingDir string

	// ExplicitPath is an explicit config file path (from --config flag).
	// If set, project config discovery is skipped.
	ExplicitPath string

	// NoConfig skips every configuration file (from --no-config).
	// Environment and command line layers still apply.
	NoConfig bool

	// IgnoreSystemConfig skips loading system-level configuration.
	IgnoreSystemConfig bool

	// IgnoreUserConfig skips loading user-level configuration.
	IgnoreUserConfig bool

	// IgnoreEnv skips loading environment variables.
	IgnoreEnv bool

	// LookupEnv replaces os.LookupEnv, for tests.
	LookupEnv func(string) (string, bool)

	// CLI contains overrides from command-line flags.
	// These take highest precedence.
	CLI *Overrides
}

// LoadResult contains the resolved configuration and metadata.
type LoadResult struct {
	// Config is the final merged configuration.
	Config *config.Config

	// Paths contains the discovered configuration file paths.
	Paths *ConfigPaths

	// LoadedFrom lists the files that were actually loaded (in order).
	LoadedFrom []string

	// Warnings contains non-fatal issues encountered during loading.
	Warnings []string
}

// layer is one resolved source of overrides.
type layer struct {
	source    string
	overrides *Overrides

	// lines maps dotted field names to their line in source.
	lines map[string]int
}

// Load resolves the final configuration by merging all sources.
// Precedence (highest to lowest):
//  1. CLI flags (opts.CLI)
//  2. Environment variables (MDPATCH_*)
//  3. Explicit config file (opts.ExplicitPath), or else
//     project config (.mdpatch.yml upward search)
//  4. User config ($XDG_CONFIG_HOME/mdpatch/config.yaml)
//  5. System config (/etc/mdpatch/config.yaml)
//  6. Defaults
func Load(ctx context.Context, opts LoadOptions) (*LoadResult, error) {
	logger := logging.FromContext(ctx)

	workDir := opts.WorkingDir
	if workDir == "" {
		var err error
		workDir, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("get working directory: %w", err)
		}
	}

	result := &LoadResult{Paths: &ConfigPaths{}}

	var layers []layer

	if !opts.NoConfig {
		paths, err := DiscoverPaths(ctx, workDir)
		if err != nil {
			return nil, fmt.Errorf("discover paths: %w", err)
		}
		result.Paths = paths

		paths.Explicit = opts.ExplicitPath
		files := paths.Files(opts.IgnoreSystemConfig, opts.IgnoreUserConfig)

		for _, path := range files {
			fileLayer, warnings, err := loadConfigFile(path)
			if err != nil {
				return nil, fmt.Errorf("load config %s: %w", path, err)
			}
			layers = append(layers, *fileLayer)
			result.LoadedFrom = append(result.LoadedFrom, path)
			result.Warnings = append(result.Warnings, warnings...)
			logger.Debug("loaded configuration", logging.FieldConfig, path)
		}
	}

	if !opts.IgnoreEnv {
		envOverrides, err := OverridesFromEnv(opts.LookupEnv)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
		}
		if envOverrides != nil {
			layers = append(layers, layer{source: SourceEnvironment, overrides: envOverrides})
		}
	}

	if opts.CLI != nil {
		layers = append(layers, layer{source: SourceCommandLine, overrides: opts.CLI})
	}

	cfg := config.NewConfig()
	for _, l := range layers {
		l.overrides.Apply(cfg)
	}

	if problems := Validate(cfg); len(problems) > 0 {
		first := problems[0]
		attribute(&first, layers)
		return nil, &first
	}

	result.Config = cfg
	return result, nil
}

// attribute points a validation error at the last layer that set its field.
func attribute(verr *ValidationError, layers []layer) {
	field := rootField(verr.Field)
	for i := len(layers) - 1; i >= 0; i-- {
		for _, set := range layers[i].overrides.sets() {
			if set == field || strings.HasPrefix(set, field+".") {
				verr.FilePath = layers[i].source
				verr.Line = layers[i].lines[set]
				return
			}
		}
	}
}

// knownKeys are the accepted keys of a configuration file.
//
//nolint:gochecknoglobals // Read-only lookup table.
var knownKeys = map[string][]string{
	"format":         nil,
	"color":          nil,
	"flavor":         nil,
	"backup":         {"enabled", "suffix"},
	"fail_fast":      nil,
	"strict_content": nil,
	"context_lines":  nil,
	"ignore":         nil,
}

// loadConfigFile decodes a YAML file into a sparse layer. Unknown keys are
// reported as warnings with their line numbers.
func loadConfigFile(path string) (*layer, []string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read file: %w", err)
	}

	l := &layer{source: path, overrides: &Overrides{}, lines: make(map[string]int)}

	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: parse YAML: %w", config.ErrInvalidConfig, err)
	}
	if len(doc.Content) == 0 {
		return l, nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, nil, &ValidationError{
			FilePath: path,
			Line:     root.Line,
			Message:  "configuration must be a mapping",
		}
	}

	if err := root.Decode(l.overrides); err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", config.ErrInvalidConfig, path, err)
	}

	var warnings []string
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], root.Content[i+1]
		children, known := knownKeys[key.Value]
		if !known {
			warnings = append(warnings, fmt.Sprintf("%s:%d: unknown key %q; it will be ignored", path, key.Line, key.Value))
			continue
		}
		l.lines[key.Value] = key.Line

		if children == nil || value.Kind != yaml.MappingNode {
			continue
		}
		for j := 0; j+1 < len(value.Content); j += 2 {
			child := value.Content[j]
			if !contains(children, child.Value) {
				warnings = append(warnings, fmt.Sprintf("%s:%d: unknown key %q; it will be ignored",
					path, child.Line, key.Value+"."+child.Value))
				continue
			}
			l.lines[key.Value+"."+child.Value] = child.Line
		}
	}

	sort.Strings(warnings)
	return l, warnings, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// WriteConfig writes a configuration file. An existing file is replaced
// only when overwrite is set.
func WriteConfig(path string, content []byte, overwrite bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	file, err := os.OpenFile(path, flags, configFilePermissions)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return fmt.Errorf("create file: %w", err)
	}

	if _, err := file.Write(content); err != nil {
		_ = file.Close()
		return fmt.Errorf("write file: %w", err)
	}

	if err := file.Close(); err != nil {
		return fmt.Errorf("close file: %w", err)
	}

	return nil
}
