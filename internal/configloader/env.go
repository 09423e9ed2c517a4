package configloader

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/yaklabco/mdpatch/pkg/config"
)

// envPrefix is the prefix for all mdpatch environment variables.
const envPrefix = "MDPATCH_"

// envMappings maps environment variable suffixes to override setters.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]func(*Overrides, string) error{
	"FORMAT": func(o *Overrides, v string) error {
		f := config.OutputFormat(strings.ToLower(v))
		o.Format = &f
		return nil
	},
	"COLOR": func(o *Overrides, v string) error {
		c := config.ColorMode(strings.ToLower(v))
		o.Color = &c
		return nil
	},
	"FLAVOR": func(o *Overrides, v string) error {
		f := config.Flavor(strings.ToLower(v))
		o.Flavor = &f
		return nil
	},
	"NO_BACKUP": func(o *Overrides, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		enabled := !b
		backup(o).Enabled = &enabled
		return nil
	},
	"BACKUP_SUFFIX": func(o *Overrides, v string) error {
		backup(o).Suffix = &v
		return nil
	},
	"FAIL_FAST": func(o *Overrides, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		o.FailFast = &b
		return nil
	},
	"STRICT_CONTENT": func(o *Overrides, v string) error {
		b, err := parseBool(v)
		if err != nil {
			return err
		}
		o.StrictContent = &b
		return nil
	},
	"CONTEXT_LINES": func(o *Overrides, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid integer value: %w", err)
		}
		o.ContextLines = &n
		return nil
	},
	"IGNORE": func(o *Overrides, v string) error {
		for _, pattern := range strings.Split(v, ",") {
			if pattern = strings.TrimSpace(pattern); pattern != "" {
				o.Ignore = append(o.Ignore, pattern)
			}
		}
		return nil
	},
}

func backup(o *Overrides) *BackupOverrides {
	if o.Backup == nil {
		o.Backup = &BackupOverrides{}
	}
	return o.Backup
}

// parseBool accepts the usual spellings of true and false.
func parseBool(v string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off", "":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean value %q", v)
	}
}

// OverridesFromEnv reads MDPATCH_* variables using lookup, which is
// os.LookupEnv in production. It returns nil when no variable is set.
func OverridesFromEnv(lookup func(string) (string, bool)) (*Overrides, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var o *Overrides
	for _, suffix := range EnvVarNames() {
		value, ok := lookup(envPrefix + suffix)
		if !ok {
			continue
		}
		if o == nil {
			o = &Overrides{}
		}
		if err := envMappings[suffix](o, value); err != nil {
			return nil, fmt.Errorf("%s%s: %w", envPrefix, suffix, err)
		}
	}

	return o, nil
}

// EnvVarNames returns the supported variable suffixes in a stable order.
func EnvVarNames() []string {
	return []string{
		"FORMAT",
		"COLOR",
		"FLAVOR",
		"NO_BACKUP",
		"BACKUP_SUFFIX",
		"FAIL_FAST",
		"STRICT_CONTENT",
		"CONTEXT_LINES",
		"IGNORE",
	}
}
