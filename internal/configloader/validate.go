package configloader

import (
	"errors"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/yaklabco/mdpatch/pkg/config"
)

// ValidationError is an invalid configuration value, attributed to the file
// or environment variable that set it when known.
type ValidationError struct {
	// Field is the dotted key, such as "backup.suffix" or "ignore[2]".
	Field string

	Value   any
	Message string

	// FilePath is the config file path or the environment source name.
	FilePath string

	// Line is the 1-based line of the key in FilePath, or 0.
	Line int
}

// Error renders "path:line: field: message", leaving out unknown parts.
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.FilePath != "" {
		b.WriteString(e.FilePath)
		if e.Line > 0 {
			b.WriteString(":" + strconv.Itoa(e.Line))
		}
		b.WriteString(": ")
	}
	if e.Field != "" {
		b.WriteString(e.Field + ": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Unwrap lets callers match config.ErrInvalidConfig.
func (e *ValidationError) Unwrap() error {
	return config.ErrInvalidConfig
}

// Validate checks a resolved configuration and returns its problems sorted
// by field. A nil config has none.
func Validate(cfg *config.Config) []ValidationError {
	if cfg == nil {
		return nil
	}

	err := cfg.Validate()
	if err == nil {
		return nil
	}

	var fields validation.Errors
	if !errors.As(err, &fields) {
		return []ValidationError{{Message: err.Error()}}
	}

	var problems []ValidationError
	flattenErrors("", fields, func(field, message string) {
		problems = append(problems, ValidationError{
			Field:   field,
			Value:   fieldValue(cfg, field),
			Message: message,
		})
	})

	sort.Slice(problems, func(i, j int) bool {
		return problems[i].Field < problems[j].Field
	})
	return problems
}

// flattenErrors walks nested ozzo errors. Numeric keys from Each become
// bracketed indices, as in "ignore[2]".
func flattenErrors(prefix string, errs validation.Errors, emit func(field, message string)) {
	for key, err := range errs {
		field := joinField(prefix, key)

		var nested validation.Errors
		if errors.As(err, &nested) {
			flattenErrors(field, nested, emit)
			continue
		}
		emit(field, err.Error())
	}
}

func joinField(prefix, key string) string {
	if _, err := strconv.Atoi(key); err == nil {
		return prefix + "[" + key + "]"
	}
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// rootField strips any index from a field path: "ignore[1]" is "ignore".
func rootField(field string) string {
	if i := strings.IndexByte(field, '['); i >= 0 {
		return field[:i]
	}
	return field
}

func fieldValue(cfg *config.Config, field string) any {
	switch rootField(field) {
	case "format":
		return cfg.Format
	case "color":
		return cfg.Color
	case "flavor":
		return cfg.Flavor
	case "context_lines":
		return cfg.ContextLines
	case "backup.suffix":
		return cfg.Backup.Suffix
	case "ignore":
		index, err := strconv.Atoi(strings.Trim(strings.TrimPrefix(field, "ignore"), "[]"))
		if err == nil && index >= 0 && index < len(cfg.Ignore) {
			return cfg.Ignore[index]
		}
		return cfg.Ignore
	default:
		return nil
	}
}
