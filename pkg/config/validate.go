package config

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidConfig is wrapped by configuration validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks every field of the configuration. The result is nil or a
// validation.Errors keyed by YAML field name.
func (c *Config) Validate() error {
	if c == nil {
		return ErrInvalidConfig
	}

	err := validation.ValidateStruct(c,
		validation.Field(&c.Format, validation.Required,
			validation.In(FormatDiff, FormatJSON, FormatShort).Error("must be one of diff, json, short")),
		validation.Field(&c.Color, validation.Required,
			validation.In(ColorAuto, ColorAlways, ColorNever).Error("must be one of auto, always, never")),
		validation.Field(&c.Flavor, validation.Required,
			validation.In(FlavorCommonMark, FlavorGFM).Error("must be one of commonmark, gfm")),
		validation.Field(&c.Backup),
		validation.Field(&c.ContextLines, validation.Min(0).Error("must be zero or greater")),
		validation.Field(&c.Ignore, validation.Each(validation.By(validGlob))),
	)
	if err != nil {
		return err
	}
	return nil
}

// Validate implements validation.Validatable so nested errors carry
// "backup.suffix" style keys.
func (b BackupsConfig) Validate() error {
	return validation.ValidateStruct(&b,
		validation.Field(&b.Suffix, validation.By(validSuffix)),
	)
}

func validSuffix(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if strings.ContainsAny(s, `/\`) {
		return validation.NewError("config_suffix_separator", "must not contain a path separator")
	}
	if strings.TrimSpace(s) != s {
		return validation.NewError("config_suffix_space", "must not start or end with whitespace")
	}
	return nil
}

func validGlob(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return validation.NewError("config_glob_blank", "must not be blank")
	}
	return nil
}
