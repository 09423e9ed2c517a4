package reporter

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for a format name with no reporter.
var ErrUnknownFormat = errors.New("unknown format")

// Format names an output format.
type Format string

// Output formats supported by the reporter.
const (
	FormatDiff  Format = "diff"
	FormatJSON  Format = "json"
	FormatShort Format = "short"
)

// constructors maps each format to its reporter, in display order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var constructors = []struct {
	format Format
	build  func(Options) Reporter
}{
	{FormatDiff, func(o Options) Reporter { return NewDiffReporter(o) }},
	{FormatJSON, func(o Options) Reporter { return NewJSONReporter(o) }},
	{FormatShort, func(o Options) Reporter { return NewShortReporter(o) }},
}

// Formats lists the supported formats.
func Formats() []Format {
	out := make([]Format, len(constructors))
	for i, c := range constructors {
		out[i] = c.format
	}
	return out
}

// ParseFormat resolves a format name case-insensitively. The empty string
// means FormatDiff.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatDiff, nil
	}
	if f := Format(name); f.IsValid() {
		return f, nil
	}

	names := make([]string, len(constructors))
	for i, c := range constructors {
		names[i] = string(c.format)
	}
	return "", fmt.Errorf("%w %q; valid formats: %s", ErrUnknownFormat, name, strings.Join(names, ", "))
}

func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f has a reporter.
func (f Format) IsValid() bool {
	return f.constructor() != nil
}

func (f Format) constructor() func(Options) Reporter {
	for _, c := range constructors {
		if c.format == f {
			return c.build
		}
	}
	return nil
}
