// Package locate resolves heading-path addresses against a parsed document.
package locate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidPath is returned for heading paths that cannot be parsed.
var ErrInvalidPath = errors.New("invalid heading path")

const maxLevel = 6

// Step is one (level, text) element of a heading path.
type Step struct {
	Level int
	Text  string
}

// String renders the step in ATX form, e.g. "## Usage".
func (s Step) String() string {
	return strings.Repeat("#", s.Level) + " " + s.Text
}

// HeadingPath is an ordered walk from the document root to a section.
type HeadingPath []Step

// String joins the steps with single spaces, e.g. "# Title ## Usage".
func (p HeadingPath) String() string {
	parts := make([]string, len(p))
	for i, step := range p {
		parts[i] = step.String()
	}
	return strings.Join(parts, " ")
}

// ParseStep parses one ATX-style element such as "## Usage".
func ParseStep(raw string) (Step, error) {
	trimmed := strings.TrimSpace(raw)

	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > maxLevel {
		return Step{}, fmt.Errorf("%w: %q must start with 1-6 '#' characters", ErrInvalidPath, raw)
	}

	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return Step{}, fmt.Errorf("%w: %q needs whitespace after the '#' marker", ErrInvalidPath, raw)
	}

	return Step{Level: level, Text: strings.TrimSpace(rest)}, nil
}

// ParseSteps parses a list of ATX-style elements, one step each. An element
// is taken whole, so "# Issue # 42" is the level-1 heading "Issue # 42".
func ParseSteps(raw []string) (HeadingPath, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: path is empty", ErrInvalidPath)
	}

	path := make(HeadingPath, 0, len(raw))
	for _, elem := range raw {
		step, err := ParseStep(elem)
		if err != nil {
			return nil, err
		}
		path = append(path, step)
	}

	return path, nil
}

// ParseHeadingPath splits a path string such as "# Title ## Sub Section"
// into steps. A new step starts at every whitespace-separated token made of
// '#' characters only; words before the first marker are rejected.
func ParseHeadingPath(raw string) (HeadingPath, error) {
	fields := strings.Fields(raw)
	if len(fields) == 0 {
		return nil, fmt.Errorf("%w: path is empty", ErrInvalidPath)
	}

	var (
		path    HeadingPath
		current *Step
		words   []string
	)

	flush := func() {
		if current != nil {
			current.Text = strings.Join(words, " ")
			path = append(path, *current)
		}
	}

	for _, field := range fields {
		if isMarker(field) {
			if len(field) > maxLevel {
				return nil, fmt.Errorf("%w: %q is deeper than level %d", ErrInvalidPath, field, maxLevel)
			}
			flush()
			current = &Step{Level: len(field)}
			words = words[:0]
			continue
		}

		if current == nil {
			return nil, fmt.Errorf("%w: %q does not start with a '#' marker", ErrInvalidPath, raw)
		}
		words = append(words, field)
	}
	flush()

	return path, nil
}

func isMarker(field string) bool {
	return strings.Trim(field, "#") == ""
}
