// Package patch computes new document bytes for structural edits.
//
// Every function in this package is pure: it takes a parsed document and an
// operation and returns new bytes without touching the filesystem.
package patch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yaklabco/mdpatch/pkg/locate"
)

// Sentinel errors for invalid operations.
var (
	// ErrMissingContent is returned when Append or Replace has no content.
	ErrMissingContent = errors.New("content is required for append and replace")

	// ErrUnknownKind is returned for an unrecognized operation name.
	ErrUnknownKind = errors.New("unknown operation")
)

// Kind identifies the edit to perform.
type Kind int

// Operation kinds.
const (
	KindAppend Kind = iota
	KindReplace
	KindDelete
)

// String returns the lowercase operation name.
func (k Kind) String() string {
	switch k {
	case KindAppend:
		return "append"
	case KindReplace:
		return "replace"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// IsDestructive reports whether the kind removes or overwrites bytes.
func (k Kind) IsDestructive() bool {
	return k == KindReplace || k == KindDelete
}

// NeedsContent reports whether the kind requires content.
func (k Kind) NeedsContent() bool {
	return k == KindAppend || k == KindReplace
}

// ParseKind parses an operation name, case-insensitively.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "append":
		return KindAppend, nil
	case "replace":
		return KindReplace, nil
	case "delete":
		return KindDelete, nil
	default:
		return 0, fmt.Errorf("%w: %q (valid: append, replace, delete)", ErrUnknownKind, name)
	}
}

// Operation is one structural edit addressed by heading path and block index.
type Operation struct {
	Kind Kind
	Path locate.HeadingPath

	// Index is the zero-based position in the section's content blocks.
	Index int

	// Content is the new text for Append and Replace.
	Content string

	// Fingerprint is an optional regex that must match the target block.
	Fingerprint string
}

// normalizedContent returns the content with trailing line breaks removed.
func (op Operation) normalizedContent() (string, error) {
	if !op.Kind.NeedsContent() {
		return "", nil
	}

	content := strings.TrimRight(op.Content, "\r\n")
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("%w: %s operation on %q", ErrMissingContent, op.Kind, op.Path.String())
	}

	return content, nil
}
