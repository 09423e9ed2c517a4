// Package fingerprint decides whether an edit of a block is authorized.
//
// A fingerprint is a regular expression that must match somewhere in the
// block's current text. Destructive edits need either a matching fingerprint
// or an explicit force flag; a fingerprint that does not match is never
// overridden by force.
package fingerprint

import (
	"errors"
	"fmt"
	"regexp"
)

// Sentinel errors for validation failures.
var (
	// ErrMismatch is returned when the fingerprint does not match the block.
	ErrMismatch = errors.New("fingerprint mismatch")

	// ErrAuthorizationRequired is returned for destructive edits that carry
	// neither a fingerprint nor force.
	ErrAuthorizationRequired = errors.New("destructive operation requires a fingerprint or force")

	// ErrInvalidPattern is returned when the fingerprint is not a valid regex.
	ErrInvalidPattern = errors.New("invalid fingerprint pattern")
)

// MismatchError reports the pattern that failed to match.
type MismatchError struct {
	Pattern string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: pattern %q not found in block content", ErrMismatch, e.Pattern)
}

// Unwrap returns ErrMismatch.
func (e *MismatchError) Unwrap() error {
	return ErrMismatch
}

// Request carries the inputs of one authorization decision.
type Request struct {
	// Text is the block's current exact text.
	Text []byte

	// Pattern is the fingerprint regex; empty means none was supplied.
	Pattern string

	// Force accepts the risk of a destructive edit without a fingerprint.
	Force bool

	// Destructive is set for operations that remove or overwrite bytes.
	Destructive bool
}

// Validate applies the authorization policy:
//
//	fingerprint  matches  force  result
//	yes          yes      any    ok
//	yes          no       any    ErrMismatch
//	no           -        yes    ok
//	no           -        no     ErrAuthorizationRequired (destructive only)
func Validate(req Request) error {
	if req.Pattern != "" {
		re, err := Compile(req.Pattern)
		if err != nil {
			return err
		}
		if !re.Match(req.Text) {
			return &MismatchError{Pattern: req.Pattern}
		}
		return nil
	}

	if req.Destructive && !req.Force {
		return ErrAuthorizationRequired
	}

	return nil
}

// Compile parses a fingerprint pattern.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return re, nil
}
