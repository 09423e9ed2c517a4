package batch

import (
	"fmt"
	"strings"
)

// DocumentLevel is the Index of a ValidationError that concerns the batch
// as a whole rather than one operation.
const DocumentLevel = -1

// ValidationError is one problem in a batch file.
type ValidationError struct {
	// Index is the zero-based operation position, or DocumentLevel.
	Index int

	// Field is the offending key within the operation, if known.
	Field string

	Message string
}

func (e ValidationError) Error() string {
	var b strings.Builder
	if e.Index != DocumentLevel {
		// Operations are numbered from 1 for people.
		fmt.Fprintf(&b, "operation %d: ", e.Index+1)
	}
	if e.Field != "" {
		b.WriteString(e.Field)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

func (e ValidationError) Unwrap() error {
	return ErrInvalidBatch
}

// Errors collects every problem found in a batch file.
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidBatch, strings.Join(parts, "; "))
}

func (e Errors) Unwrap() error {
	return ErrInvalidBatch
}
