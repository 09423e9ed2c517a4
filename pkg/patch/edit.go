package patch

import (
	"bytes"
	"fmt"
)

// TextEdit represents a single text replacement in a file.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// EditError describes an invalid edit.
type EditError struct {
	Edit    TextEdit
	Message string
}

func (e *EditError) Error() string {
	return fmt.Sprintf("invalid edit [%d:%d]: %s", e.Edit.StartOffset, e.Edit.EndOffset, e.Message)
}

// ValidateEdit checks that the edit has a valid range for the given content length.
func ValidateEdit(edit TextEdit, contentLen int) error {
	if edit.StartOffset < 0 {
		return &EditError{Edit: edit, Message: "start offset is negative"}
	}
	if edit.EndOffset < edit.StartOffset {
		return &EditError{Edit: edit, Message: "end offset is before start offset"}
	}
	if edit.EndOffset > contentLen {
		return &EditError{
			Edit:    edit,
			Message: fmt.Sprintf("end offset %d exceeds content length %d", edit.EndOffset, contentLen),
		}
	}
	return nil
}

// ApplyEdit returns a new buffer with edit applied to content.
// The edit must be validated with ValidateEdit first. content is not modified.
func ApplyEdit(content []byte, edit TextEdit) []byte {
	var out bytes.Buffer
	out.Grow(len(content) + len(edit.NewText) - (edit.EndOffset - edit.StartOffset))

	out.Write(content[:edit.StartOffset])
	out.WriteString(edit.NewText)
	out.Write(content[edit.EndOffset:])

	return out.Bytes()
}
