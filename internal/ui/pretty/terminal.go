package pretty

import (
	"io"
	"strings"

	"golang.org/x/term"
)

// DefaultWidth is used when the writer is not a terminal.
const DefaultWidth = 80

// TerminalWidth returns the column count of the terminal behind writer, or
// DefaultWidth.
func TerminalWidth(writer io.Writer) int {
	if f, ok := writer.(interface{ Fd() uintptr }); ok {
		width, _, err := term.GetSize(int(f.Fd()))
		if err == nil && width > 0 {
			return width
		}
	}
	return DefaultWidth
}

// Rule returns a horizontal line of width columns, capped at limit when
// limit is positive.
func Rule(width, limit int) string {
	if limit > 0 && width > limit {
		width = limit
	}
	if width <= 0 {
		return ""
	}
	return strings.Repeat("─", width)
}
