package mdast

import "bytes"

// LineInfo locates one line of a document.
type LineInfo struct {
	// StartOffset is the byte index of the first byte of the line.
	StartOffset int

	// NewlineStart is where the line break ("\n" or "\r\n") begins; it equals
	// EndOffset for a last line without one.
	NewlineStart int

	// EndOffset is the byte index just past the line break.
	EndOffset int
}

// HasNewline reports whether the line is terminated by a line break.
func (l LineInfo) HasNewline() bool {
	return l.NewlineStart < l.EndOffset
}

// BuildLines splits content into lines on "\n", treating a preceding '\r' as
// part of the break. Content ending in a line break yields a final empty
// line at len(content).
func BuildLines(content []byte) []LineInfo {
	if len(content) == 0 {
		return []LineInfo{}
	}

	lines := make([]LineInfo, 0, bytes.Count(content, []byte{'\n'})+1)
	start := 0
	for {
		i := bytes.IndexByte(content[start:], '\n')
		if i < 0 {
			break
		}

		nl := start + i
		brk := nl
		if nl > start && content[nl-1] == '\r' {
			brk = nl - 1
		}
		lines = append(lines, LineInfo{StartOffset: start, NewlineStart: brk, EndOffset: nl + 1})
		start = nl + 1
	}

	return append(lines, LineInfo{StartOffset: start, NewlineStart: len(content), EndOffset: len(content)})
}

// LineText returns line i (0-based) without its line break, or nil when i is
// out of range.
func (d *Document) LineText(i int) []byte {
	if i < 0 || i >= len(d.Lines) {
		return nil
	}
	l := d.Lines[i]
	return d.Content[l.StartOffset:l.NewlineStart]
}

// IsBlankLine reports whether line i (0-based) holds only whitespace.
// Lines out of range are not blank.
func (d *Document) IsBlankLine(i int) bool {
	if i < 0 || i >= len(d.Lines) {
		return false
	}
	return len(bytes.TrimSpace(d.LineText(i))) == 0
}
