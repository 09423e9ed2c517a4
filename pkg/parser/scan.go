package parser

import (
	"bytes"
	"strings"
)

const (
	tabWidth        = 4
	maxBlockIndent  = 3
	codeIndent      = 4
	minFenceLength  = 3
	minBreakLength  = 3
	maxHeadingLevel = 6
	maxOrderedDigit = 9
)

// htmlBlockTags are the tag names that open an HTML block.
//
//nolint:gochecknoglobals // Read-only lookup table.
var htmlBlockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "base": true, "basefont": true,
	"blockquote": true, "body": true, "caption": true, "center": true, "col": true,
	"colgroup": true, "dd": true, "details": true, "dialog": true, "dir": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "frame": true, "frameset": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"head": true, "header": true, "hr": true, "html": true, "iframe": true,
	"legend": true, "li": true, "link": true, "main": true, "menu": true,
	"menuitem": true, "nav": true, "noframes": true, "ol": true, "optgroup": true,
	"option": true, "p": true, "param": true, "pre": true, "script": true,
	"search": true, "section": true, "style": true, "summary": true, "table": true,
	"tbody": true, "td": true, "textarea": true, "tfoot": true, "th": true,
	"thead": true, "title": true, "tr": true, "track": true, "ul": true,
}

// lineIndent returns the visual indentation of line (tabs expand to the next
// multiple of four) and the remainder after the leading whitespace.
func lineIndent(line []byte) (int, []byte) {
	col := 0
	for i, c := range line {
		switch c {
		case ' ':
			col++
		case '\t':
			col += tabWidth - col%tabWidth
		default:
			return col, line[i:]
		}
	}
	return col, nil
}

func isBlank(line []byte) bool {
	return len(bytes.TrimSpace(line)) == 0
}

// atxHeading reports the level and title of an ATX heading line.
func atxHeading(rest []byte) (int, string, bool) {
	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level == 0 || level > maxHeadingLevel {
		return 0, "", false
	}
	if level < len(rest) && rest[level] != ' ' && rest[level] != '\t' {
		return 0, "", false
	}

	return level, headingTitle(rest[level:]), true
}

// headingTitle trims the text and strips an optional closing '#' sequence.
func headingTitle(text []byte) string {
	title := strings.TrimSpace(string(text))

	trimmed := strings.TrimRight(title, "#")
	if trimmed == "" {
		return ""
	}
	if len(trimmed) < len(title) {
		last := trimmed[len(trimmed)-1]
		if last == ' ' || last == '\t' {
			title = trimmed
		}
	}

	return strings.TrimSpace(title)
}

// fenceOpen reports the opening fence character, run length and info string.
func fenceOpen(rest []byte) (byte, int, string, bool) {
	if len(rest) < minFenceLength || (rest[0] != '`' && rest[0] != '~') {
		return 0, 0, "", false
	}

	char := rest[0]
	n := runLength(rest, char)
	if n < minFenceLength {
		return 0, 0, "", false
	}

	info := strings.TrimSpace(string(rest[n:]))
	if char == '`' && strings.ContainsRune(info, '`') {
		return 0, 0, "", false
	}

	return char, n, info, true
}

// isFenceClose reports whether rest closes a fence of char with at least length.
func isFenceClose(rest []byte, char byte, length int) bool {
	n := runLength(rest, char)
	return n >= length && isBlank(rest[n:])
}

func runLength(b []byte, char byte) int {
	n := 0
	for n < len(b) && b[n] == char {
		n++
	}
	return n
}

// isThematicBreak reports a line of three or more identical '-', '*' or '_'
// characters with optional interior whitespace.
func isThematicBreak(rest []byte) bool {
	if len(rest) == 0 {
		return false
	}

	char := rest[0]
	if char != '-' && char != '*' && char != '_' {
		return false
	}

	count := 0
	for _, c := range rest {
		switch c {
		case char:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}

	return count >= minBreakLength
}

// isSetextUnderline reports a run of '-' or '=' with nothing else but trailing
// whitespace.
func isSetextUnderline(rest []byte) bool {
	if len(rest) == 0 || (rest[0] != '-' && rest[0] != '=') {
		return false
	}
	n := runLength(rest, rest[0])
	return isBlank(rest[n:])
}

// listMarker reports whether rest starts with a bullet or ordered list marker.
func listMarker(rest []byte) (bool, bool) {
	if len(rest) == 0 {
		return false, false
	}

	switch rest[0] {
	case '-', '*', '+':
		return isMarkerEnd(rest, 1), false
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits > maxOrderedDigit || digits >= len(rest) {
		return false, false
	}
	if rest[digits] != '.' && rest[digits] != ')' {
		return false, false
	}

	return isMarkerEnd(rest, digits+1), true
}

func isMarkerEnd(rest []byte, pos int) bool {
	return pos == len(rest) || rest[pos] == ' ' || rest[pos] == '\t'
}

// isHTMLBlockStart reports whether rest opens a raw HTML block.
func isHTMLBlockStart(rest []byte) bool {
	if len(rest) < 2 || rest[0] != '<' {
		return false
	}

	switch rest[1] {
	case '!', '?':
		return true
	case '/':
		return htmlBlockTags[tagName(rest[2:])]
	}

	return htmlBlockTags[tagName(rest[1:])]
}

// tagName returns the lowercase tag name at the start of b, or "" when the
// name is not followed by whitespace, '>', "/>" or the end of the line.
func tagName(b []byte) string {
	n := 0
	for n < len(b) && (isASCIILetter(b[n]) || (n > 0 && b[n] >= '0' && b[n] <= '9')) {
		n++
	}
	if n == 0 {
		return ""
	}

	if n < len(b) {
		switch b[n] {
		case ' ', '\t', '>':
		case '/':
			if n+1 >= len(b) || b[n+1] != '>' {
				return ""
			}
		default:
			return ""
		}
	}

	return strings.ToLower(string(b[:n]))
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// isTableDelimiterRow reports a GFM delimiter row such as "| --- | :-: |".
func isTableDelimiterRow(rest []byte) bool {
	row := strings.TrimSpace(string(rest))
	if !strings.Contains(row, "|") {
		return false
	}

	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	if row == "" {
		return false
	}

	cells := strings.Split(row, "|")
	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		cell = strings.TrimPrefix(cell, ":")
		cell = strings.TrimSuffix(cell, ":")
		if cell == "" || strings.Trim(cell, "-") != "" {
			return false
		}
	}

	return true
}
