// Package diff renders unified diffs between two versions of a document.
//
// Lines are aligned by a longest common subsequence over the region left
// after trimming the common prefix and suffix. The alignment is
// deterministic: identical inputs always give identical hunks.
package diff

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultContextLines is the number of context lines shown around changes.
const DefaultContextLines = 3

// Diff represents a unified diff between original and modified content.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Original is the original file content.
	Original []byte

	// Modified is the modified file content.
	Modified []byte

	// Hunks contains the diff hunks.
	Hunks []Hunk

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// Hunk represents a single hunk in a unified diff.
type Hunk struct {
	// OriginalStart is the 1-based line number where the hunk starts in the original.
	OriginalStart int

	// OriginalCount is the number of lines from the original in this hunk.
	OriginalCount int

	// ModifiedStart is the 1-based line number where the hunk starts in the modified.
	ModifiedStart int

	// ModifiedCount is the number of lines from the modified in this hunk.
	ModifiedCount int

	// Lines contains the diff lines in this hunk.
	Lines []Line
}

// Line represents a single line in a diff hunk.
type Line struct {
	// Kind indicates whether this is a context, add, or remove line.
	Kind LineKind

	// Content is the line content (without the diff prefix or line break).
	Content string

	// NoNewline is set for a final line that has no trailing line break.
	NoNewline bool
}

// LineKind indicates the type of diff line.
type LineKind int

const (
	// LineContext is an unchanged context line.
	LineContext LineKind = iota

	// LineAdd is a line added in the modified version.
	LineAdd

	// LineRemove is a line removed from the original version.
	LineRemove
)

// noNewlineMarker follows a line that lacks a trailing line break.
const noNewlineMarker = `\ No newline at end of file`

// Generate creates a unified diff with DefaultContextLines of context.
// Returns nil if there are no changes.
func Generate(path string, original, modified []byte) *Diff {
	return GenerateWithContext(path, original, modified, DefaultContextLines)
}

// GenerateWithContext creates a unified diff with the given number of context
// lines. Negative values use DefaultContextLines. Returns nil if there are no changes.
func GenerateWithContext(path string, original, modified []byte, context int) *Diff {
	if context < 0 {
		context = DefaultContextLines
	}

	origLines := splitLines(original)
	modLines := splitLines(modified)

	if slices.Equal(origLines, modLines) {
		return nil
	}

	hs := hunks(align(origLines, modLines), context)
	if len(hs) == 0 {
		return nil
	}

	var additions, deletions int
	for _, hunk := range hs {
		for _, line := range hunk.Lines {
			switch line.Kind {
			case LineAdd:
				additions++
			case LineRemove:
				deletions++
			}
		}
	}

	return &Diff{
		Path:      path,
		Original:  original,
		Modified:  modified,
		Hunks:     hs,
		Additions: additions,
		Deletions: deletions,
	}
}

// DisplayPath returns the path with leading "./" and "/" removed.
func (d *Diff) DisplayPath() string {
	path := strings.TrimPrefix(d.Path, "./")
	return strings.TrimPrefix(path, "/")
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := d.DisplayPath()
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String returns the diff in unified diff format (without the git header).
func (d *Diff) String() string {
	if d == nil || len(d.Hunks) == 0 {
		return ""
	}

	path := d.DisplayPath()

	var builder strings.Builder
	fmt.Fprintf(&builder, "--- a/%s\n", path)
	fmt.Fprintf(&builder, "+++ b/%s\n", path)

	for _, hunk := range d.Hunks {
		builder.WriteString(hunk.Header())
		builder.WriteByte('\n')

		for _, line := range hunk.Lines {
			builder.WriteString(line.String())
			builder.WriteByte('\n')
			if line.NoNewline {
				builder.WriteString(noNewlineMarker)
				builder.WriteByte('\n')
			}
		}
	}

	return builder.String()
}

// Header returns the "@@ -a,b +c,d @@" line of the hunk.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@",
		h.OriginalStart, h.OriginalCount,
		h.ModifiedStart, h.ModifiedCount)
}

// String returns the line with its diff prefix.
func (l Line) String() string {
	switch l.Kind {
	case LineAdd:
		return "+" + l.Content
	case LineRemove:
		return "-" + l.Content
	default:
		return " " + l.Content
	}
}

// FullString returns the complete diff including the git header.
func (d *Diff) FullString() string {
	if d == nil || len(d.Hunks) == 0 {
		return ""
	}
	return d.GitHeader() + "\n" + d.String()
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// line is one source line and whether it ends with a line break.
type line struct {
	text string
	eol  bool
}

// splitLines splits content into lines, recording whether the last one is
// newline-terminated.
func splitLines(content []byte) []line {
	if len(content) == 0 {
		return nil
	}

	parts := strings.Split(string(content), "\n")
	terminated := parts[len(parts)-1] == ""
	if terminated {
		parts = parts[:len(parts)-1]
	}

	lines := make([]line, len(parts))
	for i, part := range parts {
		lines[i] = line{text: part, eol: true}
	}
	if !terminated {
		lines[len(lines)-1].eol = false
	}

	return lines
}

// op is one aligned line of the diff.
type op struct {
	kind LineKind
	line line
}

// align pairs the lines of orig and mod. The common prefix and suffix are
// context; the middle follows a longest common subsequence, removing before
// adding wherever the two sides diverge.
func align(orig, mod []line) []op {
	prefix := 0
	for prefix < len(orig) && prefix < len(mod) && orig[prefix] == mod[prefix] {
		prefix++
	}
	suffix := 0
	for suffix < len(orig)-prefix && suffix < len(mod)-prefix &&
		orig[len(orig)-1-suffix] == mod[len(mod)-1-suffix] {
		suffix++
	}

	ops := make([]op, 0, len(orig)+len(mod)-prefix-suffix)
	for _, l := range orig[:prefix] {
		ops = append(ops, op{kind: LineContext, line: l})
	}

	a := orig[prefix : len(orig)-suffix]
	b := mod[prefix : len(mod)-suffix]
	table := lcsTable(a, b)

	i, j := 0, 0
	for i < len(a) || j < len(b) {
		switch {
		case i < len(a) && j < len(b) && a[i] == b[j]:
			ops = append(ops, op{kind: LineContext, line: a[i]})
			i++
			j++
		case i < len(a) && (j == len(b) || table[i+1][j] >= table[i][j+1]):
			ops = append(ops, op{kind: LineRemove, line: a[i]})
			i++
		default:
			ops = append(ops, op{kind: LineAdd, line: b[j]})
			j++
		}
	}

	for _, l := range orig[len(orig)-suffix:] {
		ops = append(ops, op{kind: LineContext, line: l})
	}

	return ops
}

// lcsTable returns t where t[i][j] is the length of the longest common
// subsequence of a[i:] and b[j:].
func lcsTable(a, b []line) [][]int {
	t := make([][]int, len(a)+1)
	for i := range t {
		t[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				t[i][j] = t[i+1][j+1] + 1
			} else {
				t[i][j] = max(t[i+1][j], t[i][j+1])
			}
		}
	}
	return t
}

// hunks cuts ops into hunks with up to context unchanged lines around each
// change. Changes separated by at most 2*context unchanged lines share a hunk.
func hunks(ops []op, context int) []Hunk {
	// at[k] holds the 1-based original and modified line numbers of ops[k].
	at := make([][2]int, len(ops)+1)
	at[0] = [2]int{1, 1}
	for k, o := range ops {
		at[k+1] = at[k]
		if o.kind != LineAdd {
			at[k+1][0]++
		}
		if o.kind != LineRemove {
			at[k+1][1]++
		}
	}

	var out []Hunk
	for k := 0; k < len(ops); {
		if ops[k].kind == LineContext {
			k++
			continue
		}

		end := k
		for {
			for end < len(ops) && ops[end].kind != LineContext {
				end++
			}
			next := end
			for next < len(ops) && ops[next].kind == LineContext {
				next++
			}
			if next == len(ops) || next-end > 2*context {
				break
			}
			end = next
		}

		first := max(k-context, 0)
		last := min(end+context, len(ops))
		out = append(out, newHunk(ops[first:last], at[first]))
		k = last
	}

	return out
}

// newHunk builds a hunk from ops starting at the given line numbers.
func newHunk(ops []op, at [2]int) Hunk {
	h := Hunk{Lines: make([]Line, 0, len(ops))}
	for _, o := range ops {
		h.Lines = append(h.Lines, Line{Kind: o.kind, Content: o.line.text, NoNewline: !o.line.eol})
		switch o.kind {
		case LineContext:
			h.OriginalCount++
			h.ModifiedCount++
		case LineRemove:
			h.OriginalCount++
		case LineAdd:
			h.ModifiedCount++
		}
	}

	// An empty side names the line before the hunk, as GNU diff does.
	h.OriginalStart, h.ModifiedStart = at[0], at[1]
	if h.OriginalCount == 0 {
		h.OriginalStart--
	}
	if h.ModifiedCount == 0 {
		h.ModifiedStart--
	}

	return h
}
