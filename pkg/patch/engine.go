package patch

import (
	"bytes"
	"errors"
	"strings"

	"github.com/yaklabco/mdpatch/pkg/fingerprint"
	"github.com/yaklabco/mdpatch/pkg/locate"
	"github.com/yaklabco/mdpatch/pkg/mdast"
)

// Status is the result of applying an operation.
type Status int

// Outcome statuses.
const (
	StatusNoop Status = iota
	StatusApplied
)

// String returns "applied" or "noop".
func (s Status) String() string {
	if s == StatusApplied {
		return "applied"
	}
	return "noop"
}

// Options controls authorization.
type Options struct {
	// Force authorizes destructive edits that carry no fingerprint.
	Force bool
}

// Outcome is the result of a successful Apply.
type Outcome struct {
	Status Status

	// Content holds the new document bytes; it equals the original for a no-op.
	Content []byte

	// Edit is the single change made to the original bytes. Zero for a no-op.
	Edit TextEdit

	// Target is the resolved address. Zero when a Delete target is already absent.
	Target locate.Target

	// Kind is the kind of the target block.
	Kind mdast.BlockKind
}

// Changed reports whether the outcome modifies the document.
func (o *Outcome) Changed() bool {
	return o.Status == StatusApplied
}

// Apply computes the result of op on doc.
//
// Errors wrap locate.ErrHeadingNotFound, locate.ErrAmbiguousHeading,
// locate.ErrInvalidIndex, fingerprint sentinels or ErrMissingContent.
// A Delete whose target no longer exists is a no-op rather than an error.
func Apply(doc *mdast.Document, op Operation, opts Options) (*Outcome, error) {
	if op.Kind < KindAppend || op.Kind > KindDelete {
		return nil, ErrUnknownKind
	}

	content, err := op.normalizedContent()
	if err != nil {
		return nil, err
	}

	target, err := locate.Resolve(doc, op.Path, op.Index)
	if err != nil {
		if op.Kind == KindDelete && isAbsent(err) {
			return noop(doc, locate.Target{}, 0), nil
		}
		return nil, err
	}

	blk := doc.Blocks[target.Block]
	text := doc.Text(blk)

	err = fingerprint.Validate(fingerprint.Request{
		Text:        text,
		Pattern:     op.Fingerprint,
		Force:       opts.Force,
		Destructive: op.Kind.IsDestructive(),
	})
	if err != nil {
		return nil, err
	}

	var (
		edit TextEdit
		ok   bool
	)
	switch op.Kind {
	case KindAppend:
		edit, ok = appendEdit(doc, blk, content)
	case KindReplace:
		edit, ok = replaceEdit(doc, blk, content)
	case KindDelete:
		edit, ok = deleteEdit(doc, blk), true
	}

	if !ok {
		return noop(doc, target, blk.Kind), nil
	}

	if err := ValidateEdit(edit, len(doc.Content)); err != nil {
		return nil, err
	}

	return &Outcome{
		Status:  StatusApplied,
		Content: ApplyEdit(doc.Content, edit),
		Edit:    edit,
		Target:  target,
		Kind:    blk.Kind,
	}, nil
}

func isAbsent(err error) bool {
	return errors.Is(err, locate.ErrHeadingNotFound) || errors.Is(err, locate.ErrInvalidIndex)
}

func noop(doc *mdast.Document, target locate.Target, kind mdast.BlockKind) *Outcome {
	return &Outcome{Status: StatusNoop, Content: doc.Content, Target: target, Kind: kind}
}

// appendEdit inserts content after the block's text. It reports false when
// the content is already present in the block or was already appended. An
// earlier append of several blocks may have split across the block end, so
// the search runs from the block start over as many bytes as the insert.
func appendEdit(doc *mdast.Document, blk mdast.Block, content string) (TextEdit, bool) {
	eol := doc.LineEnding()
	content = withLineEnding(content, eol)
	text := doc.Text(blk)

	if bytes.Contains(text, []byte(content)) {
		return TextEdit{}, false
	}

	var (
		at     int
		insert string
	)
	switch {
	case blk.Kind == mdast.BlockQuote:
		at, insert = blk.Range.EndOffset, eol+prefixLines(content, eol, ">", "> ")
	case blk.Kind == mdast.BlockThematicBreak:
		at, insert = blk.Range.EndOffset, eol+eol+content
	case blk.Fence != nil && blk.Fence.Closed:
		// The closing fence stays last; the new lines go just before it.
		return fencedInsert(doc, blk, content, eol)
	case blk.Kind == mdast.BlockCodeBlock && blk.Fence == nil:
		at, insert = blk.Range.EndOffset, eol+prefixLines(content, eol, "    ", "    ")
	default:
		at, insert = blk.Range.EndOffset, eol+content
	}

	if appended(doc, blk, strings.TrimPrefix(insert, eol), len(insert), len(eol)) {
		return TextEdit{}, false
	}

	return TextEdit{StartOffset: at, EndOffset: at, NewText: insert}, true
}

// appended reports whether needle starts inside blk, or on the line right
// after it, within span bytes past the block end.
func appended(doc *mdast.Document, blk mdast.Block, needle string, span, eolLen int) bool {
	end := min(len(doc.Content), blk.Range.EndOffset+span)
	idx := bytes.Index(doc.Content[blk.Range.StartOffset:end], []byte(needle))
	return idx >= 0 && blk.Range.StartOffset+idx <= blk.Range.EndOffset+eolLen
}

func fencedInsert(doc *mdast.Document, blk mdast.Block, content, eol string) (TextEdit, bool) {
	at := blk.Fence.CloseStart
	insert := content + eol
	if bytes.HasSuffix(doc.Content[blk.Range.StartOffset:at], []byte(insert)) {
		return TextEdit{}, false
	}
	return TextEdit{StartOffset: at, EndOffset: at, NewText: insert}, true
}

// replaceEdit swaps the block's bytes for content. It reports false when the
// trimmed texts are already equal, or when content already starts at the
// block and ends on a line boundary, which is what a replace with several
// blocks leaves behind.
func replaceEdit(doc *mdast.Document, blk mdast.Block, content string) (TextEdit, bool) {
	eol := doc.LineEnding()
	text := doc.Text(blk)
	if strings.TrimSpace(string(text)) == strings.TrimSpace(content) {
		return TextEdit{}, false
	}

	want := []byte(withLineEnding(strings.TrimSpace(content), eol))
	rest := doc.Content[blk.Range.StartOffset:]
	if bytes.HasPrefix(rest, want) && blk.Range.StartOffset+len(want) >= blk.Range.EndOffset {
		if len(rest) == len(want) || rest[len(want)] == '\n' || rest[len(want)] == '\r' {
			return TextEdit{}, false
		}
	}

	return TextEdit{
		StartOffset: blk.Range.StartOffset,
		EndOffset:   blk.Range.EndOffset,
		NewText:     withLineEnding(content, eol),
	}, true
}

// deleteEdit removes the block's lines and one adjacent blank line: the one
// after the block if present, otherwise the one before it.
func deleteEdit(doc *mdast.Document, blk mdast.Block) TextEdit {
	lines := doc.Lines
	first := blk.StartLine - 1
	last := blk.EndLine - 1

	start := lines[first].StartOffset
	end := lines[last].EndOffset

	switch {
	case doc.IsBlankLine(last+1) && lines[last+1].HasNewline():
		end = lines[last+1].EndOffset
	case doc.IsBlankLine(first - 1):
		start = lines[first-1].StartOffset
	}

	return TextEdit{StartOffset: start, EndOffset: end}
}

// withLineEnding normalizes the line breaks in s to eol.
func withLineEnding(s, eol string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if eol != "\n" {
		s = strings.ReplaceAll(s, "\n", eol)
	}
	return s
}

// prefixLines adds prefix to every line of s that does not already start
// with marker.
func prefixLines(s, eol, marker, prefix string) string {
	lines := strings.Split(s, eol)
	for i, line := range lines {
		if !strings.HasPrefix(line, marker) {
			lines[i] = prefix + line
		}
	}
	return strings.Join(lines, eol)
}
