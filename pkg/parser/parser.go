// Package parser splits Markdown documents into sections and content blocks
// with exact byte offsets.
package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/adrg/frontmatter"

	"github.com/yaklabco/mdpatch/pkg/mdast"
)

// ErrInvalidUTF8 is returned when the document is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("document is not valid UTF-8")

// Parse converts raw Markdown bytes into a Document.
//
// Parsing is line based and total: every input that is valid UTF-8 yields a
// document whose blocks and separators reproduce content exactly. The content
// slice is copied and never mutated.
func Parse(ctx context.Context, path string, content []byte) (*mdast.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	if !utf8.Valid(content) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUTF8, path)
	}

	doc := &mdast.Document{
		Path:    path,
		Content: bytes.Clone(content),
		Lines:   mdast.BuildLines(content),
	}
	if doc.Content == nil {
		doc.Content = []byte{}
	}

	p := newBlockParser(doc)
	p.run()

	return doc, nil
}

// blockParser holds the state for one parse.
type blockParser struct {
	doc   *mdast.Document
	lines []mdast.LineInfo

	// open is the stack of open sections; open[0] is always the root.
	open []mdast.SectionID
}

func newBlockParser(doc *mdast.Document) *blockParser {
	lines := doc.Lines
	// BuildLines reports an empty line after a trailing newline; it holds no bytes.
	if n := len(lines); n > 0 && lines[n-1].StartOffset == len(doc.Content) {
		lines = lines[:n-1]
	}

	doc.Sections = []mdast.Section{{
		ID:      mdast.RootSection,
		Parent:  mdast.NoSection,
		Heading: -1,
	}}

	return &blockParser{
		doc:   doc,
		lines: lines,
		open:  []mdast.SectionID{mdast.RootSection},
	}
}

func (p *blockParser) text(i int) []byte {
	return p.doc.LineText(i)
}

func (p *blockParser) run() {
	i := 0
	if end, fence, ok := p.frontMatter(); ok {
		p.emit(mdast.Block{Kind: mdast.BlockFrontMatter, Fence: fence}, 0, end)
		i = end + 1
	}

	for i < len(p.lines) {
		line := p.text(i)
		if isBlank(line) {
			i++
			continue
		}
		i = p.block(i) + 1
	}
}

// block recognizes the block starting at line i, records it, and returns the
// index of its last line.
func (p *blockParser) block(i int) int {
	indent, rest := lineIndent(p.text(i))

	if indent >= codeIndent {
		end := p.indentedCodeEnd(i)
		p.emit(mdast.Block{Kind: mdast.BlockCodeBlock}, i, end)
		return end
	}

	if level, title, ok := atxHeading(rest); ok {
		p.heading(i, level, title)
		return i
	}

	if char, length, info, ok := fenceOpen(rest); ok {
		end, closed := p.fenceEnd(i, char, length)
		fence := &mdast.Fence{Char: char, Length: length, Info: info, Closed: closed}
		p.emit(mdast.Block{Kind: mdast.BlockCodeBlock, Fence: fence}, i, end)
		if closed {
			fence.CloseStart = p.lines[end].StartOffset
		} else {
			fence.CloseStart = p.lines[end].NewlineStart
		}
		return end
	}

	if isThematicBreak(rest) {
		p.emit(mdast.Block{Kind: mdast.BlockThematicBreak}, i, i)
		return i
	}

	if rest[0] == '>' {
		end := p.quoteEnd(i)
		p.emit(mdast.Block{Kind: mdast.BlockQuote}, i, end)
		return end
	}

	if ok, ordered := listMarker(rest); ok {
		end := p.listEnd(i, indent)
		p.emit(mdast.Block{Kind: mdast.BlockList, Ordered: ordered}, i, end)
		return end
	}

	if isHTMLBlockStart(rest) {
		end := p.untilBlank(i)
		p.emit(mdast.Block{Kind: mdast.BlockHTML}, i, end)
		return end
	}

	if i+1 < len(p.lines) && bytes.ContainsRune(rest, '|') {
		if _, next := lineIndent(p.text(i + 1)); isTableDelimiterRow(next) {
			end := p.tableEnd(i + 1)
			p.emit(mdast.Block{Kind: mdast.BlockTable}, i, end)
			return end
		}
	}

	end := p.paragraphEnd(i)
	p.emit(mdast.Block{Kind: mdast.BlockParagraph}, i, end)
	return end
}

// emit records a block spanning lines first..last and attaches it to the
// innermost open section.
func (p *blockParser) emit(blk mdast.Block, first, last int) int {
	blk.Range = mdast.SourceRange{
		StartOffset: p.lines[first].StartOffset,
		EndOffset:   p.lines[last].NewlineStart,
	}
	blk.StartLine = first + 1
	blk.EndLine = last + 1

	idx := len(p.doc.Blocks)
	p.doc.Blocks = append(p.doc.Blocks, blk)

	if blk.Kind != mdast.BlockHeading {
		sec := &p.doc.Sections[p.open[len(p.open)-1]]
		sec.Blocks = append(sec.Blocks, idx)
	}

	return idx
}

// heading closes sections of equal or deeper level and opens a new one under
// the nearest shallower section.
func (p *blockParser) heading(i, level int, title string) {
	for len(p.open) > 1 && p.doc.Sections[p.open[len(p.open)-1]].Level >= level {
		p.open = p.open[:len(p.open)-1]
	}

	blockIdx := p.emit(mdast.Block{Kind: mdast.BlockHeading, Level: level}, i, i)

	parent := p.open[len(p.open)-1]
	id := mdast.SectionID(len(p.doc.Sections))
	p.doc.Sections = append(p.doc.Sections, mdast.Section{
		ID:      id,
		Parent:  parent,
		Level:   level,
		Title:   title,
		Heading: blockIdx,
	})
	p.doc.Sections[parent].Children = append(p.doc.Sections[parent].Children, id)
	p.open = append(p.open, id)
}

// frontMatter detects a "---" or "+++" fenced region on the first line. The
// region counts only when its body decodes as YAML or TOML metadata, so a
// leading thematic break followed by Markdown stays Markdown.
func (p *blockParser) frontMatter() (int, *mdast.Fence, bool) {
	if len(p.lines) < 2 {
		return 0, nil, false
	}

	open := string(bytes.TrimRight(p.text(0), " \t"))
	if open != "---" && open != "+++" {
		return 0, nil, false
	}

	for j := 1; j < len(p.lines); j++ {
		if string(bytes.TrimRight(p.text(j), " \t")) == open {
			if !isMetadata(p.doc.Content[:p.lines[j].EndOffset]) {
				return 0, nil, false
			}
			fence := &mdast.Fence{
				Char:       open[0],
				Length:     len(open),
				Closed:     true,
				CloseStart: p.lines[j].StartOffset,
			}
			return j, fence, true
		}
	}

	return 0, nil, false
}

// isMetadata reports whether region, delimiters included, parses as front
// matter. A body that decodes to no keys must hold nothing but whitespace.
func isMetadata(region []byte) bool {
	var meta map[string]any
	_, err := frontmatter.Parse(bytes.NewReader(region), &meta)
	if err != nil {
		return false
	}
	if len(meta) > 0 {
		return true
	}

	lines := bytes.Split(bytes.TrimSpace(region), []byte("\n"))
	for _, line := range lines[1 : len(lines)-1] {
		if !isBlank(line) {
			return false
		}
	}
	return true
}

func (p *blockParser) fenceEnd(i int, char byte, length int) (int, bool) {
	for j := i + 1; j < len(p.lines); j++ {
		indent, rest := lineIndent(p.text(j))
		if indent <= maxBlockIndent && isFenceClose(rest, char, length) {
			return j, true
		}
	}
	return len(p.lines) - 1, false
}

// indentedCodeEnd extends an indented code block over indented lines and
// interior blank lines; trailing blank lines are not part of it.
func (p *blockParser) indentedCodeEnd(i int) int {
	end := i
	for j := i + 1; j < len(p.lines); j++ {
		line := p.text(j)
		if isBlank(line) {
			continue
		}
		if indent, _ := lineIndent(line); indent < codeIndent {
			break
		}
		end = j
	}
	return end
}

func (p *blockParser) quoteEnd(i int) int {
	end := i
	for j := i + 1; j < len(p.lines); j++ {
		indent, rest := lineIndent(p.text(j))
		if indent > maxBlockIndent || len(rest) == 0 || rest[0] != '>' {
			break
		}
		end = j
	}
	return end
}

// listEnd groups item lines and their continuations into one list.
//
// A marker line always continues the list. A non-blank line continues it when
// it is indented past the first marker, or when it directly follows list
// text and does not open another block. A blank line continues the list only
// when the next non-blank line is a marker or indented past the first marker.
func (p *blockParser) listEnd(i, baseIndent int) int {
	end := i
	for j := i + 1; j < len(p.lines); j++ {
		line := p.text(j)

		if isBlank(line) {
			next := p.nextNonBlank(j)
			if next < 0 || !p.continuesListAfterBlank(next, baseIndent) {
				return end
			}
			j = next - 1
			continue
		}

		indent, rest := lineIndent(line)
		if indent > baseIndent {
			end = j
			continue
		}
		if interruptsList(rest) {
			return end
		}
		end = j
	}
	return end
}

func (p *blockParser) continuesListAfterBlank(j, baseIndent int) bool {
	indent, rest := lineIndent(p.text(j))
	if indent > baseIndent {
		return true
	}
	if indent > maxBlockIndent || isThematicBreak(rest) {
		return false
	}
	ok, _ := listMarker(rest)
	return ok
}

// interruptsList reports whether a line at or left of the list indent ends it.
func interruptsList(rest []byte) bool {
	if isThematicBreak(rest) {
		return true
	}
	if ok, _ := listMarker(rest); ok {
		return false
	}
	if _, _, ok := atxHeading(rest); ok {
		return true
	}
	if _, _, _, ok := fenceOpen(rest); ok {
		return true
	}
	return rest[0] == '>' || isHTMLBlockStart(rest)
}

func (p *blockParser) tableEnd(delimiter int) int {
	end := delimiter
	for j := delimiter + 1; j < len(p.lines); j++ {
		line := p.text(j)
		if isBlank(line) || !bytes.ContainsRune(line, '|') {
			break
		}
		if _, rest := lineIndent(line); interruptsParagraph(rest) {
			break
		}
		end = j
	}
	return end
}

func (p *blockParser) untilBlank(i int) int {
	end := i
	for j := i + 1; j < len(p.lines) && !isBlank(p.text(j)); j++ {
		end = j
	}
	return end
}

// paragraphEnd runs until a blank line or a line that opens another block.
// A setext underline directly after paragraph text stays in the paragraph.
func (p *blockParser) paragraphEnd(i int) int {
	end := i
	for j := i + 1; j < len(p.lines); j++ {
		line := p.text(j)
		if isBlank(line) {
			break
		}

		indent, rest := lineIndent(line)
		if indent <= maxBlockIndent && isSetextUnderline(rest) {
			return j
		}
		if indent <= maxBlockIndent && interruptsParagraph(rest) {
			break
		}
		end = j
	}
	return end
}

func interruptsParagraph(rest []byte) bool {
	if _, _, ok := atxHeading(rest); ok {
		return true
	}
	if _, _, _, ok := fenceOpen(rest); ok {
		return true
	}
	if isThematicBreak(rest) || rest[0] == '>' || isHTMLBlockStart(rest) {
		return true
	}
	ok, _ := listMarker(rest)
	return ok
}

func (p *blockParser) nextNonBlank(j int) int {
	for k := j + 1; k < len(p.lines); k++ {
		if !isBlank(p.text(k)) {
			return k
		}
	}
	return -1
}
