// Package goldmark inspects Markdown fragments with the goldmark parser.
//
// The block parser in pkg/parser is what addresses content; this package is a
// second opinion used to check patch content before it is inserted and to
// point out constructs, such as setext headings, that the block parser treats
// differently from a CommonMark renderer.
package goldmark

import (
	"bytes"
	"context"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

// Flavor identifies the Markdown flavor used for inspection.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// Block is one top-level block as goldmark sees it.
type Block struct {
	// Kind is goldmark's node kind name, for example "Paragraph" or "Table".
	Kind string

	// Line is the 1-based line on which the block starts, or 0 if unknown.
	Line int
}

// Heading is a top-level heading found by goldmark.
type Heading struct {
	Level  int
	Text   string
	Line   int
	Setext bool
}

// Summary describes the top-level structure of a fragment.
type Summary struct {
	Blocks   []Block
	Headings []Heading
}

// Setext returns the setext-style headings in the summary.
func (s *Summary) Setext() []Heading {
	var out []Heading
	for _, h := range s.Headings {
		if h.Setext {
			out = append(out, h)
		}
	}
	return out
}

// ContentConcerns lists reasons why the fragment may not land as a single
// block when inserted into a section. An empty result means it is one
// non-heading block.
func (s *Summary) ContentConcerns() []string {
	var concerns []string
	for _, h := range s.Headings {
		concerns = append(concerns, fmt.Sprintf("line %d is a level-%d heading %q and would start a new section", h.Line, h.Level, h.Text))
	}
	if len(s.Blocks) > 1 {
		concerns = append(concerns, fmt.Sprintf("content spans %d top-level blocks", len(s.Blocks)))
	}
	return concerns
}

// Inspector parses fragments with a configured goldmark instance.
// It is safe for concurrent use.
type Inspector struct {
	flavor string
	md     goldmark.Markdown
}

// New creates an inspector for the given flavor.
// Supported flavors are "commonmark" and "gfm"; anything else means "gfm".
func New(flavor string) *Inspector {
	f := flavorOrDefault(flavor)
	return &Inspector{
		flavor: f,
		md:     newGoldmarkInstance(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (i *Inspector) Flavor() string {
	return i.flavor
}

// Inspect parses content and summarizes its top-level blocks.
func (i *Inspector) Inspect(ctx context.Context, content []byte) (*Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("inspect cancelled: %w", err)
	}

	doc := i.md.Parser().Parse(text.NewReader(content))

	summary := &Summary{}
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		start := blockStart(node)
		line := 0
		if start >= 0 {
			line = bytes.Count(content[:start], []byte("\n")) + 1
		}

		summary.Blocks = append(summary.Blocks, Block{Kind: node.Kind().String(), Line: line})

		if heading, ok := node.(*ast.Heading); ok {
			summary.Headings = append(summary.Headings, Heading{
				Level:  heading.Level,
				Text:   string(bytes.TrimSpace(heading.Lines().Value(content))),
				Line:   line,
				Setext: start >= 0 && !isATX(content, start),
			})
		}
	}

	return summary, nil
}

// blockStart returns the offset of the first source byte of a block node,
// descending into containers such as lists and quotes. It returns -1 for
// nodes with no source lines, such as thematic breaks.
func blockStart(node ast.Node) int {
	if node.Type() == ast.TypeBlock && node.Lines().Len() > 0 {
		return node.Lines().At(0).Start
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() != ast.TypeBlock {
			continue
		}
		if start := blockStart(child); start >= 0 {
			return start
		}
	}
	return -1
}

// isATX reports whether the line containing offset starts with '#' after
// up to three spaces of indentation.
func isATX(content []byte, offset int) bool {
	lineStart := bytes.LastIndexByte(content[:offset], '\n') + 1
	line := bytes.TrimLeft(content[lineStart:], " ")
	return len(line) > 0 && line[0] == '#'
}

func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorGFM
	}
}

// newGoldmarkInstance creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func newGoldmarkInstance(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavor {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}
