package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/yaklabco/mdpatch/pkg/anchor"
	"github.com/yaklabco/mdpatch/pkg/langdetect"
	"github.com/yaklabco/mdpatch/pkg/mdast"
	"github.com/yaklabco/mdpatch/pkg/parser"
	goldmarkparser "github.com/yaklabco/mdpatch/pkg/parser/goldmark"
)

// outline is the addressable structure of one document as reported by
// inspect.
type outline struct {
	File        string           `json:"file"`
	FrontMatter []string         `json:"front_matter,omitempty"`
	Sections    []outlineSection `json:"sections"`
	Warnings    []string         `json:"warnings,omitempty"`
}

// outlineSection is a section in document order. Path is empty for the root.
type outlineSection struct {
	Path   []string       `json:"path"`
	Level  int            `json:"level"`
	Line   int            `json:"line,omitempty"`
	Anchor string         `json:"anchor,omitempty"`
	Depth  int            `json:"-"`
	Blocks []outlineBlock `json:"blocks"`
}

type outlineBlock struct {
	Index     int    `json:"index"`
	Kind      string `json:"kind"`
	Start     int    `json:"start"`
	End       int    `json:"end"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Language  string `json:"language,omitempty"`
	Preview   string `json:"preview"`
}

// buildOutline parses content and describes every addressable block.
func buildOutline(
	ctx context.Context,
	file string,
	content []byte,
	inspector *goldmarkparser.Inspector,
) (*outline, error) {
	doc, err := parser.Parse(ctx, file, content)
	if err != nil {
		return nil, err
	}

	out := &outline{File: file, Sections: []outlineSection{}}

	// Every heading takes an anchor, including those of empty sections.
	var slugs anchor.Slugger

	err = doc.WalkSections(mdast.RootSection, func(s *mdast.Section, depth int) error {
		if s.IsRoot() && len(s.Blocks) == 0 {
			return nil
		}

		var slug string
		if !s.IsRoot() {
			slug = slugs.Next(s.Title)
		}

		section := outlineSection{
			Path:   headingPath(doc, s),
			Level:  s.Level,
			Anchor: slug,
			Depth:  depth,
			Blocks: make([]outlineBlock, 0, len(s.Blocks)),
		}
		if !s.IsRoot() {
			section.Line = doc.Blocks[s.Heading].StartLine
		}

		for i, blockIdx := range s.Blocks {
			blk := doc.Blocks[blockIdx]
			section.Blocks = append(section.Blocks, describeBlock(doc, blk, i))

			if blk.Kind == mdast.BlockFrontMatter {
				keys, fmErr := frontMatterKeys(doc.Text(blk))
				if fmErr != nil {
					out.Warnings = append(out.Warnings,
						fmt.Sprintf("line %d: front matter could not be read: %v", blk.StartLine, fmErr))
				}
				out.FrontMatter = keys
			}
		}

		out.Sections = append(out.Sections, section)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk sections: %w", err)
	}

	if inspector != nil {
		warnings, err := setextWarnings(ctx, doc, inspector)
		if err != nil {
			return nil, err
		}
		out.Warnings = append(out.Warnings, warnings...)
	}

	return out, nil
}

// headingPath renders the path that addresses s, one element per ancestor.
func headingPath(doc *mdast.Document, s *mdast.Section) []string {
	ancestry := doc.Ancestry(s.ID)
	path := make([]string, 0, len(ancestry))
	for _, a := range ancestry {
		if a.IsRoot() {
			continue
		}
		path = append(path, strings.Repeat("#", a.Level)+" "+a.Title)
	}
	return path
}

func describeBlock(doc *mdast.Document, blk mdast.Block, index int) outlineBlock {
	text := doc.Text(blk)

	described := outlineBlock{
		Index:     index,
		Kind:      blk.Kind.String(),
		Start:     blk.Range.StartOffset,
		End:       blk.Range.EndOffset,
		StartLine: blk.StartLine,
		EndLine:   blk.EndLine,
		Preview:   firstLine(text),
	}

	if blk.Kind == mdast.BlockCodeBlock {
		info, body := "", text
		if blk.Fence != nil {
			info = blk.Fence.Info
			body = fencedBody(doc, blk)
		}
		if lang := langdetect.ForBlock(info, body); lang.Source != langdetect.SourceNone {
			described.Language = lang.Language
		}
	}

	return described
}

// fencedBody returns the lines between the opening and closing fences.
func fencedBody(doc *mdast.Document, blk mdast.Block) []byte {
	text := doc.Text(blk)
	newline := bytes.IndexByte(text, '\n')
	if newline < 0 {
		return nil
	}

	end := blk.Fence.CloseStart - blk.Range.StartOffset
	start := newline + 1
	if end < start || end > len(text) {
		end = len(text)
	}
	return text[start:end]
}

func firstLine(text []byte) string {
	if i := bytes.IndexAny(text, "\r\n"); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(string(text))
}

// frontMatterKeys decodes a front matter block and returns its sorted keys.
func frontMatterKeys(text []byte) ([]string, error) {
	input := append(bytes.Clone(text), '\n')

	var meta map[string]any
	if _, err := frontmatter.Parse(bytes.NewReader(input), &meta); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(meta))
	for key := range meta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// setextWarnings reports headings that goldmark recognizes but the block
// parser does not treat as section boundaries.
func setextWarnings(ctx context.Context, doc *mdast.Document, inspector *goldmarkparser.Inspector) ([]string, error) {
	content := doc.Content
	lineOffset := 0

	// Goldmark reads a leading front matter fence as a thematic break.
	if root := doc.Root(); len(root.Blocks) > 0 {
		if first := doc.Blocks[root.Blocks[0]]; first.Kind == mdast.BlockFrontMatter {
			content = content[first.Range.EndOffset:]
			lineOffset = first.EndLine - 1
		}
	}

	summary, err := inspector.Inspect(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("inspect %s: %w", doc.Path, err)
	}

	var warnings []string
	for _, h := range summary.Setext() {
		warnings = append(warnings, fmt.Sprintf(
			"line %d: setext heading %q is not a section boundary; use \"%s %s\" to address it",
			h.Line+lineOffset, h.Text, strings.Repeat("#", h.Level), h.Text))
	}
	return warnings, nil
}
