package goldmark_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdpatch/pkg/parser/goldmark"
)

func TestNew_Flavor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		flavor     string
		wantFlavor string
	}{
		{"commonmark", goldmark.FlavorCommonMark, goldmark.FlavorCommonMark},
		{"gfm", goldmark.FlavorGFM, goldmark.FlavorGFM},
		{"invalid defaults to gfm", "invalid", goldmark.FlavorGFM},
		{"empty defaults to gfm", "", goldmark.FlavorGFM},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.wantFlavor, goldmark.New(tt.flavor).Flavor())
		})
	}
}

func TestInspector_Inspect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		content      string
		wantKinds    []string
		wantHeadings []goldmark.Heading
		wantConcerns int
	}{
		{
			name:      "single paragraph",
			content:   "Just some text\nover two lines.",
			wantKinds: []string{"Paragraph"},
		},
		{
			name:      "single list",
			content:   "- one\n- two\n- three",
			wantKinds: []string{"List"},
		},
		{
			name:      "gfm table",
			content:   "| a | b |\n|---|---|\n| 1 | 2 |",
			wantKinds: []string{"Table"},
		},
		{
			name:         "atx heading",
			content:      "## Notes",
			wantKinds:    []string{"Heading"},
			wantHeadings: []goldmark.Heading{{Level: 2, Text: "Notes", Line: 1}},
			wantConcerns: 1,
		},
		{
			name:         "setext heading",
			content:      "Intro\n\nTitle\n=====",
			wantKinds:    []string{"Paragraph", "Heading"},
			wantHeadings: []goldmark.Heading{{Level: 1, Text: "Title", Line: 3, Setext: true}},
			wantConcerns: 2,
		},
		{
			name:         "two paragraphs",
			content:      "First.\n\nSecond.",
			wantKinds:    []string{"Paragraph", "Paragraph"},
			wantConcerns: 1,
		},
		{
			name:      "heading inside quote is not top level",
			content:   "> # Quoted",
			wantKinds: []string{"Blockquote"},
		},
	}

	inspector := goldmark.New(goldmark.FlavorGFM)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			summary, err := inspector.Inspect(context.Background(), []byte(tt.content))
			require.NoError(t, err)

			kinds := make([]string, len(summary.Blocks))
			for i, b := range summary.Blocks {
				kinds[i] = b.Kind
			}
			assert.Equal(t, tt.wantKinds, kinds)
			assert.Equal(t, tt.wantHeadings, summary.Headings)
			assert.Len(t, summary.ContentConcerns(), tt.wantConcerns)
		})
	}
}

func TestInspector_CommonMarkHasNoTables(t *testing.T) {
	t.Parallel()

	summary, err := goldmark.New(goldmark.FlavorCommonMark).Inspect(context.Background(), []byte("| a | b |\n|---|---|\n| 1 | 2 |"))
	require.NoError(t, err)
	require.Len(t, summary.Blocks, 1)
	assert.Equal(t, "Paragraph", summary.Blocks[0].Kind)
}

func TestSummary_Setext(t *testing.T) {
	t.Parallel()

	summary, err := goldmark.New("").Inspect(context.Background(), []byte("# ATX\n\nSetext\n------\n"))
	require.NoError(t, err)

	setext := summary.Setext()
	require.Len(t, setext, 1)
	assert.Equal(t, "Setext", setext[0].Text)
	assert.Equal(t, 2, setext[0].Level)
	assert.Equal(t, 3, setext[0].Line)
}

func TestInspector_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := goldmark.New("").Inspect(ctx, []byte("x"))
	require.ErrorIs(t, err, context.Canceled)
}
