package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bull/askdocs/internal/source"
)

func TestExtractDocumentLink(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"first line", "Link: https://x\nbody", "https://x"},
		{"later line", "# Title\n\nLink: https://docs.example.com/a?b=c\n", "https://docs.example.com/a?b=c"},
		{"first match wins", "Link: https://first\nLink: https://second", "https://first"},
		{"trailing whitespace", "Link: https://x  \r\n", "https://x"},
		{"no link", "nothing to see here", ""},
		{"not at line start", "See Link: https://x", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDocumentLink(tt.text))
		})
	}
}

func TestChunkDocument_ShortTextIsOneChunk(t *testing.T) {
	doc := source.Document{
		PageContent: "Link: http://doc1\nHello world, this is a test.",
		Source:      "doc1.txt",
	}

	chunks, err := NewChunker(DefaultChunkSize).ChunkDocument(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	c := chunks[0]
	assert.Equal(t, 0, c.Index)
	assert.Equal(t, doc.PageContent, c.Text)
	assert.Equal(t, "doc1.txt", c.Source)
	assert.Equal(t, "http://doc1", c.DocLink)
	assert.Equal(t, Loc{From: 1, To: 2}, c.Loc)
	assert.Equal(t, `{"lines":{"from":1,"to":2}}`, c.Loc.String())
}

func TestChunkDocument_LongTextRespectsChunkSize(t *testing.T) {
	var paragraphs []string
	for i := 0; i < 30; i++ {
		paragraphs = append(paragraphs, strings.Repeat("lorem ipsum dolor ", 10))
	}
	doc := source.Document{PageContent: strings.Join(paragraphs, "\n\n"), Source: "long.txt"}

	chunks, err := NewChunker(DefaultChunkSize).ChunkDocument(doc)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	prevTo := 0
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
		assert.LessOrEqual(t, len([]rune(c.Text)), DefaultChunkSize)
		assert.Empty(t, c.DocLink)
		assert.Greater(t, c.Loc.From, prevTo, "chunks must not overlap")
		prevTo = c.Loc.To
	}
}

func TestChunkDocument_MarkdownSections(t *testing.T) {
	doc := source.Document{
		PageContent: "Link: https://docs.example.com/guide\n\n# Guide\n\nIntro.\n\n## Install\n\nRun it.\n",
		Source:      "guide.md",
	}

	chunks, err := NewChunker(DefaultChunkSize).ChunkDocument(doc)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "Link: https://docs.example.com/guide", chunks[0].Text)
	assert.Equal(t, Loc{From: 1, To: 1}, chunks[0].Loc)

	assert.Equal(t, "# Guide\n\nIntro.", chunks[1].Text)
	assert.Equal(t, Loc{From: 3, To: 5}, chunks[1].Loc)

	assert.Equal(t, "## Install\n\nRun it.", chunks[2].Text)
	assert.Equal(t, Loc{From: 7, To: 9}, chunks[2].Loc)

	for _, c := range chunks {
		assert.Equal(t, "https://docs.example.com/guide", c.DocLink)
		assert.Equal(t, "guide.md", c.Source)
	}
}

func TestChunkDocument_Empty(t *testing.T) {
	chunks, err := NewChunker(DefaultChunkSize).ChunkDocument(source.Document{Source: "empty.md"})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	chunks, err = NewChunker(DefaultChunkSize).ChunkDocument(source.Document{Source: "empty.txt"})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}
