// Package chunker splits documents into bounded-size chunks ready for embedding.
package chunker

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"github.com/bull/askdocs/internal/markdown"
	"github.com/bull/askdocs/internal/source"
)

// Chunk is a slice of a document's text plus where it came from.
type Chunk struct {
	Index   int // Position in document (0, 1, 2...)
	Text    string
	Loc     Loc
	Source  string
	DocLink string // "" when the document has no Link: line
}

// Loc is the 1-based, inclusive line range a chunk covers in its document.
type Loc struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// String renders the location as {"lines":{"from":F,"to":T}}.
func (l Loc) String() string {
	b, _ := json.Marshal(struct {
		Lines Loc `json:"lines"`
	}{l})
	return string(b)
}

// Chunker turns documents into chunks. Markdown documents are first cut at
// H1/H2 headings so that a chunk never straddles two sections.
type Chunker struct {
	splitter *RecursiveSplitter
	markdown *markdown.Splitter
}

// NewChunker creates a chunker with the given chunk size in characters.
func NewChunker(chunkSize int) *Chunker {
	return &Chunker{
		splitter: NewRecursiveSplitter(chunkSize),
		markdown: markdown.NewSplitter(),
	}
}

// ChunkDocument splits doc.PageContent. Every chunk carries the document's link.
func (c *Chunker) ChunkDocument(doc source.Document) ([]Chunk, error) {
	link := ExtractDocumentLink(doc.PageContent)

	sections := []markdown.Section{{Content: doc.PageContent, StartLine: 1}}
	if isMarkdown(doc.Source) {
		var err error
		sections, err = c.markdown.Sections([]byte(doc.PageContent))
		if err != nil {
			return nil, fmt.Errorf("split sections of %s: %w", doc.Source, err)
		}
	}

	var chunks []Chunk
	for _, section := range sections {
		for _, piece := range c.locate(section) {
			piece.Index = len(chunks)
			piece.Source = doc.Source
			piece.DocLink = link
			chunks = append(chunks, piece)
		}
	}
	return chunks, nil
}

// locate splits a section and works out the line range of every piece.
func (c *Chunker) locate(section markdown.Section) []Chunk {
	text := section.Content
	pieces := c.splitter.Split(text)

	chunks := make([]Chunk, 0, len(pieces))
	cursor := 0
	line := section.StartLine
	for _, piece := range pieces {
		from := line
		if idx := strings.Index(text[cursor:], piece); idx >= 0 {
			from = section.StartLine + strings.Count(text[:cursor+idx], "\n")
			cursor += idx + len(piece)
		}
		to := from + strings.Count(piece, "\n")
		line = to

		chunks = append(chunks, Chunk{Text: piece, Loc: Loc{From: from, To: to}})
	}
	return chunks
}

func isMarkdown(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".md", ".markdown":
		return true
	}
	return false
}
