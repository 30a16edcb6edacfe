package query

import "github.com/bull/askdocs/internal/storage"

// MatchContent is what a match carries: Normalized when the payload has both a
// page content and a document link, Raw otherwise.
type MatchContent interface {
	isMatchContent()
}

// Normalized is the metadata of a chunk written by the indexer.
type Normalized struct {
	PageContent string
	DocLink     string
}

// Raw is a payload that lacks the normalized fields, passed through untouched.
type Raw struct {
	Fields map[string]any
}

func (Normalized) isMatchContent() {}
func (Raw) isMatchContent()        {}

// Match is a ranked vector store hit.
type Match struct {
	ID      string
	Score   float32
	Values  []float32
	Content MatchContent
}

// Reshape converts a query response into matches, keeping rank order.
func Reshape(resp storage.QueryResponse) []Match {
	matches := make([]Match, 0, len(resp.Matches))
	for _, m := range resp.Matches {
		matches = append(matches, Match{
			ID:      m.ID,
			Score:   m.Score,
			Values:  m.Values,
			Content: reshapeMetadata(m.Metadata),
		})
	}
	return matches
}

func reshapeMetadata(fields map[string]any) MatchContent {
	pageContent, hasContent := fields[storage.PayloadPageContent].(string)
	docLink, hasLink := fields[storage.PayloadDocLink].(string)
	if hasContent && hasLink {
		return Normalized{PageContent: pageContent, DocLink: docLink}
	}
	return Raw{Fields: fields}
}

// pageContent returns the text a match contributes to the context, if any.
func pageContent(c MatchContent) string {
	switch c := c.(type) {
	case Normalized:
		return c.PageContent
	case Raw:
		s, _ := c.Fields[storage.PayloadPageContent].(string)
		return s
	default:
		return ""
	}
}

// docLink returns the match's document link, or "".
func docLink(c MatchContent) string {
	switch c := c.(type) {
	case Normalized:
		return c.DocLink
	case Raw:
		s, _ := c.Fields[storage.PayloadDocLink].(string)
		return s
	default:
		return ""
	}
}
