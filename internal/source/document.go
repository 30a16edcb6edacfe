// Package source turns raw documentation into documents ready for ingestion.
package source

import "context"

// Document is one unit of ingestion input.
type Document struct {
	PageContent string
	// Source identifies the document and prefixes its vector ids, e.g. "docs/intro.md".
	Source string
}

// Loader produces documents for the indexer.
type Loader interface {
	Load(ctx context.Context) ([]Document, error)
}
