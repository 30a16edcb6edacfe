// Package indexer drives ingestion: documents in, vectors in the index out.
package indexer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/chunker"
	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/source"
	"github.com/bull/askdocs/internal/storage"
)

// Embedder turns chunk texts into vectors, preserving order.
type Embedder interface {
	GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// VectorStore is the part of storage.QdrantStorage the pipeline writes through.
type VectorStore interface {
	EnsureIndex(ctx context.Context, spec storage.IndexSpec, timeout time.Duration) error
	UpsertBatch(ctx context.Context, index string, records []storage.VectorRecord, batchSize int) error
}

// IndexResult contains statistics about an indexing operation.
type IndexResult struct {
	TotalDocs    int
	IndexedDocs  int
	TotalVectors int
	Duration     time.Duration
}

// Options configures a Pipeline.
type Options struct {
	Index        string
	Metric       string
	BatchSize    int           // vectors per upsert, at most storage.MaxBatchSize
	ReadyTimeout time.Duration // how long Prepare waits for a new index
	Logger       *zap.Logger

	// Progress, if set, is called after each document is written.
	Progress func(done, total int, source string)
}

// Pipeline orchestrates chunking, embedding and upserting, one document at a time.
type Pipeline struct {
	chunker  *chunker.Chunker
	embedder Embedder
	store    VectorStore
	opts     Options
	logger   *zap.Logger
}

// NewPipeline creates a new indexing pipeline with the given components.
func NewPipeline(ch *chunker.Chunker, embedder Embedder, store VectorStore, opts Options) *Pipeline {
	if opts.BatchSize <= 0 || opts.BatchSize > storage.MaxBatchSize {
		opts.BatchSize = storage.MaxBatchSize
	}
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = time.Minute
	}
	return &Pipeline{
		chunker:  ch,
		embedder: embedder,
		store:    store,
		opts:     opts,
		logger:   logger.OrNop(opts.Logger),
	}
}

// Prepare makes sure the index exists with the embedder's dimension.
func (p *Pipeline) Prepare(ctx context.Context) error {
	spec := storage.IndexSpec{
		Name:      p.opts.Index,
		Dimension: p.embedder.Dimension(),
		Metric:    p.opts.Metric,
	}
	if err := p.store.EnsureIndex(ctx, spec, p.opts.ReadyTimeout); err != nil {
		return fmt.Errorf("ensure index %s: %w", p.opts.Index, err)
	}
	return nil
}

// UpdateIndex ingests docs in order. The first failing document aborts the run;
// vectors already written stay in the index and the partial result is returned
// along with the error. Re-running with the same documents overwrites their vectors.
func (p *Pipeline) UpdateIndex(ctx context.Context, docs []source.Document) (*IndexResult, error) {
	start := time.Now()
	result := &IndexResult{TotalDocs: len(docs)}

	p.logger.Info("Starting indexing", zap.String("index", p.opts.Index), zap.Int("documents", len(docs)))

	for i, doc := range docs {
		vectors, err := p.processDocument(ctx, doc)
		if err != nil {
			result.Duration = time.Since(start)
			return result, fmt.Errorf("index %s: %w", doc.Source, err)
		}
		result.IndexedDocs++
		result.TotalVectors += vectors

		p.logger.Info("Indexed document",
			zap.String("source", doc.Source),
			zap.String("progress", fmt.Sprintf("%d/%d", i+1, len(docs))),
			zap.Int("vectors", vectors),
		)
		if p.opts.Progress != nil {
			p.opts.Progress(i+1, len(docs), doc.Source)
		}
	}

	result.Duration = time.Since(start)
	p.logger.Info("Indexing complete",
		zap.Int("documents", result.IndexedDocs),
		zap.Int("vectors", result.TotalVectors),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

// processDocument chunks, embeds and upserts one document.
// Returns the number of vectors written.
func (p *Pipeline) processDocument(ctx context.Context, doc source.Document) (int, error) {
	chunks, err := p.chunker.ChunkDocument(doc)
	if err != nil {
		return 0, fmt.Errorf("chunk: %w", err)
	}
	if len(chunks) == 0 {
		p.logger.Debug("Document has no content", zap.String("source", doc.Source))
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := p.embedder.GenerateEmbeddings(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embeddings: got %d vectors for %d chunks", len(embeddings), len(chunks))
	}

	records := make([]storage.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = storage.VectorRecord{
			ID:     RecordID(doc.Source, chunk.Index),
			Values: embeddings[i],
			Metadata: storage.RecordMetadata{
				Loc:         chunk.Loc.String(),
				PageContent: chunk.Text,
				TxtPath:     doc.Source,
				DocLink:     chunk.DocLink,
			},
		}
	}

	if err := p.store.UpsertBatch(ctx, p.opts.Index, records, p.opts.BatchSize); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return len(records), nil
}

// RecordID is the vector id of a document's chunk: "<source>_<chunkIndex>".
func RecordID(source string, chunkIndex int) string {
	return fmt.Sprintf("%s_%d", source, chunkIndex)
}
