package indexer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bull/askdocs/internal/chunker"
	"github.com/bull/askdocs/internal/source"
	"github.com/bull/askdocs/internal/storage"
)

type fakeEmbedder struct {
	dim   int
	calls int
	err   error
}

func (f *fakeEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, f.dim)
		vec[0] = float32(len(text))
		out[i] = vec
	}
	return out, nil
}

func (f *fakeEmbedder) Dimension() int { return f.dim }

type upsertCall struct {
	index     string
	records   []storage.VectorRecord
	batchSize int
}

type fakeStore struct {
	ensured   []storage.IndexSpec
	calls     []upsertCall
	vectors   map[string]storage.VectorRecord
	failFor   string // source whose upsert fails
	ensureErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{vectors: make(map[string]storage.VectorRecord)}
}

func (f *fakeStore) EnsureIndex(_ context.Context, spec storage.IndexSpec, _ time.Duration) error {
	f.ensured = append(f.ensured, spec)
	return f.ensureErr
}

func (f *fakeStore) UpsertBatch(_ context.Context, index string, records []storage.VectorRecord, batchSize int) error {
	f.calls = append(f.calls, upsertCall{index: index, records: records, batchSize: batchSize})
	if f.failFor != "" && records[0].Metadata.TxtPath == f.failFor {
		return fmt.Errorf("%w: batch 0-%d of %d: unavailable", storage.ErrUpsert, len(records), len(records))
	}
	for _, r := range records {
		f.vectors[r.ID] = r
	}
	return nil
}

func newTestPipeline(emb Embedder, store VectorStore, opts Options) *Pipeline {
	if opts.Index == "" {
		opts.Index = "docs"
	}
	return NewPipeline(chunker.NewChunker(chunker.DefaultChunkSize), emb, store, opts)
}

func TestUpdateIndex_SingleShortDocument(t *testing.T) {
	store := newFakeStore()
	p := newTestPipeline(&fakeEmbedder{dim: 3}, store, Options{})

	doc := source.Document{PageContent: "Link: http://doc1\nHello world, this is a test.", Source: "doc1.txt"}
	result, err := p.UpdateIndex(context.Background(), []source.Document{doc})
	require.NoError(t, err)

	require.Len(t, store.calls, 1)
	call := store.calls[0]
	assert.Equal(t, "docs", call.index)
	assert.Equal(t, storage.MaxBatchSize, call.batchSize)
	require.Len(t, call.records, 1)

	r := call.records[0]
	assert.Equal(t, "doc1.txt_0", r.ID)
	assert.Equal(t, "http://doc1", r.Metadata.DocLink)
	assert.Equal(t, doc.PageContent, r.Metadata.PageContent)
	assert.Equal(t, "doc1.txt", r.Metadata.TxtPath)
	assert.Equal(t, `{"lines":{"from":1,"to":2}}`, r.Metadata.Loc)
	assert.Len(t, r.Values, 3)

	assert.Equal(t, 1, result.TotalDocs)
	assert.Equal(t, 1, result.IndexedDocs)
	assert.Equal(t, 1, result.TotalVectors)
}

func TestUpdateIndex_IsIdempotent(t *testing.T) {
	store := newFakeStore()
	p := newTestPipeline(&fakeEmbedder{dim: 2}, store, Options{})

	docs := []source.Document{
		{PageContent: strings.Repeat("some words here. ", 200), Source: "a.txt"},
		{PageContent: "# Title\n\nShort.\n\n## Part\n\nMore.", Source: "b.md"},
	}

	_, err := p.UpdateIndex(context.Background(), docs)
	require.NoError(t, err)
	firstIDs := make(map[string]bool)
	for id := range store.vectors {
		firstIDs[id] = true
	}
	require.NotEmpty(t, firstIDs)

	_, err = p.UpdateIndex(context.Background(), docs)
	require.NoError(t, err)

	assert.Len(t, store.vectors, len(firstIDs))
	for id := range store.vectors {
		assert.True(t, firstIDs[id], "unexpected id %s", id)
	}
}

func TestUpdateIndex_BatchSize(t *testing.T) {
	store := newFakeStore()
	p := newTestPipeline(&fakeEmbedder{dim: 2}, store, Options{BatchSize: 500})
	assert.Equal(t, storage.MaxBatchSize, p.opts.BatchSize)

	p = newTestPipeline(&fakeEmbedder{dim: 2}, store, Options{BatchSize: 10})
	_, err := p.UpdateIndex(context.Background(), []source.Document{{PageContent: "x", Source: "x.txt"}})
	require.NoError(t, err)
	assert.Equal(t, 10, store.calls[0].batchSize)
}

func TestUpdateIndex_AbortsOnFirstFailure(t *testing.T) {
	store := newFakeStore()
	store.failFor = "b.txt"
	emb := &fakeEmbedder{dim: 2}
	p := newTestPipeline(emb, store, Options{})

	docs := []source.Document{
		{PageContent: "first", Source: "a.txt"},
		{PageContent: "second", Source: "b.txt"},
		{PageContent: "third", Source: "c.txt"},
	}
	result, err := p.UpdateIndex(context.Background(), docs)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrUpsert)
	assert.Contains(t, err.Error(), "b.txt")

	assert.Equal(t, 1, result.IndexedDocs)
	assert.Equal(t, 2, emb.calls, "documents after the failure must not be processed")
	assert.Contains(t, store.vectors, "a.txt_0")
	assert.NotContains(t, store.vectors, "c.txt_0")
}

func TestUpdateIndex_EmbeddingFailureWritesNothing(t *testing.T) {
	store := newFakeStore()
	embErr := errors.New("embedding failed")
	p := newTestPipeline(&fakeEmbedder{dim: 2, err: embErr}, store, Options{})

	_, err := p.UpdateIndex(context.Background(), []source.Document{{PageContent: "text", Source: "a.txt"}})
	assert.ErrorIs(t, err, embErr)
	assert.Empty(t, store.calls)
}

func TestUpdateIndex_SkipsEmptyDocuments(t *testing.T) {
	store := newFakeStore()
	p := newTestPipeline(&fakeEmbedder{dim: 2}, store, Options{})

	result, err := p.UpdateIndex(context.Background(), []source.Document{{PageContent: "   ", Source: "blank.txt"}})
	require.NoError(t, err)
	assert.Empty(t, store.calls)
	assert.Equal(t, 1, result.IndexedDocs)
	assert.Zero(t, result.TotalVectors)
}

func TestUpdateIndex_LogsAndReportsProgress(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var progress []string

	p := newTestPipeline(&fakeEmbedder{dim: 2}, newFakeStore(), Options{
		Logger: zap.New(core),
		Progress: func(done, total int, source string) {
			progress = append(progress, fmt.Sprintf("%d/%d %s", done, total, source))
		},
	})

	docs := []source.Document{{PageContent: "one", Source: "1.txt"}, {PageContent: "two", Source: "2.txt"}}
	_, err := p.UpdateIndex(context.Background(), docs)
	require.NoError(t, err)

	assert.Equal(t, []string{"1/2 1.txt", "2/2 2.txt"}, progress)

	entries := logs.FilterMessage("Indexed document").All()
	require.Len(t, entries, 2)
	fields := entries[1].ContextMap()
	assert.Equal(t, "2/2", fields["progress"])
	assert.Equal(t, int64(1), fields["vectors"])
}

func TestPrepare(t *testing.T) {
	store := newFakeStore()
	p := newTestPipeline(&fakeEmbedder{dim: 1536}, store, Options{Index: "askdocs", Metric: "cosine"})

	require.NoError(t, p.Prepare(context.Background()))
	assert.Equal(t, []storage.IndexSpec{{Name: "askdocs", Dimension: 1536, Metric: "cosine"}}, store.ensured)

	store.ensureErr = storage.ErrIndexNotReady
	assert.ErrorIs(t, p.Prepare(context.Background()), storage.ErrIndexNotReady)
}

func TestRecordID(t *testing.T) {
	assert.Equal(t, "docs/intro.md_3", RecordID("docs/intro.md", 3))
}
