package embedding

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/metrics"
)

const (
	// DefaultModel is the OpenAI model used for generating embeddings.
	DefaultModel = openai.EmbeddingModelTextEmbedding3Small

	// DefaultDimension is the vector dimension of DefaultModel.
	DefaultDimension = 1536

	// DefaultBatchSize balances requests-per-minute vs tokens-per-minute rate limits.
	// OpenAI supports up to 2048 texts per batch, but smaller batches reduce TPM pressure.
	DefaultBatchSize = 500
)

// Options configures an Embedder. Zero values fall back to the defaults above.
type Options struct {
	Model     string
	Dimension int
	BatchSize int
	Cache     Cache // optional
	Logger    *zap.Logger
}

// Embedder generates embeddings for text. It batches requests, retries rate-limited
// calls with exponential backoff and reuses cached vectors when a Cache is set.
type Embedder struct {
	client    *Client
	model     string
	dimension int
	batchSize int
	cache     Cache
	logger    *zap.Logger

	backoff func() backoff.BackOff
}

// NewEmbedder creates a new Embedder with the given client.
func NewEmbedder(client *Client, opts Options) *Embedder {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.Dimension <= 0 {
		opts.Dimension = DefaultDimension
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Embedder{
		client:    client,
		model:     opts.Model,
		dimension: opts.Dimension,
		batchSize: opts.BatchSize,
		cache:     opts.Cache,
		logger:    logger.OrNop(opts.Logger),
		backoff:   defaultBackOff,
	}
}

// Model returns the embedding model name.
func (e *Embedder) Model() string { return e.model }

// Dimension returns the length of every vector this embedder produces.
func (e *Embedder) Dimension() int { return e.dimension }

// GenerateEmbeddings returns one vector per text, in input order. Newlines are
// replaced by spaces before embedding.
func (e *Embedder) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var pending []int // indexes of texts still to embed
	for i, text := range texts {
		if vec, ok := e.cached(text); ok {
			out[i] = vec
			continue
		}
		pending = append(pending, i)
	}

	for start := 0; start < len(pending); start += e.batchSize {
		end := min(start+e.batchSize, len(pending))

		batch := make([]string, 0, end-start)
		for _, idx := range pending[start:end] {
			batch = append(batch, normalize(texts[idx]))
		}

		vectors, err := e.embedBatchWithRetry(ctx, batch)
		if err != nil {
			return nil, fmt.Errorf("%w: batch %d-%d of %d: %w", ErrEmbedding, start, end, len(pending), err)
		}

		for j, idx := range pending[start:end] {
			out[idx] = vectors[j]
			e.store(texts[idx], vectors[j])
		}
	}

	return out, nil
}

// EmbedQuery embeds a single question with the same model used for ingestion.
// Queries skip the cache.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedBatchWithRetry(ctx, []string{normalize(text)})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	return vectors[0], nil
}

// embedBatchWithRetry generates embeddings for a single batch with retry logic.
// Retries with exponential backoff on rate limit errors (HTTP 429).
// Other errors are treated as permanent and fail immediately.
func (e *Embedder) embedBatchWithRetry(ctx context.Context, texts []string) ([][]float32, error) {
	var embeddings [][]float32

	operation := func() error {
		started := time.Now()
		resp, err := e.client.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{
				OfArrayOfStrings: texts,
			},
			Model: e.model,
		})
		metrics.EmbeddingRequestDuration.WithLabelValues(e.model).Observe(time.Since(started).Seconds())
		if err != nil {
			metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "error").Inc()
			if isRateLimitError(err) {
				e.logger.Warn("Embedding request rate limited, backing off", zap.Int("texts", len(texts)))
				return err
			}
			return backoff.Permanent(err)
		}
		metrics.EmbeddingRequestsTotal.WithLabelValues(e.model, "ok").Inc()

		if len(resp.Data) != len(texts) {
			return backoff.Permanent(fmt.Errorf("got %d embeddings for %d texts", len(resp.Data), len(texts)))
		}

		// the API reports each vector's input position; do not trust response order
		embeddings = make([][]float32, len(texts))
		for _, data := range resp.Data {
			if data.Index < 0 || int(data.Index) >= len(texts) {
				return backoff.Permanent(fmt.Errorf("embedding index %d out of range", data.Index))
			}
			if len(data.Embedding) != e.dimension {
				return backoff.Permanent(fmt.Errorf("model %s returned %d dimensions, expected %d",
					e.model, len(data.Embedding), e.dimension))
			}
			embeddings[data.Index] = toFloat32(data.Embedding)
		}
		for i, vec := range embeddings {
			if vec == nil {
				return backoff.Permanent(fmt.Errorf("missing embedding for input %d", i))
			}
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(e.backoff(), ctx)); err != nil {
		return nil, err
	}
	return embeddings, nil
}

func (e *Embedder) cached(text string) ([]float32, bool) {
	if e.cache == nil {
		return nil, false
	}
	vec, ok, err := e.cache.Get(CacheKey(e.model, text))
	if err != nil {
		e.logger.Warn("Failed to read cached embedding", zap.Error(err))
		return nil, false
	}
	if !ok || len(vec) != e.dimension {
		metrics.EmbeddingCacheTotal.WithLabelValues("miss").Inc()
		return nil, false
	}
	metrics.EmbeddingCacheTotal.WithLabelValues("hit").Inc()
	return vec, true
}

func (e *Embedder) store(text string, vec []float32) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Put(CacheKey(e.model, text), vec); err != nil {
		e.logger.Warn("Failed to cache embedding", zap.Error(err))
	}
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second
	return b
}

// normalize flattens newlines, which degrade embedding quality.
func normalize(text string) string {
	return strings.ReplaceAll(text, "\n", " ")
}

// isRateLimitError checks if the error is a rate limit error (HTTP 429).
func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// toFloat32 converts []float64 to []float32.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
