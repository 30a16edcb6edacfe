package storage

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/metrics"
)

// qdrantAPI is the subset of *qdrant.Client used by QdrantStorage.
type qdrantAPI interface {
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	ListCollections(ctx context.Context) ([]string, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Close() error
}

// pointNamespace seeds the deterministic UUIDs Qdrant needs as point ids.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/bull/askdocs/vectors"))

// PointID maps a record id such as "docs/intro.md_3" to the stable UUID it is stored under.
func PointID(recordID string) string {
	return uuid.NewSHA1(pointNamespace, []byte(recordID)).String()
}

// QdrantStorage wraps the Qdrant client with index provisioning, batched writes and queries.
type QdrantStorage struct {
	client qdrantAPI
	logger *zap.Logger

	pollInterval time.Duration

	mu         sync.RWMutex
	dimensions map[string]int // index name -> declared vector size
}

// NewQdrantStorage connects to Qdrant and validates the connection.
// It retries the health check with exponential backoff and fails with ErrConnection
// if the service stays unreachable or rejects the credentials.
func NewQdrantStorage(ctx context.Context, cfg Config, log *zap.Logger) (*QdrantStorage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	s := newStorage(client, log)
	if err := s.healthCheckWithRetry(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: %s:%d: %w", ErrConnection, cfg.Host, cfg.Port, err)
	}
	return s, nil
}

func newStorage(client qdrantAPI, log *zap.Logger) *QdrantStorage {
	return &QdrantStorage{
		client:       client,
		logger:       logger.OrNop(log),
		pollInterval: 500 * time.Millisecond,
		dimensions:   make(map[string]int),
	}
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (s *QdrantStorage) healthCheckWithRetry(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return s.Health(ctx)
	}, backoff.WithContext(b, ctx))
}

// Health performs a single health check against Qdrant.
func (s *QdrantStorage) Health(ctx context.Context) error {
	result, err := s.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.GetTitle() == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// ListIndexes returns the names of all indexes (collections).
func (s *QdrantStorage) ListIndexes(ctx context.Context) ([]string, error) {
	names, err := s.client.ListCollections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes: %w", err)
	}
	return names, nil
}

// EnsureIndex creates the index if it is absent and waits until Qdrant reports it ready,
// giving up after timeout with ErrIndexNotReady. An existing index is left untouched,
// but its vector size must match spec.Dimension.
func (s *QdrantStorage) EnsureIndex(ctx context.Context, spec IndexSpec, timeout time.Duration) error {
	names, err := s.ListIndexes(ctx)
	if err != nil {
		return err
	}

	if slices.Contains(names, spec.Name) {
		s.logger.Info("Index already exists", zap.String("index", spec.Name))
		return s.checkExistingDimension(ctx, spec)
	}

	distance, err := distanceFor(spec.Metric)
	if err != nil {
		return err
	}

	s.logger.Info("Creating index",
		zap.String("index", spec.Name),
		zap.Int("dimension", spec.Dimension),
		zap.String("metric", spec.Metric),
	)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: spec.Name,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(spec.Dimension),
			Distance: distance,
		}),
	})
	if err != nil {
		return fmt.Errorf("create index %s: %w", spec.Name, err)
	}

	if err := s.waitForReady(ctx, spec.Name, timeout); err != nil {
		return err
	}
	s.rememberDimension(spec.Name, spec.Dimension)
	s.logger.Info("Index ready", zap.String("index", spec.Name))
	return nil
}

func (s *QdrantStorage) checkExistingDimension(ctx context.Context, spec IndexSpec) error {
	info, err := s.client.GetCollectionInfo(ctx, spec.Name)
	if err != nil {
		return fmt.Errorf("get index %s: %w", spec.Name, err)
	}

	size := int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
	if size != 0 && size != spec.Dimension {
		return fmt.Errorf("%w: index %s has %d dimensions, expected %d",
			ErrDimensionMismatch, spec.Name, size, spec.Dimension)
	}
	s.rememberDimension(spec.Name, spec.Dimension)
	return nil
}

// waitForReady polls the index status until it turns green or timeout elapses.
func (s *QdrantStorage) waitForReady(ctx context.Context, name string, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = s.pollInterval
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = timeout

	operation := func() error {
		info, err := s.client.GetCollectionInfo(ctx, name)
		if err != nil {
			return err
		}
		if status := info.GetStatus(); status != qdrant.CollectionStatus_Green {
			return fmt.Errorf("status %s", status)
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return fmt.Errorf("%w: %s after %s: %w", ErrIndexNotReady, name, timeout, err)
	}
	return nil
}

// Query returns the topK nearest vectors to vector, with payloads and raw values.
func (s *QdrantStorage) Query(ctx context.Context, index string, vector []float32, topK int) (QueryResponse, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if dim, ok := s.dimension(index); ok && len(vector) != dim {
		metrics.VectorQueriesTotal.WithLabelValues("error").Inc()
		return QueryResponse{}, fmt.Errorf("%w: %w: query has %d dimensions, index %s expects %d",
			ErrQuery, ErrDimensionMismatch, len(vector), index, dim)
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: index,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(true),
	})
	if err != nil {
		metrics.VectorQueriesTotal.WithLabelValues("error").Inc()
		return QueryResponse{}, fmt.Errorf("%w: index %s: %w", ErrQuery, index, err)
	}
	metrics.VectorQueriesTotal.WithLabelValues("ok").Inc()

	resp := QueryResponse{Matches: make([]QueryMatch, 0, len(points))}
	for _, p := range points {
		resp.Matches = append(resp.Matches, toMatch(p))
	}
	return resp, nil
}

// UpsertBatch writes records in sequential batches of at most batchSize (capped at MaxBatchSize).
// The first failed batch aborts the remaining ones; batches already written stay committed.
func (s *QdrantStorage) UpsertBatch(ctx context.Context, index string, records []VectorRecord, batchSize int) error {
	if len(records) == 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > MaxBatchSize {
		batchSize = MaxBatchSize
	}

	if dim, ok := s.dimension(index); ok {
		for _, r := range records {
			if len(r.Values) != dim {
				return fmt.Errorf("%w: %w: record %s has %d dimensions, index %s expects %d",
					ErrUpsert, ErrDimensionMismatch, r.ID, len(r.Values), index, dim)
			}
		}
	}

	for start := 0; start < len(records); start += batchSize {
		end := min(start+batchSize, len(records))

		points := make([]*qdrant.PointStruct, 0, end-start)
		for _, r := range records[start:end] {
			points = append(points, toPoint(r))
		}

		_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: index,
			Wait:           qdrant.PtrOf(true),
			Points:         points,
		})
		if err != nil {
			metrics.UpsertBatchesTotal.WithLabelValues("error").Inc()
			return fmt.Errorf("%w: batch %d-%d of %d: %w", ErrUpsert, start, end, len(records), err)
		}
		metrics.UpsertBatchesTotal.WithLabelValues("ok").Inc()
		metrics.UpsertedVectorsTotal.Add(float64(len(points)))
	}
	return nil
}

// IndexStats reports status and size of an index.
func (s *QdrantStorage) IndexStats(ctx context.Context, index string) (*IndexStats, error) {
	info, err := s.client.GetCollectionInfo(ctx, index)
	if err != nil {
		return nil, fmt.Errorf("get index %s: %w", index, err)
	}
	return &IndexStats{
		Name:        index,
		Status:      info.GetStatus().String(),
		PointsCount: info.GetPointsCount(),
		Dimension:   int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize()),
	}, nil
}

// Close closes the Qdrant client connection.
func (s *QdrantStorage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *QdrantStorage) rememberDimension(index string, dim int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimensions[index] = dim
}

func (s *QdrantStorage) dimension(index string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dim, ok := s.dimensions[index]
	return dim, ok
}

func distanceFor(metric string) (qdrant.Distance, error) {
	switch metric {
	case "", "cosine":
		return qdrant.Distance_Cosine, nil
	case "dot":
		return qdrant.Distance_Dot, nil
	case "euclid":
		return qdrant.Distance_Euclid, nil
	default:
		return qdrant.Distance_UnknownDistance, fmt.Errorf("unsupported metric %q", metric)
	}
}
