// Package app wires configured components into the ingestion and ask pipelines.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/bot"
	"github.com/bull/askdocs/internal/chunker"
	"github.com/bull/askdocs/internal/completion"
	"github.com/bull/askdocs/internal/config"
	"github.com/bull/askdocs/internal/embedding"
	"github.com/bull/askdocs/internal/github"
	"github.com/bull/askdocs/internal/indexer"
	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/query"
	"github.com/bull/askdocs/internal/source"
	"github.com/bull/askdocs/internal/storage"
)

// Options selects optional components.
type Options struct {
	// UseCache opens the embedding cache at ingest.cache_path. Only ingestion
	// benefits from it, and bbolt allows a single writer process.
	UseCache bool
}

// App holds the components shared by the CLI and the server.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     *storage.QdrantStorage
	Embedder  *embedding.Embedder
	Completer *completion.Completer
	Query     *query.Pipeline
	Bot       *bot.Handler

	cache *embedding.BoltCache
}

// New connects to Qdrant and builds the pipelines described by cfg.
func New(ctx context.Context, cfg config.Config, log *zap.Logger, opts Options) (*App, error) {
	log = logger.OrNop(log)

	openaiClient, err := embedding.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Logger: log}

	if opts.UseCache && cfg.Ingest.CachePath != "" {
		a.cache, err = embedding.OpenBoltCache(cfg.Ingest.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open embedding cache: %w", err)
		}
		log.Info("Embedding cache enabled", zap.String("path", cfg.Ingest.CachePath))
	}

	embOpts := embedding.Options{
		Model:     cfg.OpenAI.EmbeddingModel,
		Dimension: cfg.Qdrant.Dimension,
		BatchSize: cfg.OpenAI.EmbedBatchSize,
		Logger:    log,
	}
	if a.cache != nil {
		embOpts.Cache = a.cache
	}
	a.Embedder = embedding.NewEmbedder(openaiClient, embOpts)

	a.Store, err = storage.NewQdrantStorage(ctx, storage.Config{
		Host:   cfg.Qdrant.Host,
		Port:   cfg.Qdrant.Port,
		APIKey: cfg.Qdrant.APIKey,
		UseTLS: cfg.Qdrant.UseTLS,
	}, log)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	a.Completer = completion.NewCompleter(openaiClient.Client(), completion.Options{
		Model:            cfg.OpenAI.CompletionModel,
		MaxContextTokens: cfg.OpenAI.MaxContextTokens,
		Temperature:      cfg.OpenAI.Temperature,
		Logger:           log,
	})
	a.Query = query.NewPipeline(a.Embedder, a.Store, a.Completer, query.Options{
		Index:  cfg.Qdrant.Index,
		TopK:   cfg.Query.TopK,
		Logger: log,
	})
	a.Bot = bot.NewHandler(a.Query, cfg.Query.MaxLinks, log)

	return a, nil
}

// Indexer returns an ingestion pipeline writing to the configured index.
func (a *App) Indexer(progress func(done, total int, source string)) *indexer.Pipeline {
	return indexer.NewPipeline(chunker.NewChunker(a.Config.Ingest.ChunkSize), a.Embedder, a.Store, indexer.Options{
		Index:        a.Config.Qdrant.Index,
		Metric:       a.Config.Qdrant.Metric,
		BatchSize:    a.Config.Ingest.BatchSize,
		ReadyTimeout: time.Duration(a.Config.Qdrant.ReadyTimeoutSec) * time.Second,
		Logger:       a.Logger,
		Progress:     progress,
	})
}

// DirLoader loads documents from a local directory using the configured globs.
func (a *App) DirLoader(root string) source.Loader {
	return source.NewDirLoader(root, a.Config.Ingest.Includes, a.Config.Ingest.Excludes, a.Logger)
}

// GitHubLoader loads documents from the configured GitHub directory.
func (a *App) GitHubLoader() (source.Loader, error) {
	gh := a.Config.GitHub
	if gh.Owner == "" || gh.Repo == "" {
		return nil, errors.New("github.owner and github.repo must be set")
	}
	client, err := github.NewClient(gh.Token)
	if err != nil {
		return nil, err
	}
	return github.NewLoader(client, github.LoaderConfig{
		Owner:    gh.Owner,
		Repo:     gh.Repo,
		BasePath: gh.BasePath,
		Ref:      gh.Ref,
	}, a.Logger), nil
}

// Close releases the Qdrant connection and the embedding cache.
func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	return errors.Join(errs...)
}
