// Package main provides the askdocs bot server: the ask command over HTTP and MCP.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/app"
	"github.com/bull/askdocs/internal/config"
	"github.com/bull/askdocs/internal/httpapi"
	"github.com/bull/askdocs/internal/logger"
	mcpserver "github.com/bull/askdocs/internal/mcp"
	"github.com/bull/askdocs/internal/metrics"
)

var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "config file (default is config/$ENV.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server failed", zap.Error(err))
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	metrics.Register()

	a, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	mcpSrv := mcpserver.NewServer(&mcpserver.Config{
		Asker:   a.Bot,
		Status:  a.Store,
		Index:   cfg.Qdrant.Index,
		Version: version,
		Logger:  log,
	})

	router := httpapi.NewRouter(httpapi.Config{
		Asker:  a.Bot,
		Health: a.Store,
		MCP:    mcpserver.NewHTTPHandler(mcpSrv, &mcpserver.HTTPHandlerOptions{Stateless: true}),
		Logger: log,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server",
			zap.String("addr", srv.Addr),
			zap.String("mode", cfg.Server.Mode),
			zap.String("index", cfg.Qdrant.Index),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	if cfg.Server.Mode == "stdio" {
		// MCP over stdin/stdout; HTTP keeps serving /ask, /health and /metrics.
		log.Info("Starting MCP server (stdio mode)")
		if err := mcpSrv.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("MCP server error", zap.Error(err))
		}
		cancel()
	}

	select {
	case <-ctx.Done():
		log.Info("Received shutdown signal")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", zap.Error(err))
	}

	log.Info("Server stopped gracefully")
	return nil
}
