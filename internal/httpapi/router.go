// Package httpapi serves the ask command, health, metrics and MCP over HTTP.
package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/metrics"
)

// Config holds router dependencies. MCP and Metrics are optional.
type Config struct {
	Asker   Asker
	Health  HealthChecker
	MCP     http.Handler
	Metrics http.Handler
	Logger  *zap.Logger
}

// NewRouter builds the chi router for the bot server.
func NewRouter(cfg Config) http.Handler {
	log := logger.OrNop(cfg.Logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(log))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(metrics.Middleware())

	r.Get("/", landingHandler)
	r.Get("/health", NewHealthHandler(cfg.Health))
	r.Post("/ask", NewAskHandler(cfg.Asker))

	metricsHandler := cfg.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	if cfg.MCP != nil {
		r.Handle("/mcp", cfg.MCP)
	}
	return r
}
