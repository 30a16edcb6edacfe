package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/storage"
)

// DefaultChannel is reported for questions that do not name a channel.
const DefaultChannel = "mcp"

// Asker produces the reply text for a question. bot.Handler implements it.
type Asker interface {
	Respond(ctx context.Context, channel, question string) string
}

// StatusReporter reports index statistics. storage.QdrantStorage implements it.
type StatusReporter interface {
	IndexStats(ctx context.Context, index string) (*storage.IndexStats, error)
}

// Server wraps the MCP server with dependencies.
type Server struct {
	server *mcp.Server
}

// Config holds server dependencies.
type Config struct {
	Asker   Asker
	Status  StatusReporter
	Index   string
	Version string
	Logger  *zap.Logger
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	version := cfg.Version
	if version == "" {
		version = "dev"
	}
	impl := &mcp.Implementation{
		Name:    "askdocs",
		Version: version,
	}

	server := mcp.NewServer(impl, nil)
	log := logger.OrNop(cfg.Logger)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the indexed documentation. Returns a markdown reply with up to three source links.",
	}, makeAskHandler(cfg.Asker, log))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "index_status",
		Description: "Get the status of the documentation index: readiness and number of stored vectors.",
	}, makeStatusHandler(cfg.Status, cfg.Index))

	return &Server{server: server}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
