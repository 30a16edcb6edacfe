package mcp

import (
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// HTTPHandlerOptions configures the HTTP transport behavior.
type HTTPHandlerOptions struct {
	// Stateless disables session management. The ask and index_status tools
	// never call back into the client, so servers behind a load balancer can
	// run stateless.
	Stateless bool
	// JSONResponse answers with application/json instead of an SSE stream.
	JSONResponse bool
	// SessionTimeout closes idle sessions; zero keeps them open.
	SessionTimeout time.Duration
}

// NewHTTPHandler serves s over Streamable HTTP. Mount it at /mcp.
func NewHTTPHandler(s *Server, opts *HTTPHandlerOptions) http.Handler {
	if opts == nil {
		opts = &HTTPHandlerOptions{}
	}

	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.MCPServer()
	}, &mcp.StreamableHTTPOptions{
		Stateless:      opts.Stateless,
		JSONResponse:   opts.JSONResponse,
		SessionTimeout: opts.SessionTimeout,
	})
}
