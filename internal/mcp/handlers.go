package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
)

// makeAskHandler creates the ask tool handler. It never fails: errors are
// turned into the bot's generic reply.
func makeAskHandler(asker Asker, log *zap.Logger) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		channel := input.Channel
		if channel == "" {
			channel = DefaultChannel
		}
		ctx = logger.ContextWithLogger(ctx, logger.FromContext(ctx, log).With(zap.String("transport", "mcp")))

		return nil, AskOutput{Reply: asker.Respond(ctx, channel, input.Question)}, nil
	}
}

// makeStatusHandler creates the index_status tool handler.
func makeStatusHandler(status StatusReporter, index string) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		stats, err := status.IndexStats(ctx, index)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("qdrant_error: failed to get index stats: %w", err)
		}

		return nil, StatusOutput{
			Index:     stats.Name,
			Status:    stats.Status,
			Vectors:   stats.PointsCount,
			Dimension: stats.Dimension,
		}, nil
	}
}
