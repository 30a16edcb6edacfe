// Package completion sends retrieved context and a question to a chat model in a single call.
package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/metrics"
)

const (
	// DefaultModel answers questions when no model is configured.
	DefaultModel = openai.ChatModelGPT4oMini

	// DefaultMaxContextTokens bounds the context blob (in tokens).
	DefaultMaxContextTokens = 12000
)

// ErrCompletion is returned when the chat completion call fails or yields no answer.
var ErrCompletion = errors.New("completion failed")

// stuffTemplate puts all retrieved context into one system message.
const stuffTemplate = `Use the following pieces of context to answer the users question.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
----------------
%s`

// Options configures a Completer. Zero values fall back to defaults.
type Options struct {
	Model            string
	MaxContextTokens int
	Temperature      float64
	Logger           *zap.Logger
}

// Completer produces answers using the OpenAI chat completions API.
type Completer struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

// NewCompleter creates a completer with the given OpenAI client.
func NewCompleter(client *openai.Client, opts Options) *Completer {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.MaxContextTokens <= 0 {
		opts.MaxContextTokens = DefaultMaxContextTokens
	}
	return &Completer{
		client:      client,
		model:       opts.Model,
		maxTokens:   opts.MaxContextTokens,
		temperature: opts.Temperature,
		logger:      logger.OrNop(opts.Logger),
	}
}

// Complete answers prompt from contextBlob with one chat call ("stuff" strategy).
func (c *Completer) Complete(ctx context.Context, contextBlob, prompt string) (string, error) {
	started := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(fmt.Sprintf(stuffTemplate, c.truncateContent(contextBlob))),
			openai.UserMessage(prompt),
		},
		Model:       c.model,
		Temperature: openai.Float(c.temperature),
	})
	elapsed := time.Since(started).Seconds()
	if err != nil {
		metrics.CompletionRequestDuration.WithLabelValues(c.model, "error").Observe(elapsed)
		return "", fmt.Errorf("%w: chat completion: %w", ErrCompletion, err)
	}
	if len(resp.Choices) == 0 {
		metrics.CompletionRequestDuration.WithLabelValues(c.model, "error").Observe(elapsed)
		return "", fmt.Errorf("%w: no choices returned", ErrCompletion)
	}
	metrics.CompletionRequestDuration.WithLabelValues(c.model, "ok").Observe(elapsed)

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// truncateContent truncates content to fit within token limits.
// Uses rough estimate of 4 characters per token.
func (c *Completer) truncateContent(content string) string {
	maxChars := c.maxTokens * 4
	if len(content) <= maxChars {
		return content
	}

	c.logger.Warn("Truncating context",
		zap.Int("from_chars", len(content)),
		zap.Int("to_chars", maxChars),
		zap.Int("max_tokens", c.maxTokens),
	)

	truncated := content[:maxChars]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}
	return truncated
}
