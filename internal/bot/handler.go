// Package bot implements the ask command: it answers a question and replies in the channel it came from.
package bot

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/metrics"
	"github.com/bull/askdocs/internal/query"
)

// Fixed replies. Errors are never shown to users in any other form.
const (
	NoResultsMessage = "No results found for your query."
	ErrorMessage     = "An error occurred while processing your request."
	UsageMessage     = "Please ask a question, for example: ask How do I configure the index?"
)

// Answerer answers questions; ok is false when nothing relevant was found.
type Answerer interface {
	Answer(ctx context.Context, question string) (query.Answer, bool, error)
}

// Message is an incoming chat message that can be replied to.
type Message interface {
	Channel() string
	Reply(ctx context.Context, text string) error
}

// Handler handles the ask command.
type Handler struct {
	answerer Answerer
	maxLinks int
	logger   *zap.Logger
}

// NewHandler creates a handler. maxLinks <= 0 means DefaultMaxLinks.
func NewHandler(answerer Answerer, maxLinks int, log *zap.Logger) *Handler {
	if maxLinks <= 0 {
		maxLinks = DefaultMaxLinks
	}
	return &Handler{answerer: answerer, maxLinks: maxLinks, logger: logger.OrNop(log)}
}

// HandleAsk answers question and replies to msg. The returned error concerns
// delivering the reply only; answering failures are logged and replied to with
// ErrorMessage.
func (h *Handler) HandleAsk(ctx context.Context, msg Message, question string) error {
	reply := h.Respond(ctx, msg.Channel(), question)
	if err := msg.Reply(ctx, reply); err != nil {
		return fmt.Errorf("reply to %s: %w", msg.Channel(), err)
	}
	return nil
}

// Respond builds the reply text for question asked in channel.
func (h *Handler) Respond(ctx context.Context, channel, question string) string {
	log := logger.FromContext(ctx, h.logger).With(zap.String("channel", channel))

	question = strings.TrimSpace(question)
	if question == "" {
		return UsageMessage
	}

	answer, ok, err := h.answerer.Answer(ctx, question)
	switch {
	case err != nil:
		metrics.AsksTotal.WithLabelValues("error").Inc()
		log.Error("Failed to answer question", zap.String("question", question), zap.Error(err))
		return ErrorMessage
	case !ok:
		metrics.AsksTotal.WithLabelValues("no_results").Inc()
		log.Info("No results for question", zap.String("question", question))
		return NoResultsMessage
	default:
		metrics.AsksTotal.WithLabelValues("answered").Inc()
		log.Info("Answered question",
			zap.String("question", question),
			zap.Int("links", len(answer.DocumentLinks)),
		)
		return FormatReply(answer, h.maxLinks)
	}
}
