package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/bot"
	"github.com/bull/askdocs/internal/logger"
)

// DefaultChannel is used when a request names no channel.
const DefaultChannel = "http"

// maxAskBody bounds the POST /ask request body.
const maxAskBody = 64 << 10

// Asker handles the ask command. bot.Handler implements it.
type Asker interface {
	HandleAsk(ctx context.Context, msg bot.Message, question string) error
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Channel  string `json:"channel"`
	Question string `json:"question"`
}

// AskResponse carries the reply posted back to the channel.
type AskResponse struct {
	Channel string `json:"channel"`
	Reply   string `json:"reply"`
}

// httpMessage is a bot.Message whose reply becomes the HTTP response body.
type httpMessage struct {
	channel string
	reply   string
}

func (m *httpMessage) Channel() string { return m.channel }

func (m *httpMessage) Reply(_ context.Context, text string) error {
	m.reply = text
	return nil
}

// NewAskHandler serves POST /ask. Answering failures still yield 200 with the
// generic error reply; only malformed requests are rejected.
func NewAskHandler(asker Asker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AskRequest
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxAskBody))
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Code:    "bad_request",
				Message: "request body must be JSON: {\"channel\": \"...\", \"question\": \"...\"}",
			})
			return
		}

		msg := &httpMessage{channel: strings.TrimSpace(req.Channel)}
		if msg.channel == "" {
			msg.channel = DefaultChannel
		}

		if err := asker.HandleAsk(r.Context(), msg, req.Question); err != nil {
			logger.FromContext(r.Context(), nil).Error("Failed to deliver reply", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, errorResponse{
				Code:    "internal_error",
				Message: bot.ErrorMessage,
			})
			return
		}
		writeJSON(w, http.StatusOK, AskResponse{Channel: msg.channel, Reply: msg.reply})
	}
}
