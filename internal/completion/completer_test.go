package completion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestCompleter(t *testing.T, status int, body string, opts Options) (*Completer, *[]chatRequest) {
	t.Helper()
	var requests []chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		requests = append(requests, req)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL+"/v1"),
		option.WithMaxRetries(0),
	)
	return NewCompleter(&client, opts), &requests
}

func chatResponse(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
	})
	return string(b)
}

func TestComplete(t *testing.T) {
	c, requests := newTestCompleter(t, http.StatusOK, chatResponse("  It is a bot.\n"), Options{})

	answer, err := c.Complete(context.Background(), "excerpt one excerpt two", "Explain. What is it?")
	require.NoError(t, err)
	assert.Equal(t, "It is a bot.", answer)

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, DefaultModel, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.True(t, strings.HasSuffix(req.Messages[0].Content, "excerpt one excerpt two"))
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Equal(t, "Explain. What is it?", req.Messages[1].Content)
}

func TestComplete_NoChoices(t *testing.T) {
	c, _ := newTestCompleter(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, Options{})

	_, err := c.Complete(context.Background(), "ctx", "q")
	assert.ErrorIs(t, err, ErrCompletion)
}

func TestComplete_APIError(t *testing.T) {
	c, _ := newTestCompleter(t, http.StatusInternalServerError, `{"error":{"message":"boom"}}`, Options{})

	_, err := c.Complete(context.Background(), "ctx", "q")
	assert.ErrorIs(t, err, ErrCompletion)
}

// TestTruncateContent verifies truncation works correctly for very long content.
func TestTruncateContent(t *testing.T) {
	c := NewCompleter(nil, Options{})

	longContent := strings.Repeat("This is a test content. ", 4000) // ~100k chars

	truncated := c.truncateContent(longContent)

	expectedMaxChars := DefaultMaxContextTokens * 4
	assert.Len(t, truncated, expectedMaxChars)
	assert.True(t, strings.HasPrefix(longContent, truncated), "truncated content should be a prefix")
}

// TestTruncateContent_Short verifies short content is not truncated.
func TestTruncateContent_Short(t *testing.T) {
	c := NewCompleter(nil, Options{})

	shortContent := "This is a short document."
	assert.Equal(t, shortContent, c.truncateContent(shortContent))
}

func TestTruncateContent_KeepsRunesWhole(t *testing.T) {
	c := NewCompleter(nil, Options{MaxContextTokens: 1})

	truncated := c.truncateContent("abcé€xyz") // é straddles the 4-byte cut
	assert.Equal(t, "abc", truncated)
	assert.True(t, utf8.ValidString(truncated))
}
