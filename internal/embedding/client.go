// Package embedding turns text into vectors with the OpenAI embeddings API.
package embedding

import (
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client wraps the OpenAI client shared by embedding and completion calls.
type Client struct {
	client *openai.Client
}

// NewClient creates an OpenAI client. baseURL is optional and points the client at
// an OpenAI-compatible endpoint. Retries are left to the callers, which know which
// errors are worth retrying.
func NewClient(apiKey, baseURL string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key not set")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := openai.NewClient(opts...)
	return &Client{client: &client}, nil
}

// Client returns the underlying OpenAI client for use in other packages (e.g., completion).
func (c *Client) Client() *openai.Client {
	return c.client
}
