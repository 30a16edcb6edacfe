// Package query answers questions from the indexed documentation.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/storage"
)

// NotSurePhrase is what the model is told to say when the excerpts do not answer the question.
const NotSurePhrase = "Hmm, I'm not sure."

const instructions = `You are a helpful assistant answering questions about the project documentation.
Answer conversationally, using only the documentation excerpts you were given.
If the excerpts do not contain the answer, reply exactly with "` + NotSurePhrase + `" and nothing else.
Do not answer questions unrelated to the documentation.
Reply in plain text only: no code blocks, tables or images.
Keep the answer under 2000 characters.

Question: `

// Embedder embeds a question with the model used at ingestion.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs similarity queries against the index.
type Searcher interface {
	Query(ctx context.Context, index string, vector []float32, topK int) (storage.QueryResponse, error)
}

// Completer answers a prompt from a block of context in one call.
type Completer interface {
	Complete(ctx context.Context, contextBlob, prompt string) (string, error)
}

// Answer is a generated answer and one document link per match used, in rank order.
// Links may repeat and may be empty.
type Answer struct {
	Text          string
	DocumentLinks []string
}

// Options configures a Pipeline.
type Options struct {
	Index  string
	TopK   int
	Logger *zap.Logger
}

// Pipeline embeds a question, retrieves matching chunks and asks the model.
type Pipeline struct {
	embedder  Embedder
	searcher  Searcher
	completer Completer
	index     string
	topK      int
	logger    *zap.Logger
}

// NewPipeline creates a query pipeline over the given index.
func NewPipeline(embedder Embedder, searcher Searcher, completer Completer, opts Options) *Pipeline {
	if opts.TopK <= 0 {
		opts.TopK = storage.DefaultTopK
	}
	return &Pipeline{
		embedder:  embedder,
		searcher:  searcher,
		completer: completer,
		index:     opts.Index,
		topK:      opts.TopK,
		logger:    logger.OrNop(opts.Logger),
	}
}

// Answer answers question. It reports ok == false, with no error, when the index
// has no matches; the model is not called in that case.
func (p *Pipeline) Answer(ctx context.Context, question string) (Answer, bool, error) {
	vector, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return Answer{}, false, fmt.Errorf("embed question: %w", err)
	}

	resp, err := p.searcher.Query(ctx, p.index, vector, p.topK)
	if err != nil {
		return Answer{}, false, fmt.Errorf("search: %w", err)
	}

	matches := Reshape(resp)
	if len(matches) == 0 {
		p.logger.Info("No matches found", zap.String("index", p.index))
		return Answer{}, false, nil
	}

	contextBlob, links := BuildContext(matches)
	p.logger.Debug("Retrieved context",
		zap.Int("matches", len(matches)),
		zap.Int("context_chars", len(contextBlob)),
	)

	text, err := p.completer.Complete(ctx, contextBlob, BuildPrompt(question))
	if err != nil {
		return Answer{}, false, fmt.Errorf("complete: %w", err)
	}

	return Answer{Text: text, DocumentLinks: links}, true, nil
}

// BuildContext joins the matches' page contents with spaces and lists their links,
// both in rank order. Links line up 1:1 with matches.
func BuildContext(matches []Match) (string, []string) {
	contents := make([]string, 0, len(matches))
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := pageContent(m.Content); text != "" {
			contents = append(contents, text)
		}
		links = append(links, docLink(m.Content))
	}
	return strings.Join(contents, " "), links
}

// BuildPrompt prepends the fixed answering instructions to the user's question.
func BuildPrompt(question string) string {
	return instructions + question
}
