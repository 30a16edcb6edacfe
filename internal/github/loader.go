package github

import (
	"context"
	"fmt"
	"path"
	"slices"

	"github.com/google/go-github/v81/github"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/chunker"
	"github.com/bull/askdocs/internal/logger"
	"github.com/bull/askdocs/internal/source"
)

// LoaderConfig selects the documentation directory to load.
type LoaderConfig struct {
	Owner      string
	Repo       string
	BasePath   string
	Ref        string   // branch, tag or commit; empty means the default branch
	Extensions []string // defaults to .md
}

// Loader fetches documents from a GitHub repository directory.
type Loader struct {
	client *Client
	cfg    LoaderConfig
	logger *zap.Logger
}

// NewLoader creates a loader over cfg.BasePath in cfg.Owner/cfg.Repo.
func NewLoader(client *Client, cfg LoaderConfig, log *zap.Logger) *Loader {
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = []string{".md"}
	}
	return &Loader{client: client, cfg: cfg, logger: logger.OrNop(log)}
}

var _ source.Loader = (*Loader)(nil)

// Load lists every matching file below the base path and fetches its content.
// Sources are paths relative to the base path. Files without a "Link:" line get
// one pointing at the file on github.com, so answers can cite them.
func (l *Loader) Load(ctx context.Context) ([]source.Document, error) {
	paths, err := l.listDocs(ctx, l.cfg.BasePath, "")
	if err != nil {
		return nil, err
	}

	docs := make([]source.Document, 0, len(paths))
	for _, rel := range paths {
		doc, err := l.fetchDoc(ctx, rel)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	l.logger.Info("Loaded documents from GitHub",
		zap.String("repo", l.cfg.Owner+"/"+l.cfg.Repo),
		zap.String("path", l.cfg.BasePath),
		zap.Int("count", len(docs)),
	)
	return docs, nil
}

// listDocs recursively traverses directories to find matching files.
func (l *Loader) listDocs(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	_, dirContents, _, err := l.client.Repositories.GetContents(ctx, l.cfg.Owner, l.cfg.Repo, fullPath, l.getOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to get contents of %s: %w", fullPath, err)
	}

	var docs []string
	for _, item := range dirContents {
		itemRelPath := path.Join(relativePath, item.GetName())

		switch item.GetType() {
		case "file":
			if slices.Contains(l.cfg.Extensions, path.Ext(item.GetName())) {
				docs = append(docs, itemRelPath)
			}
		case "dir":
			subDocs, err := l.listDocs(ctx, path.Join(fullPath, item.GetName()), itemRelPath)
			if err != nil {
				return nil, err
			}
			docs = append(docs, subDocs...)
		}
	}
	return docs, nil
}

func (l *Loader) fetchDoc(ctx context.Context, relativePath string) (source.Document, error) {
	fullPath := path.Join(l.cfg.BasePath, relativePath)

	fileContent, _, _, err := l.client.Repositories.GetContents(ctx, l.cfg.Owner, l.cfg.Repo, fullPath, l.getOptions())
	if err != nil {
		return source.Document{}, fmt.Errorf("failed to get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return source.Document{}, fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := fileContent.GetContent()
	if err != nil {
		return source.Document{}, fmt.Errorf("failed to decode content of %s: %w", fullPath, err)
	}

	if chunker.ExtractDocumentLink(content) == "" && fileContent.GetHTMLURL() != "" {
		content = "Link: " + fileContent.GetHTMLURL() + "\n" + content
	}

	return source.Document{PageContent: content, Source: relativePath}, nil
}

func (l *Loader) getOptions() *github.RepositoryContentGetOptions {
	if l.cfg.Ref == "" {
		return nil
	}
	return &github.RepositoryContentGetOptions{Ref: l.cfg.Ref}
}
