package source

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/logger"
)

// DirLoader reads documents from a local directory tree filtered by glob patterns.
type DirLoader struct {
	root     string
	includes []string
	excludes []string
	logger   *zap.Logger
}

// NewDirLoader creates a loader for root. Patterns are doublestar globs matched
// against slash-separated paths relative to root; no includes means every file.
func NewDirLoader(root string, includes, excludes []string, log *zap.Logger) *DirLoader {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	return &DirLoader{
		root:     root,
		includes: includes,
		excludes: excludes,
		logger:   logger.OrNop(log),
	}
}

// Load walks the tree in lexical order and returns one document per matching file.
// Document sources are the relative paths, so ids stay stable across machines.
func (l *DirLoader) Load(ctx context.Context) ([]Document, error) {
	root, err := filepath.Abs(l.root)
	if err != nil {
		return nil, err
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && l.shouldExclude(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if !l.shouldInclude(rel) || l.shouldExclude(rel) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		if strings.TrimSpace(string(data)) == "" {
			l.logger.Debug("Skipping empty file", zap.String("source", rel))
			return nil
		}

		docs = append(docs, Document{PageContent: string(data), Source: rel})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", l.root, err)
	}

	l.logger.Info("Loaded documents", zap.String("root", l.root), zap.Int("count", len(docs)))
	return docs, nil
}

func (l *DirLoader) shouldInclude(path string) bool {
	return matchAny(l.includes, path)
}

func (l *DirLoader) shouldExclude(path string) bool {
	return matchAny(l.excludes, path)
}

func matchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}
