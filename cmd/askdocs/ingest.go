package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/bull/askdocs/internal/app"
	"github.com/bull/askdocs/internal/source"
)

var (
	ingestDir     string
	ingestGitHub  bool
	ingestNoCache bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed and upsert documentation into the index",
	Long: `Loads documents, splits them into chunks, embeds every chunk and writes
the vectors to the configured Qdrant index, creating it if needed.

Vectors are keyed by "<source>_<chunk>", so re-running overwrites the
vectors of unchanged documents instead of duplicating them. The run stops
at the first document that fails; documents written before it stay indexed.

Environment variables:
  OPENAI_API_KEY  OpenAI API key (required)
  QDRANT_HOST     Qdrant hostname (default: localhost)
  QDRANT_API_KEY  Qdrant Cloud API key
  GITHUB_TOKEN    GitHub token for higher rate limits (optional)`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "local documentation directory")
	ingestCmd.Flags().BoolVar(&ingestGitHub, "github", false, "load the GitHub directory from the config")
	ingestCmd.Flags().BoolVar(&ingestNoCache, "no-cache", false, "bypass the embedding cache")
	ingestCmd.MarkFlagsMutuallyExclusive("dir", "github")
	ingestCmd.MarkFlagsOneRequired("dir", "github")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	start := time.Now()

	fmt.Fprintf(out, "Connecting to Qdrant at %s:%d...\n", cfg.Qdrant.Host, cfg.Qdrant.Port)
	a, err := app.New(ctx, cfg, log, app.Options{UseCache: !ingestNoCache})
	if err != nil {
		return err
	}
	defer a.Close()

	var loader source.Loader
	if ingestGitHub {
		loader, err = a.GitHubLoader()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Loading %s/%s/%s...\n", cfg.GitHub.Owner, cfg.GitHub.Repo, cfg.GitHub.BasePath)
	} else {
		loader = a.DirLoader(ingestDir)
		fmt.Fprintf(out, "Loading %s...\n", ingestDir)
	}

	docs, err := loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	if len(docs) == 0 {
		fmt.Fprintln(out, "No documents found.")
		return nil
	}

	bar := newProgressBar(cmd.ErrOrStderr(), len(docs))
	pipeline := a.Indexer(func(done, total int, source string) {
		bar.Describe(source)
		_ = bar.Set(done)
	})

	if err := pipeline.Prepare(ctx); err != nil {
		return err
	}

	result, err := pipeline.UpdateIndex(ctx, docs)
	_ = bar.Finish()
	if result != nil {
		fmt.Fprintln(out)
		fmt.Fprintf(out, "  Index: %s\n", cfg.Qdrant.Index)
		fmt.Fprintf(out, "  Documents: %d/%d\n", result.IndexedDocs, result.TotalDocs)
		fmt.Fprintf(out, "  Vectors: %d\n", result.TotalVectors)
		fmt.Fprintf(out, "  Duration: %s\n", time.Since(start).Round(time.Millisecond))
	}
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}
	return nil
}

func newProgressBar(w io.Writer, total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Indexing[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}
