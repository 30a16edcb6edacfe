// Package main provides the askdocs CLI: ingest documentation, ask questions, inspect the index.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bull/askdocs/internal/config"
	"github.com/bull/askdocs/internal/logger"
)

var (
	cfgFile string
	cfg     config.Config
	log     *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "askdocs",
	Short: "Question answering over your documentation",
	Long: `askdocs indexes documentation into Qdrant and answers questions from it
with an OpenAI chat model, citing the documents it used.

Example usage:
  askdocs ingest --dir ./docs        # Index a local docs directory
  askdocs ingest --github            # Index the configured GitHub docs directory
  askdocs ask "How do I configure the index?"
  askdocs status`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		log, err = logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config/$ENV.yaml)")
	rootCmd.AddCommand(ingestCmd, askCmd, statusCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
