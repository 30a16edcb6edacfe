package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bull/askdocs/internal/app"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the configured index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, log, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		stats, err := a.Store.IndexStats(cmd.Context(), cfg.Qdrant.Index)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Index:     %s\n", stats.Name)
		fmt.Fprintf(out, "Status:    %s\n", stats.Status)
		fmt.Fprintf(out, "Vectors:   %d\n", stats.PointsCount)
		fmt.Fprintf(out, "Dimension: %d\n", stats.Dimension)
		fmt.Fprintf(out, "Embedding: %s\n", a.Embedder.Model())
		return nil
	},
}
