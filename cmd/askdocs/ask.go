package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bull/askdocs/internal/app"
)

var askChannel string

var askCmd = &cobra.Command{
	Use:   `ask "<question>"`,
	Short: "Answer a question from the indexed documentation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.New(cmd.Context(), cfg, log, app.Options{})
		if err != nil {
			return err
		}
		defer a.Close()

		msg := &terminalMessage{channel: askChannel, w: cmd.OutOrStdout()}
		return a.Bot.HandleAsk(cmd.Context(), msg, strings.Join(args, " "))
	},
}

func init() {
	askCmd.Flags().StringVar(&askChannel, "channel", "cli", "channel name recorded in logs")
}

// terminalMessage replies by printing to the terminal.
type terminalMessage struct {
	channel string
	w       io.Writer
}

func (m *terminalMessage) Channel() string { return m.channel }

func (m *terminalMessage) Reply(_ context.Context, text string) error {
	_, err := fmt.Fprintln(m.w, text)
	return err
}
