package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/4thel00z/bookrag/internal"
	"github.com/spf13/cobra"
)

func NewChatCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask questions in a loop",
		Long: `Index the document directory once and answer questions until EOF, "exit" or "quit".
Adding, changing or removing a PDF re-indexes before the next question.`,
		Args: cobra.NoArgs,
		RunE: makeChatRunner(a),
	}

	cmd.Flags().Duration("debounce", 500*time.Millisecond, "Quiet period before reacting to document changes")
	cmd.Flags().Bool("no-watch", false, "Do not watch the document directory")
	return cmd
}

func makeChatRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		debounce, _ := cmd.Flags().GetDuration("debounce")
		noWatch, _ := cmd.Flags().GetBool("no-watch")

		p, _, log, err := a.pipeline(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		session := internal.NewSession(p)
		if _, _, err := session.Refresh(ctx); err != nil {
			return err
		}

		if !noWatch {
			if err := internal.WatchDocuments(ctx, p.Dir(), debounce, log, session.MarkStale); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		in := newLineReader(ctx, cmd.InOrStdin())
		for {
			fmt.Fprint(out, questionPrompt)
			text, err := in.Next(ctx)
			if err != nil {
				fmt.Fprintln(out)
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}

			question := strings.TrimSpace(text)
			switch strings.ToLower(question) {
			case "":
				continue
			case "exit", "quit":
				return nil
			}

			if session.Stale() {
				fmt.Fprintln(cmd.ErrOrStderr(), "Documents changed, re-indexing...")
			}

			answer, err := session.Ask(ctx, internal.AskInput{Question: question})
			if err != nil {
				if ctx.Err() != nil || !recoverable(err) {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, answer.Answer)
			fmt.Fprintln(out)
		}
	}
}

// recoverable errors end the current question but not the chat.
func recoverable(err error) bool {
	return internal.IsTransient(err) ||
		errors.Is(err, internal.ErrMalformedResponse) ||
		errors.Is(err, internal.ErrEmptyIndex)
}
