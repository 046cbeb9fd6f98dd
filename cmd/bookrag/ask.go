package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/4thel00z/bookrag/internal"
	"github.com/spf13/cobra"
)

const questionPrompt = "What's your question for GPT? "

func NewAskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question...]",
		Short: "Answer one question from the documents",
		Long: `Index the document directory and answer a single question.
When no question is given it is read from stdin.`,
		RunE: makeAskRunner(a),
	}

	addAskFlags(cmd)
	return cmd
}

func addAskFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("show-context", false, "Print the retrieved passages after the answer")
}

func makeAskRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		showContext, _ := cmd.Flags().GetBool("show-context")

		p, _, _, err := a.pipeline(cmd)
		if err != nil {
			return err
		}

		question := strings.Join(args, " ")
		if strings.TrimSpace(question) == "" {
			question, err = readQuestion(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				return err
			}
		}

		out, err := internal.NewAskUseCase(p).Execute(cmd.Context(), internal.AskInput{Question: question})
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), out)
		}

		fmt.Fprintln(cmd.OutOrStdout(), out.Answer)
		if showContext {
			printSources(cmd.OutOrStdout(), out.Context)
		}
		return nil
	}
}

// readQuestion prompts on w and reads one line from r. It gives up as soon as
// ctx is done, e.g. on Ctrl-C.
func readQuestion(ctx context.Context, r io.Reader, w io.Writer) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprint(w, questionPrompt)

	text, err := newLineReader(ctx, r).Next(ctx)
	switch {
	case errors.Is(err, io.EOF):
		return "", nil
	case err != nil:
		fmt.Fprintln(w)
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func printSources(w io.Writer, results []internal.SearchResultOutput) {
	if len(results) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Sources:")
	for _, r := range results {
		fmt.Fprintf(w, "  %.4f  %s p.%d\n", r.Score, r.Source, r.Page)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
