package main

import (
	"fmt"
	"strings"

	"github.com/4thel00z/bookrag/internal"
	"github.com/spf13/cobra"
)

func NewSearchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Show the passages closest to a query",
		Long:  `Index the document directory and list the best matching passages without asking the model.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeSearchRunner(a),
	}

	cmd.Flags().Bool("text", false, "Print passage text under each result")
	return cmd
}

func makeSearchRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")
		withText, _ := cmd.Flags().GetBool("text")

		p, _, _, err := a.pipeline(cmd)
		if err != nil {
			return err
		}

		out, err := internal.NewSearchUseCase(p).Execute(cmd.Context(), internal.SearchInput{
			Query: strings.Join(args, " "),
		})
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), out.Results)
		}

		for _, r := range out.Results {
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f  %s p.%d\n", r.Score, r.Source, r.Page)
			if withText {
				fmt.Fprintf(cmd.OutOrStdout(), "    %s\n", strings.ReplaceAll(strings.TrimSpace(r.Text), "\n", "\n    "))
			}
		}
		return nil
	}
}
