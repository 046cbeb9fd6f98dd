package main

import (
	"fmt"

	"github.com/4thel00z/bookrag/internal"
	"github.com/spf13/cobra"
)

func NewIndexCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "index",
		Short: "Build the index and report what went into it",
		Long:  `Load, chunk and embed the document directory, then print counts. Nothing is written to disk.`,
		Args:  cobra.NoArgs,
		RunE:  makeIndexRunner(a),
	}
}

func makeIndexRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		p, cfg, _, err := a.pipeline(cmd)
		if err != nil {
			return err
		}

		out, err := internal.NewIndexUseCase(p).Execute(cmd.Context(), internal.IndexInput{})
		if err != nil {
			return err
		}

		if asJSON {
			return writeJSON(cmd.OutOrStdout(), map[string]any{
				"dir":        out.Dir,
				"pages":      out.Documents,
				"chunks":     out.Chunks,
				"dimension":  out.Dimension,
				"backend":    cfg.Index.Backend,
				"elapsed_ms": out.Elapsed.Milliseconds(),
			})
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Directory: %s\n", out.Dir)
		fmt.Fprintf(w, "Pages:     %d\n", out.Documents)
		fmt.Fprintf(w, "Chunks:    %d\n", out.Chunks)
		fmt.Fprintf(w, "Dimension: %d\n", out.Dimension)
		fmt.Fprintf(w, "Backend:   %s\n", cfg.Index.Backend)
		return nil
	}
}
