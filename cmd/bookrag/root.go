package main

import (
	"github.com/spf13/cobra"
)

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bookrag [question...]",
		Short: "Ask questions about a folder of PDF books",
		Long: `Load every PDF in the document directory, index it with embeddings and
answer questions from the most relevant passages.

Without a subcommand bookrag behaves like "bookrag ask".`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	addPersistentFlags(rootCmd)

	if a != nil {
		rootCmd.RunE = makeAskRunner(a)
		addAskFlags(rootCmd)
		addSubcommands(rootCmd, a)
	}

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "Config file (default: nearest .bookrag.yaml, then ~/.config/bookrag/config.yaml)")
	f.String("dir", "", "Directory with PDF files (default Books)")
	f.IntP("top-k", "k", 0, "Number of passages to retrieve (default 4)")
	f.Int("chunk-size", 0, "Maximum chunk length (default 1000)")
	f.Int("chunk-overlap", 0, "Overlap between neighbouring chunks (default 200)")
	f.String("splitter", "", "Chunking strategy (recursive|window)")
	f.String("index", "", "Vector index backend (annoy|flat)")
	f.String("provider", "", "Completion provider (openai|anthropic|openrouter)")
	f.String("model", "", "Completion model (default gpt-3.5-turbo)")
	f.Bool("json", false, "Output in JSON format")
	f.BoolP("verbose", "v", false, "Log pipeline progress to stderr")
}

func addSubcommands(root *cobra.Command, a *app) {
	root.AddCommand(
		NewAskCmd(a),
		NewSearchCmd(a),
		NewIndexCmd(a),
		NewChatCmd(a),
	)
}
