package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/4thel00z/bookrag/internal"
	"github.com/spf13/cobra"
)

type depsFactory func(ctx context.Context, cfg *internal.Config, log *slog.Logger) (internal.Deps, error)

type app struct {
	resolver *internal.ScopeResolver
	getenv   func(string) string
	newDeps  depsFactory
}

func newApp() *app {
	return &app{
		resolver: internal.NewScopeResolver(),
		getenv:   os.Getenv,
		newDeps:  internal.NewDeps,
	}
}

// config resolves and validates the effective configuration for cmd. Nothing
// outside the config files is read before it returns.
func (a *app) config(cmd *cobra.Command) (*internal.Config, internal.Scope, error) {
	explicit, _ := cmd.Flags().GetString("config")

	cfg, scope, err := internal.ResolveConfig(a.resolver, explicit, a.getenv)
	if err != nil {
		return nil, scope, configErr(err)
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, scope, configErr(err)
	}
	return cfg, scope, nil
}

func (a *app) pipeline(cmd *cobra.Command) (*internal.Pipeline, *internal.Config, *slog.Logger, error) {
	cfg, scope, err := a.config(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	log := internal.NewLogger(cmd.ErrOrStderr(), verbose)
	log.Debug("resolved config", "scope", scope.Type, "path", scope.ConfigPath,
		"dir", cfg.Documents.Dir, "provider", cfg.Completion.Provider, "model", cfg.Completion.Model)

	deps, err := a.newDeps(cmd.Context(), cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if deps.Log == nil {
		deps.Log = log
	}

	p, err := internal.NewPipeline(cfg, deps)
	if err != nil {
		return nil, nil, nil, err
	}
	return p, cfg, log, nil
}

// applyFlags copies explicitly set flags over cfg.
func applyFlags(cmd *cobra.Command, cfg *internal.Config) {
	flags := cmd.Flags()

	if flags.Changed("dir") {
		cfg.Documents.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("top-k") {
		cfg.Retrieval.K, _ = flags.GetInt("top-k")
	}
	if flags.Changed("chunk-size") {
		cfg.Chunking.Size, _ = flags.GetInt("chunk-size")
	}
	if flags.Changed("chunk-overlap") {
		cfg.Chunking.Overlap, _ = flags.GetInt("chunk-overlap")
	}
	if flags.Changed("splitter") {
		cfg.Chunking.Splitter, _ = flags.GetString("splitter")
	}
	if flags.Changed("index") {
		cfg.Index.Backend, _ = flags.GetString("index")
	}
	if flags.Changed("provider") {
		cfg.Completion.Provider, _ = flags.GetString("provider")
	}
	if flags.Changed("model") {
		cfg.Completion.Model, _ = flags.GetString("model")
	}
}

func configErr(err error) error {
	return &internal.StageError{Stage: internal.StageConfig, Err: err}
}
