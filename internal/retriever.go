package internal

import (
	"context"
	"fmt"
	"log/slog"
)

type Retriever struct {
	embedder Embedder
	k        int
	retry    RetryPolicy
	log      *slog.Logger
}

func NewRetriever(embedder Embedder, k int, retry RetryPolicy, log *slog.Logger) *Retriever {
	return &Retriever{embedder: embedder, k: k, retry: retry, log: log}
}

// Retrieve embeds question and returns the top-k chunks of corpus.
func (r *Retriever) Retrieve(ctx context.Context, corpus *Corpus, question string) ([]ScoredChunk, error) {
	return r.RetrieveK(ctx, corpus, question, r.k)
}

func (r *Retriever) RetrieveK(ctx context.Context, corpus *Corpus, question string, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", ErrInvalidConfig, k)
	}
	if corpus.Len() == 0 {
		return nil, ErrEmptyIndex
	}

	vecs, err := withRetry(ctx, r.retry, r.log, "embed question", func(ctx context.Context) ([][]float32, error) {
		return r.embedder.EmbedBatch(ctx, []string{question})
	})
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if len(vecs) != 1 {
		return nil, fmt.Errorf("embed question: %w: got %d vectors", ErrMalformedResponse, len(vecs))
	}

	results, err := corpus.Search(ctx, vecs[0], k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return results, nil
}
