package internal

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Corpus is a sealed index plus bookkeeping about what went into it.
type Corpus struct {
	index     VectorIndex
	chunks    int
	dimension int
}

func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return c.chunks
}

func (c *Corpus) Dimension() int {
	if c == nil {
		return 0
	}
	return c.dimension
}

// Search queries the sealed index. An empty corpus returns ErrEmptyIndex.
func (c *Corpus) Search(ctx context.Context, query []float32, k int) ([]ScoredChunk, error) {
	if c == nil || c.index == nil || c.chunks == 0 {
		return nil, ErrEmptyIndex
	}
	return c.index.Search(ctx, query, k)
}

type Indexer struct {
	embedder    Embedder
	newIndex    IndexFactory
	batchSize   int
	concurrency int
	retry       RetryPolicy
	log         *slog.Logger
}

func NewIndexer(embedder Embedder, newIndex IndexFactory, cfg EmbeddingsConfig, retry RetryPolicy, log *slog.Logger) *Indexer {
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = 64
	}
	conc := cfg.Concurrency
	if conc <= 0 {
		conc = 1
	}
	return &Indexer{
		embedder:    embedder,
		newIndex:    newIndex,
		batchSize:   batch,
		concurrency: conc,
		retry:       retry,
		log:         log,
	}
}

// Build embeds every chunk and seals a fresh index. Chunks enter the index in
// the order given regardless of which batch finished first.
func (ix *Indexer) Build(ctx context.Context, chunks []Chunk) (*Corpus, error) {
	if len(chunks) == 0 {
		return &Corpus{}, nil
	}

	vectors, err := ix.embedAll(ctx, chunks)
	if err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	index, err := ix.newIndex(dim)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}

	for i, chunk := range chunks {
		if err := index.Add(ctx, chunk, vectors[i]); err != nil {
			return nil, fmt.Errorf("add chunk %s: %w", chunk.ID, err)
		}
	}
	if err := index.Build(ctx); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	return &Corpus{index: index, chunks: len(chunks), dimension: dim}, nil
}

func (ix *Indexer) embedAll(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	vectors := make([][]float32, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.concurrency)

	for start := 0; start < len(chunks); start += ix.batchSize {
		end := min(start+ix.batchSize, len(chunks))

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			texts := make([]string, 0, end-start)
			for _, c := range chunks[start:end] {
				texts = append(texts, c.Text)
			}

			out, err := withRetry(gctx, ix.retry, ix.log, "embed", func(ctx context.Context) ([][]float32, error) {
				return ix.embedder.EmbedBatch(ctx, texts)
			})
			if err != nil {
				return fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
			}
			if len(out) != len(texts) {
				return fmt.Errorf("embed chunks %d-%d: %w: got %d vectors", start, end-1, ErrMalformedResponse, len(out))
			}

			// Each batch owns a disjoint window of vectors.
			copy(vectors[start:end], out)

			if ix.log != nil {
				ix.log.Debug("embedded batch", "from", start, "to", end-1)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 || len(v) != dim {
			return nil, fmt.Errorf("%w: chunk %s has dimension %d, expected %d", ErrMalformedResponse, chunks[i].ID, len(v), dim)
		}
	}

	return vectors, nil
}
