package v1

import (
	"log/slog"

	"github.com/4thel00z/bookrag/internal"
)

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	cfg      *internal.Config
	embedder Embedder
	provider Provider
	log      *slog.Logger
}

// WithDir sets the directory the PDFs are read from.
func WithDir(dir string) Option {
	return func(c *clientConfig) {
		c.cfg.Documents.Dir = dir
	}
}

// WithTopK sets how many passages are handed to the model.
func WithTopK(k int) Option {
	return func(c *clientConfig) {
		c.cfg.Retrieval.K = k
	}
}

// WithChunking sets chunk size and overlap in characters.
func WithChunking(size, overlap int) Option {
	return func(c *clientConfig) {
		c.cfg.Chunking.Size = size
		c.cfg.Chunking.Overlap = overlap
	}
}

// WithIndex selects the vector index backend ("annoy" or "flat").
func WithIndex(backend string) Option {
	return func(c *clientConfig) {
		c.cfg.Index.Backend = backend
	}
}

// WithAPIKey sets the OpenAI key used for embeddings and, with the default
// provider, completions.
func WithAPIKey(key string) Option {
	return func(c *clientConfig) {
		c.cfg.Credentials.OpenAI = key
	}
}

// WithModel sets the completion model.
func WithModel(model string) Option {
	return func(c *clientConfig) {
		c.cfg.Completion.Model = model
	}
}

// WithEmbedder replaces the OpenAI embedder.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithProvider replaces the completion provider.
func WithProvider(p Provider) Option {
	return func(c *clientConfig) {
		c.provider = p
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *clientConfig) {
		c.log = log
	}
}
