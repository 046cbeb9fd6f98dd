package v1

import (
	"context"
	"fmt"
	"os"

	"github.com/4thel00z/bookrag/internal"
)

// Client answers questions about a directory of PDFs. The corpus is built on
// first use and reused until Index is called again.
type Client struct {
	session *internal.Session
}

// New creates a Client. Credentials default to OPENAI_API_KEY and are only
// required for the services not replaced with WithEmbedder or WithProvider.
func New(opts ...Option) (*Client, error) {
	cc := &clientConfig{cfg: internal.DefaultConfig()}
	cc.cfg.Credentials.OpenAI = os.Getenv("OPENAI_API_KEY")
	for _, opt := range opts {
		opt(cc)
	}

	deps := internal.Deps{Embedder: cc.embedder, Provider: cc.provider, Log: cc.log}
	if deps.Embedder == nil || deps.Provider == nil {
		if err := cc.cfg.Validate(); err != nil {
			return nil, err
		}
		defaults, err := internal.NewDeps(context.Background(), cc.cfg, cc.log)
		if err != nil {
			return nil, err
		}
		if deps.Embedder == nil {
			deps.Embedder = defaults.Embedder
		}
		if deps.Provider == nil {
			deps.Provider = defaults.Provider
		}
	}

	p, err := internal.NewPipeline(cc.cfg, deps)
	if err != nil {
		return nil, err
	}

	return &Client{session: internal.NewSession(p)}, nil
}

// Index rebuilds the corpus from the document directory.
func (c *Client) Index(ctx context.Context) (IndexStats, error) {
	c.session.MarkStale()
	_, stats, err := c.session.Refresh(ctx)
	if err != nil {
		return IndexStats{}, fmt.Errorf("index: %w", err)
	}
	return IndexStats{
		Pages:     stats.Documents,
		Chunks:    stats.Chunks,
		Dimension: stats.Dimension,
		Elapsed:   stats.Elapsed,
	}, nil
}

// Ask answers question from the most relevant passages.
func (c *Client) Ask(ctx context.Context, question string) (*Answer, error) {
	out, err := c.session.Ask(ctx, internal.AskInput{Question: question})
	if err != nil {
		return nil, fmt.Errorf("ask: %w", err)
	}
	return &Answer{
		Question: out.Question,
		Text:     out.Answer,
		Passages: toPassages(out.Context),
	}, nil
}

// Search returns up to limit passages closest to query without calling the
// model. limit <= 0 uses the configured top-k.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Passage, error) {
	out, err := c.session.Search(ctx, internal.SearchInput{Query: query, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return toPassages(out.Results), nil
}

// Close releases any resources held by the client.
func (c *Client) Close() error {
	return nil
}
