package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Deps are the external services a pipeline talks to. Provider may be nil
// for pipelines that never answer.
type Deps struct {
	Embedder Embedder
	Provider Provider
	Log      *slog.Logger
}

// NewDeps builds the OpenAI embedder and the configured completion provider.
func NewDeps(ctx context.Context, cfg *Config, log *slog.Logger) (Deps, error) {
	embedder := NewOpenAIEmbedder(OpenAIEmbedderConfig{
		APIKey:     cfg.Credentials.OpenAI,
		BaseURL:    cfg.Embeddings.BaseURL,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
	})

	provider, err := NewFantasyProvider(ctx, FantasyConfig{
		Provider:    cfg.Completion.Provider,
		APIKey:      cfg.CompletionKey(),
		BaseURL:     cfg.Completion.BaseURL,
		Model:       cfg.Completion.Model,
		Temperature: cfg.Completion.Temperature,
	})
	if err != nil {
		return Deps{}, stageErr(StageConfig, err)
	}

	return Deps{Embedder: embedder, Provider: provider, Log: log}, nil
}

type IndexStats struct {
	Documents int
	Chunks    int
	Dimension int
	Elapsed   time.Duration
}

// Pipeline wires Loader -> Chunker -> Indexer -> Retriever -> Composer.
type Pipeline struct {
	cfg       *Config
	loader    *PDFLoader
	splitter  Splitter
	indexer   *Indexer
	retriever *Retriever
	composer  *Composer
	log       *slog.Logger
}

func NewPipeline(cfg *Config, deps Deps) (*Pipeline, error) {
	if deps.Embedder == nil {
		return nil, stageErr(StageConfig, errors.New("embedder not available"))
	}
	log := deps.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	splitter, err := NewSplitter(cfg.Chunking)
	if err != nil {
		return nil, stageErr(StageConfig, err)
	}
	newIndex, err := NewIndexFactory(cfg.Index)
	if err != nil {
		return nil, stageErr(StageConfig, err)
	}

	retry := cfg.RetryPolicy()
	p := &Pipeline{
		cfg:       cfg,
		loader:    NewPDFLoader(cfg.Documents.Concurrency, log),
		splitter:  splitter,
		indexer:   NewIndexer(deps.Embedder, newIndex, cfg.Embeddings, retry, log),
		retriever: NewRetriever(deps.Embedder, cfg.Retrieval.K, retry, log),
		log:       log,
	}
	if deps.Provider != nil {
		p.composer = NewComposer(deps.Provider, cfg.Completion.SystemPrompt, retry, log)
	}
	return p, nil
}

func (p *Pipeline) Dir() string {
	return p.cfg.Documents.Dir
}

// Index runs Loader, Chunker and Indexer and returns a sealed corpus.
func (p *Pipeline) Index(ctx context.Context) (*Corpus, IndexStats, error) {
	start := time.Now()
	dir := p.cfg.Documents.Dir

	docs, err := p.loader.Load(ctx, dir)
	if err != nil {
		return nil, IndexStats{}, stageErr(StageLoad, err)
	}
	p.log.Info("loaded documents", "dir", dir, "pages", len(docs))

	chunks, err := ChunkDocuments(docs, p.splitter)
	if err != nil {
		return nil, IndexStats{}, stageErr(StageChunk, err)
	}
	p.log.Info("split documents", "chunks", len(chunks),
		"splitter", p.cfg.Chunking.Splitter, "size", p.cfg.Chunking.Size, "overlap", p.cfg.Chunking.Overlap)

	corpus, err := p.indexer.Build(ctx, chunks)
	if err != nil {
		return nil, IndexStats{}, stageErr(StageIndex, err)
	}
	if corpus.Len() == 0 {
		p.log.Warn("no text found to index", "dir", dir)
	}

	stats := IndexStats{
		Documents: len(docs),
		Chunks:    corpus.Len(),
		Dimension: corpus.Dimension(),
		Elapsed:   time.Since(start),
	}
	p.log.Info("indexed chunks", "chunks", stats.Chunks, "dimension", stats.Dimension,
		"backend", p.cfg.Index.Backend, "elapsed", stats.Elapsed)

	return corpus, stats, nil
}

func (p *Pipeline) Retrieve(ctx context.Context, corpus *Corpus, question string, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		k = p.cfg.Retrieval.K
	}
	results, err := p.retriever.RetrieveK(ctx, corpus, question, k)
	if err != nil {
		return nil, stageErr(StageRetrieve, err)
	}
	p.log.Info("retrieved context", "chunks", len(results))
	return results, nil
}

func (p *Pipeline) Answer(ctx context.Context, question string, retrieved []ScoredChunk) (string, error) {
	if p.composer == nil {
		return "", stageErr(StageAnswer, fmt.Errorf("%w: no completion provider configured", ErrInvalidConfig))
	}
	answer, err := p.composer.Answer(ctx, question, retrieved)
	if err != nil {
		return "", stageErr(StageAnswer, err)
	}
	return answer, nil
}
