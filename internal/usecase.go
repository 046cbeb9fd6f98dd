package internal

import (
	"context"
	"strings"
	"time"
)

// Use case input/output DTOs

type IndexInput struct{}

type IndexOutput struct {
	Dir       string
	Documents int
	Chunks    int
	Dimension int
	Elapsed   time.Duration
}

type SearchInput struct {
	Query string
	Limit int
}

type SearchOutput struct {
	Results []SearchResultOutput
}

type SearchResultOutput struct {
	ID     string  `json:"id"`
	Source string  `json:"source"`
	Page   int     `json:"page"`
	Score  float32 `json:"score"`
	Text   string  `json:"text"`
}

type AskInput struct {
	Question string
}

type AskOutput struct {
	Question string               `json:"question"`
	Answer   string               `json:"answer"`
	Context  []SearchResultOutput `json:"context"`
}

func toResultOutputs(results []ScoredChunk) []SearchResultOutput {
	out := make([]SearchResultOutput, len(results))
	for i, r := range results {
		out[i] = SearchResultOutput{
			ID:     r.Chunk.ID,
			Source: r.Chunk.Source,
			Page:   r.Chunk.Page,
			Score:  r.Score,
			Text:   r.Chunk.Text,
		}
	}
	return out
}

func normalizeQuestion(q string) (string, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return "", ErrEmptyQuestion
	}
	return q, nil
}

// Use cases

type IndexUseCase struct {
	pipeline *Pipeline
}

func NewIndexUseCase(p *Pipeline) *IndexUseCase {
	return &IndexUseCase{pipeline: p}
}

func (uc *IndexUseCase) Execute(ctx context.Context, _ IndexInput) (*IndexOutput, error) {
	_, stats, err := uc.pipeline.Index(ctx)
	if err != nil {
		return nil, err
	}
	return &IndexOutput{
		Dir:       uc.pipeline.Dir(),
		Documents: stats.Documents,
		Chunks:    stats.Chunks,
		Dimension: stats.Dimension,
		Elapsed:   stats.Elapsed,
	}, nil
}

type SearchUseCase struct {
	pipeline *Pipeline
}

func NewSearchUseCase(p *Pipeline) *SearchUseCase {
	return &SearchUseCase{pipeline: p}
}

func (uc *SearchUseCase) Execute(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	query, err := normalizeQuestion(input.Query)
	if err != nil {
		return nil, err
	}

	corpus, _, err := uc.pipeline.Index(ctx)
	if err != nil {
		return nil, err
	}

	results, err := uc.pipeline.Retrieve(ctx, corpus, query, input.Limit)
	if err != nil {
		return nil, err
	}

	return &SearchOutput{Results: toResultOutputs(results)}, nil
}

// AskUseCase runs the whole pipeline once per question.
type AskUseCase struct {
	pipeline *Pipeline
}

func NewAskUseCase(p *Pipeline) *AskUseCase {
	return &AskUseCase{pipeline: p}
}

func (uc *AskUseCase) Execute(ctx context.Context, input AskInput) (*AskOutput, error) {
	question, err := normalizeQuestion(input.Question)
	if err != nil {
		return nil, err
	}

	corpus, _, err := uc.pipeline.Index(ctx)
	if err != nil {
		return nil, err
	}

	return ask(ctx, uc.pipeline, corpus, question)
}

func ask(ctx context.Context, p *Pipeline, corpus *Corpus, question string) (*AskOutput, error) {
	retrieved, err := p.Retrieve(ctx, corpus, question, 0)
	if err != nil {
		return nil, err
	}

	answer, err := p.Answer(ctx, question, retrieved)
	if err != nil {
		return nil, err
	}

	return &AskOutput{
		Question: question,
		Answer:   answer,
		Context:  toResultOutputs(retrieved),
	}, nil
}
