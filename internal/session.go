package internal

import (
	"context"
	"sync"
	"sync/atomic"
)

// Session answers many questions against one corpus and rebuilds it when
// marked stale. A rebuild always finishes before the next query runs.
type Session struct {
	pipeline *Pipeline

	mu     sync.Mutex
	corpus *Corpus
	stale  atomic.Bool
}

func NewSession(p *Pipeline) *Session {
	s := &Session{pipeline: p}
	s.stale.Store(true)
	return s
}

// MarkStale forces a rebuild before the next question. Safe to call from any
// goroutine.
func (s *Session) MarkStale() {
	s.stale.Store(true)
}

func (s *Session) Stale() bool {
	return s.stale.Load()
}

// Refresh rebuilds the corpus if it is stale and reports whether it did.
func (s *Session) Refresh(ctx context.Context) (bool, IndexStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Session) refreshLocked(ctx context.Context) (bool, IndexStats, error) {
	if !s.stale.Load() && s.corpus != nil {
		return false, IndexStats{}, nil
	}

	// Clear first so events during the rebuild trigger another one.
	s.stale.Store(false)
	corpus, stats, err := s.pipeline.Index(ctx)
	if err != nil {
		s.stale.Store(true)
		return false, IndexStats{}, err
	}
	s.corpus = corpus
	return true, stats, nil
}

func (s *Session) Ask(ctx context.Context, input AskInput) (*AskOutput, error) {
	question, err := normalizeQuestion(input.Question)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	return ask(ctx, s.pipeline, s.corpus, question)
}

func (s *Session) Search(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	query, err := normalizeQuestion(input.Query)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, _, err := s.refreshLocked(ctx); err != nil {
		return nil, err
	}
	results, err := s.pipeline.Retrieve(ctx, s.corpus, query, input.Limit)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Results: toResultOutputs(results)}, nil
}
