package internal

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"unicode"
)

const fakeDim = 128

// wordEmbedder hashes lowercase words into a fixed-size count vector, so texts
// sharing words are close under cosine.
type wordEmbedder struct {
	mu    sync.Mutex
	calls int
	texts int
	err   error
	// failAfter > 0 makes the call numbered failAfter and later fail with err.
	failAfter int
}

func (e *wordEmbedder) Model() string { return "fake-words" }

func (e *wordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.Lock()
	e.calls++
	call := e.calls
	e.texts += len(texts)
	e.mu.Unlock()

	if e.err != nil && (e.failAfter == 0 || call >= e.failAfter) {
		return nil, e.err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = wordVector(t)
	}
	return out, nil
}

func (e *wordEmbedder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func wordVector(text string) []float32 {
	vec := make([]float32, fakeDim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%fakeDim]++
	}
	return vec
}

// contextProvider knows one fact and only states it when the retrieved context
// supports it.
type contextProvider struct {
	mu      sync.Mutex
	prompts []Prompt
	err     error
}

func (p *contextProvider) Name() string { return "fake/context" }

func (p *contextProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	if p.err != nil {
		return "", p.err
	}

	_, contextText, _ := strings.Cut(prompt.System, "\n\n")
	if strings.Contains(contextText, "Paris") && strings.Contains(strings.ToLower(prompt.User), "france") {
		return "The capital of France is Paris.", nil
	}
	return "I don't know.", nil
}

func (p *contextProvider) Last() Prompt {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.prompts) == 0 {
		return Prompt{}
	}
	return p.prompts[len(p.prompts)-1]
}
