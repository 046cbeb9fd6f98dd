package main

import (
	"context"
	"hash/fnv"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/4thel00z/bookrag/internal"
)

type hashEmbedder struct{}

func (hashEmbedder) Model() string { return "hash" }

func (hashEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec := make([]float32, 64)
		for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r)
		}) {
			h := fnv.New32a()
			h.Write([]byte(w))
			vec[h.Sum32()%64]++
		}
		out[i] = vec
	}
	return out, nil
}

// echoProvider knows one fact and states it only when the context has it.
type echoProvider struct {
	mu      sync.Mutex
	prompts []internal.Prompt
}

func (p *echoProvider) Name() string { return "fake/echo" }

func (p *echoProvider) Complete(_ context.Context, prompt internal.Prompt) (string, error) {
	p.mu.Lock()
	p.prompts = append(p.prompts, prompt)
	p.mu.Unlock()

	if strings.Contains(prompt.System, "Paris") && strings.Contains(strings.ToLower(prompt.User), "france") {
		return "The capital of France is Paris.", nil
	}
	return "I don't know.", nil
}

func (p *echoProvider) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.prompts)
}

type testApp struct {
	*app
	provider *echoProvider
	depsUsed bool
}

func newTestApp(t *testing.T, env map[string]string) *testApp {
	t.Helper()
	ta := &testApp{provider: &echoProvider{}}
	ta.app = &app{
		resolver: internal.NewScopeResolverAt(t.TempDir(), t.TempDir()),
		getenv:   func(k string) string { return env[k] },
		newDeps: func(_ context.Context, _ *internal.Config, log *slog.Logger) (internal.Deps, error) {
			ta.depsUsed = true
			return internal.Deps{Embedder: hashEmbedder{}, Provider: ta.provider, Log: log}, nil
		},
	}
	return ta
}
