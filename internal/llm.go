package internal

import "context"

type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// Prompt is one system turn plus one user turn.
type Prompt struct {
	System string
	User   string
}

type Provider interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
	Name() string
}
