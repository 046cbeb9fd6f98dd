package internal

import (
	"context"
	"log/slog"
	"strings"
)

type Composer struct {
	provider     Provider
	systemPrompt string
	retry        RetryPolicy
	log          *slog.Logger
}

func NewComposer(provider Provider, systemPrompt string, retry RetryPolicy, log *slog.Logger) *Composer {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	return &Composer{provider: provider, systemPrompt: systemPrompt, retry: retry, log: log}
}

// BuildPrompt puts the instructions and the retrieved chunks in the system
// turn and the question in the user turn.
func (c *Composer) BuildPrompt(question string, retrieved []ScoredChunk) Prompt {
	var sb strings.Builder
	sb.WriteString(c.systemPrompt)
	sb.WriteString("\n\n")
	for i, sc := range retrieved {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(sc.Chunk.Text)
	}

	return Prompt{System: sb.String(), User: question}
}

// Answer returns the completion text verbatim.
func (c *Composer) Answer(ctx context.Context, question string, retrieved []ScoredChunk) (string, error) {
	prompt := c.BuildPrompt(question, retrieved)
	return withRetry(ctx, c.retry, c.log, "complete", func(ctx context.Context) (string, error) {
		return c.provider.Complete(ctx, prompt)
	})
}
