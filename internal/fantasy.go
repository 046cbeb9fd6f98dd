package internal

import (
	"context"
	"fmt"
	"strings"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
)

type FantasyConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

var _ Provider = (*FantasyProvider)(nil)

type FantasyProvider struct {
	model       fantasy.LanguageModel
	name        string
	temperature float64
}

func NewFantasyProvider(ctx context.Context, cfg FantasyConfig) (*FantasyProvider, error) {
	var provider fantasy.Provider
	var err error

	switch cfg.Provider {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		provider, err = openai.New(opts...)

	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(cfg.APIKey)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		provider, err = anthropic.New(opts...)

	case "openrouter":
		opts := []openrouter.Option{openrouter.WithAPIKey(cfg.APIKey)}
		provider, err = openrouter.New(opts...)

	default:
		return nil, fmt.Errorf("%w: unsupported provider: %s", ErrInvalidConfig, cfg.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	model, err := provider.LanguageModel(ctx, cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", classifyServiceError(err))
	}

	return &FantasyProvider{
		model:       model,
		name:        cfg.Provider + "/" + cfg.Model,
		temperature: cfg.Temperature,
	}, nil
}

func (p *FantasyProvider) Name() string {
	return p.name
}

func (p *FantasyProvider) Complete(ctx context.Context, prompt Prompt) (string, error) {
	temperature := p.temperature

	resp, err := p.model.Generate(ctx, fantasy.Call{
		Prompt: fantasy.Prompt{
			fantasy.NewSystemMessage(prompt.System),
			fantasy.NewUserMessage(prompt.User),
		},
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("generate: %w", classifyServiceError(err))
	}
	if resp == nil {
		return "", fmt.Errorf("generate: %w: no response", ErrMalformedResponse)
	}

	text := resp.Content.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("generate: %w: empty completion", ErrMalformedResponse)
	}

	return text, nil
}
