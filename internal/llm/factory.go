package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const defaultTimeout = 20 * time.Second

// New creates a bounded Service for the configured provider.
// It returns ErrServiceUnavailable when no API key is set.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Service, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrServiceUnavailable
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return NewService(provider, ServiceOptions{
		Name:      strings.ToLower(cfg.Provider),
		Timeout:   cfg.Timeout,
		RateLimit: cfg.RateLimit,
		Logger:    logger,
	}), nil
}

func newProvider(ctx context.Context, cfg Config) (Generator, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return newGeminiClient(ctx, cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
