package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/config"
)

// NewGenerator builds the provider selected by AI_PROVIDER.
func NewGenerator(ctx context.Context, cfg *config.Config, log *zap.Logger) (Generator, error) {
	switch cfg.AIProvider {
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.AITimeout, log), nil
	case config.ProviderGemini:
		g, err := NewGemini(ctx, cfg.GeminiKey, cfg.GeminiModel)
		if err != nil {
			return nil, err
		}
		return WithTimeout(g, cfg.AITimeout), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AIProvider)
	}
}

type timeoutGenerator struct {
	next    Generator
	timeout time.Duration
}

// WithTimeout bounds every Generate call on g.
func WithTimeout(g Generator, d time.Duration) Generator {
	if d <= 0 {
		return g
	}
	return timeoutGenerator{next: g, timeout: d}
}

func (t timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, prompt)
}
