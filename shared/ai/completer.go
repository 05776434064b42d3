package ai

import (
	"context"
	"fmt"

	"sentiment-dashboard/shared/config"
)

// Completer turns a prompt plus system instructions into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt, instructions string) (string, error)
}

// NewCompleter builds the completion backend selected by cfg.Provider.
func NewCompleter(ctx context.Context, cfg *config.AIConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAICompleter(cfg), nil
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}
