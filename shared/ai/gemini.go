package ai

import (
	"context"
	"fmt"

	"sentiment-dashboard/shared/config"

	"google.golang.org/genai"
)

// GeminiCompleter generates summaries through the Gemini API
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	temperature float32
}

func NewGeminiCompleter(ctx context.Context, cfg *config.AIConfig) (*GeminiCompleter, error) {
	return newGeminiCompleter(ctx, cfg, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func newGeminiCompleter(ctx context.Context, cfg *config.AIConfig, clientConfig *genai.ClientConfig) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiCompleter{
		client:      client,
		model:       cfg.Model,
		temperature: float32(cfg.SamplingTemperature()),
	}, nil
}

func (g *GeminiCompleter) Complete(ctx context.Context, prompt, instructions string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("%s returned no candidates", g.model)
	}

	return result.Text(), nil
}
