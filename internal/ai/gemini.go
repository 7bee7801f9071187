package ai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"reset-recovery-backend/internal/apperr"
)

// GeminiClient generates with the Gemini API through the genai SDK.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, apperr.Configuration([]string{"GEMINI_API_KEY is required"})
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(taskSystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr[float32](openAITemperature),
		MaxOutputTokens:   openAIMaxTokens,
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", apperr.Upstream("gemini generate content", err)
	}
	text := resp.Text()
	if text == "" {
		return "", apperr.Upstream("gemini generate content", fmt.Errorf("empty response"))
	}
	return text, nil
}
