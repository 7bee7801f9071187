package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"reset-recovery-backend/internal/apperr"
)

const (
	openAITemperature = 0.7
	openAIMaxTokens   = 1000
)

// OpenAIClient calls the chat completions endpoint. One attempt per call.
type OpenAIClient struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration, log *zap.Logger) *OpenAIClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &OpenAIClient{
		APIKey:     apiKey,
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Model:      model,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.APIKey == "" {
		return "", apperr.Configuration([]string{"OPENAI_API_KEY is required"})
	}

	body, err := json.Marshal(chatRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: taskSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", apperr.Upstream("openai chat completions", err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return "", apperr.Upstream("openai read body", err)
	}

	if res.StatusCode != http.StatusOK {
		c.Logger.Error("openai api error", zap.Int("status", res.StatusCode), zap.ByteString("body", raw))
		return "", apperr.Upstream("openai chat completions", fmt.Errorf("OpenAI API error: %d", res.StatusCode))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", apperr.Upstream("openai decode", err)
	}
	if out.Error != nil {
		return "", apperr.Upstream("openai chat completions", fmt.Errorf("api error: %s", out.Error.Message))
	}
	if len(out.Choices) == 0 {
		return "", apperr.Upstream("openai chat completions", fmt.Errorf("no completion returned"))
	}

	c.Logger.Debug("openai response received",
		zap.String("model", c.Model),
		zap.Duration("took", time.Since(started)),
		zap.Int("len", len(out.Choices[0].Message.Content)))
	return out.Choices[0].Message.Content, nil
}
